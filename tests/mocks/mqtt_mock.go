package mocks

import (
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/mock"
)

// MockMQTTClient is a mock implementation of the mqtt.MQTTClient interface
type MockMQTTClient struct {
	mock.Mock
}

func (m *MockMQTTClient) Connect() mqtt.Token {
	args := m.Called()
	return args.Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	args := m.Called(topic, qos, retained, payload)
	return args.Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) Disconnect(quiesce uint) {
	m.Called(quiesce)
}

// LastPayload returns the payload of the most recent Publish call, or nil.
func (m *MockMQTTClient) LastPayload() []byte {
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Method == "Publish" {
			payload, _ := m.Calls[i].Arguments.Get(3).([]byte)
			return payload
		}
	}
	return nil
}
