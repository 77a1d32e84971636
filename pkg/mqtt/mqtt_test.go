package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benmeehan/merchant-intake/pkg/file"
	"github.com/benmeehan/merchant-intake/tests/mocks"
)

func TestMqttService_Initialize_RequiresBroker(t *testing.T) {
	s := NewMqttService(file.NewFileService())
	assert.EqualError(t, s.Initialize(Options{}), "mqtt broker is not configured")
}

func TestMqttService_Initialize_BadCACertificate(t *testing.T) {
	s := NewMqttService(file.NewFileService())
	err := s.Initialize(Options{Broker: "tcp://localhost:1883", CACertificate: "/does/not/exist.pem"})
	assert.ErrorContains(t, err, "failed to read CA certificate")
}

func TestMqttService_DelegatesToClient(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	token := mocks.NewCompletedToken(nil)
	client.On("Publish", "merchants/register", byte(1), false, []byte("{}")).Return(token)
	client.On("Disconnect", uint(250)).Return()

	s := NewMqttService(file.NewFileService())
	s.UseClient(client)

	assert.Equal(t, token, s.Publish("merchants/register", 1, false, []byte("{}")))
	s.Disconnect(250)
	client.AssertExpectations(t)
	assert.Equal(t, []byte("{}"), client.LastPayload())
}
