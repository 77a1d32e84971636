package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/benmeehan/merchant-intake/pkg/file"
)

// MQTTClient defines the interface for an MQTT client.
type MQTTClient interface {
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Options configures the broker connection.
type Options struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	CACertificate  string // optional path to a PEM bundle; enables TLS
	ConnectTimeout time.Duration
}

// MqttService provides methods for MQTT operations.
type MqttService struct {
	client     MQTTClient
	fileClient file.FileOperations
}

// NewMqttService creates a new MqttService instance.
func NewMqttService(fileClient file.FileOperations) *MqttService {
	return &MqttService{
		fileClient: fileClient,
	}
}

// Initialize sets up the MQTT client and connects to the broker.
func (s *MqttService) Initialize(opts Options) error {
	if opts.Broker == "" {
		return errors.New("mqtt broker is not configured")
	}

	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(opts.Broker)
	clientOpts.SetClientID(opts.ClientID)
	clientOpts.SetAutoReconnect(true)
	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
		clientOpts.SetPassword(opts.Password)
	}
	if opts.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(opts.ConnectTimeout)
	}

	if opts.CACertificate != "" {
		caCert, err := s.fileClient.ReadFileRaw(opts.CACertificate)
		if err != nil {
			return fmt.Errorf("failed to read CA certificate: %w", err)
		}

		// Create a CA certificate pool and append the CA certificate to it
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return errors.New("failed to append CA certificate")
		}
		clientOpts.SetTLSConfig(&tls.Config{RootCAs: caCertPool, MinVersion: tls.VersionTLS12})
	}

	s.client = mqtt.NewClient(clientOpts)

	token := s.Connect()
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}

	return nil
}

// UseClient replaces the underlying client, e.g. with an already connected one.
func (s *MqttService) UseClient(client MQTTClient) {
	s.client = client
}

// Connect connects to the MQTT broker.
func (s *MqttService) Connect() mqtt.Token {
	return s.client.Connect()
}

// Publish sends a message to the specified topic.
func (s *MqttService) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	return s.client.Publish(topic, qos, retained, payload)
}

// Disconnect gracefully disconnects the MQTT client.
func (s *MqttService) Disconnect(quiesce uint) {
	if s.client != nil {
		s.client.Disconnect(quiesce)
	}
}
