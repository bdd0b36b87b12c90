package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Broker publishes device commands to a real MQTT broker.
type Broker struct {
	client    paho.Client
	baseTopic string
}

// NewBroker connects to the given broker address (e.g. tcp://host:1883).
func NewBroker(address, clientID, baseTopic string) (*Broker, error) {
	opts := paho.NewClientOptions().
		AddBroker(address).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &Broker{client: client, baseTopic: baseTopic}, nil
}

// Send publishes a single attribute command to a device's set topic.
// The publish is bounded by a timeout so a stuck broker never stalls the caller.
func (b *Broker) Send(device, attribute, value string) error {
	payload, err := FormatPayload(attribute, value)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0, not retained; commands are fire-and-forget
	token := b.client.Publish(CommandTopic(b.baseTopic, device), 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for %s", device)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", device, err)
	}

	return nil
}

// Close disconnects from the broker.
func (b *Broker) Close() error {
	b.client.Disconnect(1000) // milliseconds to wait for in-flight work
	return nil
}
