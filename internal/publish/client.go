package publish

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// DefaultTimeout bounds connect and publish round trips.
const DefaultTimeout = 10 * time.Second

// Publisher sends one message. Implemented by Client; tests use a fake.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// Client wraps the Paho MQTT client.
type Client struct {
	client  paho.Client
	broker  string
	timeout time.Duration
	mu      sync.Mutex
}

// NewClient creates a new MQTT client but does not connect.
func NewClient(broker, clientID string) *Client {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(false).
		SetKeepAlive(30 * time.Second)

	return &Client{
		client:  paho.NewClient(opts),
		broker:  broker,
		timeout: DefaultTimeout,
	}
}

// Broker returns the broker URL.
func (c *Client) Broker() string {
	return c.broker
}

// Connect connects to the broker. It does not block longer than the timeout.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.client.Connect()
	if !token.WaitTimeout(c.timeout) {
		return &TimeoutError{Op: "connect", Broker: c.broker}
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect %s: %w", c.broker, err)
	}
	return nil
}

// Publish sends a message and waits for the broker to acknowledge it
// (for QoS > 0).
func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(c.timeout) {
		return &TimeoutError{Op: "publish", Broker: c.broker, Topic: topic}
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

// Disconnect cleanly disconnects from the broker.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.client.Disconnect(250)
}

// IsConnected returns true if the client is connected.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// TimeoutError indicates a broker round trip timed out.
type TimeoutError struct {
	Op     string
	Broker string
	Topic  string
}

func (e *TimeoutError) Error() string {
	if e.Topic != "" {
		return fmt.Sprintf("mqtt %s timeout: %s (%s)", e.Op, e.Topic, e.Broker)
	}
	return fmt.Sprintf("mqtt %s timeout: %s", e.Op, e.Broker)
}
