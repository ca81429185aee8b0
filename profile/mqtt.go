package profile

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// SampleHandler is called when a sample-curve message arrives.
// Parameters: topic, rawPayload, parsed curve, parse error. The raw
// payload is passed through so callers can log or archive undecodable
// messages.
type SampleHandler func(topic string, rawPayload []byte, curve Curve, err error)

// MQTTClient manages the MQTT connection and the sample-curve
// subscription.
type MQTTClient struct {
	client        mqtt.Client
	config        *Config
	sampleHandler SampleHandler
	isConnected   bool
	mu            sync.RWMutex
}

var (
	globalClient *MQTTClient
	clientMu     sync.Mutex
)

// InitMQTT initializes the global MQTT client with the provided
// configuration. The broker can be overridden by the MQTT_BROKER env
// var; with neither set, MQTT is disabled and this returns nil.
func InitMQTT(config *Config, handler SampleHandler) (*MQTTClient, error) {
	clientMu.Lock()
	defer clientMu.Unlock()

	broker := os.Getenv("MQTT_BROKER")
	if broker == "" && config != nil && config.MQTT.Broker != "" {
		broker = config.MQTT.Broker
	}

	if broker == "" {
		log.Println("[MQTT] disabled: MQTT_BROKER not set")
		return nil, nil
	}

	if config == nil || config.MQTT.SampleTopic == "" {
		return nil, fmt.Errorf("MQTT enabled but no sample topic configured")
	}

	client := &MQTTClient{
		config:        config,
		sampleHandler: handler,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)

	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" && config.MQTT.ClientID != "" {
		clientID = config.MQTT.ClientID
	}
	if clientID == "" {
		clientID = "profilegauge"
	}
	opts.SetClientID(clientID)

	username := os.Getenv("MQTT_USERNAME")
	if username == "" && config.MQTT.Username != "" {
		username = config.MQTT.Username
	}
	if username != "" {
		opts.SetUsername(username)
		password := os.Getenv("MQTT_PASSWORD")
		if password == "" && config.MQTT.Password != "" {
			password = config.MQTT.Password
		}
		opts.SetPassword(password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(false) // preserve the subscription on reconnect
	opts.SetOrderMatters(false)

	opts.SetOnConnectHandler(client.onConnect)
	opts.SetConnectionLostHandler(client.onConnectionLost)
	opts.SetReconnectingHandler(client.onReconnecting)

	client.client = mqtt.NewClient(opts)

	go client.connectWithRetry()

	globalClient = client
	return client, nil
}

// GetMQTTClient returns the global MQTT client instance
func GetMQTTClient() *MQTTClient {
	clientMu.Lock()
	defer clientMu.Unlock()
	return globalClient
}

// connectWithRetry attempts to connect to the broker with exponential
// backoff.
func (c *MQTTClient) connectWithRetry() {
	retryDelay := 1 * time.Second
	maxRetryDelay := 60 * time.Second

	for {
		log.Println("[MQTT] connecting to broker...")

		token := c.client.Connect()
		if token.WaitTimeout(10 * time.Second) {
			if token.Error() == nil {
				log.Println("[MQTT] connected to broker")
				c.setConnected(true)
				return
			}
			log.Printf("[MQTT] connection failed: %v", token.Error())
		} else {
			log.Println("[MQTT] connection timeout")
		}

		log.Printf("[MQTT] retrying connection in %v...", retryDelay)
		time.Sleep(retryDelay)
		retryDelay *= 2
		if retryDelay > maxRetryDelay {
			retryDelay = maxRetryDelay
		}
	}
}

func (c *MQTTClient) onConnect(client mqtt.Client) {
	c.setConnected(true)
	if err := c.SubscribeSamples(); err != nil {
		log.Printf("[MQTT] %v", err)
	}
}

// SubscribeSamples subscribes to the configured sample-curve topic.
func (c *MQTTClient) SubscribeSamples() error {
	topic := c.config.MQTT.SampleTopic
	log.Printf("[MQTT] subscribing to %s for sample curves", topic)
	token := c.client.Subscribe(topic, 0, c.handleSampleMessage)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, token.Error())
	}
	log.Printf("[MQTT] subscribed to %s", topic)
	return nil
}

// Auto-reconnect is enabled, so a lost connection is typically a
// transient event.
func (c *MQTTClient) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("[MQTT] connection interrupted (%v), auto-reconnect will retry", err)
	c.setConnected(false)
}

func (c *MQTTClient) onReconnecting(client mqtt.Client, opts *mqtt.ClientOptions) {
	log.Println("[MQTT] reconnecting...")
}

func (c *MQTTClient) handleSampleMessage(client mqtt.Client, msg mqtt.Message) {
	payload := msg.Payload()
	log.Printf("[MQTT] received sample curve (topic: %s, size: %d bytes)", msg.Topic(), len(payload))

	curve, err := ParseCurve(payload)
	if err != nil {
		log.Printf("[MQTT] error parsing sample curve: %v", err)
		if c.sampleHandler != nil {
			c.sampleHandler(msg.Topic(), payload, nil, err)
		}
		return
	}

	if c.sampleHandler != nil {
		c.sampleHandler(msg.Topic(), payload, curve, nil)
	}
}

// IsConnected returns true if the MQTT client is connected
func (c *MQTTClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

func (c *MQTTClient) setConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isConnected = connected
}

// Disconnect gracefully closes the MQTT connection
func (c *MQTTClient) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		log.Println("[MQTT] disconnecting from broker...")
		c.client.Disconnect(250)
		c.setConnected(false)
	}
}

// GetClient returns the underlying MQTT client for publishing
func (c *MQTTClient) GetClient() mqtt.Client {
	return c.client
}

// NewMQTTClientWithConnection wraps an already-constructed mqtt.Client.
// Service tests use it with a mock client to drive the sample path
// without a broker.
func NewMQTTClientWithConnection(client mqtt.Client, config *Config, handler SampleHandler) *MQTTClient {
	return &MQTTClient{
		client:        client,
		config:        config,
		sampleHandler: handler,
	}
}
