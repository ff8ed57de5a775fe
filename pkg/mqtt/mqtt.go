// Package mqtt publishes messages to a mqtt broker.
package mqtt

import (
	"encoding/json"
	"sync/atomic"
	"time"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/womat/debug"
)

// quiesce is the specified number of milliseconds to wait for existing work to be completed.
const quiesce = 250

const connectTimeout = 10 * time.Second

// Handler contains the handler of the mqtt broker.
type Handler struct {
	handler mqttlib.Client
	// C is the channel to service the mqtt message
	// sending a message to channel C will send the message.
	C chan Message
	// done is closed when Service returns
	done    chan struct{}
	running atomic.Bool
}

// Message contains the properties of the mqtt message.
type Message struct {
	Topic    string
	Payload  []byte
	Qos      byte
	Retained bool
}

// New generate a new mqtt broker client.
func New() *Handler {
	return &Handler{
		C:    make(chan Message, 16),
		done: make(chan struct{}),
	}
}

// ClientID returns a unique client id with the given prefix.
func ClientID(prefix string) string {
	return prefix + "-" + uuid.New().String()
}

// Connect connects to the mqtt broker.
// If no broker is defined, no mqtt message are send.
func (m *Handler) Connect(broker, clientID string) error {
	if broker == "" {
		return nil
	}

	opts := mqttlib.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)
	m.handler = mqttlib.NewClient(opts)
	return m.ReConnect()
}

// ReConnect reconnects to the defined mqtt broker.
func (m *Handler) ReConnect() error {
	t := m.handler.Connect()
	<-t.Done()
	return t.Error()
}

// Disconnect stops the service and ends the connection to the broker.
func (m *Handler) Disconnect() error {
	close(m.C)
	if m.running.Load() {
		<-m.done
	}

	if m.handler == nil {
		return nil
	}
	m.handler.Disconnect(quiesce)
	return nil
}

// Publish marshals v as json and queues it for topic.
// The message is dropped if the queue is full, the tick loop must never wait for the broker.
func (m *Handler) Publish(topic string, retained bool, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		debug.ErrorLog.Printf("mqtt marshal %v: %v", topic, err)
		return
	}

	select {
	case m.C <- Message{Topic: topic, Payload: b, Retained: retained}:
	default:
		debug.ErrorLog.Printf("mqtt queue full, dropping message to %v", topic)
	}
}

// Service listen to a message on the channel C and send the message to mqtt.
// If no handler or topic is defined, the message will be ignored.
// Service returns when C is closed.
func (m *Handler) Service() {
	m.running.Store(true)
	defer close(m.done)

	for msg := range m.C {
		if m.handler == nil || msg.Topic == "" {
			debug.TraceLog.Printf("mqtt not configured, skipping %v", msg.Topic)
			continue
		}

		if !m.handler.IsConnected() {
			debug.DebugLog.Printf("mqtt broker isn't connected, reconnect it")

			if err := m.ReConnect(); err != nil {
				debug.ErrorLog.Printf("can't reconnect to mqtt broker %v", err)
				continue
			}
		}

		debug.DebugLog.Printf("publishing %v bytes to topic %v", len(msg.Payload), msg.Topic)
		t := m.handler.Publish(msg.Topic, msg.Qos, msg.Retained, msg.Payload)

		// the asynchronous nature of this library makes it easy to forget to check for errors.
		go func(topic string) {
			<-t.Done()
			if err := t.Error(); err != nil {
				debug.ErrorLog.Printf("publishing topic %v: %v", topic, err)
			}
		}(msg.Topic)
	}
}
