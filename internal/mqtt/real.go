package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// bufferCapacity bounds how many messages are held while disconnected.
const bufferCapacity = 100

// RealPublisher publishes to an actual MQTT broker. System events published
// while the connection is down are held in a ring buffer and replayed,
// oldest first, when it comes back. Telemetry is dropped while down.
type RealPublisher struct {
	client paho.Client

	mu       sync.Mutex
	buf      *ring[bufferedMsg]
	overflow bool
	remote   *RemoteGamepad
}

// WillPayload is the retained last-will message sent by the broker if the
// robot drops off without a clean shutdown.
func WillPayload() []byte {
	data, _ := FormatSystemPayload(SystemEvent{Event: "OFFLINE", Reason: "CONNECTION_LOST"})
	return data
}

// NewRealPublisher creates a publisher connected to the given broker.
// If the broker cannot be reached within the connect timeout, the client
// keeps retrying in the background and messages are buffered meanwhile.
func NewRealPublisher(broker string) (*RealPublisher, error) {
	p := &RealPublisher{buf: newRing[bufferedMsg](bufferCapacity)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("pushbot-teleop").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(TopicSystem, string(WillPayload()), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: broker %s not reachable yet, retrying in background", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once): lifecycle events must reach the driver station
	return p.publish(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// PublishTelemetry sends a telemetry batch to the MQTT broker.
func (p *RealPublisher) PublishTelemetry(msg TelemetryMessage) error {
	payload, err := FormatTelemetryPayload(msg)
	if err != nil {
		return fmt.Errorf("format telemetry payload: %w", err)
	}
	// QoS 0 (at-most-once): the next cycle supersedes a lost batch, so it is
	// never buffered
	return p.publish(bufferedMsg{topic: TopicTelemetry, payload: payload})
}

// SubscribeGamepad feeds driver station messages into r. The subscription
// is renewed on every reconnect.
func (p *RealPublisher) SubscribeGamepad(r *RemoteGamepad) error {
	p.mu.Lock()
	p.remote = r
	p.mu.Unlock()

	if !p.client.IsConnectionOpen() {
		// onConnect subscribes once the connection is up
		return nil
	}
	return p.subscribe(p.client, r)
}

// IsConnected reports whether the client currently has a broker connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

func (p *RealPublisher) publish(msg bufferedMsg) error {
	if !p.client.IsConnectionOpen() {
		p.hold(msg)
		return nil
	}

	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	return nil
}

// hold keeps msg for replay after reconnect and reports whether it was kept.
// Only system events are kept.
func (p *RealPublisher) hold(msg bufferedMsg) bool {
	if msg.topic != TopicSystem {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buf.push(msg) && !p.overflow {
		log.Printf("mqtt: buffer full (%d messages), dropping oldest", bufferCapacity)
		p.overflow = true
	}
	return true
}

// onConnect runs on the paho goroutine after every (re)connect.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	pending := p.buf.drain()
	p.overflow = false
	remote := p.remote
	p.mu.Unlock()

	log.Printf("mqtt: connected, replaying %d buffered messages", len(pending))
	for _, msg := range pending {
		token := c.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		if !token.WaitTimeout(5 * time.Second) {
			log.Printf("mqtt: replay to %s timed out", msg.topic)
		} else if err := token.Error(); err != nil {
			log.Printf("mqtt: replay to %s failed: %v", msg.topic, err)
		}
	}

	if remote != nil {
		if err := p.subscribe(c, remote); err != nil {
			log.Printf("mqtt: %v", err)
		}
	}
}

func (p *RealPublisher) subscribe(c paho.Client, r *RemoteGamepad) error {
	token := c.Subscribe(TopicGamepad, 0, func(_ paho.Client, m paho.Message) {
		if err := r.Handle(m.Payload()); err != nil {
			log.Printf("mqtt: bad gamepad message: %v", err)
		}
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe %s timeout", TopicGamepad)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicGamepad, err)
	}
	return nil
}
