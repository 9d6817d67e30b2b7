package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/inactivity-monitor/internal/logic"
)

// DefaultBufferSize is how many messages are kept while the broker is unreachable.
const DefaultBufferSize = 256

// sendTimeout bounds a single publish.
const sendTimeout = 5 * time.Second

// RealPublisher publishes to an actual MQTT broker.
//
// Messages go out in the order they were published. While disconnected, or
// while older messages are still queued, new ones wait in the outbox; a
// send that fails is put back at the front.
type RealPublisher struct {
	client paho.Client
	topic  string

	mu       sync.Mutex
	outbox   *outbox
	flushing bool
	// connected is set once the first connection has completed.
	connected bool

	now func() time.Time
}

func newPublisher() *RealPublisher {
	return &RealPublisher{
		topic:  Topic,
		outbox: newOutbox(DefaultBufferSize),
		now:    time.Now,
	}
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is retried in the background; an unreachable broker is not an error.
func NewRealPublisher(broker, clientID string) *RealPublisher {
	p := newPublisher()

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetBinaryWill(TopicSystem, FormatWillPayload(), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warnf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if token.WaitTimeout(10*time.Second) && token.Error() != nil {
		log.Warnf("mqtt: initial connect to %s: %v", broker, token.Error())
	}

	return p
}

func (p *RealPublisher) onConnect(_ paho.Client) {
	p.mu.Lock()
	if p.connected {
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"})
		p.outbox.push(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1})
	}
	p.connected = true
	pending := p.outbox.len()
	start := p.startFlushLocked()
	p.mu.Unlock()

	log.Printf("mqtt: connected, %d messages queued", pending)

	// Publishing from inside the handler would block paho's router.
	if start {
		go p.flush()
	}
}

// Publish sends an alert event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 1: alerts should survive a flaky link. The per-second emergency
	// report repeats, so it may be dropped under pressure.
	qos := byte(1)
	if event.Type == logic.EventEmergencyReport {
		qos = 0
	}
	return p.publish(bufferedMsg{topic: p.topic, payload: payload, qos: qos})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	qos := byte(1)
	if event.Event == "HEARTBEAT" {
		qos = 0
	}
	return p.publish(bufferedMsg{topic: TopicSystem, payload: payload, qos: qos, retained: event.Retained})
}

func (p *RealPublisher) publish(m bufferedMsg) error {
	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.outbox.push(m)
		p.mu.Unlock()
		return nil
	}
	if p.flushing || p.outbox.len() > 0 {
		// behind older messages
		p.outbox.push(m)
		start := p.startFlushLocked()
		p.mu.Unlock()
		if start {
			go p.flush()
		}
		return nil
	}
	p.mu.Unlock()

	if err := p.send(m); err != nil {
		p.mu.Lock()
		p.outbox.requeue([]bufferedMsg{m})
		p.mu.Unlock()
		return err
	}
	return nil
}

// startFlushLocked reports whether the caller should start a flush.
func (p *RealPublisher) startFlushLocked() bool {
	if p.flushing || p.outbox.len() == 0 {
		return false
	}
	p.flushing = true
	return true
}

// flush sends queued messages until the outbox is empty, the link drops or
// a send fails. Whatever was not sent stays queued for the next attempt.
func (p *RealPublisher) flush() {
	for {
		p.mu.Lock()
		if !p.client.IsConnectionOpen() {
			p.flushing = false
			p.mu.Unlock()
			return
		}
		pending := p.outbox.drainAll()
		if len(pending) == 0 {
			p.flushing = false
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()

		for i, m := range pending {
			if err := p.send(m); err != nil {
				log.Warnf("mqtt: replay: %v", err)
				p.mu.Lock()
				p.outbox.requeue(pending[i:])
				p.flushing = false
				p.mu.Unlock()
				return
			}
		}
	}
}

func (p *RealPublisher) send(m bufferedMsg) error {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(sendTimeout) {
		return fmt.Errorf("publish to %s: timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", m.topic, err)
	}
	return nil
}

// Pending returns how many messages are waiting for the broker.
func (p *RealPublisher) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outbox.len()
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
