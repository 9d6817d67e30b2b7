package mqtt

import log "github.com/sirupsen/logrus"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a bounded FIFO of messages waiting for the broker.
//
// When full it evicts the oldest QoS 0 message first. Those are the
// repeating reports (EMERGENCY_REPORT every second while armed, HEARTBEAT),
// where a newer copy supersedes an older one. Only when no QoS 0 message is
// left does it drop the oldest alert or lifecycle message.
//
// Not safe for concurrent use; the caller synchronizes.
type outbox struct {
	msgs     []bufferedMsg
	capacity int
	dropped  int // messages evicted since last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{
		msgs:     make([]bufferedMsg, 0, capacity),
		capacity: capacity,
	}
}

func (o *outbox) push(msg bufferedMsg) {
	if len(o.msgs) == o.capacity {
		o.evict()
	}
	o.msgs = append(o.msgs, msg)
}

func (o *outbox) evict() {
	if o.dropped == 0 {
		log.Warnf("mqtt: outbox full (%d messages), dropping", o.capacity)
	}
	o.dropped++

	victim := 0
	for i, m := range o.msgs {
		if m.qos == 0 {
			victim = i
			break
		}
	}
	o.msgs = append(o.msgs[:victim], o.msgs[victim+1:]...)
}

// requeue puts msgs back ahead of everything already waiting, keeping
// their order. Used when a send fails after the message left the outbox.
func (o *outbox) requeue(msgs []bufferedMsg) {
	rest := o.msgs
	o.msgs = make([]bufferedMsg, 0, o.capacity)
	for _, m := range msgs {
		o.push(m)
	}
	for _, m := range rest {
		o.push(m)
	}
}

// drainAll returns every waiting message, oldest first, and empties the outbox.
func (o *outbox) drainAll() []bufferedMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	if o.dropped > 0 {
		log.Warnf("mqtt: %d queued messages were dropped", o.dropped)
	}

	result := o.msgs
	o.msgs = make([]bufferedMsg, 0, o.capacity)
	o.dropped = 0
	return result
}

func (o *outbox) len() int {
	return len(o.msgs)
}
