// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/inactivity-monitor/internal/logic"
)

// Topic is the MQTT topic for alert events.
const Topic = "safety/inactivity/monitor/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "safety/inactivity/monitor/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an alert event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Monitor MonitorPayload `json:"monitor"`
}

// MonitorPayload contains the alert event details.
type MonitorPayload struct {
	Timestamp  string `json:"timestamp"`
	Event      string `json:"event"`
	Tier       string `json:"tier"`
	Stationary int    `json:"stationary_ticks"`
	Position   string `json:"position"`
	RedAlert   bool   `json:"red_alert"`
	Buzzer     bool   `json:"buzzer"`
	Emergency  bool   `json:"emergency"`
}

// FormatPayload creates the JSON payload for an alert event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Monitor: MonitorPayload{
			Timestamp:  event.Timestamp.UTC().Format(time.RFC3339),
			Event:      string(event.Type),
			Tier:       string(event.Tier),
			Stationary: event.Stationary,
			Position:   event.Position,
			RedAlert:   event.RedAlert,
			Buzzer:     event.Buzzer,
			Emergency:  event.Emergency,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	// Empty only in the last will, whose publish time is chosen by the broker.
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// FormatWillPayload creates the last-will payload the broker publishes
// when the connection drops without a clean disconnect. It is registered at
// connect time, so it carries no timestamp.
func FormatWillPayload() []byte {
	payload, _ := json.Marshal(SystemPayload{
		System: SystemPayloadInner{Event: "OFFLINE", Reason: "MQTT_DISCONNECT"},
	})
	return payload
}

// NopPublisher discards everything. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(logic.Event) error       { return nil }
func (NopPublisher) PublishSystem(SystemEvent) error { return nil }
func (NopPublisher) Close() error                    { return nil }
func (NopPublisher) IsConnected() bool               { return false }
