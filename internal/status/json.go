package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event           string     `json:"event,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	Tier            string     `json:"tier"`
	StationaryTicks int        `json:"stationary_ticks"`
	RedAlert        bool       `json:"red_alert"`
	Buzzer          bool       `json:"buzzer"`
	Emergency       bool       `json:"emergency"`
	OutOfRange      bool       `json:"out_of_range"`
	Position        string     `json:"position"`
	UptimeSeconds   int64      `json:"uptime_seconds"`
	StartTime       string     `json:"start_time"`
	Timestamp       string     `json:"timestamp"`
	MQTT            MQTTStatus `json:"mqtt"`
	Counts          CountsJSON `json:"event_counts"`
	GPS             *GPSJSON   `json:"gps,omitempty"`
	Config          ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	BlueWarn          int `json:"blue_warn"`
	RedAlert          int `json:"red_alert"`
	BuzzerAlert       int `json:"buzzer_alert"`
	OutOfRange        int `json:"out_of_range"`
	Movement          int `json:"movement"`
	Reset             int `json:"reset"`
	EmergencyArmed    int `json:"emergency_armed"`
	EmergencyDisarmed int `json:"emergency_disarmed"`
}

// GPSJSON is the JSON representation of the last GPS fix.
type GPSJSON struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Timestamp string  `json:"timestamp"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Sensor      string `json:"sensor"`
	BlueAfter   int    `json:"blue_after"`
	RedAfter    int    `json:"red_after"`
	BuzzerAfter int    `json:"buzzer_after"`
	IdleMs      int64  `json:"idle_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	Display     bool   `json:"display"`
	Telemetry   bool   `json:"telemetry"`
}

func buildInner(snap Snapshot) StatusInner {
	tier := string(snap.Monitor.Tier)
	if tier == "" {
		tier = "UNKNOWN"
	}
	c := snap.Monitor.Counts

	inner := StatusInner{
		Tier:            tier,
		StationaryTicks: snap.Monitor.Stationary,
		RedAlert:        snap.Monitor.RedAlert,
		Buzzer:          snap.Monitor.Buzzer,
		Emergency:       snap.Monitor.Emergency,
		OutOfRange:      snap.Monitor.OutOfRange,
		Position:        snap.Monitor.Position,
		UptimeSeconds:   int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:       snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:       snap.Now.UTC().Format(time.RFC3339),
		MQTT:            MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			BlueWarn:          c.BlueWarn,
			RedAlert:          c.RedAlert,
			BuzzerAlert:       c.BuzzerAlert,
			OutOfRange:        c.OutOfRange,
			Movement:          c.Movement,
			Reset:             c.Reset,
			EmergencyArmed:    c.EmergencyArmed,
			EmergencyDisarmed: c.EmergencyDisarmed,
		},
		Config: ConfigJSON{
			Sensor:      snap.Config.Sensor,
			BlueAfter:   snap.Config.BlueAfter,
			RedAfter:    snap.Config.RedAfter,
			BuzzerAfter: snap.Config.BuzzerAfter,
			IdleMs:      snap.Config.IdleMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			Display:     snap.Config.Display,
			Telemetry:   snap.Config.Telemetry,
		},
	}
	if snap.GPS != nil {
		inner.GPS = &GPSJSON{
			Latitude:  snap.GPS.Latitude,
			Longitude: snap.GPS.Longitude,
			Timestamp: snap.GPS.At.UTC().Format(time.RFC3339),
		}
	}
	return inner
}

// FormatJSON returns the indented JSON status for --print-state (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
