// Package status provides a thread-safe status tracker for the inactivity-monitor daemon.
// It feeds the MQTT status events and the --print-state output.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/inactivity-monitor/internal/logic"
)

// GPSFix is a decoded position. This is a local copy to avoid
// importing internal/telemetry from status.
type GPSFix struct {
	Latitude  float64
	Longitude float64
	At        time.Time
}

// Config contains daemon configuration for display.
type Config struct {
	Sensor      string
	BlueAfter   int
	RedAfter    int
	BuzzerAfter int
	IdleMs      int64
	HeartbeatMs int64
	Broker      string
	Display     bool
	Telemetry   bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Monitor       logic.View
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	GPS           *GPSFix
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Monitor:   logic.View{Tier: logic.TierActive},
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update stores the latest monitor view.
// Called from runLoop on every tick and after every button press.
func (t *Tracker) Update(v logic.View) {
	t.mu.Lock()
	t.snap.Monitor = v
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetGPS sets the last known position.
func (t *Tracker) SetGPS(fix *GPSFix) {
	t.mu.Lock()
	if fix == nil {
		t.snap.GPS = nil
	} else {
		f := *fix
		t.snap.GPS = &f
	}
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	if s.GPS != nil {
		f := *s.GPS
		s.GPS = &f
	}
	s.Now = t.now()
	return s
}
