// Package logic contains the pure inactivity/alert state machine.
// This package has NO external dependencies (no GPIO, I2C, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Tier is the escalation level currently indicated by the monitor.
type Tier string

const (
	TierActive     Tier = "ACTIVE"
	TierBlueWarn   Tier = "BLUE_WARN"
	TierRedAlert   Tier = "RED_ALERT"
	TierBuzzer     Tier = "BUZZER_ALERT"
	TierOutOfRange Tier = "OUT_OF_RANGE"
	TierEmergency  Tier = "EMERGENCY"
)

// LED identifies one of the indicator LEDs.
type LED string

const (
	LEDGreen LED = "GREEN"
	LEDBlue  LED = "BLUE"
	LEDRed   LED = "RED"
)

// EventType represents a notable monitor transition to be published.
type EventType string

const (
	EventBlueWarn          EventType = "BLUE_WARN"
	EventRedAlert          EventType = "RED_ALERT"
	EventBuzzerAlert       EventType = "BUZZER_ALERT"
	EventOutOfRange        EventType = "OUT_OF_RANGE"
	EventInRange           EventType = "IN_RANGE"
	EventMovement          EventType = "MOVEMENT"
	EventReset             EventType = "RESET"
	EventEmergencyArmed    EventType = "EMERGENCY_ARMED"
	EventEmergencyDisarmed EventType = "EMERGENCY_DISARMED"
	EventEmergencyReport   EventType = "EMERGENCY_REPORT"
)

// Event represents a monitor transition to be published.
type Event struct {
	Timestamp  time.Time
	Type       EventType
	Tier       Tier
	Stationary int
	Position   string
	RedAlert   bool
	Buzzer     bool
	Emergency  bool
}

// Input is one classified sample handed to the monitor each tick.
type Input struct {
	Moved      bool
	OutOfRange bool   // outside the safe window (joystick only)
	Position   string // human readable reading, e.g. "X:2048 Y:2048"
	Time       time.Time
}

// ActionKind selects what an Action does to the actuators.
type ActionKind int

const (
	ActionSetLED ActionKind = iota + 1
	ActionBuzzerEnable
	ActionBuzzerLevel
	ActionRender
	ActionClearDisplay
	ActionBlink
)

// Action is a single fire-and-forget actuator command.
// Actions must be applied in order; ActionBlink blocks for Count*2*Interval.
type Action struct {
	Kind     ActionKind
	LED      LED
	On       bool
	Level    uint32
	Title    string
	Text     string
	Count    int
	Interval time.Duration
}

// Step is the outcome of one monitor evaluation.
type Step struct {
	Actions []Action
	Events  []Event
	// Delay is how long the control loop sleeps before the next tick.
	Delay time.Duration
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	BlueWarn          int
	RedAlert          int
	BuzzerAlert       int
	OutOfRange        int
	Movement          int
	Reset             int
	EmergencyArmed    int
	EmergencyDisarmed int
}

// View is a point-in-time copy of the monitor state.
type View struct {
	Tier       Tier
	Stationary int
	RedAlert   bool
	Buzzer     bool
	Emergency  bool
	OutOfRange bool
	Position   string
	Counts     EventCounts
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
}

// Config holds the escalation policy. Thresholds are loop iterations, not seconds.
type Config struct {
	BlueAfter   int
	RedAfter    int
	BuzzerAfter int

	BlinkCount    int
	BlinkInterval time.Duration

	IdleDelay      time.Duration
	FastDelay      time.Duration
	EmergencyDelay time.Duration

	// BuzzerLevel is the duty level used while the beep is on.
	BuzzerLevel uint32

	AlertTitle string
}

// DefaultConfig returns the escalation policy used by the reference device.
func DefaultConfig() Config {
	return Config{
		BlueAfter:      30,
		RedAfter:       45,
		BuzzerAfter:    60,
		BlinkCount:     10,
		BlinkInterval:  500 * time.Millisecond,
		IdleDelay:      2000 * time.Millisecond,
		FastDelay:      500 * time.Millisecond,
		EmergencyDelay: 1000 * time.Millisecond,
		BuzzerLevel:    900,
		AlertTitle:     "ATTENTION",
	}
}
