package logic

import (
	"sync"
	"time"
)

// Monitor is the inactivity/alert escalation state machine.
//
// It is shared by the control loop (Tick) and the button callbacks (Reset,
// PressEmergency), which arrive on another goroutine. Every method holds the
// lock only while mutating state and returns the actuator work as a Step;
// callers perform I/O after the lock is released.
type Monitor struct {
	cfg Config

	mu         sync.Mutex
	stationary int
	redAlert   bool
	buzzer     bool
	beepOn     bool
	outOfRange bool
	position   string
	// LED levels as last commanded; toggles are derived from these, never
	// read back from hardware.
	greenLED bool
	redLED   bool

	// Written only by PressEmergency.
	gesture *Gesture

	counts EventCounts
}

// NewMonitor creates a monitor in the "just moved, no alerts" state.
func NewMonitor(cfg Config, tapWindow time.Duration) *Monitor {
	return &Monitor{
		cfg:      cfg,
		gesture:  NewGesture(tapWindow),
		position: FormatAxes(AxisCenter, AxisCenter),
	}
}

// Tick advances the state machine by one loop iteration.
func (m *Monitor) Tick(in Input) Step {
	m.mu.Lock()
	defer m.mu.Unlock()

	var st Step
	prev := m.tierLocked()
	m.position = in.Position

	if in.Moved {
		m.stationary = 0
		m.redAlert = false
		if m.buzzer {
			m.buzzer = false
			st.add(Action{Kind: ActionBuzzerEnable, On: false})
		}
		st.add(Action{Kind: ActionSetLED, LED: LEDBlue, On: false})
		m.setLED(&st, LEDRed, false)
		st.add(Action{Kind: ActionClearDisplay})
		if prev != TierActive {
			m.emit(&st, EventMovement, in.Time)
		}
	} else {
		m.stationary++
	}

	if m.gesture.Armed() {
		m.emit(&st, EventEmergencyReport, in.Time)
		st.Delay = m.cfg.EmergencyDelay
		return st
	}

	if in.OutOfRange {
		if !m.outOfRange {
			m.outOfRange = true
			m.emit(&st, EventOutOfRange, in.Time)
		}
		m.setLED(&st, LEDGreen, !m.greenLED)
		m.setLED(&st, LEDRed, !m.redLED)
		if !m.buzzer {
			m.startBuzzer(&st)
		} else {
			m.toggleBeep(&st)
		}
		st.Delay = m.cfg.FastDelay
		return st
	}

	if m.outOfRange {
		m.outOfRange = false
		m.emit(&st, EventInRange, in.Time)
	}
	m.setLED(&st, LEDGreen, false)
	if !m.redAlert {
		m.setLED(&st, LEDRed, false)
	}
	// Hand-back: the override only silences what inactivity alone would not sound.
	if m.buzzer && m.stationary < m.cfg.BuzzerAfter {
		m.buzzer = false
		st.add(Action{Kind: ActionBuzzerEnable, On: false})
	}

	if m.stationary == m.cfg.BlueAfter {
		st.add(Action{Kind: ActionBlink, LED: LEDBlue, Count: m.cfg.BlinkCount, Interval: m.cfg.BlinkInterval})
		st.add(Action{Kind: ActionSetLED, LED: LEDBlue, On: false})
		m.emit(&st, EventBlueWarn, in.Time)
	}

	if m.stationary >= m.cfg.RedAfter {
		if !m.redAlert {
			m.redAlert = true
			m.emit(&st, EventRedAlert, in.Time)
		}
		st.add(Action{Kind: ActionRender, Title: m.cfg.AlertTitle, Text: in.Position})
		m.setLED(&st, LEDRed, !m.redLED)
	}

	if m.stationary >= m.cfg.BuzzerAfter && !m.buzzer {
		m.startBuzzer(&st)
		m.emit(&st, EventBuzzerAlert, in.Time)
	}

	st.Delay = m.cfg.IdleDelay
	if m.buzzer {
		m.toggleBeep(&st)
		st.Delay = m.cfg.FastDelay
	}
	if m.redAlert && !m.buzzer {
		st.Delay = m.cfg.FastDelay
	}
	return st
}

// Reset clears every alert and the inactivity counter. Pressing it again
// yields the same state.
func (m *Monitor) Reset(now time.Time) Step {
	m.mu.Lock()
	defer m.mu.Unlock()

	var st Step
	m.redAlert = false
	m.buzzer = false
	m.stationary = 0
	st.add(Action{Kind: ActionBuzzerEnable, On: false})
	m.setLED(&st, LEDRed, false)
	st.add(Action{Kind: ActionClearDisplay})
	m.emit(&st, EventReset, now)
	return st
}

// PressEmergency feeds one emergency-button press into the tap gesture.
func (m *Monitor) PressEmergency(now time.Time) (GestureResult, Step) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var st Step
	res := m.gesture.Press(now)
	switch res {
	case GestureArmed:
		m.emit(&st, EventEmergencyArmed, now)
	case GestureDisarmed:
		m.emit(&st, EventEmergencyDisarmed, now)
	}
	return res, st
}

// View returns a copy of the current state.
func (m *Monitor) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked()
}

func (m *Monitor) viewLocked() View {
	return View{
		Tier:       m.tierLocked(),
		Stationary: m.stationary,
		RedAlert:   m.redAlert,
		Buzzer:     m.buzzer,
		Emergency:  m.gesture.Armed(),
		OutOfRange: m.outOfRange,
		Position:   m.position,
		Counts:     m.counts,
	}
}

func (m *Monitor) tierLocked() Tier {
	switch {
	case m.gesture.Armed():
		return TierEmergency
	case m.outOfRange:
		return TierOutOfRange
	case m.buzzer:
		return TierBuzzer
	case m.redAlert:
		return TierRedAlert
	case m.stationary >= m.cfg.BlueAfter:
		return TierBlueWarn
	}
	return TierActive
}

func (m *Monitor) setLED(st *Step, led LED, on bool) {
	switch led {
	case LEDGreen:
		m.greenLED = on
	case LEDRed:
		m.redLED = on
	}
	st.add(Action{Kind: ActionSetLED, LED: led, On: on})
}

func (m *Monitor) startBuzzer(st *Step) {
	m.buzzer = true
	m.beepOn = true
	st.add(Action{Kind: ActionBuzzerEnable, On: true})
	st.add(Action{Kind: ActionBuzzerLevel, Level: m.cfg.BuzzerLevel})
}

func (m *Monitor) toggleBeep(st *Step) {
	m.beepOn = !m.beepOn
	level := uint32(0)
	if m.beepOn {
		level = m.cfg.BuzzerLevel
	}
	st.add(Action{Kind: ActionBuzzerLevel, Level: level})
}

func (m *Monitor) emit(st *Step, typ EventType, now time.Time) {
	switch typ {
	case EventBlueWarn:
		m.counts.BlueWarn++
	case EventRedAlert:
		m.counts.RedAlert++
	case EventBuzzerAlert:
		m.counts.BuzzerAlert++
	case EventOutOfRange:
		m.counts.OutOfRange++
	case EventMovement:
		m.counts.Movement++
	case EventReset:
		m.counts.Reset++
	case EventEmergencyArmed:
		m.counts.EmergencyArmed++
	case EventEmergencyDisarmed:
		m.counts.EmergencyDisarmed++
	}
	st.Events = append(st.Events, Event{
		Timestamp:  now,
		Type:       typ,
		Tier:       m.tierLocked(),
		Stationary: m.stationary,
		Position:   m.position,
		RedAlert:   m.redAlert,
		Buzzer:     m.buzzer,
		Emergency:  m.gesture.Armed(),
	})
}

func (s *Step) add(a Action) {
	s.Actions = append(s.Actions, a)
}
