package actuator

import (
	"fmt"
	"sync"

	"github.com/sweeney/inactivity-monitor/internal/logic"
)

// FakeActuators records every call for assertions.
type FakeActuators struct {
	mu sync.Mutex

	LEDs          map[logic.LED]bool
	BuzzerEnabled bool
	BuzzerLevel   uint32
	Title         string
	Text          string

	// Calls lists the calls in order, e.g. "led BLUE on", "buzzer enable".
	Calls []string

	// Err, if set, is returned by every call after it is recorded.
	Err error
}

// NewFakeActuators creates a FakeActuators with all LEDs off.
func NewFakeActuators() *FakeActuators {
	return &FakeActuators{LEDs: map[logic.LED]bool{}}
}

func (f *FakeActuators) record(s string) error {
	f.Calls = append(f.Calls, s)
	return f.Err
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (f *FakeActuators) SetLED(id logic.LED, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LEDs[id] = on
	return f.record(fmt.Sprintf("led %s %s", id, onOff(on)))
}

func (f *FakeActuators) SetBuzzerEnabled(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BuzzerEnabled = on
	if !on {
		f.BuzzerLevel = 0
	}
	return f.record("buzzer " + onOff(on))
}

func (f *FakeActuators) SetBuzzerLevel(level uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BuzzerLevel = level
	return f.record(fmt.Sprintf("level %d", level))
}

func (f *FakeActuators) RenderMessage(title, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Title, f.Text = title, text
	return f.record("render " + title + " " + text)
}

func (f *FakeActuators) ClearDisplay() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Title, f.Text = "", ""
	return f.record("clear")
}

// LED returns the last level set on the LED.
func (f *FakeActuators) LED(id logic.LED) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.LEDs[id]
}

// Buzzer returns the buzzer enable state and level.
func (f *FakeActuators) Buzzer() (bool, uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.BuzzerEnabled, f.BuzzerLevel
}

// Count returns how many recorded calls equal s.
func (f *FakeActuators) Count(s string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == s {
			n++
		}
	}
	return n
}

// Reset clears recorded calls.
func (f *FakeActuators) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}

// FakeTone is a Tone test double.
type FakeTone struct {
	mu      sync.Mutex
	Enabled bool
	Level   uint32
	Closed  bool
}

func (t *FakeTone) Enable(on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Enabled = on
	return nil
}

func (t *FakeTone) SetLevel(level uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Level = level
	return nil
}

func (t *FakeTone) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Closed = true
	return nil
}
