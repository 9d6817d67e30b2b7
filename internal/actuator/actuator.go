// Package actuator applies monitor actions to the alert hardware:
// LEDs, the PWM buzzer and the OLED display.
package actuator

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/inactivity-monitor/internal/gpio"
	"github.com/sweeney/inactivity-monitor/internal/logic"
)

// Actuators is the output surface driven by the monitor. Calls are
// synchronous and fire-and-forget; errors are for logging only.
type Actuators interface {
	SetLED(id logic.LED, on bool) error
	SetBuzzerEnabled(on bool) error
	SetBuzzerLevel(level uint32) error
	RenderMessage(title, text string) error
	ClearDisplay() error
}

// Tone is a PWM tone generator.
type Tone interface {
	Enable(on bool) error
	SetLevel(level uint32) error
	Close() error
}

// Screen renders the alert message on a display.
type Screen interface {
	RenderMessage(title, text string) error
	ClearScreen() error
}

// Board composes GPIO outputs, a tone generator and an optional screen.
type Board struct {
	Out   gpio.Outputs
	Lines map[logic.LED]int
	Tone  Tone
	// Screen may be nil when no display is attached.
	Screen Screen
}

// DefaultLines maps LEDs to their default BCM lines.
func DefaultLines() map[logic.LED]int {
	return map[logic.LED]int{
		logic.LEDGreen: gpio.DefaultLineGreen,
		logic.LEDBlue:  gpio.DefaultLineBlue,
		logic.LEDRed:   gpio.DefaultLineRed,
	}
}

// SetLED drives the LED's line.
func (b *Board) SetLED(id logic.LED, on bool) error {
	line, ok := b.Lines[id]
	if !ok {
		return fmt.Errorf("no line for LED %s", id)
	}
	return b.Out.Set(line, on)
}

// SetBuzzerEnabled starts or stops the PWM output.
func (b *Board) SetBuzzerEnabled(on bool) error {
	return b.Tone.Enable(on)
}

// SetBuzzerLevel sets the PWM duty level.
func (b *Board) SetBuzzerLevel(level uint32) error {
	return b.Tone.SetLevel(level)
}

// RenderMessage draws the alert message.
func (b *Board) RenderMessage(title, text string) error {
	if b.Screen == nil {
		return nil
	}
	return b.Screen.RenderMessage(title, text)
}

// ClearDisplay redraws a clean, bordered screen.
func (b *Board) ClearDisplay() error {
	if b.Screen == nil {
		return nil
	}
	return b.Screen.ClearScreen()
}

// Off turns every LED and the buzzer off.
func (b *Board) Off() {
	for id := range b.Lines {
		if err := b.SetLED(id, false); err != nil {
			log.Warnf("actuator: LED %s off: %v", id, err)
		}
	}
	if err := b.Tone.Enable(false); err != nil {
		log.Warnf("actuator: buzzer off: %v", err)
	}
}

// Executor applies monitor actions in order.
type Executor struct {
	Out Actuators

	// After is used for blink timing. Defaults to time.After.
	After func(time.Duration) <-chan time.Time
}

// NewExecutor creates an Executor using the real clock.
func NewExecutor(out Actuators) *Executor {
	return &Executor{Out: out, After: time.After}
}

// Run applies each action. Failures are logged and the remaining actions
// still run. A blink blocks until complete or until ctx is cancelled.
func (e *Executor) Run(ctx context.Context, actions []logic.Action) {
	for _, a := range actions {
		var err error
		switch a.Kind {
		case logic.ActionSetLED:
			err = e.Out.SetLED(a.LED, a.On)
		case logic.ActionBuzzerEnable:
			err = e.Out.SetBuzzerEnabled(a.On)
		case logic.ActionBuzzerLevel:
			err = e.Out.SetBuzzerLevel(a.Level)
		case logic.ActionRender:
			err = e.Out.RenderMessage(a.Title, a.Text)
		case logic.ActionClearDisplay:
			err = e.Out.ClearDisplay()
		case logic.ActionBlink:
			e.blink(ctx, a)
		default:
			err = fmt.Errorf("unknown action kind %d", a.Kind)
		}
		if err != nil {
			log.Warnf("actuator: %v", err)
		}
	}
}

func (e *Executor) blink(ctx context.Context, a logic.Action) {
	for i := 0; i < a.Count; i++ {
		if err := e.Out.SetLED(a.LED, true); err != nil {
			log.Warnf("actuator: blink %s: %v", a.LED, err)
		}
		if !e.wait(ctx, a.Interval) {
			e.Out.SetLED(a.LED, false)
			return
		}
		if err := e.Out.SetLED(a.LED, false); err != nil {
			log.Warnf("actuator: blink %s: %v", a.LED, err)
		}
		if !e.wait(ctx, a.Interval) {
			return
		}
	}
}

func (e *Executor) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-e.After(d):
		return true
	}
}
