//go:build linux

package actuator

import (
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

// RPIOBuzzer drives a passive buzzer from a BCM hardware PWM channel.
type RPIOBuzzer struct {
	mu    sync.Mutex
	pin   rpio.Pin
	cycle uint32
	on    bool
}

// NewRPIOBuzzer maps the GPIO registers and sets the pin to PWM mode at
// toneHz with a duty period of cycle steps. The output starts disabled.
func NewRPIOBuzzer(pin int, toneHz int, cycle uint32) (*RPIOBuzzer, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open rpio: %w", err)
	}
	p := rpio.Pin(pin)
	p.Mode(rpio.Pwm)
	p.Freq(toneHz * int(cycle))
	p.DutyCycle(0, cycle)
	rpio.StopPwm()
	return &RPIOBuzzer{pin: p, cycle: cycle}, nil
}

// Enable starts or stops the PWM channel. Disabling also zeroes the duty.
func (b *RPIOBuzzer) Enable(on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if on {
		rpio.StartPwm()
	} else {
		b.pin.DutyCycle(0, b.cycle)
		rpio.StopPwm()
	}
	b.on = on
	return nil
}

// SetLevel sets the duty to level/cycle.
func (b *RPIOBuzzer) SetLevel(level uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if level > b.cycle {
		return fmt.Errorf("buzzer level %d exceeds cycle %d", level, b.cycle)
	}
	b.pin.DutyCycle(level, b.cycle)
	return nil
}

// Close silences the buzzer and unmaps the registers.
func (b *RPIOBuzzer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pin.DutyCycle(0, b.cycle)
	rpio.StopPwm()
	b.pin.Output()
	b.pin.Low()
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close rpio: %w", err)
	}
	return nil
}
