//go:build !linux

package actuator

import "errors"

// RPIOBuzzer is not available on non-Linux platforms.
type RPIOBuzzer struct{}

// NewRPIOBuzzer returns an error on non-Linux platforms.
func NewRPIOBuzzer(pin int, toneHz int, cycle uint32) (*RPIOBuzzer, error) {
	return nil, errors.New("buzzer: not supported on this platform (requires Linux)")
}

func (b *RPIOBuzzer) Enable(on bool) error       { return nil }
func (b *RPIOBuzzer) SetLevel(level uint32) error { return nil }
func (b *RPIOBuzzer) Close() error               { return nil }
