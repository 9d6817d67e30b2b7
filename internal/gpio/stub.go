//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealOutputs is not available on non-Linux platforms.
type RealOutputs struct{}

// NewRealOutputs returns an error on non-Linux platforms.
func NewRealOutputs(chipName string, offsets []int) (*RealOutputs, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (o *RealOutputs) Set(line int, on bool) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (o *RealOutputs) Close() error {
	return nil
}

// RealButtons is not available on non-Linux platforms.
type RealButtons struct{}

// NewRealButtons returns an error on non-Linux platforms.
func NewRealButtons(chipName string, handlers map[int]Handler) (*RealButtons, error) {
	return nil, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (b *RealButtons) Close() error {
	return nil
}
