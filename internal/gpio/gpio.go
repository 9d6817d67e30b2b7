// Package gpio provides LED outputs and edge-triggered buttons with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "time"

// Outputs drives digital output lines, addressed by line offset.
type Outputs interface {
	// Set drives the line high (true) or low (false).
	Set(line int, on bool) error

	// Close releases GPIO resources.
	Close() error
}

// Handler is invoked for each falling edge on a button line.
// It runs on the event goroutine and must not block for long.
type Handler func(at time.Time)

// Buttons delivers falling edges on active-low button lines to the handler
// registered for that line.
type Buttons interface {
	// Close stops edge delivery and releases GPIO resources.
	Close() error
}

// DefaultChip is the GPIO character device used on Raspberry Pi.
const DefaultChip = "gpiochip0"

// Line definitions (BCM numbering)
const (
	DefaultLineGreen     = 17
	DefaultLineBlue      = 27
	DefaultLineRed       = 22
	DefaultLineReset     = 5 // button A
	DefaultLineEmergency = 6 // button B
)
