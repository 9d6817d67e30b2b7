package logic

import (
	"fmt"
	"math"
	"time"
)

// Joystick ADC range and defaults.
const (
	AxisMax    = 4095
	AxisCenter = 2048

	DefaultDeadzone = 100
	DefaultSafeMin  = 700
	DefaultSafeMax  = 3300

	DefaultAccelThreshold = 0.1 // g per axis
)

// JoystickSampler classifies raw X/Y readings against a fixed deadzone.
// It owns the last-sample state; nothing else writes it.
type JoystickSampler struct {
	deadzone int
	safeMin  uint16
	safeMax  uint16
	lastX    uint16
	lastY    uint16
}

// NewJoystickSampler creates a sampler whose last sample is the stick centre.
func NewJoystickSampler(deadzone int, safeMin, safeMax uint16) *JoystickSampler {
	return &JoystickSampler{
		deadzone: deadzone,
		safeMin:  safeMin,
		safeMax:  safeMax,
		lastX:    AxisCenter,
		lastY:    AxisCenter,
	}
}

// Sample classifies a reading. Movement on either axis alone is enough.
func (s *JoystickSampler) Sample(x, y uint16, now time.Time) Input {
	moved := absDiff(x, s.lastX) > s.deadzone || absDiff(y, s.lastY) > s.deadzone
	if moved {
		s.lastX = x
		s.lastY = y
	}
	return Input{
		Moved:      moved,
		OutOfRange: !s.inRange(x) || !s.inRange(y),
		Position:   FormatAxes(x, y),
		Time:       now,
	}
}

// Hold reports a stationary tick at the last known position, used when the
// reading could not be taken.
func (s *JoystickSampler) Hold(now time.Time) Input {
	return Input{Position: FormatAxes(s.lastX, s.lastY), Time: now}
}

// Last returns the last sample that counted as movement.
func (s *JoystickSampler) Last() (x, y uint16) {
	return s.lastX, s.lastY
}

func (s *JoystickSampler) inRange(v uint16) bool {
	return v >= s.safeMin && v <= s.safeMax
}

// AccelSampler classifies triaxial acceleration (in g) against a per-axis threshold.
type AccelSampler struct {
	threshold float64
	last      [3]float64
}

// NewAccelSampler creates a sampler whose last sample is zero on every axis.
func NewAccelSampler(threshold float64) *AccelSampler {
	return &AccelSampler{threshold: threshold}
}

// Sample classifies a reading. The accelerometer has no safe window.
func (s *AccelSampler) Sample(ax, ay, az float64, now time.Time) Input {
	cur := [3]float64{ax, ay, az}
	moved := false
	for i := range cur {
		if math.Abs(cur[i]-s.last[i]) > s.threshold {
			moved = true
		}
	}
	if moved {
		s.last = cur
	}
	return Input{
		Moved:    moved,
		Position: FormatAccel(ax, ay, az),
		Time:     now,
	}
}

// Hold reports a stationary tick at the last known reading.
func (s *AccelSampler) Hold(now time.Time) Input {
	return Input{Position: FormatAccel(s.last[0], s.last[1], s.last[2]), Time: now}
}

// FormatAxes renders a joystick position the way the display shows it.
func FormatAxes(x, y uint16) string {
	return fmt.Sprintf("X:%d Y:%d", x, y)
}

// FormatAccel renders an acceleration vector in g.
func FormatAccel(ax, ay, az float64) string {
	return fmt.Sprintf("X:%.2f Y:%.2f Z:%.2f", ax, ay, az)
}

func absDiff(a, b uint16) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
