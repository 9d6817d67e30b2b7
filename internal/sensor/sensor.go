// Package sensor reads the movement source (joystick ADC or accelerometer)
// and turns each reading into a classified monitor input.
package sensor

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/inactivity-monitor/internal/logic"
)

// AxesReader reads raw joystick axes in [0, 4095].
type AxesReader interface {
	ReadAxes() (x, y uint16, err error)
}

// AccelReader reads triaxial acceleration in g.
type AccelReader interface {
	ReadAcceleration() (ax, ay, az float64, err error)
}

// Source produces one monitor input per tick.
type Source interface {
	Next(now time.Time) logic.Input
}

// JoystickSource samples a two-axis joystick.
type JoystickSource struct {
	r AxesReader
	s *logic.JoystickSampler
}

// NewJoystickSource wraps r with a sampler.
func NewJoystickSource(r AxesReader, s *logic.JoystickSampler) *JoystickSource {
	return &JoystickSource{r: r, s: s}
}

// Next reads and classifies the axes. A failed read counts as stationary.
func (j *JoystickSource) Next(now time.Time) logic.Input {
	x, y, err := j.r.ReadAxes()
	if err != nil {
		log.Warnf("sensor: read axes: %v", err)
		return j.s.Hold(now)
	}
	return j.s.Sample(x, y, now)
}

// AccelSource samples an accelerometer.
type AccelSource struct {
	r AccelReader
	s *logic.AccelSampler
}

// NewAccelSource wraps r with a sampler. A nil reader is allowed and
// reports stationary on every tick.
func NewAccelSource(r AccelReader, s *logic.AccelSampler) *AccelSource {
	return &AccelSource{r: r, s: s}
}

// Next reads and classifies the acceleration. A failed read counts as stationary.
func (a *AccelSource) Next(now time.Time) logic.Input {
	if a.r == nil {
		return a.s.Hold(now)
	}
	ax, ay, az, err := a.r.ReadAcceleration()
	if err != nil {
		log.Warnf("sensor: read acceleration: %v", err)
		return a.s.Hold(now)
	}
	return a.s.Sample(ax, ay, az, now)
}
