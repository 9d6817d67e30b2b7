package logic

import "time"

// DefaultTapWindow is the maximum gap between presses of one gesture.
const DefaultTapWindow = 500 * time.Millisecond

// GestureResult is what a single emergency-button press did.
type GestureResult int

const (
	GestureNone GestureResult = iota
	GestureArmed
	GestureDisarmed
)

// Gesture recognizes an exact tap count within a rolling window:
// two taps arm, three taps disarm. It is not safe for concurrent use;
// Monitor serializes access.
type Gesture struct {
	window time.Duration
	count  int
	last   time.Time
	armed  bool
}

// NewGesture creates a recognizer with the given inter-press window.
func NewGesture(window time.Duration) *Gesture {
	return &Gesture{window: window}
}

// Press registers one falling edge at the given time.
func (g *Gesture) Press(now time.Time) GestureResult {
	if !g.last.IsZero() && now.Sub(g.last) < g.window {
		g.count++
	} else {
		g.count = 1
	}
	g.last = now

	switch {
	case !g.armed && g.count == 2:
		g.armed = true
		return GestureArmed
	case g.armed && g.count == 3:
		g.armed = false
		g.count = 0
		return GestureDisarmed
	}
	return GestureNone
}

// Armed reports whether emergency mode is active.
func (g *Gesture) Armed() bool {
	return g.armed
}

// Count returns the presses counted in the current gesture.
func (g *Gesture) Count() int {
	return g.count
}
