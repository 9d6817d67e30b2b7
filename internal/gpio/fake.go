package gpio

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// FakeOutputs is a test double that records output levels.
type FakeOutputs struct {
	mu sync.Mutex

	// Levels holds the last level driven on each line.
	Levels map[int]bool

	// Writes counts Set calls per line.
	Writes map[int]int

	// SetError, if set, will be returned by Set().
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeOutputs creates a FakeOutputs with every offset low.
func NewFakeOutputs(offsets ...int) *FakeOutputs {
	f := &FakeOutputs{Levels: map[int]bool{}, Writes: map[int]int{}}
	for _, off := range offsets {
		f.Levels[off] = false
	}
	return f
}

// Set records the level.
func (f *FakeOutputs) Set(line int, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	if _, ok := f.Levels[line]; !ok {
		return fmt.Errorf("line %d not requested", line)
	}
	f.Levels[line] = on
	f.Writes[line]++
	return nil
}

// Level returns the last level driven on the line.
func (f *FakeOutputs) Level(line int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Levels[line]
}

// Close marks the outputs as closed.
func (f *FakeOutputs) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// FakeButtons is a test double that delivers scripted presses synchronously.
type FakeButtons struct {
	handlers map[int]Handler

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeButtons creates a FakeButtons with the given handler table.
func NewFakeButtons(handlers map[int]Handler) *FakeButtons {
	return &FakeButtons{handlers: handlers}
}

// Press delivers a falling edge on the line at the given time.
func (f *FakeButtons) Press(line int, at time.Time) error {
	if f.Closed {
		return errors.New("buttons closed")
	}
	h, ok := f.handlers[line]
	if !ok {
		return fmt.Errorf("no handler for line %d", line)
	}
	h(at)
	return nil
}

// Close marks the buttons as closed.
func (f *FakeButtons) Close() error {
	f.Closed = true
	return nil
}
