//go:build linux

package gpio

import (
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/warthog618/go-gpiocdev"
)

// RealOutputs drives LEDs using the Linux GPIO character device.
type RealOutputs struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
}

// NewRealOutputs requests each offset as an output, initially low.
func NewRealOutputs(chipName string, offsets []int) (*RealOutputs, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	o := &RealOutputs{chip: chip, lines: make(map[int]*gpiocdev.Line, len(offsets))}
	for _, off := range offsets {
		l, err := chip.RequestLine(off, gpiocdev.AsOutput(0))
		if err != nil {
			o.Close()
			return nil, fmt.Errorf("request output line %d: %w", off, err)
		}
		o.lines[off] = l
	}
	return o, nil
}

// Set drives the line high or low.
func (o *RealOutputs) Set(line int, on bool) error {
	l, ok := o.lines[line]
	if !ok {
		return fmt.Errorf("line %d not requested", line)
	}
	v := 0
	if on {
		v = 1
	}
	if err := l.SetValue(v); err != nil {
		return fmt.Errorf("set line %d: %w", line, err)
	}
	return nil
}

// Close drives every line low and releases it.
func (o *RealOutputs) Close() error {
	var errs []error

	for off, l := range o.lines {
		if err := l.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear line %d: %w", off, err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", off, err))
		}
	}
	o.lines = nil
	if o.chip != nil {
		if err := o.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealButtons watches active-low buttons for falling edges.
// The kernel delivers edges on the gpiocdev event goroutine, which looks the
// line up in the handler table.
type RealButtons struct {
	chip     *gpiocdev.Chip
	lines    []*gpiocdev.Line
	handlers map[int]Handler
	now      func() time.Time
}

// NewRealButtons requests every line in the handler table as an input with
// pull-up and falling-edge detection. No software debounce is applied.
func NewRealButtons(chipName string, handlers map[int]Handler) (*RealButtons, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	b := &RealButtons{chip: chip, handlers: handlers, now: time.Now}

	offsets := make([]int, 0, len(handlers))
	for off := range handlers {
		offsets = append(offsets, off)
	}
	sort.Ints(offsets)

	for _, off := range offsets {
		l, err := chip.RequestLine(off,
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithFallingEdge,
			gpiocdev.WithEventHandler(b.dispatch))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request button line %d: %w", off, err)
		}
		b.lines = append(b.lines, l)
	}
	return b, nil
}

func (b *RealButtons) dispatch(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventFallingEdge {
		return
	}
	h, ok := b.handlers[evt.Offset]
	if !ok {
		log.Warnf("gpio: edge on unregistered line %d", evt.Offset)
		return
	}
	h(b.now())
}

// Close stops edge delivery and releases the lines.
func (b *RealButtons) Close() error {
	var errs []error

	for _, l := range b.lines {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button line: %w", err))
		}
	}
	b.lines = nil
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
