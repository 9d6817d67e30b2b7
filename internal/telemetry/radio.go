package telemetry

import (
	"fmt"
	"io"
	"sync"
)

// Radio is a send-only LoRa module on a serial line. Each message is one
// newline-terminated line.
type Radio struct {
	mu sync.Mutex
	w  io.Writer
}

// NewRadio creates a Radio writing to w.
func NewRadio(w io.Writer) *Radio {
	return &Radio{w: w}
}

// Send writes msg followed by a newline.
func (r *Radio) Send(msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := io.WriteString(r.w, msg+"\n"); err != nil {
		return fmt.Errorf("radio write: %w", err)
	}
	return nil
}
