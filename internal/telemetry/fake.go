package telemetry

import "sync"

// FakeLines is a LineSource returning scripted lines, one per call.
type FakeLines struct {
	mu    sync.Mutex
	Lines []string
}

// ReadLine pops the next scripted line.
func (f *FakeLines) ReadLine() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Lines) == 0 {
		return "", false
	}
	line := f.Lines[0]
	f.Lines = f.Lines[1:]
	return line, true
}

// FakeRadio records sent messages.
type FakeRadio struct {
	mu   sync.Mutex
	Sent []string

	// SendError, if set, will be returned by Send().
	SendError error
}

// Send records msg.
func (f *FakeRadio) Send(msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendError != nil {
		return f.SendError
	}
	f.Sent = append(f.Sent, msg)
	return nil
}

// Messages returns a copy of the sent messages.
func (f *FakeRadio) Messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Sent...)
}
