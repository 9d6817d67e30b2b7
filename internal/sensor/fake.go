package sensor

import (
	"errors"
	"sync"
)

// FakeAxes is a test double that returns scripted joystick readings.
type FakeAxes struct {
	mu sync.Mutex

	// Readings is consumed one per ReadAxes call; the last one repeats.
	Readings [][2]uint16

	// ReadError, if set, will be returned by ReadAxes().
	ReadError error

	Reads int
}

// NewFakeAxes creates a FakeAxes resting at the stick centre.
func NewFakeAxes() *FakeAxes {
	return &FakeAxes{Readings: [][2]uint16{{2048, 2048}}}
}

// Queue appends readings to the script.
func (f *FakeAxes) Queue(readings ...[2]uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Readings = append(f.Readings, readings...)
}

// ReadAxes returns the next scripted reading.
func (f *FakeAxes) ReadAxes() (uint16, uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reads++
	if f.ReadError != nil {
		return 0, 0, f.ReadError
	}
	if len(f.Readings) == 0 {
		return 0, 0, errors.New("no readings scripted")
	}
	r := f.Readings[0]
	if len(f.Readings) > 1 {
		f.Readings = f.Readings[1:]
	}
	return r[0], r[1], nil
}

// FakeAccel is a test double that returns scripted accelerations.
type FakeAccel struct {
	mu sync.Mutex

	Readings  [][3]float64
	ReadError error
}

// ReadAcceleration returns the next scripted reading; the last one repeats.
func (f *FakeAccel) ReadAcceleration() (float64, float64, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return 0, 0, 0, f.ReadError
	}
	if len(f.Readings) == 0 {
		return 0, 0, 0, errors.New("no readings scripted")
	}
	r := f.Readings[0]
	if len(f.Readings) > 1 {
		f.Readings = f.Readings[1:]
	}
	return r[0], r[1], r[2], nil
}

// FakeI2C records writes and answers reads from a register map.
type FakeI2C struct {
	mu sync.Mutex

	// Regs holds the device memory, indexed from the register written last.
	Regs map[byte][]byte

	// Writes records every write payload.
	Writes [][]byte

	// TxError, if set, will be returned by Tx().
	TxError error

	LastAddr uint16
}

// NewFakeI2C creates an empty FakeI2C.
func NewFakeI2C() *FakeI2C {
	return &FakeI2C{Regs: map[byte][]byte{}}
}

// Tx implements drivers.I2C.
func (f *FakeI2C) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastAddr = addr
	if f.TxError != nil {
		return f.TxError
	}
	f.Writes = append(f.Writes, append([]byte(nil), w...))
	if len(r) > 0 && len(w) > 0 {
		copy(r, f.Regs[w[0]])
	}
	return nil
}
