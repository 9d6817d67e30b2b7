package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"

	"github.com/sweeney/inactivity-monitor/internal/logic"
)

// Defaults for the joystick ADC.
const (
	DefaultADCAddr = 0x48
	DefaultXChan   = 1
	DefaultYChan   = 0
)

var channels = []ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// ADSJoystick reads two single-ended channels of an ADS1115.
type ADSJoystick struct {
	x ads1x15.PinADC
	y ads1x15.PinADC
}

// NewADSJoystick opens the ADC and binds the X and Y channels.
func NewADSJoystick(bus i2c.Bus, addr uint16, xChan, yChan int) (*ADSJoystick, error) {
	if xChan < 0 || xChan >= len(channels) || yChan < 0 || yChan >= len(channels) {
		return nil, fmt.Errorf("ads1115: channel out of range (x=%d y=%d)", xChan, yChan)
	}
	adc, err := ads1x15.NewADS1115(bus, &ads1x15.Opts{I2cAddress: addr})
	if err != nil {
		return nil, fmt.Errorf("open ads1115: %w", err)
	}
	x, err := adc.PinForChannel(channels[xChan], 4096*physic.MilliVolt, 128*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		return nil, fmt.Errorf("ads1115 x channel: %w", err)
	}
	y, err := adc.PinForChannel(channels[yChan], 4096*physic.MilliVolt, 128*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		x.Halt()
		return nil, fmt.Errorf("ads1115 y channel: %w", err)
	}
	return &ADSJoystick{x: x, y: y}, nil
}

// ReadAxes samples both channels, scaled to 12 bits.
func (j *ADSJoystick) ReadAxes() (uint16, uint16, error) {
	xs, err := j.x.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read x: %w", err)
	}
	ys, err := j.y.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read y: %w", err)
	}
	return scaleRaw(xs.Raw), scaleRaw(ys.Raw), nil
}

// Close releases both channels.
func (j *ADSJoystick) Close() error {
	errX := j.x.Halt()
	errY := j.y.Halt()
	if errX != nil {
		return errX
	}
	return errY
}

// scaleRaw maps a signed 16-bit single-ended sample onto [0, 4095].
func scaleRaw(raw int32) uint16 {
	if raw < 0 {
		return 0
	}
	v := raw >> 3
	if v > logic.AxisMax {
		return logic.AxisMax
	}
	return uint16(v)
}
