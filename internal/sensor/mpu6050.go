package sensor

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"tinygo.org/x/drivers"
)

// periph buses satisfy the tinygo I2C shape, so register drivers written
// against drivers.I2C run on both.
var _ drivers.I2C = i2c.Bus(nil)

// MPU6050 registers.
const (
	MPU6050Address = 0x68

	regPwrMgmt1   = 0x6B
	regAccelXOutH = 0x3B

	// accelScale is LSB per g at the default ±2 g range.
	accelScale = 16384.0
)

// MPU6050 reads acceleration from an InvenSense MPU-6050.
type MPU6050 struct {
	bus  drivers.I2C
	addr uint16
}

// NewMPU6050 creates a driver. Call Configure before reading.
func NewMPU6050(bus drivers.I2C, addr uint16) *MPU6050 {
	if addr == 0 {
		addr = MPU6050Address
	}
	return &MPU6050{bus: bus, addr: addr}
}

// Configure wakes the device from sleep.
func (m *MPU6050) Configure() error {
	if err := m.bus.Tx(m.addr, []byte{regPwrMgmt1, 0}, nil); err != nil {
		return fmt.Errorf("mpu6050 wake: %w", err)
	}
	return nil
}

// ReadAcceleration returns acceleration on each axis in g.
func (m *MPU6050) ReadAcceleration() (float64, float64, float64, error) {
	buf := make([]byte, 6)
	if err := m.bus.Tx(m.addr, []byte{regAccelXOutH}, buf); err != nil {
		return 0, 0, 0, fmt.Errorf("mpu6050 read: %w", err)
	}
	ax := float64(int16(binary.BigEndian.Uint16(buf[0:2]))) / accelScale
	ay := float64(int16(binary.BigEndian.Uint16(buf[2:4]))) / accelScale
	az := float64(int16(binary.BigEndian.Uint16(buf[4:6]))) / accelScale
	return ax, ay, az, nil
}
