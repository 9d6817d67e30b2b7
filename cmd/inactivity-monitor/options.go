package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/sweeney/inactivity-monitor/internal/gpio"
	"github.com/sweeney/inactivity-monitor/internal/logic"
	"github.com/sweeney/inactivity-monitor/internal/sensor"
	"github.com/sweeney/inactivity-monitor/internal/status"
	"github.com/sweeney/inactivity-monitor/internal/telemetry"
)

// Sensor kinds accepted by --sensor.
const (
	sensorJoystick = "joystick"
	sensorAccel    = "accel"
)

type options struct {
	sensor         string
	deadzone       int
	accelThreshold float64
	safeMin        uint16
	safeMax        uint16

	blueAfter      int
	redAfter       int
	buzzerAfter    int
	blinkCount     int
	blinkInterval  time.Duration
	idleDelay      time.Duration
	fastDelay      time.Duration
	emergencyDelay time.Duration
	tapWindow      time.Duration
	alertTitle     string

	chip          string
	lineGreen     int
	lineBlue      int
	lineRed       int
	lineReset     int
	lineEmergency int

	buzzerPin   int
	toneHz      int
	buzzerCycle uint32
	buzzerLevel uint32

	i2cBus    string
	adcAddr   uint16
	xChan     int
	yChan     int
	accelAddr uint16
	noDisplay bool

	gpsPort           string
	loraPort          string
	baud              int
	telemetryInterval time.Duration

	broker    string
	clientID  string
	heartbeat time.Duration

	logLevel   string
	printState bool
}

func defaultOptions() *options {
	cfg := logic.DefaultConfig()
	return &options{
		sensor:         sensorJoystick,
		deadzone:       logic.DefaultDeadzone,
		accelThreshold: logic.DefaultAccelThreshold,
		safeMin:        logic.DefaultSafeMin,
		safeMax:        logic.DefaultSafeMax,

		blueAfter:      cfg.BlueAfter,
		redAfter:       cfg.RedAfter,
		buzzerAfter:    cfg.BuzzerAfter,
		blinkCount:     cfg.BlinkCount,
		blinkInterval:  cfg.BlinkInterval,
		idleDelay:      cfg.IdleDelay,
		fastDelay:      cfg.FastDelay,
		emergencyDelay: cfg.EmergencyDelay,
		tapWindow:      logic.DefaultTapWindow,
		alertTitle:     cfg.AlertTitle,

		chip:          gpio.DefaultChip,
		lineGreen:     gpio.DefaultLineGreen,
		lineBlue:      gpio.DefaultLineBlue,
		lineRed:       gpio.DefaultLineRed,
		lineReset:     gpio.DefaultLineReset,
		lineEmergency: gpio.DefaultLineEmergency,

		buzzerPin:   18,
		toneHz:      2500,
		buzzerCycle: 1000,
		buzzerLevel: cfg.BuzzerLevel,

		i2cBus:    sensor.DefaultBus,
		adcAddr:   sensor.DefaultADCAddr,
		xChan:     sensor.DefaultXChan,
		yChan:     sensor.DefaultYChan,
		accelAddr: sensor.MPU6050Address,

		baud:              9600,
		telemetryInterval: telemetry.DefaultInterval,

		clientID:  "inactivity-monitor",
		heartbeat: 15 * time.Minute,

		logLevel: "info",
	}
}

func (o *options) bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.sensor, "sensor", o.sensor, "movement source: joystick or accel")
	fs.IntVar(&o.deadzone, "deadzone", o.deadzone, "joystick deadzone in raw ADC units")
	fs.Float64Var(&o.accelThreshold, "accel-threshold", o.accelThreshold, "accelerometer movement threshold in g per axis")
	fs.Uint16Var(&o.safeMin, "safe-min", o.safeMin, "lowest in-range joystick reading")
	fs.Uint16Var(&o.safeMax, "safe-max", o.safeMax, "highest in-range joystick reading")

	fs.IntVar(&o.blueAfter, "blue-after", o.blueAfter, "stationary ticks before the blue warning")
	fs.IntVar(&o.redAfter, "red-after", o.redAfter, "stationary ticks before the red alert")
	fs.IntVar(&o.buzzerAfter, "buzzer-after", o.buzzerAfter, "stationary ticks before the buzzer")
	fs.IntVar(&o.blinkCount, "blink-count", o.blinkCount, "blue warning blinks")
	fs.DurationVar(&o.blinkInterval, "blink-interval", o.blinkInterval, "blue warning on/off time")
	fs.DurationVar(&o.idleDelay, "idle-delay", o.idleDelay, "loop delay with no fast alert")
	fs.DurationVar(&o.fastDelay, "fast-delay", o.fastDelay, "loop delay while red, buzzing or out of range")
	fs.DurationVar(&o.emergencyDelay, "emergency-delay", o.emergencyDelay, "loop delay while emergency is armed")
	fs.DurationVar(&o.tapWindow, "tap-window", o.tapWindow, "maximum gap between emergency button taps")
	fs.StringVar(&o.alertTitle, "alert-title", o.alertTitle, "title shown on the red alert screen")

	fs.StringVar(&o.chip, "gpio-chip", o.chip, "GPIO character device")
	fs.IntVar(&o.lineGreen, "line-green", o.lineGreen, "BCM line of the green LED")
	fs.IntVar(&o.lineBlue, "line-blue", o.lineBlue, "BCM line of the blue LED")
	fs.IntVar(&o.lineRed, "line-red", o.lineRed, "BCM line of the red LED")
	fs.IntVar(&o.lineReset, "line-reset", o.lineReset, "BCM line of the reset button")
	fs.IntVar(&o.lineEmergency, "line-emergency", o.lineEmergency, "BCM line of the emergency button")

	fs.IntVar(&o.buzzerPin, "buzzer-pin", o.buzzerPin, "BCM pin of the PWM buzzer")
	fs.IntVar(&o.toneHz, "tone", o.toneHz, "buzzer tone in Hz")
	fs.Uint32Var(&o.buzzerCycle, "buzzer-cycle", o.buzzerCycle, "PWM steps per tone period")
	fs.Uint32Var(&o.buzzerLevel, "buzzer-level", o.buzzerLevel, "PWM duty while the beep is on")

	fs.StringVar(&o.i2cBus, "i2c-bus", o.i2cBus, "I2C bus name")
	fs.Uint16Var(&o.adcAddr, "adc-addr", o.adcAddr, "ADS1115 address")
	fs.IntVar(&o.xChan, "x-chan", o.xChan, "ADC channel of the X axis")
	fs.IntVar(&o.yChan, "y-chan", o.yChan, "ADC channel of the Y axis")
	fs.Uint16Var(&o.accelAddr, "accel-addr", o.accelAddr, "MPU6050 address")
	fs.BoolVar(&o.noDisplay, "no-display", o.noDisplay, "run without the OLED display")

	fs.StringVar(&o.gpsPort, "gps-port", o.gpsPort, "GPS serial device (empty to disable)")
	fs.StringVar(&o.loraPort, "lora-port", o.loraPort, "LoRa serial device (empty to disable)")
	fs.IntVar(&o.baud, "baud", o.baud, "GPS and LoRa baud rate")
	fs.DurationVar(&o.telemetryInterval, "telemetry-interval", o.telemetryInterval, "time between LoRa position reports")

	fs.StringVar(&o.broker, "broker", o.broker, "MQTT broker address (empty to disable)")
	fs.StringVar(&o.clientID, "client-id", o.clientID, "MQTT client ID")
	fs.DurationVar(&o.heartbeat, "heartbeat", o.heartbeat, "heartbeat interval (0 to disable)")

	fs.StringVar(&o.logLevel, "log-level", o.logLevel, "log level: debug, info, warn, error")
	fs.BoolVar(&o.printState, "print-state", o.printState, "print current state and exit")
}

func (o *options) validate() error {
	if o.sensor != sensorJoystick && o.sensor != sensorAccel {
		return fmt.Errorf("unknown sensor %q (want %s or %s)", o.sensor, sensorJoystick, sensorAccel)
	}
	if o.blueAfter <= 0 || o.redAfter <= o.blueAfter || o.buzzerAfter <= o.redAfter {
		return fmt.Errorf("thresholds must satisfy 0 < blue-after < red-after < buzzer-after (got %d/%d/%d)",
			o.blueAfter, o.redAfter, o.buzzerAfter)
	}
	if o.safeMin >= o.safeMax || o.safeMax > logic.AxisMax {
		return fmt.Errorf("safe window [%d, %d] is invalid", o.safeMin, o.safeMax)
	}
	if o.toneHz <= 0 || o.buzzerCycle == 0 {
		return fmt.Errorf("tone %d Hz with buzzer-cycle %d cannot drive the PWM", o.toneHz, o.buzzerCycle)
	}
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"idle-delay", o.idleDelay},
		{"fast-delay", o.fastDelay},
		{"emergency-delay", o.emergencyDelay},
		{"blink-interval", o.blinkInterval},
		{"tap-window", o.tapWindow},
	} {
		if d.v <= 0 {
			return fmt.Errorf("%s must be positive (got %v)", d.name, d.v)
		}
	}
	if o.buzzerLevel > o.buzzerCycle {
		return fmt.Errorf("buzzer-level %d exceeds buzzer-cycle %d", o.buzzerLevel, o.buzzerCycle)
	}
	return nil
}

func (o *options) monitorConfig() logic.Config {
	return logic.Config{
		BlueAfter:      o.blueAfter,
		RedAfter:       o.redAfter,
		BuzzerAfter:    o.buzzerAfter,
		BlinkCount:     o.blinkCount,
		BlinkInterval:  o.blinkInterval,
		IdleDelay:      o.idleDelay,
		FastDelay:      o.fastDelay,
		EmergencyDelay: o.emergencyDelay,
		BuzzerLevel:    o.buzzerLevel,
		AlertTitle:     o.alertTitle,
	}
}

func (o *options) statusConfig() status.Config {
	return status.Config{
		Sensor:      o.sensor,
		BlueAfter:   o.blueAfter,
		RedAfter:    o.redAfter,
		BuzzerAfter: o.buzzerAfter,
		IdleMs:      o.idleDelay.Milliseconds(),
		HeartbeatMs: o.heartbeat.Milliseconds(),
		Broker:      o.broker,
		Display:     !o.noDisplay,
		Telemetry:   o.gpsPort != "" || o.loraPort != "",
	}
}
