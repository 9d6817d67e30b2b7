// Command inactivity-monitor watches a joystick or accelerometer and escalates
// LED, display and buzzer alerts the longer it stays still.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/i2c"

	"github.com/sweeney/inactivity-monitor/internal/actuator"
	"github.com/sweeney/inactivity-monitor/internal/display"
	"github.com/sweeney/inactivity-monitor/internal/gpio"
	"github.com/sweeney/inactivity-monitor/internal/logic"
	"github.com/sweeney/inactivity-monitor/internal/mqtt"
	"github.com/sweeney/inactivity-monitor/internal/sensor"
	"github.com/sweeney/inactivity-monitor/internal/status"
	"github.com/sweeney/inactivity-monitor/internal/telemetry"
)

func main() {
	opts := defaultOptions()
	cmd := &cobra.Command{
		Use:   "inactivity-monitor",
		Short: "Escalating inactivity alerts for a joystick or accelerometer",
		Long: `inactivity-monitor samples a joystick (ADS1115) or an MPU6050 every loop
and escalates a blue warning, a red alert with an on-screen message and an
intermittent buzzer the longer the input stays still. Button A resets all
alerts; a double tap on button B arms emergency mode, a triple tap disarms it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
		SilenceUsage: true,
	}
	opts.bind(cmd.Flags())

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, o *options) error {
	if err := o.validate(); err != nil {
		return err
	}
	level, err := log.ParseLevel(o.logLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)

	// Hardware acquisition: any failure here aborts startup.
	outputs, err := gpio.NewRealOutputs(o.chip, []int{o.lineGreen, o.lineBlue, o.lineRed})
	if err != nil {
		return fmt.Errorf("init leds: %w", err)
	}
	defer outputs.Close()

	buzzer, err := actuator.NewRPIOBuzzer(o.buzzerPin, o.toneHz, o.buzzerCycle)
	if err != nil {
		return fmt.Errorf("init buzzer: %w", err)
	}
	defer buzzer.Close()

	bus, err := sensor.OpenI2C(o.i2cBus)
	if err != nil {
		return fmt.Errorf("init i2c: %w", err)
	}
	defer bus.Close()

	board := &actuator.Board{
		Out: outputs,
		Lines: map[logic.LED]int{
			logic.LEDGreen: o.lineGreen,
			logic.LEDBlue:  o.lineBlue,
			logic.LEDRed:   o.lineRed,
		},
		Tone: buzzer,
	}
	if !o.noDisplay {
		screen, err := display.NewSSD1306(bus)
		if err != nil {
			log.Warnf("display: %v (continuing without display)", err)
		} else {
			defer screen.Close()
			board.Screen = screen
		}
	}

	source, err := newSource(o, bus)
	if err != nil {
		return err
	}

	start := time.Now()
	tracker := status.NewTracker(start, o.statusConfig())

	if o.printState {
		in := source.Next(start)
		tracker.Update(logic.View{Tier: logic.TierActive, OutOfRange: in.OutOfRange, Position: in.Position})
		fmt.Println(string(status.FormatJSON(tracker.Snapshot())))
		return nil
	}

	link, closers, err := newLink(o, start)
	if err != nil {
		return err
	}
	for _, c := range closers {
		defer c.Close()
	}

	var publisher mqtt.Publisher = mqtt.NopPublisher{}
	if o.broker != "" {
		publisher = mqtt.NewRealPublisher(o.broker, o.clientID)
	}
	defer publisher.Close()
	conn, _ := publisher.(mqtt.ConnectionStatus)

	d := &daemon{
		mon:       logic.NewMonitor(o.monitorConfig(), o.tapWindow),
		exec:      actuator.NewExecutor(board),
		source:    source,
		pub:       publisher,
		conn:      conn,
		tracker:   tracker,
		link:      link,
		heartbeat: o.heartbeat,
		idle:      o.idleDelay,
		off:       board.Off,
		now:       time.Now,
		after:     time.After,
	}

	board.Off()
	if err := board.ClearDisplay(); err != nil {
		log.Warnf("display: %v", err)
	}

	buttons, err := gpio.NewRealButtons(o.chip, map[int]gpio.Handler{
		o.lineReset:     d.onReset,
		o.lineEmergency: d.onEmergency,
	})
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer buttons.Close()

	d.publishSystem("STARTUP", "", true)

	log.Printf("started: sensor=%s thresholds=%d/%d/%d broker=%q heartbeat=%v telemetry=%v",
		o.sensor, o.blueAfter, o.redAfter, o.buzzerAfter, o.broker, o.heartbeat, link != nil)

	// ctx cancellation interrupts a blink in progress; sigCh ends the loop.
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctx, d, sigCh)
}

func newSource(o *options, bus i2c.Bus) (sensor.Source, error) {
	switch o.sensor {
	case sensorAccel:
		mpu := sensor.NewMPU6050(bus, o.accelAddr)
		sampler := logic.NewAccelSampler(o.accelThreshold)
		if err := mpu.Configure(); err != nil {
			log.Errorf("accelerometer: %v (movement will never be detected)", err)
			return sensor.NewAccelSource(nil, sampler), nil
		}
		return sensor.NewAccelSource(mpu, sampler), nil
	default:
		joy, err := sensor.NewADSJoystick(bus, o.adcAddr, o.xChan, o.yChan)
		if err != nil {
			return nil, fmt.Errorf("init joystick: %w", err)
		}
		return sensor.NewJoystickSource(joy, logic.NewJoystickSampler(o.deadzone, o.safeMin, o.safeMax)), nil
	}
}

// newLink opens the GPS and LoRa serial ports. It returns a nil Link when
// neither port is configured.
func newLink(o *options, start time.Time) (*telemetry.Link, []io.Closer, error) {
	if o.gpsPort == "" && o.loraPort == "" {
		return nil, nil, nil
	}

	var (
		closers []io.Closer
		gps     telemetry.LineSource
		radio   telemetry.Sender
	)
	if o.gpsPort != "" {
		f, err := telemetry.OpenSerial(o.gpsPort, o.baud)
		if err != nil {
			return nil, nil, fmt.Errorf("init gps: %w", err)
		}
		closers = append(closers, f)
		gps = telemetry.NewGPS(f)
	}
	if o.loraPort != "" {
		f, err := telemetry.OpenSerial(o.loraPort, o.baud)
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
			return nil, nil, fmt.Errorf("init lora: %w", err)
		}
		closers = append(closers, f)
		radio = telemetry.NewRadio(f)
	}
	return telemetry.NewLink(gps, radio, o.telemetryInterval, start), closers, nil
}
