package main

import (
	"context"
	"os"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/inactivity-monitor/internal/actuator"
	"github.com/sweeney/inactivity-monitor/internal/logic"
	"github.com/sweeney/inactivity-monitor/internal/mqtt"
	"github.com/sweeney/inactivity-monitor/internal/sensor"
	"github.com/sweeney/inactivity-monitor/internal/status"
	"github.com/sweeney/inactivity-monitor/internal/telemetry"
)

// daemon ties the monitor to its collaborators. The control loop and the
// button handlers share it; the monitor guards its own state.
type daemon struct {
	// apply is held from computing a Step until its actions have run, so
	// outputs are driven in the same order the monitor changed state.
	// A reset pressed mid-blink waits for the blink to finish.
	apply sync.Mutex

	mon     *logic.Monitor
	exec    *actuator.Executor
	source  sensor.Source
	pub     mqtt.Publisher
	conn    mqtt.ConnectionStatus // may be nil
	tracker *status.Tracker
	link    *telemetry.Link // nil when no GPS/LoRa is configured

	heartbeat time.Duration
	idle      time.Duration // delay before the first tick
	off       func()        // turns every output off at shutdown; may be nil

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

func runLoop(ctx context.Context, d *daemon, sig <-chan os.Signal) error {
	hb := logic.NewHeartbeat(d.now())
	delay := d.idle

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			d.shutdown(signalName(s))
			return nil

		case <-d.after(delay):
		}

		t := d.now()
		in := d.source.Next(t)
		log.Debugf("position: %s", in.Position)

		d.apply.Lock()
		step := d.mon.Tick(in)
		d.exec.Run(ctx, step.Actions)
		d.apply.Unlock()
		d.publish(step.Events)

		if d.link != nil {
			d.link.Poll(t)
			if fix, ok := d.link.Fix(); ok {
				d.tracker.SetGPS(&status.GPSFix{Latitude: fix.Latitude, Longitude: fix.Longitude, At: fix.At})
			}
		}

		d.refresh()

		if hbData := hb.Check(t, d.heartbeat); hbData != nil {
			v := d.mon.View()
			log.Printf("heartbeat: uptime=%v tier=%s stationary=%d movements=%d resets=%d",
				hbData.Uptime, v.Tier, v.Stationary, v.Counts.Movement, v.Counts.Reset)
			d.publishSystem("HEARTBEAT", "", false)
		}

		delay = step.Delay
	}
}

// onReset handles a press of the reset button.
func (d *daemon) onReset(at time.Time) {
	log.Printf("button: reset")
	d.apply.Lock()
	step := d.mon.Reset(at)
	d.exec.Run(context.Background(), step.Actions)
	d.apply.Unlock()
	d.publish(step.Events)
	d.refresh()
}

// onEmergency handles a press of the emergency button.
func (d *daemon) onEmergency(at time.Time) {
	res, step := d.mon.PressEmergency(at)
	switch res {
	case logic.GestureArmed:
		log.Printf("button: emergency armed")
		if d.link != nil {
			d.link.Emergency()
		}
	case logic.GestureDisarmed:
		log.Printf("button: emergency disarmed")
	default:
		log.Debugf("button: emergency tap")
	}
	d.publish(step.Events)
	d.refresh()
}

func (d *daemon) publish(events []logic.Event) {
	for _, event := range events {
		log.Printf("event: %s (tier=%s stationary=%d position=%s)", event.Type, event.Tier, event.Stationary, event.Position)
		if err := d.pub.Publish(event); err != nil {
			// Don't crash on publish failure
			log.Warnf("publish error: %v", err)
		}
	}
}

// refresh copies the monitor view and connection state into the tracker.
func (d *daemon) refresh() {
	d.tracker.Update(d.mon.View())
	if d.conn != nil {
		d.tracker.SetMQTTConnected(d.conn.IsConnected())
	}
}

func (d *daemon) publishSystem(name, reason string, retained bool) {
	d.refresh()
	snap := d.tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      name,
		Reason:     reason,
		Retained:   retained,
		RawPayload: status.FormatStatusEvent(snap, name, reason),
	}
	if err := d.pub.PublishSystem(event); err != nil {
		log.Warnf("failed to publish %s event: %v", name, err)
		return
	}
	log.Printf("published %s event", name)
}

func (d *daemon) shutdown(reason string) {
	if d.off != nil {
		d.off()
	}
	d.publishSystem("SHUTDOWN", reason, true)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
