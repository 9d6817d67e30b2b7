// Package telemetry reads NMEA sentences from a GPS receiver and relays
// position reports over a send-only LoRa serial radio.
package telemetry

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultInterval is the time between periodic position reports.
const DefaultInterval = 2 * time.Minute

// LineSource yields received GPS lines without blocking.
type LineSource interface {
	ReadLine() (string, bool)
}

// Sender transmits a single message.
type Sender interface {
	Send(msg string) error
}

// Link polls the GPS each tick and reports position over the radio.
// Either side may be nil.
type Link struct {
	mu       sync.Mutex
	gps      LineSource
	radio    Sender
	interval time.Duration
	lastTx   time.Time
	sentence string
	fix      Fix
	hasFix   bool
}

// NewLink creates a Link. The first periodic report is due one interval after start.
func NewLink(gps LineSource, radio Sender, interval time.Duration, start time.Time) *Link {
	return &Link{gps: gps, radio: radio, interval: interval, lastTx: start}
}

// Poll reads at most one GPS line and sends the periodic report when due.
func (l *Link) Poll(now time.Time) {
	var msg string

	l.mu.Lock()
	if l.gps != nil {
		if line, ok := l.gps.ReadLine(); ok {
			l.sentence = line
			if fix, ok := ParseFix(line, now); ok {
				l.fix, l.hasFix = fix, true
			}
		}
	}
	if l.interval > 0 && now.Sub(l.lastTx) >= l.interval {
		msg = fmt.Sprintf("GPS: %s", l.sentence)
		l.lastTx = now
	}
	l.mu.Unlock()

	if msg != "" {
		l.send(msg)
	}
}

// Emergency sends the last GPS sentence as an emergency report.
func (l *Link) Emergency() {
	l.mu.Lock()
	msg := fmt.Sprintf("EMERGENCY: %s", l.sentence)
	l.mu.Unlock()
	l.send(msg)
}

// Fix returns the most recent valid position.
func (l *Link) Fix() (Fix, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fix, l.hasFix
}

// Sentence returns the last line read from the GPS.
func (l *Link) Sentence() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sentence
}

func (l *Link) send(msg string) {
	if l.radio == nil {
		return
	}
	if err := l.radio.Send(msg); err != nil {
		log.Warnf("telemetry: send: %v", err)
		return
	}
	log.Debugf("telemetry: sent %q", msg)
}
