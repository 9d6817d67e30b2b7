package telemetry

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
	log "github.com/sirupsen/logrus"
)

// Fix is a decoded GPS position.
type Fix struct {
	Latitude  float64
	Longitude float64
	Sentence  string // NMEA type the fix came from, "RMC" or "GGA"
	At        time.Time
}

// GPS buffers lines from a serial receiver for non-blocking reads.
type GPS struct {
	lines chan string
}

// NewGPS starts reading r in the background.
func NewGPS(r io.Reader) *GPS {
	g := &GPS{lines: make(chan string, 16)}
	go g.scan(r)
	return g
}

func (g *GPS) scan(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		select {
		case g.lines <- line:
		default:
			// full: drop the oldest line
			select {
			case <-g.lines:
			default:
			}
			g.lines <- line
		}
	}
	if err := sc.Err(); err != nil {
		log.Warnf("telemetry: gps read: %v", err)
	}
}

// ReadLine returns the next buffered line, if any.
func (g *GPS) ReadLine() (string, bool) {
	select {
	case line := <-g.lines:
		return line, true
	default:
		return "", false
	}
}

// ParseFix decodes a position from an RMC or GGA sentence. Sentences
// without a valid fix, and all other types, are rejected.
func ParseFix(line string, at time.Time) (Fix, bool) {
	s, err := nmea.Parse(line)
	if err != nil {
		return Fix{}, false
	}
	switch m := s.(type) {
	case nmea.RMC:
		if m.Validity != nmea.ValidRMC {
			return Fix{}, false
		}
		return Fix{Latitude: m.Latitude, Longitude: m.Longitude, Sentence: nmea.TypeRMC, At: at}, true
	case nmea.GGA:
		if m.FixQuality == nmea.Invalid {
			return Fix{}, false
		}
		return Fix{Latitude: m.Latitude, Longitude: m.Longitude, Sentence: nmea.TypeGGA, At: at}, true
	}
	return Fix{}, false
}
