package telemetry

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"
)

const (
	rmcValid   = "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A"
	rmcVoid    = "$GPRMC,123519,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*7D"
	ggaFix     = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"
	ggaNoFix   = "$GPGGA,123519,4807.038,N,01131.000,E,0,00,,,M,,M,,*52"
	gsvNoPos   = "$GPGSV,1,1,00*79"
	wantLat    = 48.1173
	wantLon    = 11.516666
	coordDelta = 1e-4
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestParseFix(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		ok       bool
		sentence string
	}{
		{"valid RMC", rmcValid, true, "RMC"},
		{"void RMC", rmcVoid, false, ""},
		{"GGA with fix", ggaFix, true, "GGA"},
		{"GGA without fix", ggaNoFix, false, ""},
		{"other type", gsvNoPos, false, ""},
		{"bad checksum", strings.Replace(rmcValid, "*6A", "*00", 1), false, ""},
		{"garbage", "hello", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix, ok := ParseFix(tt.line, t0)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if fix.Sentence != tt.sentence {
				t.Errorf("sentence = %q, want %q", fix.Sentence, tt.sentence)
			}
			if math.Abs(fix.Latitude-wantLat) > coordDelta || math.Abs(fix.Longitude-wantLon) > coordDelta {
				t.Errorf("unexpected position %v,%v", fix.Latitude, fix.Longitude)
			}
			if !fix.At.Equal(t0) {
				t.Errorf("unexpected time %v", fix.At)
			}
		})
	}
}

func TestLinkPeriodicReport(t *testing.T) {
	gps := &FakeLines{Lines: []string{rmcValid}}
	radio := &FakeRadio{}
	l := NewLink(gps, radio, 2*time.Minute, t0)

	l.Poll(t0.Add(time.Second))
	if len(radio.Messages()) != 0 {
		t.Fatalf("no report expected before the interval, got %v", radio.Messages())
	}

	l.Poll(t0.Add(2 * time.Minute))
	msgs := radio.Messages()
	if len(msgs) != 1 || msgs[0] != "GPS: "+rmcValid {
		t.Fatalf("unexpected messages %v", msgs)
	}

	// next report is due one interval after the last one
	l.Poll(t0.Add(3 * time.Minute))
	if len(radio.Messages()) != 1 {
		t.Error("report sent too early")
	}
	l.Poll(t0.Add(4 * time.Minute))
	if len(radio.Messages()) != 2 {
		t.Error("expected second report")
	}
}

func TestLinkKeepsLastSentenceAndFix(t *testing.T) {
	gps := &FakeLines{Lines: []string{ggaFix, ggaNoFix}}
	l := NewLink(gps, nil, 0, t0)

	l.Poll(t0)
	l.Poll(t0.Add(time.Second))
	l.Poll(t0.Add(2 * time.Second)) // no line available

	if l.Sentence() != ggaNoFix {
		t.Errorf("expected last sentence kept, got %q", l.Sentence())
	}
	fix, ok := l.Fix()
	if !ok {
		t.Fatal("expected a fix")
	}
	if fix.Sentence != "GGA" || !fix.At.Equal(t0) {
		t.Errorf("expected the earlier valid fix kept, got %+v", fix)
	}
}

func TestLinkEmergency(t *testing.T) {
	gps := &FakeLines{Lines: []string{rmcValid}}
	radio := &FakeRadio{}
	l := NewLink(gps, radio, time.Hour, t0)
	l.Poll(t0)

	l.Emergency()

	msgs := radio.Messages()
	if len(msgs) != 1 || msgs[0] != "EMERGENCY: "+rmcValid {
		t.Errorf("unexpected messages %v", msgs)
	}
}

func TestLinkEmergencyWithoutGPS(t *testing.T) {
	radio := &FakeRadio{}
	l := NewLink(nil, radio, time.Hour, t0)
	l.Emergency()
	if msgs := radio.Messages(); len(msgs) != 1 || msgs[0] != "EMERGENCY: " {
		t.Errorf("unexpected messages %v", msgs)
	}
}

func TestLinkSendErrorDoesNotPanic(t *testing.T) {
	radio := &FakeRadio{SendError: errors.New("uart gone")}
	l := NewLink(nil, radio, time.Minute, t0)
	l.Poll(t0.Add(time.Minute))
	l.Emergency()
}

func TestRadioSendAppendsNewline(t *testing.T) {
	var buf bytes.Buffer
	r := NewRadio(&buf)
	r.Send("GPS: x")
	r.Send("EMERGENCY: y")
	if got := buf.String(); got != "GPS: x\nEMERGENCY: y\n" {
		t.Errorf("unexpected output %q", got)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestRadioSendError(t *testing.T) {
	r := NewRadio(failWriter{})
	if err := r.Send("x"); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("expected wrapped write error, got %v", err)
	}
}

func TestGPSReadLine(t *testing.T) {
	pr, pw := io.Pipe()
	g := NewGPS(pr)

	if _, ok := g.ReadLine(); ok {
		t.Fatal("expected no line before data arrives")
	}

	go func() {
		io.WriteString(pw, "\r\n"+rmcValid+"\r\n")
		pw.Close()
	}()

	deadline := time.After(time.Second)
	for {
		if line, ok := g.ReadLine(); ok {
			if line != rmcValid {
				t.Errorf("unexpected line %q", line)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("line never arrived")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestGPSDropsOldestWhenFull(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("line")
		sb.WriteByte(byte('a' + i))
		sb.WriteString("\n")
	}
	g := &GPS{lines: make(chan string, 16)}
	g.scan(strings.NewReader(sb.String()))

	first, ok := g.ReadLine()
	if !ok || first != "linee" {
		t.Errorf("expected oldest four lines dropped, first = %q", first)
	}
}
