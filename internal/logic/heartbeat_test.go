package logic

import (
	"testing"
	"time"
)

func TestHeartbeatDisabled(t *testing.T) {
	h := NewHeartbeat(t0)
	if hb := h.Check(t0.Add(time.Hour), 0); hb != nil {
		t.Error("expected nil with interval 0")
	}
	if hb := h.Check(t0.Add(time.Hour), -time.Minute); hb != nil {
		t.Error("expected nil with negative interval")
	}
}

func TestHeartbeatInterval(t *testing.T) {
	h := NewHeartbeat(t0)
	interval := 15 * time.Minute

	if hb := h.Check(t0.Add(14*time.Minute), interval); hb != nil {
		t.Error("expected no heartbeat before interval")
	}

	hb := h.Check(t0.Add(15*time.Minute), interval)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("expected uptime 15m, got %v", hb.Uptime)
	}
	if !hb.Timestamp.Equal(t0.Add(15 * time.Minute)) {
		t.Errorf("unexpected timestamp %v", hb.Timestamp)
	}

	if hb := h.Check(t0.Add(20*time.Minute), interval); hb != nil {
		t.Error("expected interval to restart from last heartbeat")
	}
	if hb := h.Check(t0.Add(30*time.Minute), interval); hb == nil {
		t.Error("expected second heartbeat")
	} else if hb.Uptime != 30*time.Minute {
		t.Errorf("expected uptime 30m, got %v", hb.Uptime)
	}
}
