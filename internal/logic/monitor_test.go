package logic

import (
	"sync"
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestMonitor() *Monitor {
	return NewMonitor(DefaultConfig(), DefaultTapWindow)
}

func still(i int) Input {
	return Input{Position: "X:2048 Y:2048", Time: t0.Add(time.Duration(i) * time.Second)}
}

func moved(i int) Input {
	return Input{Moved: true, Position: "X:2500 Y:2048", Time: t0.Add(time.Duration(i) * time.Second)}
}

// tickN runs n stationary ticks and returns the step of the last one.
func tickN(m *Monitor, n int) Step {
	var st Step
	for i := 1; i <= n; i++ {
		st = m.Tick(still(i))
	}
	return st
}

func countKind(st Step, kind ActionKind) int {
	n := 0
	for _, a := range st.Actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

func findAction(st Step, kind ActionKind) (Action, bool) {
	for _, a := range st.Actions {
		if a.Kind == kind {
			return a, true
		}
	}
	return Action{}, false
}

func hasEvent(st Step, typ EventType) bool {
	for _, e := range st.Events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestNewMonitorInitialState(t *testing.T) {
	m := newTestMonitor()
	v := m.View()
	if v.Tier != TierActive {
		t.Errorf("expected ACTIVE, got %s", v.Tier)
	}
	if v.Stationary != 0 {
		t.Errorf("expected count 0, got %d", v.Stationary)
	}
	if v.RedAlert || v.Buzzer || v.Emergency || v.OutOfRange {
		t.Errorf("expected no alerts, got %+v", v)
	}
}

func TestStationaryCountEqualsTicks(t *testing.T) {
	for _, n := range []int{1, 7, 29, 30, 44, 61, 120} {
		m := newTestMonitor()
		tickN(m, n)
		if got := m.View().Stationary; got != n {
			t.Errorf("after %d stationary ticks: expected count %d, got %d", n, n, got)
		}
	}
}

func TestMovementResetsCountFromAnyValue(t *testing.T) {
	for _, n := range []int{0, 1, 30, 45, 60, 90} {
		m := newTestMonitor()
		tickN(m, n)
		m.Tick(moved(n + 1))
		v := m.View()
		if v.Stationary != 0 {
			t.Errorf("after %d ticks + movement: expected count 0, got %d", n, v.Stationary)
		}
		if v.RedAlert || v.Buzzer {
			t.Errorf("after %d ticks + movement: expected flags cleared, got red=%v buzzer=%v", n, v.RedAlert, v.Buzzer)
		}
	}
}

func TestQuietBeforeBlueThreshold(t *testing.T) {
	m := newTestMonitor()
	for i := 1; i < 30; i++ {
		st := m.Tick(still(i))
		for _, a := range st.Actions {
			switch a.Kind {
			case ActionSetLED:
				if a.On {
					t.Fatalf("tick %d: LED %s switched on", i, a.LED)
				}
			case ActionBlink, ActionRender, ActionBuzzerEnable, ActionBuzzerLevel:
				t.Fatalf("tick %d: unexpected action %+v", i, a)
			}
		}
		if len(st.Events) != 0 {
			t.Fatalf("tick %d: unexpected events %+v", i, st.Events)
		}
		if st.Delay != 2000*time.Millisecond {
			t.Fatalf("tick %d: expected 2000ms delay, got %v", i, st.Delay)
		}
	}
}

func TestBlueBlinkExactlyOnce(t *testing.T) {
	m := newTestMonitor()
	blinks := 0
	for i := 1; i <= 44; i++ {
		st := m.Tick(still(i))
		if n := countKind(st, ActionBlink); n > 0 {
			if i != 30 {
				t.Errorf("blink at tick %d, expected only at 30", i)
			}
			blinks += n
			a, _ := findAction(st, ActionBlink)
			if a.LED != LEDBlue || a.Count != 10 || a.Interval != 500*time.Millisecond {
				t.Errorf("unexpected blink action %+v", a)
			}
			if !hasEvent(st, EventBlueWarn) {
				t.Error("expected BLUE_WARN event with blink")
			}
		}
	}
	if blinks != 1 {
		t.Errorf("expected exactly 1 blink sequence, got %d", blinks)
	}
}

func TestBlueBlinkRetriggersAfterReset(t *testing.T) {
	m := newTestMonitor()
	tickN(m, 35)
	m.Reset(t0)

	blinks := 0
	for i := 1; i <= 30; i++ {
		blinks += countKind(m.Tick(still(i)), ActionBlink)
	}
	if blinks != 1 {
		t.Errorf("expected blink after reset-then-recount, got %d", blinks)
	}
}

func TestBlinkIsFollowedByBlueOff(t *testing.T) {
	m := newTestMonitor()
	st := tickN(m, 30)
	for i, a := range st.Actions {
		if a.Kind != ActionBlink {
			continue
		}
		if i+1 >= len(st.Actions) {
			t.Fatal("blink is the last action, expected blue LED off after it")
		}
		next := st.Actions[i+1]
		if next.Kind != ActionSetLED || next.LED != LEDBlue || next.On {
			t.Errorf("expected blue LED off after blink, got %+v", next)
		}
	}
}

func TestRedAlertEveryTickFromThreshold(t *testing.T) {
	m := newTestMonitor()
	tickN(m, 44)
	if m.View().RedAlert {
		t.Fatal("red alert should not be active at 44")
	}

	for i := 45; i <= 59; i++ {
		st := m.Tick(still(i))
		if !m.View().RedAlert {
			t.Fatalf("tick %d: expected red alert", i)
		}
		a, ok := findAction(st, ActionRender)
		if !ok {
			t.Fatalf("tick %d: expected display render", i)
		}
		if a.Title != "ATTENTION" || a.Text != "X:2048 Y:2048" {
			t.Errorf("tick %d: unexpected render %+v", i, a)
		}
		if st.Delay != 500*time.Millisecond {
			t.Errorf("tick %d: expected 500ms delay during red alert, got %v", i, st.Delay)
		}
		if hasEvent(st, EventRedAlert) != (i == 45) {
			t.Errorf("tick %d: RED_ALERT event only expected on entry", i)
		}
	}
}

func TestRedLEDTogglesEachTick(t *testing.T) {
	m := newTestMonitor()
	tickN(m, 44)

	var levels []bool
	for i := 45; i <= 48; i++ {
		st := m.Tick(still(i))
		last := Action{}
		for _, a := range st.Actions {
			if a.Kind == ActionSetLED && a.LED == LEDRed {
				last = a
			}
		}
		levels = append(levels, last.On)
	}
	want := []bool{true, false, true, false}
	for i := range want {
		if levels[i] != want[i] {
			t.Errorf("tick %d: expected red LED %v, got %v", 45+i, want[i], levels[i])
		}
	}
}

func TestBuzzerEnabledAndHeld(t *testing.T) {
	m := newTestMonitor()
	tickN(m, 59)
	if m.View().Buzzer {
		t.Fatal("buzzer should be off at 59")
	}

	st := m.Tick(still(60))
	if !m.View().Buzzer {
		t.Fatal("expected buzzer at 60")
	}
	a, ok := findAction(st, ActionBuzzerEnable)
	if !ok || !a.On {
		t.Fatalf("expected buzzer enable action, got %+v", st.Actions)
	}
	if !hasEvent(st, EventBuzzerAlert) {
		t.Error("expected BUZZER_ALERT event")
	}

	var levels []uint32
	for i := 61; i <= 64; i++ {
		st := m.Tick(still(i))
		if countKind(st, ActionBuzzerEnable) != 0 {
			t.Errorf("tick %d: enable flag must not change while held", i)
		}
		lv, ok := findAction(st, ActionBuzzerLevel)
		if !ok {
			t.Fatalf("tick %d: expected duty toggle", i)
		}
		levels = append(levels, lv.Level)
		if st.Delay != 500*time.Millisecond {
			t.Errorf("tick %d: expected 500ms delay, got %v", i, st.Delay)
		}
	}
	for i := 1; i < len(levels); i++ {
		if levels[i] == levels[i-1] {
			t.Errorf("duty level did not alternate: %v", levels)
		}
	}
}

func TestScenarioFullLadderThenMovement(t *testing.T) {
	m := newTestMonitor()
	tickN(m, 60)
	v := m.View()
	if v.Tier != TierBuzzer || !v.RedAlert || !v.Buzzer {
		t.Fatalf("expected buzzer tier with red alert, got %+v", v)
	}

	st := m.Tick(moved(61))
	v = m.View()
	if v.Stationary != 0 || v.RedAlert || v.Buzzer || v.Tier != TierActive {
		t.Fatalf("expected everything cleared, got %+v", v)
	}
	if a, ok := findAction(st, ActionBuzzerEnable); !ok || a.On {
		t.Error("expected buzzer disabled on movement")
	}
	if _, ok := findAction(st, ActionClearDisplay); !ok {
		t.Error("expected display cleared on movement")
	}
	offs := map[LED]bool{}
	for _, a := range st.Actions {
		if a.Kind == ActionSetLED && !a.On {
			offs[a.LED] = true
		}
	}
	if !offs[LEDBlue] || !offs[LEDRed] {
		t.Errorf("expected blue and red LEDs cleared, got %v", offs)
	}
	if !hasEvent(st, EventMovement) {
		t.Error("expected MOVEMENT event when leaving an alert tier")
	}
}

func TestMovementWhileActiveEmitsNoEvent(t *testing.T) {
	m := newTestMonitor()
	tickN(m, 5)
	st := m.Tick(moved(6))
	if len(st.Events) != 0 {
		t.Errorf("expected no events, got %+v", st.Events)
	}
}

func TestOutOfRangeOverride(t *testing.T) {
	m := newTestMonitor()
	tickN(m, 10)

	st := m.Tick(Input{OutOfRange: true, Position: "X:3500 Y:2048", Time: t0})
	v := m.View()
	if !v.Buzzer || !v.OutOfRange {
		t.Fatalf("expected override with buzzer, got %+v", v)
	}
	if st.Delay != 500*time.Millisecond {
		t.Errorf("expected 500ms delay, got %v", st.Delay)
	}
	if a, ok := findAction(st, ActionBuzzerEnable); !ok || !a.On {
		t.Error("expected buzzer forced on")
	}
	on := map[LED]bool{}
	for _, a := range st.Actions {
		if a.Kind == ActionSetLED {
			on[a.LED] = a.On
		}
	}
	if !on[LEDGreen] || !on[LEDRed] {
		t.Errorf("expected green and red on in first override tick, got %v", on)
	}
	if countKind(st, ActionBlink)+countKind(st, ActionRender) != 0 {
		t.Error("override must skip the ladder")
	}
	if !hasEvent(st, EventOutOfRange) {
		t.Error("expected OUT_OF_RANGE event")
	}

	// Second override tick toggles LEDs and duty, not the enable flag.
	st = m.Tick(Input{OutOfRange: true, Position: "X:3500 Y:2048", Time: t0})
	if countKind(st, ActionBuzzerEnable) != 0 {
		t.Error("buzzer enable must not repeat while already on")
	}
	if lv, ok := findAction(st, ActionBuzzerLevel); !ok || lv.Level != 0 {
		t.Errorf("expected duty toggled off, got %+v", lv)
	}

	// Back in range with count < 60: buzzer handed back off.
	st = m.Tick(still(13))
	v = m.View()
	if v.Buzzer || v.OutOfRange {
		t.Fatalf("expected buzzer off after returning to range, got %+v", v)
	}
	if a, ok := findAction(st, ActionBuzzerEnable); !ok || a.On {
		t.Error("expected buzzer disable action on hand-back")
	}
	if !hasEvent(st, EventInRange) {
		t.Error("expected IN_RANGE event")
	}
	if st.Delay != 2000*time.Millisecond {
		t.Errorf("expected 2000ms delay back in range, got %v", st.Delay)
	}
}

func TestOutOfRangeHandBackKeepsBuzzerAtInactivityTier(t *testing.T) {
	m := newTestMonitor()
	tickN(m, 62)
	m.Tick(Input{OutOfRange: true, Position: "X:3500 Y:2048", Time: t0})

	st := m.Tick(still(64))
	if !m.View().Buzzer {
		t.Fatal("buzzer must stay on when inactivity alone warrants it")
	}
	if a, ok := findAction(st, ActionBuzzerEnable); ok && !a.On {
		t.Error("buzzer must not be disabled on hand-back at count >= 60")
	}
}

func TestOutOfRangeKeepsRedLEDWhenRedAlertActive(t *testing.T) {
	m := newTestMonitor()
	tickN(m, 50)
	m.Tick(Input{OutOfRange: true, Position: "X:100 Y:2048", Time: t0})
	st := m.Tick(still(52))
	red := 0
	for _, a := range st.Actions {
		if a.Kind == ActionSetLED && a.LED == LEDRed {
			red++
		}
	}
	// Only the red-alert toggle; no forced-off on the way back.
	if red != 1 {
		t.Errorf("expected 1 red LED command, got %d", red)
	}
	if !m.View().RedAlert {
		t.Error("red alert should survive the override")
	}
}

func TestResetClearsAndIsIdempotent(t *testing.T) {
	m := newTestMonitor()
	tickN(m, 70)

	st := m.Reset(t0)
	first := m.View()
	if first.Stationary != 0 || first.RedAlert || first.Buzzer || first.Tier != TierActive {
		t.Fatalf("expected cleared state, got %+v", first)
	}
	if a, ok := findAction(st, ActionBuzzerEnable); !ok || a.On {
		t.Error("expected buzzer disabled")
	}
	if _, ok := findAction(st, ActionClearDisplay); !ok {
		t.Error("expected display redraw")
	}
	if !hasEvent(st, EventReset) {
		t.Error("expected RESET event")
	}

	st2 := m.Reset(t0)
	second := m.View()
	first.Counts, second.Counts = EventCounts{}, EventCounts{}
	if first != second {
		t.Errorf("second reset changed state: %+v vs %+v", first, second)
	}
	if len(st.Actions) != len(st2.Actions) {
		t.Errorf("second reset produced different actions: %d vs %d", len(st.Actions), len(st2.Actions))
	}
}

func TestEmergencySkipsLadder(t *testing.T) {
	m := newTestMonitor()
	tickN(m, 40)
	m.PressEmergency(t0)
	res, st := m.PressEmergency(t0.Add(200 * time.Millisecond))
	if res != GestureArmed || !hasEvent(st, EventEmergencyArmed) {
		t.Fatalf("expected arm, got %v %+v", res, st.Events)
	}

	for i := 41; i <= 70; i++ {
		st := m.Tick(still(i))
		if len(st.Actions) != 0 {
			t.Fatalf("tick %d: emergency must skip actuator logic, got %+v", i, st.Actions)
		}
		if !hasEvent(st, EventEmergencyReport) {
			t.Fatalf("tick %d: expected position report", i)
		}
		if st.Delay != time.Second {
			t.Fatalf("tick %d: expected 1s delay, got %v", i, st.Delay)
		}
	}
	v := m.View()
	if v.Stationary != 70 {
		t.Errorf("counting continues during emergency: expected 70, got %d", v.Stationary)
	}
	if v.RedAlert || v.Buzzer {
		t.Errorf("ladder must not engage during emergency, got %+v", v)
	}
	if v.Tier != TierEmergency {
		t.Errorf("expected EMERGENCY tier, got %s", v.Tier)
	}
}

func TestEmergencyMovementStillResets(t *testing.T) {
	m := newTestMonitor()
	tickN(m, 50)
	m.PressEmergency(t0)
	m.PressEmergency(t0.Add(100 * time.Millisecond))

	st := m.Tick(moved(51))
	if m.View().Stationary != 0 {
		t.Error("movement must reset the counter during emergency")
	}
	if _, ok := findAction(st, ActionClearDisplay); !ok {
		t.Error("movement clear runs before the emergency short-circuit")
	}
}

func TestEventCounts(t *testing.T) {
	m := newTestMonitor()
	tickN(m, 60)
	m.Tick(moved(61))
	m.Reset(t0)

	c := m.View().Counts
	want := EventCounts{BlueWarn: 1, RedAlert: 1, BuzzerAlert: 1, Movement: 1, Reset: 1}
	if c != want {
		t.Errorf("expected %+v, got %+v", want, c)
	}
}

func TestConcurrentTickAndButtons(t *testing.T) {
	m := newTestMonitor()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			m.Tick(still(i))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			m.Reset(t0)
			m.PressEmergency(t0.Add(time.Duration(i) * time.Second))
			_ = m.View()
		}
	}()

	wg.Wait()
	if v := m.View(); v.Stationary < 0 {
		t.Errorf("count went negative: %d", v.Stationary)
	}
}
