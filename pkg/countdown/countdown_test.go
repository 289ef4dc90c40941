package countdown

import (
	"testing"
	"time"

	"salespage/pkg/realtime"
)

var base = time.Date(2025, 5, 12, 21, 0, 0, 0, time.UTC)

func TestCompute_PastTargetIsZero(t *testing.T) {
	for _, target := range []time.Time{
		base,
		base.Add(-time.Millisecond),
		base.Add(-72 * time.Hour),
		time.Time{},
	} {
		if got := Compute(target, base); !got.IsZero() {
			t.Errorf("Compute(%v) = %+v, want zero", target, got)
		}
	}
}

func TestCompute_Decomposition(t *testing.T) {
	cases := []struct {
		ms   int64
		want TimeRemaining
	}{
		{90061000, TimeRemaining{Days: 1, Hours: 1, Minutes: 1, Seconds: 1}},
		{999, TimeRemaining{}},
		{1000, TimeRemaining{Seconds: 1}},
		{59999, TimeRemaining{Seconds: 59}},
		{3600000, TimeRemaining{Hours: 1}},
		{86399999, TimeRemaining{Hours: 23, Minutes: 59, Seconds: 59}},
		{7 * 86400000, TimeRemaining{Days: 7}},
		{40*86400000 + 5*3600000 + 30*60000 + 15000, TimeRemaining{Days: 40, Hours: 5, Minutes: 30, Seconds: 15}},
	}
	for _, tc := range cases {
		target := base.Add(time.Duration(tc.ms) * time.Millisecond)
		if got := Compute(target, base); got != tc.want {
			t.Errorf("Compute(+%dms) = %+v, want %+v", tc.ms, got, tc.want)
		}
	}
}

func TestEngine_StartEmitsImmediately(t *testing.T) {
	clock := realtime.NewManualClock(base)
	var got []TimeRemaining
	e := New(base.Add(90061*time.Second), clock, func(r TimeRemaining) { got = append(got, r) })

	e.Start()
	defer e.Stop()

	if len(got) != 1 {
		t.Fatalf("got %d emissions before any tick, want 1", len(got))
	}
	want := TimeRemaining{Days: 1, Hours: 1, Minutes: 1, Seconds: 1}
	if got[0] != want {
		t.Errorf("first emission %+v, want %+v", got[0], want)
	}
	if e.Current() != want {
		t.Errorf("Current %+v, want %+v", e.Current(), want)
	}
}

func TestEngine_TicksOncePerSecond(t *testing.T) {
	clock := realtime.NewManualClock(base)
	var got []TimeRemaining
	e := New(base.Add(10*time.Second), clock, func(r TimeRemaining) { got = append(got, r) })
	e.Start()
	defer e.Stop()

	clock.Advance(3 * time.Second)
	if len(got) != 4 {
		t.Fatalf("got %d emissions, want 4", len(got))
	}
	if got[3].Seconds != 7 {
		t.Errorf("after 3s Seconds = %d, want 7", got[3].Seconds)
	}
	if clock.Pending() != 1 {
		t.Errorf("Pending %d, want exactly one outstanding tick", clock.Pending())
	}
}

type lateClock struct {
	*realtime.ManualClock
	lag time.Duration
}

// Now runs behind the scheduled deadline, like a slow tick.
func (c lateClock) Now() time.Time {
	return c.ManualClock.Now().Add(c.lag)
}

func TestEngine_UsesWallClockNotDecrement(t *testing.T) {
	manual := realtime.NewManualClock(base)
	clock := lateClock{ManualClock: manual, lag: 2500 * time.Millisecond}
	var got []TimeRemaining
	e := New(base.Add(time.Minute), clock, func(r TimeRemaining) { got = append(got, r) })
	e.Start()
	defer e.Stop()

	manual.Advance(time.Second)
	last := got[len(got)-1]
	// 60s - 1s - 2.5s lag = 56.5s.
	if last.Seconds != 56 {
		t.Errorf("Seconds = %d, want 56", last.Seconds)
	}
}

func TestEngine_HoldsAtZero(t *testing.T) {
	clock := realtime.NewManualClock(base)
	var got []TimeRemaining
	e := New(base.Add(2*time.Second), clock, func(r TimeRemaining) { got = append(got, r) })
	e.Start()
	defer e.Stop()

	clock.Advance(10 * time.Second)
	if !got[len(got)-1].IsZero() {
		t.Errorf("last emission %+v, want zero", got[len(got)-1])
	}
	if e.Ticking() {
		t.Error("engine should stop scheduling once zero is reached")
	}
	if !e.Running() {
		t.Error("engine should still be active while holding at zero")
	}
	n := len(got)
	clock.Advance(time.Minute)
	if len(got) != n {
		t.Errorf("emitted %d more values after zero", len(got)-n)
	}
}

func TestEngine_PastTargetIsImmediatelyTerminal(t *testing.T) {
	clock := realtime.NewManualClock(base)
	var got []TimeRemaining
	e := New(base.Add(-time.Hour), clock, func(r TimeRemaining) { got = append(got, r) })
	e.Start()
	defer e.Stop()

	if len(got) != 1 || !got[0].IsZero() {
		t.Fatalf("got %+v, want one zero emission", got)
	}
	if clock.Pending() != 0 {
		t.Errorf("Pending %d, want 0", clock.Pending())
	}
}

func TestEngine_StopCancelsTimer(t *testing.T) {
	clock := realtime.NewManualClock(base)
	count := 0
	e := New(base.Add(time.Hour), clock, func(TimeRemaining) { count++ })
	e.Start()
	e.Stop()

	if clock.Pending() != 0 {
		t.Errorf("Pending %d after Stop, want 0", clock.Pending())
	}
	clock.Advance(5 * time.Second)
	if count != 1 {
		t.Errorf("emitted %d times, want 1 (no emission after Stop)", count)
	}
	if e.Running() {
		t.Error("Running should be false after Stop")
	}
}

func TestEngine_RestartAfterStop(t *testing.T) {
	clock := realtime.NewManualClock(base)
	var got []TimeRemaining
	e := New(base.Add(time.Hour), clock, func(r TimeRemaining) { got = append(got, r) })
	e.Start()
	e.Stop()
	clock.Advance(30 * time.Second)
	e.Start()
	defer e.Stop()

	if len(got) != 2 {
		t.Fatalf("got %d emissions, want 2", len(got))
	}
	if got[1].Minutes != 59 || got[1].Seconds != 30 {
		t.Errorf("restart emission %+v, want 59m30s", got[1])
	}
}

func TestEngine_DoubleStartIsNoop(t *testing.T) {
	clock := realtime.NewManualClock(base)
	count := 0
	e := New(base.Add(time.Hour), clock, func(TimeRemaining) { count++ })
	e.Start()
	e.Start()
	defer e.Stop()
	if count != 1 {
		t.Errorf("emitted %d times, want 1", count)
	}
	if clock.Pending() != 1 {
		t.Errorf("Pending %d, want 1", clock.Pending())
	}
}
