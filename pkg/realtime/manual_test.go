package realtime

import (
	"testing"
	"time"
)

func TestManualClock_FiresInDeadlineOrder(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewManualClock(start)
	var order []string
	c.AfterFunc(2*time.Second, func() { order = append(order, "two") })
	c.AfterFunc(time.Second, func() { order = append(order, "one") })

	c.Advance(500 * time.Millisecond)
	if len(order) != 0 {
		t.Fatalf("fired early: %v", order)
	}
	c.Advance(2 * time.Second)
	if len(order) != 2 || order[0] != "one" || order[1] != "two" {
		t.Errorf("order = %v, want [one two]", order)
	}
	if got := c.Now(); !got.Equal(start.Add(2500 * time.Millisecond)) {
		t.Errorf("Now = %v, want %v", got, start.Add(2500*time.Millisecond))
	}
}

func TestManualClock_CallbackSeesItsDeadline(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewManualClock(start)
	var seen time.Time
	c.AfterFunc(time.Second, func() { seen = c.Now() })
	c.Advance(10 * time.Second)
	if !seen.Equal(start.Add(time.Second)) {
		t.Errorf("callback saw %v, want %v", seen, start.Add(time.Second))
	}
}

func TestManualClock_RescheduleDuringAdvance(t *testing.T) {
	c := NewManualClock(time.Unix(0, 0))
	fired := 0
	var tick func()
	tick = func() {
		fired++
		c.AfterFunc(time.Second, tick)
	}
	c.AfterFunc(time.Second, tick)
	c.Advance(5 * time.Second)
	if fired != 5 {
		t.Errorf("fired %d times, want 5", fired)
	}
	if c.Pending() != 1 {
		t.Errorf("Pending %d, want 1", c.Pending())
	}
}

func TestManualClock_Stop(t *testing.T) {
	c := NewManualClock(time.Unix(0, 0))
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })
	if !timer.Stop() {
		t.Error("Stop should report true for a pending timer")
	}
	if timer.Stop() {
		t.Error("second Stop should report false")
	}
	c.Advance(time.Minute)
	if fired {
		t.Error("stopped timer fired")
	}
}

func TestClockFrames_RequestAndCancel(t *testing.T) {
	c := NewManualClock(time.Unix(0, 0))
	frames := NewClockFrames(c, 10*time.Millisecond)

	var got []time.Time
	frames.RequestFrame(func(ts time.Time) { got = append(got, ts) })
	cancel := frames.RequestFrame(func(ts time.Time) { t.Error("cancelled frame ran") })
	cancel()
	cancel()

	c.Advance(10 * time.Millisecond)
	if len(got) != 1 {
		t.Fatalf("got %d frames, want 1", len(got))
	}
	if !got[0].Equal(time.Unix(0, 0).Add(10 * time.Millisecond)) {
		t.Errorf("frame ts %v", got[0])
	}
}

func TestFramesPerSecond(t *testing.T) {
	if f := FramesPerSecond(30); f.interval != time.Second/30 {
		t.Errorf("interval %v, want %v", f.interval, time.Second/30)
	}
	if f := FramesPerSecond(0); f.interval != DefaultFrameInterval {
		t.Errorf("interval %v, want default", f.interval)
	}
}
