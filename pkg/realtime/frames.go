package realtime

import (
	"sync"
	"time"
)

// DefaultFrameInterval approximates a 60Hz display refresh.
const DefaultFrameInterval = time.Second / 60

// FrameScheduler requests a single callback on the next frame. The callback
// receives the frame timestamp. The returned cancel func drops the request
// if it has not run yet; calling it more than once is safe.
type FrameScheduler interface {
	RequestFrame(fn func(ts time.Time)) (cancel func())
}

// ClockFrames is a FrameScheduler that emits frames at a fixed interval on a Clock.
type ClockFrames struct {
	clock    Clock
	interval time.Duration
}

// NewClockFrames returns frames spaced interval apart on clock.
// A non-positive interval uses DefaultFrameInterval.
func NewClockFrames(clock Clock, interval time.Duration) *ClockFrames {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &ClockFrames{clock: clock, interval: interval}
}

// FramesPerSecond builds a frame scheduler on the system clock for fps frames per second.
func FramesPerSecond(fps int) *ClockFrames {
	if fps <= 0 {
		return NewClockFrames(SystemClock, DefaultFrameInterval)
	}
	return NewClockFrames(SystemClock, time.Second/time.Duration(fps))
}

// RequestFrame schedules fn for the next frame.
func (f *ClockFrames) RequestFrame(fn func(ts time.Time)) func() {
	var (
		mu        sync.Mutex
		cancelled bool
	)
	timer := f.clock.AfterFunc(f.interval, func() {
		mu.Lock()
		skip := cancelled
		mu.Unlock()
		if skip {
			return
		}
		fn(f.clock.Now())
	})
	return func() {
		mu.Lock()
		cancelled = true
		mu.Unlock()
		timer.Stop()
	}
}
