// Package countdown decomposes the time left until a fixed deadline and
// re-emits it once per second until the deadline passes.
package countdown

import (
	"sync"
	"time"

	"salespage/pkg/realtime"
)

// TickInterval is the cadence at which a running Engine recomputes.
const TickInterval = time.Second

const (
	msPerSecond = int64(time.Second / time.Millisecond)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// TimeRemaining is the days/hours/minutes/seconds left until a target.
type TimeRemaining struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// IsZero reports whether the countdown has run out.
func (r TimeRemaining) IsZero() bool {
	return r == TimeRemaining{}
}

// Compute returns the time left from now until target. A target at or
// before now yields the zero value.
func Compute(target, now time.Time) TimeRemaining {
	diff := target.Sub(now).Milliseconds()
	if diff <= 0 {
		return TimeRemaining{}
	}
	return TimeRemaining{
		Days:    int(diff / msPerDay),
		Hours:   int((diff / msPerHour) % 24),
		Minutes: int((diff / msPerMinute) % 60),
		Seconds: int((diff / msPerSecond) % 60),
	}
}

// Engine recomputes TimeRemaining for a fixed target on every tick and
// hands each value to its emit func.
//
// emit runs with the engine's lock held, so it must not call back into
// the Engine. After Stop returns, emit is never called again until the
// next Start.
type Engine struct {
	target time.Time
	clock  realtime.Clock
	emit   func(TimeRemaining)

	mu      sync.Mutex
	active  bool
	gen     uint64
	timer   realtime.Timer
	current TimeRemaining
}

// New builds an idle engine for target. A nil clock uses the system clock.
func New(target time.Time, clock realtime.Clock, emit func(TimeRemaining)) *Engine {
	if clock == nil {
		clock = realtime.SystemClock
	}
	if emit == nil {
		emit = func(TimeRemaining) {}
	}
	return &Engine{
		target:  target,
		clock:   clock,
		emit:    emit,
		current: Compute(target, clock.Now()),
	}
}

// Target returns the deadline the engine counts down to.
func (e *Engine) Target() time.Time {
	return e.target
}

// Start emits the current value immediately and schedules the next tick.
// Starting a running engine is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		return
	}
	e.active = true
	e.gen++
	e.tickLocked(e.gen)
}

// Stop cancels the outstanding tick.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return
	}
	e.active = false
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// Running reports whether the engine is between Start and Stop.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Ticking reports whether a tick is scheduled. It turns false once the
// countdown reaches zero.
func (e *Engine) Ticking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timer != nil
}

// Current returns the last computed value.
func (e *Engine) Current() TimeRemaining {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *Engine) tickLocked(gen uint64) {
	e.timer = nil
	e.current = Compute(e.target, e.clock.Now())
	e.emit(e.current)
	if e.current.IsZero() {
		return
	}
	e.timer = e.clock.AfterFunc(TickInterval, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		// A timer that fired concurrently with Stop must not emit.
		if !e.active || e.gen != gen {
			return
		}
		e.tickLocked(gen)
	})
}
