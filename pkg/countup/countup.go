// Package countup animates a number from a start value to an end value
// once, the first time it becomes visible.
package countup

import (
	"strconv"
	"sync"
	"time"

	"salespage/pkg/realtime"
)

// DefaultDuration is used when Config.Duration is zero.
const DefaultDuration = 2 * time.Second

// Config describes one counter.
type Config struct {
	Start    float64
	End      float64
	Duration time.Duration
	Decimals int
	Prefix   string
	Suffix   string
}

func (c Config) withDefaults() Config {
	if c.Duration == 0 {
		c.Duration = DefaultDuration
	}
	if c.Decimals < 0 {
		c.Decimals = 0
	}
	return c
}

// Progress is clamp(elapsed/duration, 0, 1).
func Progress(elapsed, duration time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	p := float64(elapsed) / float64(duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Interpolate maps progress onto [start, end]. Progress 1 returns end exactly.
func Interpolate(start, end, progress float64) float64 {
	if progress >= 1 {
		return end
	}
	return start + progress*(end-start)
}

// Format renders value with a fixed number of decimals between prefix and suffix.
func Format(value float64, decimals int, prefix, suffix string) string {
	if decimals < 0 {
		decimals = 0
	}
	return prefix + strconv.FormatFloat(value, 'f', decimals, 64) + suffix
}

// Frame is one emitted step of an animation.
type Frame struct {
	Value    float64
	Progress float64
	Text     string
	Done     bool
}

// Animator runs a single count-up animation on a frame scheduler.
//
// emit runs with the animator's lock held and must not call back into the
// Animator.
type Animator struct {
	cfg    Config
	frames realtime.FrameScheduler
	emit   func(Frame)

	mu          sync.Mutex
	value       float64
	progress    float64
	triggered   bool
	hasAnimated bool
	stopped     bool
	started     bool
	t0          time.Time
	cancel      func()
}

// New builds an animator that waits for Trigger before it runs.
func New(cfg Config, frames realtime.FrameScheduler, emit func(Frame)) *Animator {
	cfg = cfg.withDefaults()
	if frames == nil {
		frames = realtime.NewClockFrames(realtime.SystemClock, realtime.DefaultFrameInterval)
	}
	if emit == nil {
		emit = func(Frame) {}
	}
	return &Animator{
		cfg:    cfg,
		frames: frames,
		emit:   emit,
		value:  cfg.Start,
	}
}

// Config returns the animator's effective configuration.
func (a *Animator) Config() Config {
	return a.cfg
}

// Trigger feeds the visibility signal. The first true value starts the
// animation; every later call, visible or not, is ignored.
func (a *Animator) Trigger(visible bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !visible || a.triggered || a.stopped {
		return false
	}
	a.triggered = true
	a.requestLocked()
	return true
}

// Stop cancels any outstanding frame. A stopped animator never resumes.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// Value returns the current value.
func (a *Animator) Value() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value
}

// Text returns the current value formatted for display.
func (a *Animator) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Format(a.value, a.cfg.Decimals, a.cfg.Prefix, a.cfg.Suffix)
}

// HasAnimated reports whether the animation has completed once.
func (a *Animator) HasAnimated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hasAnimated
}

// Running reports whether a frame is outstanding.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

func (a *Animator) requestLocked() {
	a.cancel = a.frames.RequestFrame(a.step)
}

func (a *Animator) step(ts time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancel = nil
	if a.stopped || a.hasAnimated {
		return
	}
	if !a.started {
		a.started = true
		a.t0 = ts
	}
	p := Progress(ts.Sub(a.t0), a.cfg.Duration)
	// Frame timestamps are expected to be monotonic; never step backwards.
	if p < a.progress {
		p = a.progress
	}
	a.progress = p
	a.value = Interpolate(a.cfg.Start, a.cfg.End, p)
	done := p >= 1
	if done {
		a.hasAnimated = true
	}
	a.emit(Frame{
		Value:    a.value,
		Progress: p,
		Text:     Format(a.value, a.cfg.Decimals, a.cfg.Prefix, a.cfg.Suffix),
		Done:     done,
	})
	if !done {
		a.requestLocked()
	}
}
