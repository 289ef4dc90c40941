// Package submission drives the consultation form through its lifecycle:
// editing, a single in-flight call to an external submitter, and the
// resulting success or retryable failure.
package submission

import (
	"context"
	"errors"
	"sync"
	"time"

	"salespage/pkg/realtime"
)

// State is a position in the form lifecycle.
type State int

const (
	Editing State = iota
	Submitting
	Submitted
	Failed
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// DefaultFailureReason is shown when the submitter fails.
const DefaultFailureReason = "제출 중 오류가 발생했습니다. 다시 시도해주세요."

var (
	ErrInFlight         = errors.New("submission already in flight")
	ErrAlreadySubmitted = errors.New("form already submitted")
	ErrNotEditable      = errors.New("form is not editable")
	ErrNotSubmitted     = errors.New("form has not been submitted")
	ErrUnknownField     = errors.New("unknown field")
)

// Submitter is the external collaborator that receives the form.
type Submitter interface {
	Submit(ctx context.Context, fields Fields) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, fields Fields) error

func (f SubmitterFunc) Submit(ctx context.Context, fields Fields) error {
	return f(ctx, fields)
}

// Snapshot is a consistent copy of the machine's state.
type Snapshot struct {
	State  State
	Fields Fields
	Errors ValidationErrors
	Reason string
	Err    error
}

// TransitionFunc observes every state change.
type TransitionFunc func(from, to State, snap Snapshot)

// Option configures a Machine.
type Option func(*Machine)

// WithClock sets the clock used for the minimum submitting duration.
func WithClock(c realtime.Clock) Option {
	return func(m *Machine) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithMinimumDuration keeps a successful submission in Submitting for at
// least d after entry. Failures are reported immediately.
func WithMinimumDuration(d time.Duration) Option {
	return func(m *Machine) {
		m.minDuration = d
	}
}

// WithFailureReason maps a submitter error to the message shown to the user.
func WithFailureReason(fn func(error) string) Option {
	return func(m *Machine) {
		if fn != nil {
			m.reasonFor = fn
		}
	}
}

// OnTransition registers an observer. Observers run after the machine's
// lock is released, in registration order.
func OnTransition(fn TransitionFunc) Option {
	return func(m *Machine) {
		if fn != nil {
			m.observers = append(m.observers, fn)
		}
	}
}

// Machine is the form lifecycle for one user. It is safe for concurrent use;
// only one external call is ever in flight.
type Machine struct {
	submitter   Submitter
	clock       realtime.Clock
	minDuration time.Duration
	reasonFor   func(error) string
	observers   []TransitionFunc

	mu     sync.Mutex
	state  State
	fields Fields
	errs   ValidationErrors
	reason string
	err    error
	calls  int
}

// New returns a machine in Editing with empty fields.
func New(submitter Submitter, opts ...Option) *Machine {
	m := &Machine{
		submitter: submitter,
		clock:     realtime.SystemClock,
		reasonFor: func(error) string { return DefaultFailureReason },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Calls reports how many times the submitter has been invoked.
func (m *Machine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// SetField updates one field. Fields are editable in Editing and Failed;
// editing clears that field's validation message.
func (m *Machine) SetField(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Editing && m.state != Failed {
		return ErrNotEditable
	}
	if err := m.fields.Set(name, value); err != nil {
		return err
	}
	delete(m.errs, name)
	return nil
}

// SetFields replaces every field at once, as a full form post does.
func (m *Machine) SetFields(f Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Editing && m.state != Failed {
		return ErrNotEditable
	}
	m.fields = f
	m.errs = nil
	return nil
}

// Submit validates the fields and, when they pass, makes exactly one call
// to the submitter and waits for it. It returns ErrInFlight without calling
// the submitter if a submission is already running, a ValidationErrors when
// validation fails, or the submitter's error.
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case Submitting:
		m.mu.Unlock()
		return ErrInFlight
	case Submitted:
		m.mu.Unlock()
		return ErrAlreadySubmitted
	}
	from := m.state
	if errs := Validate(m.fields); errs != nil {
		m.state = Editing
		m.errs = errs
		m.reason = ""
		m.err = nil
		snap := m.snapshotLocked()
		m.mu.Unlock()
		m.notify(from, Editing, snap)
		return errs
	}
	m.state = Submitting
	m.errs = nil
	m.reason = ""
	m.err = nil
	m.calls++
	fields := m.fields.Trimmed()
	entered := m.clock.Now()
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(from, Submitting, snap)

	err := m.submitter.Submit(ctx, fields)
	if err == nil {
		m.holdMinimum(ctx, entered)
	}

	m.mu.Lock()
	to := Submitted
	if err != nil {
		to = Failed
		m.reason = m.reasonFor(err)
		m.err = err
	}
	m.state = to
	snap = m.snapshotLocked()
	m.mu.Unlock()
	m.notify(Submitting, to, snap)
	return err
}

// Reset returns a submitted form to Editing, keeping the previous values.
func (m *Machine) Reset() error {
	m.mu.Lock()
	if m.state != Submitted {
		m.mu.Unlock()
		return ErrNotSubmitted
	}
	m.state = Editing
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(Submitted, Editing, snap)
	return nil
}

func (m *Machine) holdMinimum(ctx context.Context, entered time.Time) {
	if m.minDuration <= 0 {
		return
	}
	wait := m.minDuration - m.clock.Now().Sub(entered)
	if wait <= 0 {
		return
	}
	done := make(chan struct{})
	timer := m.clock.AfterFunc(wait, func() { close(done) })
	select {
	case <-done:
	case <-ctx.Done():
		timer.Stop()
	}
}

func (m *Machine) snapshotLocked() Snapshot {
	var errs ValidationErrors
	if len(m.errs) > 0 {
		errs = make(ValidationErrors, len(m.errs))
		for k, v := range m.errs {
			errs[k] = v
		}
	}
	return Snapshot{
		State:  m.state,
		Fields: m.fields,
		Errors: errs,
		Reason: m.reason,
		Err:    m.err,
	}
}

func (m *Machine) notify(from, to State, snap Snapshot) {
	for _, fn := range m.observers {
		fn(from, to, snap)
	}
}
