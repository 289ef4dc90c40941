package submission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"salespage/pkg/realtime"
)

func validFields() Fields {
	return Fields{
		Name:    "김민수",
		Phone:   "010-1234-5678",
		Email:   "minsu@example.com",
		Channel: "youtube.com/@minsu",
		Message: "상담 부탁드립니다.",
	}
}

func fill(t *testing.T, m *Machine, f Fields) {
	t.Helper()
	for _, name := range []string{FieldName, FieldPhone, FieldEmail, FieldChannel, FieldMessage} {
		v, _ := f.Get(name)
		if err := m.SetField(name, v); err != nil {
			t.Fatalf("SetField(%s): %v", name, err)
		}
	}
}

// blockingSubmitter holds every call until release receives a result.
type blockingSubmitter struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan error
}

func newBlockingSubmitter() *blockingSubmitter {
	return &blockingSubmitter{
		entered: make(chan struct{}, 10),
		release: make(chan error),
	}
}

func (b *blockingSubmitter) Submit(ctx context.Context, _ Fields) error {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.entered <- struct{}{}
	select {
	case err := <-b.release:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *blockingSubmitter) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func TestMachine_StartsEditing(t *testing.T) {
	m := New(SubmitterFunc(func(context.Context, Fields) error { return nil }))
	if m.State() != Editing {
		t.Errorf("State %v, want editing", m.State())
	}
}

func TestMachine_EmptyNameStaysEditing(t *testing.T) {
	calls := 0
	m := New(SubmitterFunc(func(context.Context, Fields) error {
		calls++
		return nil
	}))
	f := validFields()
	f.Name = "   "
	fill(t, m, f)

	err := m.Submit(context.Background())
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Submit err = %v, want ValidationErrors", err)
	}
	if verrs[FieldName] != MsgNameRequired {
		t.Errorf("name error %q, want %q", verrs[FieldName], MsgNameRequired)
	}
	if m.State() != Editing {
		t.Errorf("State %v, want editing", m.State())
	}
	if calls != 0 || m.Calls() != 0 {
		t.Errorf("submitter called %d times, want 0", calls)
	}
	if snap := m.Snapshot(); snap.Errors[FieldName] == "" {
		t.Error("snapshot should carry the inline field error")
	}
}

func TestMachine_SetFieldClearsFieldError(t *testing.T) {
	m := New(SubmitterFunc(func(context.Context, Fields) error { return nil }))
	_ = m.Submit(context.Background())
	if len(m.Snapshot().Errors) != 3 {
		t.Fatalf("errors %v, want name/phone/email", m.Snapshot().Errors)
	}
	_ = m.SetField(FieldName, "이지은")
	if _, ok := m.Snapshot().Errors[FieldName]; ok {
		t.Error("editing name should clear its error")
	}
	if _, ok := m.Snapshot().Errors[FieldEmail]; !ok {
		t.Error("email error should remain")
	}
}

func TestMachine_UnknownField(t *testing.T) {
	m := New(nil)
	if err := m.SetField("budget", "x"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("err = %v, want ErrUnknownField", err)
	}
}

func TestMachine_SuccessfulSubmit(t *testing.T) {
	var got Fields
	var transitions []string
	m := New(
		SubmitterFunc(func(_ context.Context, f Fields) error {
			got = f
			return nil
		}),
		OnTransition(func(from, to State, _ Snapshot) {
			transitions = append(transitions, from.String()+">"+to.String())
		}),
	)
	f := validFields()
	f.Name = "  김민수  "
	fill(t, m, f)

	if err := m.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if m.State() != Submitted {
		t.Errorf("State %v, want submitted", m.State())
	}
	if got.Name != "김민수" {
		t.Errorf("submitted name %q, want trimmed", got.Name)
	}
	want := []string{"editing>submitting", "submitting>submitted"}
	if len(transitions) != 2 || transitions[0] != want[0] || transitions[1] != want[1] {
		t.Errorf("transitions %v, want %v", transitions, want)
	}
	if err := m.SetField(FieldName, "x"); !errors.Is(err, ErrNotEditable) {
		t.Errorf("SetField after submit err = %v, want ErrNotEditable", err)
	}
	if err := m.Submit(context.Background()); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("Submit after submit err = %v, want ErrAlreadySubmitted", err)
	}
}

func TestMachine_RapidSubmitsMakeOneCall(t *testing.T) {
	sub := newBlockingSubmitter()
	m := New(sub)
	fill(t, m, validFields())

	done := make(chan error, 1)
	go func() { done <- m.Submit(context.Background()) }()
	<-sub.entered

	if m.State() != Submitting {
		t.Fatalf("State %v, want submitting", m.State())
	}
	for i := 0; i < 2; i++ {
		if err := m.Submit(context.Background()); !errors.Is(err, ErrInFlight) {
			t.Errorf("second Submit err = %v, want ErrInFlight", err)
		}
	}
	if err := m.SetField(FieldName, "x"); !errors.Is(err, ErrNotEditable) {
		t.Errorf("SetField while submitting err = %v, want ErrNotEditable", err)
	}

	sub.release <- nil
	if err := <-done; err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Calls() != 1 {
		t.Errorf("external calls %d, want 1", sub.Calls())
	}
	if m.State() != Submitted {
		t.Errorf("State %v, want submitted", m.State())
	}
}

func TestMachine_ConcurrentSubmitsMakeOneCall(t *testing.T) {
	sub := newBlockingSubmitter()
	m := New(sub)
	fill(t, m, validFields())

	var wg sync.WaitGroup
	results := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- m.Submit(context.Background())
		}()
	}
	<-sub.entered
	sub.release <- nil
	wg.Wait()
	close(results)

	inFlight := 0
	for err := range results {
		if errors.Is(err, ErrInFlight) || errors.Is(err, ErrAlreadySubmitted) {
			inFlight++
		}
	}
	if inFlight != 19 {
		t.Errorf("%d submits rejected, want 19", inFlight)
	}
	if sub.Calls() != 1 {
		t.Errorf("external calls %d, want 1", sub.Calls())
	}
}

func TestMachine_FailureThenRetry(t *testing.T) {
	boom := errors.New("sheet unavailable")
	attempts := 0
	m := New(SubmitterFunc(func(context.Context, Fields) error {
		attempts++
		if attempts == 1 {
			return boom
		}
		return nil
	}))
	fill(t, m, validFields())

	if err := m.Submit(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Submit err = %v, want %v", err, boom)
	}
	snap := m.Snapshot()
	if snap.State != Failed {
		t.Fatalf("State %v, want failed", snap.State)
	}
	if snap.Reason != DefaultFailureReason {
		t.Errorf("Reason %q, want default", snap.Reason)
	}
	if !errors.Is(snap.Err, boom) {
		t.Errorf("snapshot Err %v, want %v", snap.Err, boom)
	}

	if err := m.Submit(context.Background()); err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	if m.State() != Submitted {
		t.Errorf("State %v, want submitted", m.State())
	}
	if m.Snapshot().Reason != "" {
		t.Error("reason should clear on retry")
	}
	if attempts != 2 {
		t.Errorf("attempts %d, want 2", attempts)
	}
}

func TestMachine_RetryEntersSubmitting(t *testing.T) {
	sub := newBlockingSubmitter()
	m := New(sub)
	fill(t, m, validFields())

	done := make(chan error, 1)
	go func() { done <- m.Submit(context.Background()) }()
	<-sub.entered
	sub.release <- errors.New("down")
	<-done
	if m.State() != Failed {
		t.Fatalf("State %v, want failed", m.State())
	}

	go func() { done <- m.Submit(context.Background()) }()
	<-sub.entered
	if m.State() != Submitting {
		t.Errorf("State %v, want submitting on retry", m.State())
	}
	sub.release <- nil
	<-done
}

func TestMachine_CustomFailureReason(t *testing.T) {
	m := New(
		SubmitterFunc(func(context.Context, Fields) error { return errors.New("x") }),
		WithFailureReason(func(err error) string { return "later: " + err.Error() }),
	)
	fill(t, m, validFields())
	_ = m.Submit(context.Background())
	if got := m.Snapshot().Reason; got != "later: x" {
		t.Errorf("Reason %q, want %q", got, "later: x")
	}
}

func TestMachine_Reset(t *testing.T) {
	m := New(SubmitterFunc(func(context.Context, Fields) error { return nil }))
	if err := m.Reset(); !errors.Is(err, ErrNotSubmitted) {
		t.Errorf("Reset from editing err = %v, want ErrNotSubmitted", err)
	}
	fill(t, m, validFields())
	_ = m.Submit(context.Background())
	if err := m.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	snap := m.Snapshot()
	if snap.State != Editing {
		t.Errorf("State %v, want editing", snap.State)
	}
	if snap.Fields.Email != "minsu@example.com" {
		t.Errorf("Reset should keep previous values, got %+v", snap.Fields)
	}
}

func TestMachine_MinimumDuration(t *testing.T) {
	clock := realtime.NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	m := New(
		SubmitterFunc(func(context.Context, Fields) error { return nil }),
		WithClock(clock),
		WithMinimumDuration(1500*time.Millisecond),
	)
	fill(t, m, validFields())

	done := make(chan error, 1)
	go func() { done <- m.Submit(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for clock.Pending() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("minimum duration timer was never scheduled")
		}
		time.Sleep(time.Millisecond)
	}
	if m.State() != Submitting {
		t.Errorf("State %v, want submitting during the hold", m.State())
	}
	clock.Advance(1500 * time.Millisecond)
	if err := <-done; err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if m.State() != Submitted {
		t.Errorf("State %v, want submitted", m.State())
	}
}

func TestMachine_MinimumDurationSkippedOnFailure(t *testing.T) {
	clock := realtime.NewManualClock(time.Unix(0, 0))
	m := New(
		SubmitterFunc(func(context.Context, Fields) error { return errors.New("down") }),
		WithClock(clock),
		WithMinimumDuration(time.Hour),
	)
	fill(t, m, validFields())
	_ = m.Submit(context.Background())
	if m.State() != Failed {
		t.Errorf("State %v, want failed", m.State())
	}
	if clock.Pending() != 0 {
		t.Error("failure should not wait for the minimum duration")
	}
}

func TestMachine_ContextCancelFails(t *testing.T) {
	sub := newBlockingSubmitter()
	m := New(sub)
	fill(t, m, validFields())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Submit(ctx) }()
	<-sub.entered
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if m.State() != Failed {
		t.Errorf("State %v, want failed", m.State())
	}
}
