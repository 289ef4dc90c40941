package submission

import (
	"context"
	"testing"
	"time"
)

func newIdleMachine() *Machine {
	return New(SubmitterFunc(func(context.Context, Fields) error { return nil }))
}

func TestSessions_SameTokenSharesMachine(t *testing.T) {
	sessions := NewSessions(time.Minute, newIdleMachine)
	token := NewToken()

	a, key, existing := sessions.Get(token)
	if existing || key != token {
		t.Fatalf("first Get = %q, %v; want new session under %q", key, existing, token)
	}
	b, _, existing := sessions.Get(token)
	if !existing || a != b {
		t.Error("second Get should return the same machine")
	}
	if sessions.Len() != 1 {
		t.Errorf("Len %d, want 1", sessions.Len())
	}
}

func TestSessions_MalformedTokenGetsNewOne(t *testing.T) {
	sessions := NewSessions(time.Minute, newIdleMachine)
	_, key, existing := sessions.Get("not-a-token")
	if existing || key == "not-a-token" || key == "" {
		t.Errorf("Get = %q, %v; want a fresh token", key, existing)
	}
}

func TestSessions_KeepLifecycleAcrossGets(t *testing.T) {
	calls := 0
	sub := SubmitterFunc(func(context.Context, Fields) error {
		calls++
		return nil
	})
	sessions := NewSessions(time.Minute, func() *Machine { return New(sub) })
	token := NewToken()

	m, _, _ := sessions.Get(token)
	_ = m.SetFields(validFields())
	if err := m.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	again, _, _ := sessions.Get(token)
	if err := again.Submit(context.Background()); err != ErrAlreadySubmitted {
		t.Fatalf("resubmit err = %v, want ErrAlreadySubmitted", err)
	}
	if err := again.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if again.Snapshot().Fields.Email != validFields().Email {
		t.Error("Reset should keep the submitted values")
	}
	if calls != 1 {
		t.Errorf("submitter calls %d, want 1", calls)
	}
}
