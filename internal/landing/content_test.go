package landing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"salespage/pkg/countup"
)

func TestDefaultContent(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c, err := DefaultContent(now)
	if err != nil {
		t.Fatalf("DefaultContent: %v", err)
	}
	d := c.PrimaryDeadline()
	if want := now.AddDate(0, 0, 7); !d.Target.Equal(want) {
		t.Errorf("deadline target %v, want %v", d.Target, want)
	}
	if len(c.Steps) != 6 {
		t.Errorf("steps %d, want 6", len(c.Steps))
	}
	if len(c.Pricing) != 3 {
		t.Fatalf("pricing tiers %d, want 3", len(c.Pricing))
	}
	if !c.Pricing[0].SoldOut || !c.Pricing[1].Highlighted {
		t.Errorf("unexpected tier flags: %+v", c.Pricing)
	}
	ctr, ok := c.Stat("ctr")
	if !ok {
		t.Fatal("missing ctr stat")
	}
	cfg := ctr.Counter()
	if cfg.End != 12.8 || cfg.Decimals != 1 || cfg.Suffix != "%" || cfg.Duration != 2500*time.Millisecond {
		t.Errorf("ctr counter %+v", cfg)
	}
}

func TestParse_AbsoluteDeadlineWins(t *testing.T) {
	data := []byte(`
deadlines:
  - id: launch
    at: "2025-06-01T00:00:00+09:00"
    in_days: 3
stats:
  - label: no id
    end: 10
`)
	c, err := Parse(data, time.Now())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := time.Date(2025, 5, 31, 15, 0, 0, 0, time.UTC)
	if !c.Deadlines[0].Target.Equal(want) {
		t.Errorf("target %v, want %v", c.Deadlines[0].Target, want)
	}
	if c.Stats[0].ID != "stat-1" {
		t.Errorf("stat id %q, want stat-1", c.Stats[0].ID)
	}
	if c.Stats[0].Duration != countup.DefaultDuration {
		t.Errorf("duration %v, want default", c.Stats[0].Duration)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"no deadlines", "title: x\n", ErrNoDeadlines},
		{"unset", "deadlines:\n  - id: a\n", ErrDeadlineUnset},
		{"duplicate", "deadlines:\n  - id: a\n    in_days: 1\n  - id: a\n    in_days: 2\n", ErrDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), time.Now())
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Parse([]byte("deadlines: [\n"), time.Now()); err == nil {
		t.Error("malformed yaml should fail")
	}
	if _, err := Parse([]byte("deadlines:\n  - id: a\n    at: tomorrow\n"), time.Now()); err == nil {
		t.Error("non-RFC3339 at should fail")
	}
}

func TestLoadContent_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.yaml")
	if err := os.WriteFile(path, []byte("title: 테스트\ndeadlines:\n  - id: a\n    in_days: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadContent(path, time.Now())
	if err != nil {
		t.Fatalf("LoadContent: %v", err)
	}
	if c.Title != "테스트" {
		t.Errorf("title %q", c.Title)
	}
	if _, err := LoadContent(filepath.Join(t.TempDir(), "missing.yaml"), time.Now()); err == nil {
		t.Error("missing file should fail")
	}
}

func TestOverrideTarget(t *testing.T) {
	c, err := DefaultContent(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	target := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c.OverrideTarget(target)
	d, ok := c.Deadline("discount")
	if !ok || !d.Target.Equal(target) {
		t.Errorf("deadline %+v, want target %v", d, target)
	}
}
