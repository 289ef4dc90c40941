package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"salespage/pkg/countdown"
	"salespage/pkg/submission"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-in", "90s", "-stats=false", "-name", "정우", "-fps", "60"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.In != 90*time.Second || opts.Stats || opts.Fields.Name != "정우" || opts.FPS != 60 {
		t.Errorf("opts %+v", opts)
	}

	bad := [][]string{
		{"-target", "tomorrow"},
		{"-target", "2025-01-01T00:00:00Z", "-in", "1h"},
		{"-fps", "0"},
		{"-unknown"},
	}
	for _, args := range bad {
		if _, err := parseFlags(args); err == nil {
			t.Errorf("parseFlags(%v) should fail", args)
		}
	}
}

func TestFormatRemaining(t *testing.T) {
	if got := formatRemaining(countdown.TimeRemaining{Days: 9, Hours: 1, Minutes: 2, Seconds: 3}); got != "09일 01:02:03" {
		t.Errorf("got %q", got)
	}
	if got := formatRemaining(countdown.TimeRemaining{Days: 2}); !strings.Contains(got, "마감 임박") {
		t.Errorf("urgent value not marked: %q", got)
	}
	if got := formatRemaining(countdown.TimeRemaining{}); strings.Contains(got, "마감 임박") {
		t.Errorf("expired value marked urgent: %q", got)
	}
}

func TestRun_PastTargetEndsImmediately(t *testing.T) {
	var out bytes.Buffer
	opts := options{Target: "2020-01-01T00:00:00Z", Stats: false, FPS: 30}
	if err := run(context.Background(), opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "00일 00:00:00") {
		t.Errorf("output %q", out.String())
	}
}

func TestRun_SubmitsThroughEndpoint(t *testing.T) {
	var got submission.Fields
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	opts := options{
		Target:    "2020-01-01T00:00:00Z",
		FPS:       30,
		SubmitURL: srv.URL,
		Fields:    submission.Fields{Name: "정우", Phone: "010-1234-0000", Email: "woo@example.com"},
	}
	if err := run(context.Background(), opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got.Email != "woo@example.com" {
		t.Errorf("endpoint got %+v", got)
	}
	for _, want := range []string{"form: editing -> submitting", "form: submitting -> submitted"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q: %s", want, out.String())
		}
	}
}

func TestRun_SubmitShowsValidationErrors(t *testing.T) {
	var out bytes.Buffer
	opts := options{Target: "2020-01-01T00:00:00Z", FPS: 30, SubmitURL: "http://127.0.0.1:1/unused"}
	if err := run(context.Background(), opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), submission.MsgNameRequired) {
		t.Errorf("output %q", out.String())
	}
}

func TestPreviewStats_FinishesAtEnd(t *testing.T) {
	var out bytes.Buffer
	opts := options{Target: "2020-01-01T00:00:00Z", Stats: true, FPS: 120}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := run(ctx, opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "평균 조회수 증가 347%") {
		t.Errorf("output missing final stat value")
	}
}
