package submission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSubmitter_Success(t *testing.T) {
	var got Fields
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL)
	if err := s.Submit(context.Background(), validFields()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.Email != "minsu@example.com" {
		t.Errorf("server got %+v", got)
	}
}

func TestHTTPSubmitter_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Form submission failed"}`))
	}))
	defer srv.Close()

	err := NewHTTPSubmitter(srv.URL).Submit(context.Background(), validFields())
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
}

func TestHTTPSubmitter_ValidationReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"invalid","fields":{"email":"bad"}}`))
	}))
	defer srv.Close()

	err := NewHTTPSubmitter(srv.URL).Submit(context.Background(), validFields())
	var verrs ValidationErrors
	if !errors.As(err, &verrs) || verrs[FieldEmail] != "bad" {
		t.Fatalf("err = %v, want ValidationErrors with email", err)
	}
}

func TestHTTPSubmitter_MissingSuccessFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := NewHTTPSubmitter(srv.URL).Submit(context.Background(), validFields())
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
}

func TestHTTPSubmitter_NonJSONReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>proxy page</html>`))
	}))
	defer srv.Close()

	err := NewHTTPSubmitter(srv.URL).Submit(context.Background(), validFields())
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Errorf("err = %v, want the decode error wrapped", err)
	}
}

func TestHTTPSubmitter_DrivesMachine(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	m := New(NewHTTPSubmitter(srv.URL))
	fill(t, m, validFields())
	_ = m.Submit(context.Background())
	if m.State() != Failed {
		t.Fatalf("State %v, want failed", m.State())
	}
	if err := m.Submit(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if m.State() != Submitted || calls != 2 {
		t.Errorf("State %v calls %d, want submitted after 2 calls", m.State(), calls)
	}
}
