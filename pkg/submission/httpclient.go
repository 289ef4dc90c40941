package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrRejected is returned when the endpoint answers without success.
var ErrRejected = errors.New("submission rejected")

// Response is the endpoint's reply body.
type Response struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HTTPSubmitter posts the form as JSON to the submit-form endpoint.
type HTTPSubmitter struct {
	URL    string
	Client *http.Client
}

// NewHTTPSubmitter returns a submitter for url with a bounded client timeout.
func NewHTTPSubmitter(url string) *HTTPSubmitter {
	return &HTTPSubmitter{
		URL:    url,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Submit sends fields and treats any non-2xx status or a body without
// success=true as a failure.
func (s *HTTPSubmitter) Submit(ctx context.Context, fields Fields) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()

	var out Response
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read submission response: %w", err)
	}
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(out.Fields) > 0 {
			return ValidationErrors(out.Fields)
		}
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return fmt.Errorf("%w: decode response: %w", ErrRejected, decodeErr)
	}
	if !out.Success {
		return fmt.Errorf("%w: response did not report success", ErrRejected)
	}
	return nil
}
