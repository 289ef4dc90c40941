package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"salespage/internal/telemetry"
)

// LogSink records leads in the service log only.
type LogSink struct {
	Log logrus.FieldLogger
}

func (s LogSink) Forward(_ context.Context, lead Lead) error {
	s.Log.WithFields(logrus.Fields{
		"lead_id": lead.ID,
		"source":  lead.Source,
		"channel": lead.Channel,
	}).Info("lead received")
	return nil
}

// ErrWebhookStatus is returned for non-2xx webhook replies.
var ErrWebhookStatus = errors.New("webhook returned non-2xx status")

// WebhookSink posts each lead as JSON to a spreadsheet webhook.
type WebhookSink struct {
	URL        string
	Client     *http.Client
	MaxRetries uint64
	Log        logrus.FieldLogger
	Metrics    *telemetry.Metrics

	// newBackOff is swapped in tests to avoid real sleeps.
	newBackOff func() backoff.BackOff
}

// NewWebhookSink builds a sink with a per-attempt timeout.
func NewWebhookSink(url string, timeout time.Duration, maxRetries uint64, log logrus.FieldLogger, metrics *telemetry.Metrics) *WebhookSink {
	return &WebhookSink{
		URL:        url,
		Client:     &http.Client{Timeout: timeout},
		MaxRetries: maxRetries,
		Log:        log,
		Metrics:    metrics,
	}
}

// Forward delivers the lead, retrying transport errors and 5xx replies
// with exponential backoff. 4xx replies are not retried.
func (s *WebhookSink) Forward(ctx context.Context, lead Lead) error {
	ctx, span := telemetry.Tracer().Start(ctx, "leads.webhook.forward")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", lead.ID))

	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("encode lead: %w", err)
	}

	attempt := 0
	op := func() error {
		attempt++
		err := s.post(ctx, body)
		s.observe(err)
		if err != nil {
			s.Log.WithFields(logrus.Fields{
				"lead_id": lead.ID,
				"attempt": attempt,
			}).WithError(err).Warn("webhook delivery failed")
		}
		return err
	}

	err = backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(s.backOff(), s.MaxRetries), ctx))
	span.SetAttributes(attribute.Int("webhook.attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "webhook delivery failed")
		return fmt.Errorf("forward lead %s: %w", lead.ID, err)
	}
	return nil
}

func (s *WebhookSink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	statusErr := fmt.Errorf("%w: %d", ErrWebhookStatus, resp.StatusCode)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return backoff.Permanent(statusErr)
	}
	return statusErr
}

func (s *WebhookSink) backOff() backoff.BackOff {
	if s.newBackOff != nil {
		return s.newBackOff()
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return b
}

func (s *WebhookSink) observe(err error) {
	if s.Metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.Metrics.WebhookAttempts.WithLabelValues(result).Inc()
}
