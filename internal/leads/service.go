package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"salespage/internal/telemetry"
	"salespage/pkg/submission"
)

var (
	// ErrForward wraps any sink failure.
	ErrForward = errors.New("lead forwarding failed")
	// ErrInFlight is returned when the same lead is still being forwarded
	// by another submission after the pending wait.
	ErrInFlight = errors.New("lead submission already in progress")
)

// Defaults for waiting on a pending duplicate.
const (
	DefaultPendingWait = 15 * time.Second
	DefaultPendingPoll = 100 * time.Millisecond
)

// Result describes how a submission was handled.
type Result struct {
	Lead      Lead
	Duplicate bool
}

// Service validates, de-duplicates, and forwards leads.
type Service struct {
	sink    Sink
	dedupe  Deduper
	window  time.Duration
	wait    time.Duration
	poll    time.Duration
	log     logrus.FieldLogger
	metrics *telemetry.Metrics
	now     func() time.Time
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithDeduper suppresses repeat submissions for window.
func WithDeduper(d Deduper, window time.Duration) Option {
	return func(s *Service) {
		s.dedupe = d
		s.window = window
	}
}

// WithPendingWait bounds how long a duplicate waits for the first
// submission's forward to finish, checking every poll.
func WithPendingWait(wait, poll time.Duration) Option {
	return func(s *Service) {
		if wait > 0 {
			s.wait = wait
		}
		if poll > 0 {
			s.poll = poll
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics records outcomes on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source used for ReceivedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService forwards accepted leads to sink.
func NewService(sink Sink, opts ...Option) *Service {
	s := &Service{
		sink:  sink,
		log:   logrus.StandardLogger(),
		wait:  DefaultPendingWait,
		poll:  DefaultPendingPoll,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit accepts a lead from the consultation form. It satisfies
// submission.Submitter.
func (s *Service) Submit(ctx context.Context, fields submission.Fields) error {
	_, err := s.Accept(ctx, fields, SourceForm)
	return err
}

// Accept validates fields and forwards them once. A submission matching
// one accepted within the dedupe window succeeds without being forwarded
// again. A match that is still being forwarded waits for that outcome:
// success makes it a duplicate, failure lets it forward itself. Validation
// failures return submission.ValidationErrors.
func (s *Service) Accept(ctx context.Context, fields submission.Fields, source string) (Result, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "leads.accept")
	defer span.End()
	span.SetAttributes(attribute.String("lead.source", source))

	if errs := submission.Validate(fields); errs != nil {
		s.count(telemetry.OutcomeInvalid)
		span.SetStatus(codes.Error, "invalid lead")
		return Result{}, errs
	}
	fields = fields.Trimmed()
	lead := Lead{
		ID:         s.newID(),
		ReceivedAt: s.now().UTC(),
		Source:     source,
		Name:       fields.Name,
		Phone:      fields.Phone,
		Email:      fields.Email,
		Channel:    fields.Channel,
		Message:    fields.Message,
	}
	span.SetAttributes(attribute.String("lead.id", lead.ID))
	log := s.log.WithFields(logrus.Fields{"lead_id": lead.ID, "source": source})

	key := ""
	if s.dedupe != nil && s.window > 0 {
		key = DedupeKey(fields)
		state, err := s.claim(ctx, key)
		switch {
		case errors.Is(err, ErrInFlight):
			log.WithError(err).Warn("duplicate lead still in flight")
			s.count(telemetry.OutcomeFailed)
			span.SetStatus(codes.Error, "duplicate in flight")
			return Result{Lead: lead}, err
		case err != nil:
			// Fail open: forward without holding a claim.
			log.WithError(err).Warn("dedupe claim failed")
			key = ""
		case state == ClaimDone:
			log.Info("duplicate lead suppressed")
			s.count(telemetry.OutcomeDuplicate)
			span.SetAttributes(attribute.Bool("lead.duplicate", true))
			return Result{Lead: lead, Duplicate: true}, nil
		}
	}

	start := time.Now()
	err := s.sink.Forward(ctx, lead)
	if s.metrics != nil {
		s.metrics.LeadForwardTime.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if key != "" {
			if rerr := s.dedupe.Release(context.WithoutCancel(ctx), key); rerr != nil {
				log.WithError(rerr).Warn("dedupe release failed")
			}
		}
		log.WithError(err).Error("lead forwarding failed")
		s.count(telemetry.OutcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "forward failed")
		return Result{Lead: lead}, fmt.Errorf("%w: %w", ErrForward, err)
	}

	if key != "" {
		if cerr := s.dedupe.Complete(context.WithoutCancel(ctx), key, s.window); cerr != nil {
			log.WithError(cerr).Warn("dedupe complete failed")
		}
	}
	log.Info("lead accepted")
	s.count(telemetry.OutcomeAccepted)
	return Result{Lead: lead}, nil
}

// claim takes the dedupe key, waiting while another submission holds it
// as pending.
func (s *Service) claim(ctx context.Context, key string) (ClaimState, error) {
	deadline := time.NewTimer(s.wait)
	defer deadline.Stop()
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		state, err := s.dedupe.Claim(ctx, key, s.window)
		if err != nil || state != ClaimPending {
			return state, err
		}
		select {
		case <-ctx.Done():
			return ClaimPending, fmt.Errorf("%w: %w", ErrInFlight, ctx.Err())
		case <-deadline.C:
			return ClaimPending, ErrInFlight
		case <-ticker.C:
		}
	}
}

func (s *Service) count(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.LeadSubmissions.WithLabelValues(outcome).Inc()
}
