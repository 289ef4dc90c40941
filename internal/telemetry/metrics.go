package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lead submission outcomes.
const (
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
)

// Metrics holds the service's collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	LeadSubmissions *prometheus.CounterVec
	LeadForwardTime prometheus.Histogram
	WebhookAttempts *prometheus.CounterVec
	StreamClients   *prometheus.GaugeVec
	FormTransitions *prometheus.CounterVec
}

// NewMetrics registers runtime collectors plus the service metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		LeadSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salespage_lead_submissions_total",
			Help: "Consultation submissions by outcome.",
		}, []string{"outcome"}),
		LeadForwardTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "salespage_lead_forward_seconds",
			Help:    "Time spent forwarding a lead to its sink.",
			Buckets: prometheus.DefBuckets,
		}),
		WebhookAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salespage_webhook_attempts_total",
			Help: "Webhook delivery attempts by result.",
		}, []string{"result"}),
		StreamClients: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "salespage_stream_clients",
			Help: "Connected SSE clients by stream.",
		}, []string{"stream"}),
		FormTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salespage_form_transitions_total",
			Help: "Consultation form state transitions.",
		}, []string{"from", "to"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.LeadSubmissions,
		m.LeadForwardTime,
		m.WebhookAttempts,
		m.StreamClients,
		m.FormTransitions,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
