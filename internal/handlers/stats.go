package handlers

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"salespage/internal/landing"
	"salespage/internal/telemetry"
	"salespage/pkg/countup"
	"salespage/pkg/realtime"
	"salespage/views/components"
)

type StatsHandler struct {
	store   *landing.Store
	frames  realtime.FrameScheduler
	metrics *telemetry.Metrics
	log     logrus.FieldLogger
}

func NewStatsHandler(store *landing.Store, frames realtime.FrameScheduler, metrics *telemetry.Metrics, log logrus.FieldLogger) *StatsHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StatsHandler{store: store, frames: frames, metrics: metrics, log: log}
}

func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stats/live", h.live)
}

func (h *StatsHandler) RegisterStreamRoutes(r chi.Router) {
	r.Get("/stats/stream", h.stream)
}

// live is requested once the stats block scrolls into view.
func (h *StatsHandler) live(w http.ResponseWriter, r *http.Request) {
	render(w, r, components.StatsLive(buildStats(h.store.Content(), false)))
}

type statFrame struct {
	id    string
	frame countup.Frame
}

// stream runs one animator per stat for this connection. Connecting is the
// visibility signal, so every animator is triggered immediately.
func (h *StatsHandler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := startSSE(w)
	if !ok {
		return
	}
	if h.metrics != nil {
		gauge := h.metrics.StreamClients.WithLabelValues("stats")
		gauge.Inc()
		defer gauge.Dec()
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	stats := h.store.Content().Stats
	frames := make(chan statFrame, 4*len(stats)+1)
	animators := make([]*countup.Animator, 0, len(stats))
	for _, s := range stats {
		id := s.ID
		a := countup.New(s.Counter(), h.frames, func(f countup.Frame) {
			select {
			case frames <- statFrame{id: id, frame: f}:
			case <-ctx.Done():
			}
		})
		animators = append(animators, a)
	}
	defer func() {
		cancel()
		for _, a := range animators {
			a.Stop()
		}
	}()
	for _, a := range animators {
		a.Trigger(true)
	}

	remaining := len(animators)
	for remaining > 0 {
		select {
		case <-ctx.Done():
			h.log.WithField("stats_left", remaining).Debug("stats stream closed early")
			return
		case sf := <-frames:
			writeSSE(w, components.StatEvent(sf.id), templ.EscapeString(sf.frame.Text))
			flusher.Flush()
			if sf.frame.Done {
				remaining--
			}
		}
	}
	writeSSE(w, "done", "")
	flusher.Flush()
}
