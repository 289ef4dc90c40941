package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salespage/internal/landing"
	"salespage/internal/telemetry"
	"salespage/pkg/countdown"
	"salespage/views/components"
)

type CountdownHandler struct {
	store   *landing.Store
	metrics *telemetry.Metrics
}

func NewCountdownHandler(store *landing.Store, metrics *telemetry.Metrics) *CountdownHandler {
	return &CountdownHandler{store: store, metrics: metrics}
}

func (h *CountdownHandler) RegisterRoutes(r chi.Router) {
	r.Get("/countdown/{id}", h.fragment)
	r.Get("/api/countdown/{id}", h.countdownJSON)
}

// RegisterStreamRoutes mounts the long-lived SSE route. It is kept apart
// so the router can skip request timeouts for it.
func (h *CountdownHandler) RegisterStreamRoutes(r chi.Router) {
	r.Get("/countdown/{id}/stream", h.stream)
}

func (h *CountdownHandler) fragment(w http.ResponseWriter, r *http.Request) {
	d, ok := h.store.Content().Deadline(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	render(w, r, components.Countdown(buildCountdown(h.store, d)))
}

type countdownResponse struct {
	countdown.TimeRemaining
	ID      string    `json:"id"`
	Target  time.Time `json:"target"`
	Expired bool      `json:"expired"`
	Urgent  bool      `json:"urgent"`
}

func (h *CountdownHandler) countdownJSON(w http.ResponseWriter, r *http.Request) {
	d, ok := h.store.Content().Deadline(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown countdown"})
		return
	}
	remaining, _ := h.store.Remaining(d.ID)
	writeJSON(w, http.StatusOK, countdownResponse{
		TimeRemaining: remaining,
		ID:            d.ID,
		Target:        d.Target.UTC(),
		Expired:       remaining.IsZero(),
		Urgent:        landing.Urgent(remaining),
	})
}

func (h *CountdownHandler) stream(w http.ResponseWriter, r *http.Request) {
	d, ok := h.store.Content().Deadline(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	hub, ok := h.store.Broadcaster(d.ID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	flusher, ok := startSSE(w)
	if !ok {
		return
	}

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)
	if h.metrics != nil {
		gauge := h.metrics.StreamClients.WithLabelValues("countdown")
		gauge.Inc()
		defer gauge.Dec()
	}

	send := func() {
		writeSSE(w, "countdown", renderToString(r, components.CountdownCells(buildCountdown(h.store, d))))
		flusher.Flush()
	}
	send()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-sub:
			if !ok {
				return
			}
			send()
		case <-keepAlive.C:
			writeKeepAlive(w, flusher)
		}
	}
}
