package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"salespage/internal/leads"
	"salespage/pkg/submission"
)

// LeadAcceptor takes a validated lead from an inbound channel.
type LeadAcceptor interface {
	Accept(ctx context.Context, fields submission.Fields, source string) (leads.Result, error)
}

// APIHandler serves the JSON submit endpoint and health check.
type APIHandler struct {
	leads LeadAcceptor
	delay time.Duration
	log   logrus.FieldLogger
}

func NewAPIHandler(acceptor LeadAcceptor, delay time.Duration, log logrus.FieldLogger) *APIHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &APIHandler{leads: acceptor, delay: delay, log: log}
}

func (h *APIHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/submit-form", h.submitForm)
	r.Get("/healthz", h.health)
}

const maxBodyBytes = 64 << 10

func (h *APIHandler) submitForm(w http.ResponseWriter, r *http.Request) {
	var fields submission.Fields
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, submission.Response{Error: "Invalid request body"})
		return
	}

	if h.delay > 0 {
		t := time.NewTimer(h.delay)
		select {
		case <-t.C:
		case <-r.Context().Done():
			t.Stop()
			return
		}
	}

	res, err := h.leads.Accept(r.Context(), fields, leads.SourceAPI)
	var verrs submission.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusUnprocessableEntity, submission.Response{
			Error:  "Invalid form data",
			Fields: verrs,
		})
		return
	case err != nil:
		h.log.WithError(err).Error("error processing form submission")
		writeJSON(w, http.StatusInternalServerError, submission.Response{Error: "Form submission failed"})
		return
	}
	h.log.WithFields(logrus.Fields{
		"lead_id":   res.Lead.ID,
		"duplicate": res.Duplicate,
	}).Info("form submission received")
	writeJSON(w, http.StatusOK, submission.Response{Success: true})
}

func (h *APIHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
