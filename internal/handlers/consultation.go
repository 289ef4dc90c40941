package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"salespage/internal/landing"
	"salespage/internal/telemetry"
	"salespage/internal/viewmodel"
	"salespage/pkg/submission"
	"salespage/views/components"
)

// formTokenField carries the form session token in every post.
const formTokenField = "form_token"

// ConsultationHandler drives the htmx consultation form. Each rendered form
// carries a token; posts with the same token share one submission.Machine.
type ConsultationHandler struct {
	store       *landing.Store
	submitter   submission.Submitter
	minDuration time.Duration
	sessions    *submission.Sessions
	metrics     *telemetry.Metrics
	log         logrus.FieldLogger
}

func NewConsultationHandler(store *landing.Store, submitter submission.Submitter, minDuration time.Duration, metrics *telemetry.Metrics, log logrus.FieldLogger) *ConsultationHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &ConsultationHandler{
		store:       store,
		submitter:   submitter,
		minDuration: minDuration,
		metrics:     metrics,
		log:         log,
	}
	h.sessions = submission.NewSessions(submission.DefaultSessionTTL, h.newMachine)
	return h
}

func (h *ConsultationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/consultation", h.submit)
	r.Post("/consultation/reset", h.reset)
	r.Get("/consultation/{token}", h.status)
}

func (h *ConsultationHandler) newMachine() *submission.Machine {
	return submission.New(h.submitter,
		submission.WithMinimumDuration(h.minDuration),
		submission.OnTransition(h.observe),
	)
}

func (h *ConsultationHandler) observe(from, to submission.State, snap submission.Snapshot) {
	if h.metrics != nil {
		h.metrics.FormTransitions.WithLabelValues(from.String(), to.String()).Inc()
	}
	h.log.WithFields(logrus.Fields{
		"from": from.String(),
		"to":   to.String(),
	}).Debug("consultation form transition")
}

func (h *ConsultationHandler) session(token string) (*submission.Machine, string, bool) {
	m, token, existing := h.sessions.Get(token)
	if !existing {
		h.log.WithField("sessions", h.sessions.Len()).Debug("consultation session opened")
	}
	return m, token, existing
}

func (h *ConsultationHandler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	m, token, _ := h.session(r.PostFormValue(formTokenField))
	err := m.SetFields(fieldsFromForm(r))
	if err == nil {
		err = m.Submit(r.Context())
	}
	var verrs submission.ValidationErrors
	switch {
	case err == nil, errors.As(err, &verrs):
	case errors.Is(err, submission.ErrNotEditable),
		errors.Is(err, submission.ErrInFlight),
		errors.Is(err, submission.ErrAlreadySubmitted):
		// A repeat post shows the session's current state.
		h.log.WithField("state", m.State().String()).Debug("consultation repost ignored")
	default:
		h.log.WithError(err).Warn("consultation submission failed")
	}
	h.renderForm(w, r, m, token)
}

// reset moves a submitted session back to editing with its previous values.
// An expired session starts over from the posted values.
func (h *ConsultationHandler) reset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	m, token, existing := h.session(r.PostFormValue(formTokenField))
	if !existing {
		_ = m.SetFields(fieldsFromForm(r))
	} else if err := m.Reset(); err != nil {
		h.log.WithField("state", m.State().String()).Debug("consultation reset ignored")
	}
	h.renderForm(w, r, m, token)
}

// status is polled by a form that is still submitting.
func (h *ConsultationHandler) status(w http.ResponseWriter, r *http.Request) {
	m, token, _ := h.session(chi.URLParam(r, "token"))
	h.renderForm(w, r, m, token)
}

func (h *ConsultationHandler) renderForm(w http.ResponseWriter, r *http.Request, m *submission.Machine, token string) {
	render(w, r, components.ConsultationForm(buildForm(h.store.Content().Form, m.Snapshot(), token)))
}

func fieldsFromForm(r *http.Request) submission.Fields {
	return submission.Fields{
		Name:    r.PostFormValue(submission.FieldName),
		Phone:   r.PostFormValue(submission.FieldPhone),
		Email:   r.PostFormValue(submission.FieldEmail),
		Channel: r.PostFormValue(submission.FieldChannel),
		Message: r.PostFormValue(submission.FieldMessage),
	}
}

var formInputs = []struct {
	name      string
	inputType string
	required  bool
	multiline bool
}{
	{submission.FieldName, "text", true, false},
	{submission.FieldPhone, "tel", true, false},
	{submission.FieldEmail, "email", true, false},
	{submission.FieldChannel, "text", false, false},
	{submission.FieldMessage, "", false, true},
}

func buildForm(text landing.FormCopy, snap submission.Snapshot, token string) viewmodel.ConsultationForm {
	fields := make([]viewmodel.FormField, 0, len(formInputs))
	for _, in := range formInputs {
		value, _ := snap.Fields.Get(in.name)
		fields = append(fields, viewmodel.FormField{
			Name:      in.name,
			Label:     text.Labels[in.name],
			Type:      in.inputType,
			Value:     value,
			Error:     snap.Errors[in.name],
			Required:  in.required,
			Multiline: in.multiline,
		})
	}
	form := viewmodel.ConsultationForm{
		Token:           token,
		Heading:         text.Heading,
		Location:        text.Location,
		Directions:      text.Directions,
		State:           snap.State.String(),
		Fields:          fields,
		SubmitLabel:     text.SubmitLabel,
		SubmittingLabel: text.SubmittingLabel,
		SuccessTitle:    text.SuccessTitle,
		SuccessBody:     text.SuccessBody,
		ResetLabel:      text.ResetLabel,
		Locked:          snap.State == submission.Submitting,
	}
	if snap.State == submission.Failed {
		form.FailureReason = snap.Reason
	}
	if form.Locked {
		form.PollURL = "/consultation/" + token
	}
	return form
}
