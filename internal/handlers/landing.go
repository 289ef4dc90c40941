package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"salespage/internal/landing"
	"salespage/internal/viewmodel"
	"salespage/pkg/countup"
	"salespage/pkg/submission"
	"salespage/views/pages"
)

type LandingHandler struct {
	store   *landing.Store
	baseURL string
}

// NewLandingHandler serves the page. A non-empty baseURL is rendered as the
// canonical link.
func NewLandingHandler(store *landing.Store, baseURL string) *LandingHandler {
	return &LandingHandler{store: store, baseURL: strings.TrimRight(baseURL, "/")}
}

func (h *LandingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
}

func (h *LandingHandler) home(w http.ResponseWriter, r *http.Request) {
	content := h.store.Content()
	primary := content.PrimaryDeadline()
	canonical := ""
	if h.baseURL != "" {
		canonical = h.baseURL + "/"
	}
	data := viewmodel.LandingPage{
		Title:        content.Title,
		CanonicalURL: canonical,
		Hero: viewmodel.Hero{
			Badge:          content.Hero.Badge,
			Headline:       content.Hero.Headline,
			Highlight:      content.Hero.Highlight,
			HeadlineSuffix: content.Hero.HeadlineSuffix,
			Quote:          content.Hero.Quote,
		},
		Countdown:    buildCountdown(h.store, primary),
		Stats:        buildStats(content, false),
		Steps:        toSteps(content.Steps),
		Testimonials: toTestimonials(content.Testimonials),
		Pricing:      toPricing(content.Pricing),
		Form:         buildForm(content.Form, submission.Snapshot{State: submission.Editing}, submission.NewToken()),
	}
	render(w, r, pages.LandingPage(data))
}

func buildCountdown(store *landing.Store, d landing.Deadline) viewmodel.Countdown {
	remaining, _ := store.Remaining(d.ID)
	return viewmodel.Countdown{
		ID:        d.ID,
		Label:     d.Label,
		Days:      remaining.Days,
		Hours:     remaining.Hours,
		Minutes:   remaining.Minutes,
		Seconds:   remaining.Seconds,
		Urgent:    landing.Urgent(remaining),
		Expired:   remaining.IsZero(),
		StreamURL: "/countdown/" + d.ID + "/stream",
	}
}

// buildStats renders each stat at its start value, or its end value once
// final is set.
func buildStats(content *landing.Content, final bool) viewmodel.StatsSection {
	stats := make([]viewmodel.Stat, 0, len(content.Stats))
	for _, s := range content.Stats {
		cfg := s.Counter()
		value := cfg.Start
		if final {
			value = cfg.End
		}
		stats = append(stats, viewmodel.Stat{
			ID:    s.ID,
			Label: s.Label,
			Text:  countup.Format(value, cfg.Decimals, cfg.Prefix, cfg.Suffix),
			Done:  final,
		})
	}
	return viewmodel.StatsSection{
		LiveURL:   "/stats/live",
		StreamURL: "/stats/stream",
		Stats:     stats,
	}
}

func toSteps(steps []landing.Step) []viewmodel.Step {
	out := make([]viewmodel.Step, 0, len(steps))
	for i, s := range steps {
		out = append(out, viewmodel.Step{
			Number:      i + 1,
			Week:        s.Week,
			Title:       s.Title,
			Description: s.Description,
		})
	}
	return out
}

func toTestimonials(items []landing.Testimonial) []viewmodel.Testimonial {
	out := make([]viewmodel.Testimonial, 0, len(items))
	for _, t := range items {
		out = append(out, viewmodel.Testimonial{
			Author: t.Author,
			Result: t.Result,
			Quote:  t.Quote,
		})
	}
	return out
}

func toPricing(tiers []landing.Tier) []viewmodel.PricingTier {
	out := make([]viewmodel.PricingTier, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, viewmodel.PricingTier{
			Tier:        t.Tier,
			Price:       t.Price,
			Status:      t.Status,
			Slots:       t.Slots,
			Highlighted: t.Highlighted,
			SoldOut:     t.SoldOut,
		})
	}
	return out
}
