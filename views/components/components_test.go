package components

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"salespage/internal/viewmodel"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestCountdownCells(t *testing.T) {
	html := renderString(t, CountdownCells(viewmodel.Countdown{Days: 3, Hours: 12, Minutes: 5, Seconds: 9, Urgent: true}))
	for _, want := range []string{">03<", ">12<", ">05<", ">09<", "countdown-urgent"} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}
}

func TestCountdown_ExpiredDoesNotConnect(t *testing.T) {
	live := renderString(t, Countdown(viewmodel.Countdown{ID: "d", StreamURL: "/countdown/d/stream"}))
	if !strings.Contains(live, `sse-connect="/countdown/d/stream"`) {
		t.Errorf("live countdown should connect: %s", live)
	}
	done := renderString(t, Countdown(viewmodel.Countdown{ID: "d", StreamURL: "/countdown/d/stream", Expired: true}))
	if strings.Contains(done, "sse-connect") {
		t.Errorf("expired countdown should not connect: %s", done)
	}
}

func TestStatsLive(t *testing.T) {
	html := renderString(t, StatsLive(viewmodel.StatsSection{
		StreamURL: "/stats/stream",
		Stats:     []viewmodel.Stat{{ID: "views", Label: "평균 조회수 증가", Text: "0%"}},
	}))
	for _, want := range []string{`sse-connect="/stats/stream"`, `sse-close="done"`, `sse-swap="stat-views"`, "평균 조회수 증가"} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}
}

func TestConsultationForm_ShowsErrors(t *testing.T) {
	html := renderString(t, ConsultationForm(viewmodel.ConsultationForm{
		State: "editing",
		Fields: []viewmodel.FormField{
			{Name: "name", Label: "이름 *", Type: "text", Value: `<b>`, Required: true},
			{Name: "email", Label: "이메일 *", Type: "email", Error: "올바른 이메일 주소를 입력해주세요."},
			{Name: "message", Label: "문의사항", Multiline: true, Value: "안녕하세요"},
		},
		FailureReason: "제출 중 오류가 발생했습니다. 다시 시도해주세요.",
		SubmitLabel:   "상담 신청하기",
	}))
	for _, want := range []string{
		`value="&lt;b&gt;"`,
		`aria-invalid="true"`,
		"올바른 이메일 주소를 입력해주세요.",
		`role="alert"`,
		">안녕하세요</textarea>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}
}

func TestConsultationForm_Submitted(t *testing.T) {
	html := renderString(t, ConsultationForm(viewmodel.ConsultationForm{
		State:        "submitted",
		Fields:       []viewmodel.FormField{{Name: "name", Value: "홍길동"}},
		SuccessTitle: "상담 신청이 완료되었습니다!",
		ResetLabel:   "다시 작성하기",
	}))
	for _, want := range []string{`hx-post="/consultation/reset"`, `type="hidden" name="name" value="홍길동"`, "다시 작성하기"} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}
}

func TestPricingSection_SoldOut(t *testing.T) {
	html := renderString(t, PricingSection([]viewmodel.PricingTier{
		{Tier: "1기", SoldOut: true},
		{Tier: "2기", Highlighted: true},
	}, viewmodel.Countdown{ID: "d"}))
	if !strings.Contains(html, "pricing-sold-out") || !strings.Contains(html, "마감됨") {
		t.Errorf("sold out tier not marked: %s", html)
	}
	if !strings.Contains(html, "pricing-highlighted") {
		t.Errorf("highlighted tier not marked: %s", html)
	}
}

func TestConsultationForm_LockedPolls(t *testing.T) {
	html := renderString(t, ConsultationForm(viewmodel.ConsultationForm{
		State:   "submitting",
		Token:   "tok",
		Locked:  true,
		PollURL: "/consultation/tok",
		Fields:  []viewmodel.FormField{{Name: "name", Type: "text", Value: "홍길동"}},
	}))
	for _, want := range []string{
		`hx-get="/consultation/tok"`,
		`hx-trigger="every 1s"`,
		`name="form_token" value="tok"`,
		"readonly",
		" disabled>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}
	if strings.Contains(html, "hx-post") {
		t.Errorf("polling form should not post: %s", html)
	}
}
