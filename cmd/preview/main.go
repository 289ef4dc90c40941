// Command preview plays the sales page's live elements in a terminal: the
// countdown, the animated stats, and optionally a real form submission.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"salespage/internal/landing"
	"salespage/pkg/countdown"
	"salespage/pkg/countup"
	"salespage/pkg/realtime"
	"salespage/pkg/submission"
)

type options struct {
	Target      string
	In          time.Duration
	For         time.Duration
	ContentPath string
	Stats       bool
	FPS         int
	SubmitURL   string
	Fields      submission.Fields
}

func parseFlags(args []string) (options, error) {
	var opts options

	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.StringVar(&opts.Target, "target", "", "Countdown deadline (RFC3339)")
	fs.DurationVar(&opts.In, "in", 0, "Countdown deadline relative to now")
	fs.DurationVar(&opts.For, "for", 0, "Stop the countdown after this long (0 runs until the deadline)")
	fs.StringVar(&opts.ContentPath, "content", "", "Page content YAML (default: embedded)")
	fs.BoolVar(&opts.Stats, "stats", true, "Animate the headline stats")
	fs.IntVar(&opts.FPS, "fps", 30, "Frames per second for stat animation")

	fs.StringVar(&opts.SubmitURL, "submit", "", "submit-form endpoint to post a consultation to")
	fs.StringVar(&opts.Fields.Name, "name", "", "Name for the submission")
	fs.StringVar(&opts.Fields.Phone, "phone", "", "Phone for the submission")
	fs.StringVar(&opts.Fields.Email, "email", "", "Email for the submission")
	fs.StringVar(&opts.Fields.Channel, "channel", "", "YouTube channel for the submission")
	fs.StringVar(&opts.Fields.Message, "message", "", "Message for the submission")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.Target != "" {
		if _, err := time.Parse(time.RFC3339, opts.Target); err != nil {
			return options{}, fmt.Errorf("invalid -target: %w", err)
		}
		if opts.In != 0 {
			return options{}, errors.New("use either -target or -in, not both")
		}
	}
	if opts.FPS < 1 || opts.FPS > 120 {
		return options{}, fmt.Errorf("invalid -fps: %d (must be 1-120)", opts.FPS)
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logrus.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		logrus.Fatal(err)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	now := time.Now()
	content, err := landing.LoadContent(opts.ContentPath, now)
	if err != nil {
		return err
	}

	if opts.SubmitURL != "" {
		if err := previewSubmit(ctx, opts, out); err != nil {
			return err
		}
	}
	if opts.Stats && len(content.Stats) > 0 {
		if err := previewStats(ctx, content.Stats, opts.FPS, out); err != nil {
			return err
		}
	}

	deadline := content.PrimaryDeadline()
	target := deadline.Target
	switch {
	case opts.Target != "":
		target, _ = time.Parse(time.RFC3339, opts.Target)
	case opts.In != 0:
		target = now.Add(opts.In)
	}
	return previewCountdown(ctx, deadline.Label, target, opts.For, out)
}

func previewSubmit(ctx context.Context, opts options, out io.Writer) error {
	m := submission.New(submission.NewHTTPSubmitter(opts.SubmitURL),
		submission.OnTransition(func(from, to submission.State, snap submission.Snapshot) {
			fmt.Fprintf(out, "form: %s -> %s\n", from, to)
		}),
	)
	if err := m.SetFields(opts.Fields); err != nil {
		return err
	}
	err := m.Submit(ctx)
	var verrs submission.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		keys := make([]string, 0, len(verrs))
		for k := range verrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s: %s\n", k, verrs[k])
		}
		return nil
	case err != nil:
		snap := m.Snapshot()
		fmt.Fprintf(out, "  %s (%v)\n", snap.Reason, err)
		return nil
	}
	fmt.Fprintln(out, "  상담 신청이 완료되었습니다!")
	return nil
}

func previewStats(ctx context.Context, stats []landing.Stat, fps int, out io.Writer) error {
	frames := realtime.FramesPerSecond(fps)
	type update struct {
		i     int
		frame countup.Frame
	}
	updates := make(chan update, len(stats))
	texts := make([]string, len(stats))
	animators := make([]*countup.Animator, len(stats))
	for i, s := range stats {
		i := i
		texts[i] = countup.Format(s.Start, s.Decimals, s.Prefix, s.Suffix)
		animators[i] = countup.New(s.Counter(), frames, func(f countup.Frame) {
			select {
			case updates <- update{i: i, frame: f}:
			case <-ctx.Done():
			}
		})
	}
	defer func() {
		for _, a := range animators {
			a.Stop()
		}
	}()
	for _, a := range animators {
		a.Trigger(true)
	}

	labels := make([]string, len(stats))
	for i, s := range stats {
		labels[i] = s.Label
	}
	remaining := len(stats)
	for remaining > 0 {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case u := <-updates:
			texts[u.i] = u.frame.Text
			if u.frame.Done {
				remaining--
			}
			fmt.Fprintf(out, "\r%s", statsLine(labels, texts))
		}
	}
	fmt.Fprintln(out)
	return nil
}

func statsLine(labels, texts []string) string {
	parts := make([]string, len(labels))
	for i := range labels {
		parts[i] = labels[i] + " " + texts[i]
	}
	return strings.Join(parts, " | ")
}

func previewCountdown(ctx context.Context, label string, target time.Time, limit time.Duration, out io.Writer) error {
	ticks := make(chan countdown.TimeRemaining, 1)
	engine := countdown.New(target, realtime.SystemClock, func(r countdown.TimeRemaining) {
		// Keep only the newest value if the printer falls behind.
		select {
		case ticks <- r:
		default:
			select {
			case <-ticks:
			default:
			}
			ticks <- r
		}
	})
	engine.Start()
	defer engine.Stop()

	var stopAfter <-chan time.Time
	if limit > 0 {
		timer := time.NewTimer(limit)
		defer timer.Stop()
		stopAfter = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case <-stopAfter:
			fmt.Fprintln(out)
			return nil
		case r := <-ticks:
			fmt.Fprintf(out, "\r%s %s", label, formatRemaining(r))
			if r.IsZero() {
				fmt.Fprintln(out)
				return nil
			}
		}
	}
}

func formatRemaining(r countdown.TimeRemaining) string {
	s := fmt.Sprintf("%02d일 %02d:%02d:%02d", r.Days, r.Hours, r.Minutes, r.Seconds)
	if landing.Urgent(r) {
		s += " (마감 임박)"
	}
	return s
}
