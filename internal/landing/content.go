// Package landing holds the sales page content and the live countdowns
// that back it.
package landing

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"salespage/pkg/countup"
)

//go:embed content/*.yaml
var contentFS embed.FS

const defaultContentFile = "content/landing.yaml"

var (
	ErrNoDeadlines   = errors.New("content has no deadlines")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrDeadlineUnset = errors.New("deadline needs at or in_days")
)

// Content is everything rendered on the landing page.
type Content struct {
	Title        string        `yaml:"title"`
	Hero         Hero          `yaml:"hero"`
	Deadlines    []Deadline    `yaml:"deadlines"`
	Stats        []Stat        `yaml:"stats"`
	Steps        []Step        `yaml:"steps"`
	Testimonials []Testimonial `yaml:"testimonials"`
	Pricing      []Tier        `yaml:"pricing"`
	Form         FormCopy      `yaml:"form"`
}

type Hero struct {
	Badge          string `yaml:"badge"`
	Headline       string `yaml:"headline"`
	Highlight      string `yaml:"highlight"`
	HeadlineSuffix string `yaml:"headline_suffix"`
	Quote          string `yaml:"quote"`
}

// Deadline is a countdown target. At wins over InDays; InDays is measured
// from the moment the content is loaded.
type Deadline struct {
	ID     string `yaml:"id"`
	Label  string `yaml:"label"`
	At     string `yaml:"at"`
	InDays int    `yaml:"in_days"`

	Target time.Time `yaml:"-"`
}

// Stat is an animated headline number.
type Stat struct {
	ID       string        `yaml:"id"`
	Label    string        `yaml:"label"`
	Start    float64       `yaml:"start"`
	End      float64       `yaml:"end"`
	Decimals int           `yaml:"decimals"`
	Prefix   string        `yaml:"prefix"`
	Suffix   string        `yaml:"suffix"`
	Duration time.Duration `yaml:"duration"`
}

// Counter returns the animation settings for the stat.
func (s Stat) Counter() countup.Config {
	return countup.Config{
		Start:    s.Start,
		End:      s.End,
		Duration: s.Duration,
		Decimals: s.Decimals,
		Prefix:   s.Prefix,
		Suffix:   s.Suffix,
	}
}

// Step is one week of the consulting process.
type Step struct {
	Week        string `yaml:"week"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type Testimonial struct {
	Author string `yaml:"author"`
	Result string `yaml:"result"`
	Quote  string `yaml:"quote"`
}

// Tier is a pricing cohort.
type Tier struct {
	Tier        string `yaml:"tier"`
	Price       string `yaml:"price"`
	Status      string `yaml:"status"`
	Slots       string `yaml:"slots"`
	Highlighted bool   `yaml:"highlighted"`
	SoldOut     bool   `yaml:"sold_out"`
}

// FormCopy is the text around the consultation form.
type FormCopy struct {
	Heading         string            `yaml:"heading"`
	Location        string            `yaml:"location"`
	Directions      string            `yaml:"directions"`
	SubmitLabel     string            `yaml:"submit_label"`
	SubmittingLabel string            `yaml:"submitting_label"`
	SuccessTitle    string            `yaml:"success_title"`
	SuccessBody     string            `yaml:"success_body"`
	ResetLabel      string            `yaml:"reset_label"`
	Labels          map[string]string `yaml:"labels"`
}

// DefaultContent loads the embedded page content, resolving relative
// deadlines against now.
func DefaultContent(now time.Time) (*Content, error) {
	b, err := contentFS.ReadFile(defaultContentFile)
	if err != nil {
		return nil, err
	}
	return Parse(b, now)
}

// LoadContent reads content from path, or the embedded default when path is empty.
func LoadContent(path string, now time.Time) (*Content, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultContent(now)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", path, err)
	}
	return Parse(b, now)
}

// Parse decodes YAML content and resolves deadlines against now.
func Parse(data []byte, now time.Time) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if err := c.resolve(now); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Content) resolve(now time.Time) error {
	if len(c.Deadlines) == 0 {
		return ErrNoDeadlines
	}
	seen := make(map[string]bool, len(c.Deadlines))
	for i := range c.Deadlines {
		d := &c.Deadlines[i]
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			return fmt.Errorf("deadline %d: missing id", i)
		}
		if seen[d.ID] {
			return fmt.Errorf("deadline %q: %w", d.ID, ErrDuplicateID)
		}
		seen[d.ID] = true
		switch {
		case d.At != "":
			t, err := time.Parse(time.RFC3339, d.At)
			if err != nil {
				return fmt.Errorf("deadline %q: %w", d.ID, err)
			}
			d.Target = t
		case d.InDays > 0:
			d.Target = now.AddDate(0, 0, d.InDays)
		default:
			return fmt.Errorf("deadline %q: %w", d.ID, ErrDeadlineUnset)
		}
	}
	statIDs := make(map[string]bool, len(c.Stats))
	for i := range c.Stats {
		s := &c.Stats[i]
		if s.ID == "" {
			s.ID = fmt.Sprintf("stat-%d", i+1)
		}
		if statIDs[s.ID] {
			return fmt.Errorf("stat %q: %w", s.ID, ErrDuplicateID)
		}
		statIDs[s.ID] = true
		if s.Duration <= 0 {
			s.Duration = countup.DefaultDuration
		}
	}
	return nil
}

// OverrideTarget pins every deadline to t.
func (c *Content) OverrideTarget(t time.Time) {
	for i := range c.Deadlines {
		c.Deadlines[i].Target = t
	}
}

// Deadline looks up a deadline by ID.
func (c *Content) Deadline(id string) (Deadline, bool) {
	for _, d := range c.Deadlines {
		if d.ID == id {
			return d, true
		}
	}
	return Deadline{}, false
}

// PrimaryDeadline is the deadline shown in the hero and pricing sections.
func (c *Content) PrimaryDeadline() Deadline {
	return c.Deadlines[0]
}

// Stat looks up a stat by ID.
func (c *Content) Stat(id string) (Stat, bool) {
	for _, s := range c.Stats {
		if s.ID == id {
			return s, true
		}
	}
	return Stat{}, false
}
