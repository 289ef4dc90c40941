package viewmodel

// LandingPage holds data for the full landing page template.
type LandingPage struct {
	Title        string
	CanonicalURL string
	Hero         Hero
	Countdown    Countdown
	Stats        StatsSection
	Steps        []Step
	Testimonials []Testimonial
	Pricing      []PricingTier
	Form         ConsultationForm
}

// Hero holds the headline copy.
type Hero struct {
	Badge          string
	Headline       string
	Highlight      string
	HeadlineSuffix string
	Quote          string
}

// Countdown holds data for a countdown fragment.
type Countdown struct {
	ID        string
	Label     string
	Days      int
	Hours     int
	Minutes   int
	Seconds   int
	Urgent    bool
	Expired   bool
	StreamURL string
}

// StatsSection is the lazily loaded block of animated numbers.
type StatsSection struct {
	LiveURL   string
	StreamURL string
	Stats     []Stat
}

// Stat holds one animated number at its current frame.
type Stat struct {
	ID    string
	Label string
	Text  string
	Done  bool
}

// Step is one week of the process timeline.
type Step struct {
	Number      int
	Week        string
	Title       string
	Description string
}

// Testimonial holds one customer quote.
type Testimonial struct {
	Author string
	Result string
	Quote  string
}

// PricingTier holds one cohort's pricing card.
type PricingTier struct {
	Tier        string
	Price       string
	Status      string
	Slots       string
	Highlighted bool
	SoldOut     bool
}

// FormField is one input of the consultation form.
type FormField struct {
	Name      string
	Label     string
	Type      string
	Value     string
	Error     string
	Required  bool
	Multiline bool
}

// ConsultationForm holds data for the form fragment in any lifecycle state.
type ConsultationForm struct {
	Token           string
	PollURL         string
	Heading         string
	Location        string
	Directions      string
	State           string
	Fields          []FormField
	FailureReason   string
	SubmitLabel     string
	SubmittingLabel string
	SuccessTitle    string
	SuccessBody     string
	ResetLabel      string
	Locked          bool
}
