package landing

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"salespage/pkg/countdown"
	"salespage/pkg/realtime"
)

// UrgentDays is the remaining-day count at which the countdown is highlighted.
const UrgentDays = 5

// Urgent reports whether a running countdown should be highlighted.
// An expired countdown is not urgent.
func Urgent(r countdown.TimeRemaining) bool {
	return !r.IsZero() && r.Days <= UrgentDays
}

// Store holds the page content and runs one countdown engine per deadline,
// publishing each tick to the deadline's broadcaster.
type Store struct {
	content *Content
	clock   realtime.Clock
	log     logrus.FieldLogger
	topics  *realtime.Topics[countdown.TimeRemaining]

	mu      sync.Mutex
	engines map[string]*countdown.Engine
}

// NewStore builds the countdown engines for content. A nil clock uses the
// system clock.
func NewStore(content *Content, clock realtime.Clock, log logrus.FieldLogger) *Store {
	if clock == nil {
		clock = realtime.SystemClock
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Store{
		content: content,
		clock:   clock,
		log:     log,
		topics:  realtime.NewTopics[countdown.TimeRemaining](),
		engines: make(map[string]*countdown.Engine, len(content.Deadlines)),
	}
	for _, d := range content.Deadlines {
		hub := s.topics.Broadcaster(d.ID)
		s.engines[d.ID] = countdown.New(d.Target, clock, hub.Publish)
	}
	return s
}

// Content returns the page content.
func (s *Store) Content() *Content {
	return s.content
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// Start begins ticking every countdown. Calling Start again is a no-op.
func (s *Store) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.engines {
		if e.Running() {
			continue
		}
		e.Start()
		s.log.WithFields(logrus.Fields{
			"deadline": id,
			"target":   e.Target().Format(time.RFC3339),
		}).Info("countdown started")
	}
}

// Stop halts every countdown.
func (s *Store) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.engines {
		e.Stop()
	}
}

// Remaining returns the current value of a deadline's countdown, computed
// from the clock when the engine is not running.
func (s *Store) Remaining(id string) (countdown.TimeRemaining, bool) {
	s.mu.Lock()
	e, ok := s.engines[id]
	s.mu.Unlock()
	if !ok {
		return countdown.TimeRemaining{}, false
	}
	if e.Running() {
		return e.Current(), true
	}
	return countdown.Compute(e.Target(), s.clock.Now()), true
}

// Broadcaster returns the tick broadcaster for a deadline.
func (s *Store) Broadcaster(id string) (*realtime.Broadcaster[countdown.TimeRemaining], bool) {
	return s.topics.Get(id)
}

// DeadlineIDs lists the deadlines with a running or runnable countdown.
func (s *Store) DeadlineIDs() []string {
	return s.topics.IDs()
}
