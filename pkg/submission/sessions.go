package submission

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DefaultSessionTTL is how long an idle form session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Sessions keeps one Machine per form token, so repeat posts from the same
// rendered form share a single lifecycle.
type Sessions struct {
	mu      sync.Mutex
	cache   *cache.Cache
	factory func() *Machine
}

// NewSessions creates a registry whose idle sessions expire after ttl.
// factory builds the machine for a new session.
func NewSessions(ttl time.Duration, factory func() *Machine) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{
		cache:   cache.New(ttl, ttl/2),
		factory: factory,
	}
}

// NewToken returns a token for a freshly rendered form.
func NewToken() string {
	return uuid.NewString()
}

// Get returns the machine for token and refreshes its expiry. Unknown
// tokens start a new session under the same token; malformed ones under a
// new token. existing reports whether the session was already open.
func (s *Sessions) Get(token string) (m *Machine, key string, existing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := uuid.Parse(token); err != nil {
		token = NewToken()
	} else if v, ok := s.cache.Get(token); ok {
		m = v.(*Machine)
		s.cache.SetDefault(token, m)
		return m, token, true
	}
	m = s.factory()
	s.cache.SetDefault(token, m)
	return m, token, false
}

// Len reports the number of open sessions.
func (s *Sessions) Len() int {
	return s.cache.ItemCount()
}
