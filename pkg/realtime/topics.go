package realtime

import (
	"sort"
	"sync"
)

// Topics keeps one broadcaster per topic ID.
type Topics[E any] struct {
	mu   sync.RWMutex
	hubs map[string]*Broadcaster[E]
}

// NewTopics creates an empty topic registry.
func NewTopics[E any]() *Topics[E] {
	return &Topics[E]{hubs: make(map[string]*Broadcaster[E])}
}

// Get returns the broadcaster for id if it exists.
func (t *Topics[E]) Get(id string) (*Broadcaster[E], bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	hub, ok := t.hubs[id]
	return hub, ok
}

// Broadcaster returns the broadcaster for id, creating it if missing.
func (t *Topics[E]) Broadcaster(id string) *Broadcaster[E] {
	t.mu.Lock()
	defer t.mu.Unlock()
	hub, ok := t.hubs[id]
	if !ok {
		hub = NewBroadcaster[E]()
		t.hubs[id] = hub
	}
	return hub
}

// IDs returns the registered topic IDs in sorted order.
func (t *Topics[E]) IDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.hubs))
	for id := range t.hubs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
