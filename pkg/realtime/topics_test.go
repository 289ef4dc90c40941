package realtime

import "testing"

func TestTopics_BroadcasterCreatesOnce(t *testing.T) {
	topics := NewTopics[string]()
	if _, ok := topics.Get("early-bird"); ok {
		t.Fatal("Get should return false before creation")
	}
	a := topics.Broadcaster("early-bird")
	b := topics.Broadcaster("early-bird")
	if a != b {
		t.Error("Broadcaster should return the same hub for the same id")
	}
	if got, ok := topics.Get("early-bird"); !ok || got != a {
		t.Error("Get should return the created hub")
	}
}

func TestTopics_SubscribersShareHub(t *testing.T) {
	topics := NewTopics[string]()
	ch := topics.Broadcaster("launch").Subscribe()
	defer topics.Broadcaster("launch").Unsubscribe(ch)

	hub, _ := topics.Get("launch")
	hub.Publish("tick")
	if got := <-ch; got != "tick" {
		t.Errorf("got %q, want tick", got)
	}
}

func TestTopics_IDsSorted(t *testing.T) {
	topics := NewTopics[int]()
	topics.Broadcaster("b")
	topics.Broadcaster("a")
	ids := topics.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("IDs = %v, want [a b]", ids)
	}
}
