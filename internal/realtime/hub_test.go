package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// recv drains one queued payload from a session without running its write
// loop; test sessions never Start().
func recv(t *testing.T, s *Session) []byte {
	t.Helper()
	select {
	case payload := <-s.send:
		return payload
	default:
		t.Fatal("expected a queued payload")
		return nil
	}
}

func assertEmpty(t *testing.T, s *Session) {
	t.Helper()
	select {
	case payload := <-s.send:
		t.Fatalf("unexpected payload queued: %s", payload)
	default:
	}
}

func TestHubBroadcastToConversationReachesWatchersOnly(t *testing.T) {
	hub := NewHub()

	watcher := NewSession("worker1", nil)
	other := NewSession("employer1", nil)
	hub.Attach(watcher)
	hub.Attach(other)

	hub.Watch("conv1", watcher)

	delivered := hub.BroadcastToConversation("conv1", []byte("hello"))
	assert.Equal(t, 1, delivered)
	assert.Equal(t, "hello", string(recv(t, watcher)))
	assertEmpty(t, other)
}

func TestHubWatchReplacesPreviousInterest(t *testing.T) {
	hub := NewHub()

	s := NewSession("worker1", nil)
	hub.Attach(s)

	hub.Watch("conv1", s)
	hub.Watch("conv2", s)

	assert.Equal(t, 0, hub.BroadcastToConversation("conv1", []byte("stale")))
	assert.Equal(t, 1, hub.BroadcastToConversation("conv2", []byte("fresh")))
	assert.Equal(t, "fresh", string(recv(t, s)))
}

func TestHubBroadcastToUserReachesEverySession(t *testing.T) {
	hub := NewHub()

	tab1 := NewSession("worker1", nil)
	tab2 := NewSession("worker1", nil)
	stranger := NewSession("employer1", nil)
	hub.Attach(tab1)
	hub.Attach(tab2)
	hub.Attach(stranger)

	delivered := hub.BroadcastToUser("worker1", []byte("refresh"))
	assert.Equal(t, 2, delivered)
	assert.Equal(t, "refresh", string(recv(t, tab1)))
	assert.Equal(t, "refresh", string(recv(t, tab2)))
	assertEmpty(t, stranger)
}

func TestHubDetachDropsInterests(t *testing.T) {
	hub := NewHub()

	s := NewSession("worker1", nil)
	hub.Attach(s)
	hub.Watch("conv1", s)

	hub.Detach(s)

	assert.Equal(t, 0, hub.BroadcastToConversation("conv1", []byte("x")))
	assert.Equal(t, 0, hub.BroadcastToUser("worker1", []byte("y")))
	assertEmpty(t, s)
}

func TestHubUnwatchKeepsListInterest(t *testing.T) {
	hub := NewHub()

	s := NewSession("worker1", nil)
	hub.Attach(s)
	hub.Watch("conv1", s)
	hub.Unwatch(s)

	// Open-conversation interest dropped, list interest always remains.
	assert.Equal(t, 0, hub.BroadcastToConversation("conv1", []byte("x")))
	assert.Equal(t, 1, hub.BroadcastToUser("worker1", []byte("refresh")))
}

func TestHubWatchIgnoresDetachedSession(t *testing.T) {
	hub := NewHub()

	s := NewSession("worker1", nil)
	hub.Attach(s)
	hub.Detach(s)
	hub.Watch("conv1", s)

	assert.Equal(t, 0, hub.BroadcastToConversation("conv1", []byte("x")))
}
