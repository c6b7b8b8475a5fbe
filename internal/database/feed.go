package database

import "sync"

// Table names emitted on the change feed.
const (
	TableConversations = "conversations"
	TableMessages      = "messages"
)

type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
)

// Change is a row-level change notification. Row carries the affected model
// (for bulk updates, a representative row with the matched columns set).
type Change struct {
	Table string
	Kind  ChangeKind
	Row   interface{}
}

// Feed is the in-process change-notification feed for the store. Writers
// publish after a successful commit; delivery to subscribers is best-effort
// and never buffers beyond the subscriber's channel — a consumer that falls
// behind misses events and must reconcile by re-reading.
type Feed struct {
	mu   sync.Mutex
	subs map[uint64]chan Change
	next uint64
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[uint64]chan Change)}
}

// Events is the feed for the primary store, shared the same way DB is.
var Events = NewFeed()

// Subscribe registers a consumer with the given channel buffer. The returned
// cancel func removes the subscription and closes the channel.
func (f *Feed) Subscribe(buffer int) (<-chan Change, func()) {
	ch := make(chan Change, buffer)

	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = ch
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if sub, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the change to every subscriber without blocking.
func (f *Feed) Publish(c Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- c:
		default:
			// Subscriber is saturated; it reconciles by re-fetching.
		}
	}
}
