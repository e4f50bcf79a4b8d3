package events

import (
	"sync"
	"sync/atomic"

	"github.com/kartoffels/kartoffels/internal/engine"
)

// Subscription is a single subscriber's view of the event broadcast.
// Events arrive as tick-sized batches; if the subscriber falls behind,
// batches are dropped rather than blocking the world, and Lagged flips
// true so the subscriber knows to resync from a fresh snapshot.
type Subscription struct {
	id     uint64
	ch     chan []Event
	lagged atomic.Bool
}

// C returns the channel batches arrive on.
func (s *Subscription) C() <-chan []Event { return s.ch }

// Lagged reports whether any batch was dropped since the last check,
// and clears the flag.
func (s *Subscription) Lagged() bool { return s.lagged.Swap(false) }

// Broadcaster is a multi-producer, single-consumer-per-subscriber fan-
// out: the world actor is the sole producer; each subscriber drains
// independently and a slow one never stalls the others or the tick loop.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[uint64]*Subscription)}
}

// Subscribe registers a new subscriber and returns its handle.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{id: b.nextID, ch: make(chan []Event, engine.EventBroadcastBufferSize)}
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes a subscriber; safe to call even if already
// unsubscribed.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, sub.id)
}

// Publish broadcasts one tick's batch to every current subscriber,
// dropping it (and marking Lagged) for any subscriber whose channel is
// full.
func (b *Broadcaster) Publish(batch []Event) {
	if len(batch) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- batch:
		default:
			sub.lagged.Store(true)
		}
	}
}

// SubscriberCount reports the number of active subscriptions.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
