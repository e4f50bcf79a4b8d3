package bots

import "github.com/kartoffels/kartoffels/internal/core"

// QueuedBots is a FIFO of bots waiting for a tile, with O(1) membership
// checks so the lifecycle manager can pick ids not already queued. Pushing
// an id that is already queued panics.
type QueuedBots struct {
	order []core.BotID
	byID  map[core.BotID]*QueuedBot
}

// NewQueuedBots creates an empty queue.
func NewQueuedBots() *QueuedBots {
	return &QueuedBots{byID: make(map[core.BotID]*QueuedBot)}
}

// Push enqueues b at the back of the queue.
func (q *QueuedBots) Push(b *QueuedBot) {
	if _, ok := q.byID[b.ID]; ok {
		core.Fatalf("bots.QueuedBots.Push", "bot %d already queued", b.ID)
	}
	q.order = append(q.order, b.ID)
	q.byID[b.ID] = b
}

// PushFront re-inserts b at the head of the queue — used when a spawn
// attempt fails and the bot must wait for another tick without losing
// its place ahead of later arrivals.
func (q *QueuedBots) PushFront(b *QueuedBot) {
	if _, ok := q.byID[b.ID]; ok {
		core.Fatalf("bots.QueuedBots.PushFront", "bot %d already queued", b.ID)
	}
	q.order = append([]core.BotID{b.ID}, q.order...)
	q.byID[b.ID] = b
}

// PopFront removes and returns the bot at the head of the queue.
func (q *QueuedBots) PopFront() (*QueuedBot, bool) {
	if len(q.order) == 0 {
		return nil, false
	}
	id := q.order[0]
	q.order = q.order[1:]
	b := q.byID[id]
	delete(q.byID, id)
	return b, true
}

// Remove drops a bot from the queue out of order, e.g. on explicit delete.
func (q *QueuedBots) Remove(id core.BotID) (*QueuedBot, bool) {
	b, ok := q.byID[id]
	if !ok {
		return nil, false
	}
	delete(q.byID, id)
	for i, qid := range q.order {
		if qid == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	return b, true
}

// Contains reports whether id is currently queued.
func (q *QueuedBots) Contains(id core.BotID) bool {
	_, ok := q.byID[id]
	return ok
}

// Len reports the number of queued bots.
func (q *QueuedBots) Len() int {
	return len(q.order)
}

// All returns the queued bots in FIFO order, for snapshot iteration. The
// returned slice is a fresh copy of the order, not a live view.
func (q *QueuedBots) All() []*QueuedBot {
	out := make([]*QueuedBot, len(q.order))
	for i, id := range q.order {
		out[i] = q.byID[id]
	}
	return out
}
