package bots

import "github.com/kartoffels/kartoffels/internal/core"

// DeadBots is a bounded ring of terminal bot records: once capacity is
// reached, the oldest record is evicted to make room for the newest.
type DeadBots struct {
	capacity int
	order    []core.BotID // oldest first
	byID     map[core.BotID]*DeadBot
}

// NewDeadBots creates a ring holding at most capacity records.
func NewDeadBots(capacity int) *DeadBots {
	return &DeadBots{
		capacity: capacity,
		byID:     make(map[core.BotID]*DeadBot),
	}
}

// Push records b as dead, evicting the oldest record if the ring is full.
// evicted is non-nil exactly when an eviction happened.
func (d *DeadBots) Push(b *DeadBot) (evicted *DeadBot, wasEvicted bool) {
	if d.capacity > 0 && len(d.order) >= d.capacity {
		oldest := d.order[0]
		d.order = d.order[1:]
		evicted = d.byID[oldest]
		delete(d.byID, oldest)
		wasEvicted = true
	}
	d.order = append(d.order, b.ID)
	d.byID[b.ID] = b
	return evicted, wasEvicted
}

// Get looks a dead bot's record up by id.
func (d *DeadBots) Get(id core.BotID) (*DeadBot, bool) {
	b, ok := d.byID[id]
	return b, ok
}

// Len reports the number of retained records.
func (d *DeadBots) Len() int {
	return len(d.order)
}

// All returns retained records oldest-first, for snapshot iteration.
func (d *DeadBots) All() []*DeadBot {
	out := make([]*DeadBot, len(d.order))
	for i, id := range d.order {
		out[i] = d.byID[id]
	}
	return out
}
