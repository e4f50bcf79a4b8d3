package events

import (
	"sync/atomic"

	"github.com/kartoffels/kartoffels/internal/core"
)

// BotView is the read-only projection of an alive bot published in a
// snapshot — deliberately thin so publishing never needs to clone CPU
// state or peripheral registers.
type BotView struct {
	ID   core.BotID
	Pos  core.Pos
	Dir  core.Dir
	Life uint64 // ticks since birth
}

// QueuedBotView is the read-only projection of a queued bot.
type QueuedBotView struct {
	ID       core.BotID
	Requeued bool
}

// DeadBotView is the read-only projection of a dead bot.
type DeadBotView struct {
	ID core.BotID
}

// Snapshot is an immutable, versioned view of the world published to
// subscribers. Once constructed it is never mutated — a new Snapshot
// replaces it wholesale.
type Snapshot struct {
	Version   uint64
	ClockKind string
	Map       *core.Map
	Alive     []BotView
	Queued    []QueuedBotView
	Dead      []DeadBotView
	Objects   []core.Object
}

// Publisher holds the latest snapshot behind an atomic pointer so
// readers never block a writer and never observe a write in progress —
// copy-on-write at the granularity of the whole snapshot.
type Publisher struct {
	ptr atomic.Pointer[Snapshot]
}

// NewPublisher creates a publisher with no snapshot yet.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish installs snap as the latest snapshot.
func (p *Publisher) Publish(snap *Snapshot) {
	p.ptr.Store(snap)
}

// Latest returns the most recently published snapshot, or nil if none
// has been published yet.
func (p *Publisher) Latest() *Snapshot {
	return p.ptr.Load()
}
