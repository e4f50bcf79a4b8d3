// Package events defines the world's event vocabulary and the lossy,
// versioned broadcast fan-out that delivers them to subscribers.
package events

import "github.com/kartoffels/kartoffels/internal/core"

// Kind identifies the recognized event variants.
type Kind uint8

const (
	BotBorn Kind = iota
	BotDied
	BotDiscarded
	BotMoved
	BotReachedBreakpoint
	BotScored
	ObjectDropped
	ObjectPicked
)

func (k Kind) String() string {
	switch k {
	case BotBorn:
		return "born"
	case BotDied:
		return "died"
	case BotDiscarded:
		return "discarded"
	case BotMoved:
		return "moved"
	case BotReachedBreakpoint:
		return "breakpoint"
	case BotScored:
		return "scored"
	case ObjectDropped:
		return "object_dropped"
	case ObjectPicked:
		return "object_picked"
	default:
		return "unknown"
	}
}

// Event carries one occurrence plus the world tick it was stamped with.
// Once appended to a batch and broadcast, it is never mutated again.
type Event struct {
	Kind   Kind
	BotID  core.BotID
	At     core.Pos
	Reason string // human-readable detail: death cause, etc.

	// Version is the monotonic world-tick counter sampled when this
	// event's batch was flushed — every event in the same tick shares it.
	Version uint64
}
