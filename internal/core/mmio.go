package core

import "math/rand"

// Mmio is satisfied by anything the CPU can load from or store to above
// RAM — a single peripheral, or a dispatcher chaining several. Kept in
// this leaf package so both internal/cpu and internal/peripherals can
// depend on it without creating a cycle.
type Mmio interface {
	MmioLoad(addr uint32) (uint32, error)
	MmioStore(addr uint32, val uint32) error
}

// ActionKind enumerates the deferred side-effects a peripheral write can
// queue for the scheduler to apply once the instruction that produced it
// returns.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionMove
	ActionTurn
	ActionArmStab
	ActionArmPick
	ActionArmDrop
)

// Action is the single pending side-effect slot a bot may fill during
// one CPU step. At most one peripheral write per step may populate it;
// a second attempt in the same step is dropped by convention (first
// write wins), matching the "deferred, single action per tick" model.
type Action struct {
	Kind ActionKind
	At   Pos
	Dir  Dir
	Idx  uint8
}

// MmioContext is the shared, per-step view peripherals need to do their
// work: where the bot is, which way it faces, the pending action slot,
// and read-only access to the map and to where other bots/objects are.
// The scheduler constructs one of these per alive bot per tick and hands
// it down to the dispatcher.
type MmioContext struct {
	Action *Action

	Map *Map
	Pos Pos
	Dir Dir

	// Occupied reports the bot, if any, alive at p.
	Occupied func(p Pos) (BotID, bool)
	// ObjectAt reports the object, if any, resting at p.
	ObjectAt func(p Pos) (Object, bool)

	Tick uint64
	RNG  *rand.Rand
}
