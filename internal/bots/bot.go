// Package bots holds the three containers the scheduler and lifecycle
// manager cycle a bot through — queued, alive, dead — and the bot value
// types each container holds.
package bots

import (
	"math/rand"

	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/cpu"
	"github.com/kartoffels/kartoffels/internal/events"
	"github.com/kartoffels/kartoffels/internal/mmio"
)

// AliveBot is a bot currently occupying a tile and being stepped by the
// scheduler every tick.
type AliveBot struct {
	ID    core.BotID
	CPU   *cpu.CPU
	MMIO  *mmio.Dispatcher
	Pos   core.Pos
	Dir   core.Dir
	Birth uint64 // tick the bot was spawned on
	RNG   *rand.Rand

	// Firmware and Oneshot are carried over from the QueuedBot that
	// spawned this bot, so Kill can requeue with both intact.
	Firmware []byte
	Oneshot  bool

	Events []events.Event

	// Fallen is set by the scheduler mid-tick when a move carries the bot
	// onto void terrain; the scheduler reports the fall as a kill in the
	// same step.
	Fallen bool

	// Crashed carries the CPU error (if any) from this tick's step; the
	// scheduler turns it into the reason of the kill it reports.
	Crashed error
}

// QueuedBot is waiting for a free tile; it has no CPU state yet — the
// lifecycle manager only constructs one when it spawns the bot.
type QueuedBot struct {
	ID       core.BotID
	Firmware []byte

	Events         []events.Event
	SerialSnapshot []uint32

	// RequestedPos/RequestedDir carry an explicit spawn request; nil means
	// "resolve from the world's spawn point at placement time".
	RequestedPos *core.Pos
	RequestedDir *core.Dir

	// Requeued is true once this bot has cycled alive -> queued at least
	// once (auto-respawn), as opposed to a bot that has never been alive.
	Requeued bool

	// Oneshot bots are discarded rather than requeued when they die.
	Oneshot bool
}

// DeadBot is a terminal record kept only for inspection — its serial
// output and event history survive, nothing else.
type DeadBot struct {
	ID             core.BotID
	EventsSnapshot []events.Event
	SerialSnapshot []uint32
}
