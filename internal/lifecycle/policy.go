// Package lifecycle implements the bot state machine: upload, queueing,
// spawning onto the map, death, and the auto-respawn/discard decision —
// the transitions between the queued, alive, and dead containers.
package lifecycle

import (
	"errors"

	"github.com/kartoffels/kartoffels/internal/engine"
)

// Policy governs capacity and respawn behavior for one world.
type Policy struct {
	MaxAliveBots     int
	MaxQueuedBots    int
	AutoRespawn      bool
	AllowBreakpoints bool
}

// DefaultPolicy mirrors the engine's baseline capacity constants.
func DefaultPolicy() Policy {
	return Policy{
		MaxAliveBots:     engine.DefaultMaxAliveBots,
		MaxQueuedBots:    engine.DefaultMaxQueuedBots,
		AutoRespawn:      true,
		AllowBreakpoints: true,
	}
}

// Sentinel errors a Manager can return; the root package classifies these
// into its own structured error codes at the request boundary.
var (
	ErrQueueFull         = errors.New("too many bots queued")
	ErrAliveFull         = errors.New("too many bots alive")
	ErrBotNotFound       = errors.New("bot not found")
	ErrInvalidSpawnPoint = errors.New("invalid spawn point")
)
