// Package core holds the shared value types used across the engine's
// internal packages (bot/object identity, map geometry, tile and object
// kinds). It has no dependencies on any other internal package so every
// other package — cpu, peripherals, bots, scheduler, lifecycle, events,
// storage — can depend on it without creating import cycles back to the
// root kartoffels package.
package core

// BotID uniquely identifies a bot across all three containers (queued,
// alive, dead) at all times. Zero is never a valid id.
type BotID uint64

// ObjectID uniquely identifies a map/inventory object.
type ObjectID uint64
