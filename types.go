package kartoffels

import (
	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/events"
)

// Re-exported core value types. Kept as aliases (not wrappers) so internal
// packages and external callers of this package share one concrete type —
// the same re-export idiom the teacher uses for its constants.

type (
	// BotID uniquely identifies a bot across queued/alive/dead containers.
	BotID = core.BotID
	// ObjectID uniquely identifies a map or inventory object.
	ObjectID = core.ObjectID
	// Pos is an integer map coordinate.
	Pos = core.Pos
	// Dir is one of the four cardinal facings.
	Dir = core.Dir
	// TileKind is the recognized kind of a map tile.
	TileKind = core.TileKind
	// Tile is a single map cell.
	Tile = core.Tile
	// Map is the dense rectangular tile grid.
	Map = core.Map
	// ObjectKind is the recognized kind of an object.
	ObjectKind = core.ObjectKind
	// Object is a flag/gem instance, either on the map or in an inventory.
	Object = core.Object
	// Mmio is satisfied by a single peripheral or a dispatcher chaining several.
	Mmio = core.Mmio
	// ActionKind enumerates the deferred side-effects a peripheral can queue.
	ActionKind = core.ActionKind
	// Action is the single pending side-effect slot for one CPU step.
	Action = core.Action
	// MmioContext is the per-step view handed down to the peripheral chain.
	MmioContext = core.MmioContext

	// Kind identifies the recognized event variants a subscriber may see.
	Kind = events.Kind
	// Event carries one occurrence plus the world tick it was stamped with.
	Event = events.Event
)

const (
	DirN = core.DirN
	DirE = core.DirE
	DirS = core.DirS
	DirW = core.DirW

	TileVoid  = core.TileVoid
	TileFloor = core.TileFloor
	TileWallH = core.TileWallH
	TileWallV = core.TileWallV
	TileWater = core.TileWater

	ObjectFlagKind = core.ObjectFlag
	ObjectGemKind  = core.ObjectGem

	ActionNone    = core.ActionNone
	ActionMove    = core.ActionMove
	ActionTurn    = core.ActionTurn
	ActionArmStab = core.ActionArmStab
	ActionArmPick = core.ActionArmPick
	ActionArmDrop = core.ActionArmDrop

	BotBorn              = events.BotBorn
	BotDied              = events.BotDied
	BotDiscarded         = events.BotDiscarded
	BotMoved             = events.BotMoved
	BotReachedBreakpoint = events.BotReachedBreakpoint
	BotScored            = events.BotScored
	ObjectDropped        = events.ObjectDropped
	ObjectPicked         = events.ObjectPicked
)

// NewMap allocates a width x height map filled with TileVoid.
func NewMap(width, height int32) *Map {
	return core.NewMap(width, height)
}
