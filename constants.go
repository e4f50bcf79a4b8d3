package kartoffels

import "github.com/kartoffels/kartoffels/internal/engine"

const (
	RAMBase    = engine.RAMBase
	RAMSize    = engine.RAMSize
	MMIOBase   = engine.MMIOBase
	MMIOStride = engine.MMIOStride

	TicksPerSecondAuto         = engine.TicksPerSecondAuto
	TickInterval               = engine.TickInterval
	DefaultInstructionsPerTick = engine.DefaultInstructionsPerTick
	MaxInstructionsPerTick     = engine.MaxInstructionsPerTick

	DefaultMaxAliveBots  = engine.DefaultMaxAliveBots
	DefaultMaxQueuedBots = engine.DefaultMaxQueuedBots
	DeadBotsCapacity     = engine.DeadBotsCapacity

	CurrentSaveVersion = engine.CurrentSaveVersion
)
