// Package engine holds the tuning constants shared by the CPU, MMIO
// peripherals, scheduler, and lifecycle packages. It is a leaf package
// (no imports from the rest of the module) so it can be depended on from
// anywhere without creating a cycle — the same role the teacher's
// internal/constants plays for device-timing defaults.
package engine

import "time"

const (
	// RAMBase is the first addressable byte of a bot's firmware RAM.
	RAMBase uint32 = 0x00100000
	// RAMSize is the size of a bot's firmware RAM in bytes.
	RAMSize uint32 = 128 * 1024
	// RAMEnd is the first address past the end of RAM.
	RAMEnd = RAMBase + RAMSize

	// MMIOBase is the first address of the memory-mapped peripheral window.
	MMIOBase uint32 = 0x08000000
	// MMIOStride is the number of bytes reserved per peripheral slot.
	MMIOStride uint32 = 1024
	// MMIOSlots is the number of peripheral slots in dispatch order.
	MMIOSlots uint32 = 8
	// MMIOEnd is the first address past the peripheral window.
	MMIOEnd = MMIOBase + MMIOStride*MMIOSlots
)

// Peripheral slot indices, fixed dispatch order.
const (
	SlotTimer = iota
	SlotBattery
	SlotSerial
	SlotMotor
	SlotArm
	SlotRadar
	SlotCompass
	SlotInventory
)

const (
	// TicksPerSecondAuto is the metronome rate for a world running in
	// automatic (wall-clock paced) mode.
	TicksPerSecondAuto = 64_000
	// TickInterval is the wall-clock spacing between ticks in automatic
	// mode, derived from TicksPerSecondAuto.
	TickInterval = time.Second / TicksPerSecondAuto

	// DefaultInstructionsPerTick is the canonical steady-state per-bot
	// instruction budget: one RV32I instruction retired per alive bot per
	// world tick, before its single deferred action resolves and its
	// peripheral cooldowns advance. TicksPerSecondAuto above is the
	// world-tick rate, not a per-bot instruction rate — every alive bot
	// gets exactly one instruction each of those 64,000 ticks per second,
	// never a batch, so no one bot can monopolize a tick at another's
	// expense.
	DefaultInstructionsPerTick = 1

	// MaxInstructionsPerTick is a hard ceiling on a configured
	// WorldParams.InstructionsPerTick, not a default: it exists only to
	// stop a misconfigured world (or a test deliberately fast-forwarding
	// a bot) from letting one bot's CPU monopolize an entire tick.
	MaxInstructionsPerTick = 1_000_000
)

// Default cooldowns, expressed in ticks, applied after a peripheral
// command completes before it will accept another.
const (
	MotorStepCooldown = 20_000
	MotorBackCooldown = 30_000
	MotorTurnCooldown = 25_000
	// MotorJitterNumerator/MotorJitterDenominator bound the +/- jitter
	// applied on top of a motor/arm cooldown, expressed as a fraction.
	MotorJitterNumerator   = 15
	MotorJitterDenominator = 100

	ArmCooldown = 60_000

	CompassCooldown = 128_000
)

// RadarCooldowns maps a radar scan's odd side length (3, 5, 7, or 9) to
// its cooldown in ticks. Larger windows see further and cost more.
var RadarCooldowns = map[uint32]uint32{
	3: 5_000,
	5: 15_000,
	7: 30_000,
	9: 50_000,
}

const (
	// SerialBufferCapacity is the number of words each of the serial
	// peripheral's two output buffers (current and next) can hold before
	// the oldest word is dropped.
	SerialBufferCapacity = 256

	// InventorySlots is the fixed number of item slots a bot carries.
	InventorySlots = 32
)

const (
	// DefaultMaxAliveBots bounds how many bots may be simultaneously
	// alive in a world under the default policy.
	DefaultMaxAliveBots = 64
	// DefaultMaxQueuedBots bounds the FIFO spawn queue under the
	// default policy.
	DefaultMaxQueuedBots = 16
	// DeadBotsCapacity is the size of the LRU of dead-bot records kept
	// for inspection after death, regardless of policy.
	DeadBotsCapacity = 4096
)

const (
	// EventBroadcastBufferSize is the per-subscriber channel capacity
	// for the lossy event fanout; a slow subscriber drops events rather
	// than stalling the world tick loop.
	EventBroadcastBufferSize = 1024
)

// Save-file header layout: an 11-byte magic, a big-endian u32 version,
// and a single zero pad byte — 16 bytes total.
const (
	SaveMagicSize      = 11
	SaveHeaderSize     = SaveMagicSize + 4 + 1
	CurrentSaveVersion uint32 = 3
)

// SaveMagic is the fixed 11-byte prefix of every save file.
var SaveMagic = [SaveMagicSize]byte{'k', 'a', 'r', 't', 'o', 'f', 'f', 'e', 'l', 's', ':'}
