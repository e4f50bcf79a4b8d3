// Package peripherals implements the per-bot MMIO state machines: timer,
// battery, serial, motor, arm, radar, compass, and inventory. Each one
// owns its own register file and, for the side-effecting ones, queues at
// most one core.Action per CPU step into the context it is handed.
package peripherals

import "github.com/kartoffels/kartoffels/internal/core"

// Peripheral is the per-slot contract the dispatcher chains over. Load
// is pure with the sole exception of Compass, whose read consumes a
// latched measurement. Store may mutate the peripheral's own state and
// populate ctx.Action. Advance runs once per world tick, independent of
// any CPU step, to decrement cooldowns.
type Peripheral interface {
	Load(offset uint32, ctx *core.MmioContext) (uint32, error)
	Store(offset uint32, val uint32, ctx *core.MmioContext) error
	Advance()
}
