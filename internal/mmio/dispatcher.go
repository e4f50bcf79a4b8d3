// Package mmio assembles the fixed peripheral chain into a single
// core.Mmio the CPU can address: timer, battery, serial, motor, arm,
// radar, compass, inventory, each at its own 1024-byte slot above
// engine.MMIOBase.
package mmio

import (
	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/engine"
	"github.com/kartoffels/kartoffels/internal/peripherals"
)

// Dispatcher chains the peripherals in the fixed slot order the ABI
// specifies and routes each CPU load/store to the right one.
type Dispatcher struct {
	Timer     *peripherals.Timer
	Battery   *peripherals.Battery
	Serial    *peripherals.Serial
	Motor     *peripherals.Motor
	Arm       *peripherals.Arm
	Radar     *peripherals.Radar
	Compass   *peripherals.Compass
	Inventory *peripherals.Inventory

	ctx *core.MmioContext
}

// New creates a dispatcher with a fresh set of peripherals, seeded as a
// new bot's spawn would require.
func New(timerSeed uint32, initialFacing core.Dir) *Dispatcher {
	return &Dispatcher{
		Timer:     peripherals.NewTimer(timerSeed),
		Battery:   peripherals.NewBattery(),
		Serial:    peripherals.NewSerial(),
		Motor:     peripherals.NewMotor(),
		Arm:       peripherals.NewArm(),
		Radar:     peripherals.NewRadar(),
		Compass:   peripherals.NewCompass(initialFacing),
		Inventory: peripherals.NewInventory(),
	}
}

// SetContext arms the dispatcher with the context for the CPU step
// about to run. It must be called before every cpu.Tick.
func (d *Dispatcher) SetContext(ctx *core.MmioContext) {
	d.ctx = ctx
}

func (d *Dispatcher) slot(addr uint32) (peripherals.Peripheral, uint32, bool) {
	if addr < engine.MMIOBase || addr >= engine.MMIOEnd {
		return nil, 0, false
	}
	rel := addr - engine.MMIOBase
	idx := rel / engine.MMIOStride
	offset := rel % engine.MMIOStride

	var p peripherals.Peripheral
	switch idx {
	case engine.SlotTimer:
		p = d.Timer
	case engine.SlotBattery:
		p = d.Battery
	case engine.SlotSerial:
		p = d.Serial
	case engine.SlotMotor:
		p = d.Motor
	case engine.SlotArm:
		p = d.Arm
	case engine.SlotRadar:
		p = d.Radar
	case engine.SlotCompass:
		p = d.Compass
	case engine.SlotInventory:
		p = d.Inventory
	default:
		return nil, 0, false
	}
	return p, offset, true
}

// MmioLoad implements core.Mmio.
func (d *Dispatcher) MmioLoad(addr uint32) (uint32, error) {
	p, offset, ok := d.slot(addr)
	if !ok {
		return 0, errInvalidAccess
	}
	return p.Load(offset, d.ctx)
}

// MmioStore implements core.Mmio.
func (d *Dispatcher) MmioStore(addr uint32, val uint32) error {
	p, offset, ok := d.slot(addr)
	if !ok {
		return errInvalidAccess
	}
	return p.Store(offset, val, d.ctx)
}

// Advance ticks every peripheral's cooldown once, called once per world
// tick after the CPU stepping for this bot has finished.
func (d *Dispatcher) Advance() {
	d.Timer.Advance()
	d.Battery.Advance()
	d.Serial.Advance()
	d.Motor.Advance()
	d.Arm.Advance()
	d.Radar.Advance()
	d.Compass.Advance()
	d.Inventory.Advance()
}

var errInvalidAccess = invalidAccessError{}

type invalidAccessError struct{}

func (invalidAccessError) Error() string { return "invalid mmio access" }

var _ core.Mmio = (*Dispatcher)(nil)
