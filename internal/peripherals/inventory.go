package peripherals

import (
	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/engine"
)

// Inventory is a fixed-size array of objects. Add inserts at index 0,
// shifting existing items to higher indices; Take removes at an index,
// shifting higher indices down. An object is never in more than one
// inventory, and never both in an inventory and on the map.
type Inventory struct {
	Items [engine.InventorySlots]core.Object
	Count int
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory { return &Inventory{} }

// Add inserts obj at index 0. Reports false if the inventory is full.
func (inv *Inventory) Add(obj core.Object) bool {
	if inv.Count >= engine.InventorySlots {
		return false
	}
	copy(inv.Items[1:inv.Count+1], inv.Items[0:inv.Count])
	inv.Items[0] = obj
	inv.Count++
	return true
}

// Take removes and returns the object at idx, shifting higher indices
// down. Reports false if idx is out of range.
func (inv *Inventory) Take(idx int) (core.Object, bool) {
	if idx < 0 || idx >= inv.Count {
		return core.Object{}, false
	}
	obj := inv.Items[idx]
	copy(inv.Items[idx:inv.Count-1], inv.Items[idx+1:inv.Count])
	inv.Count--
	inv.Items[inv.Count] = core.Object{}
	return obj, true
}

func (inv *Inventory) Load(offset uint32, _ *core.MmioContext) (uint32, error) {
	if offset == 0 {
		return uint32(inv.Count), nil
	}
	idx := int(offset/4) - 1
	if idx < 0 || idx >= inv.Count {
		return 0, nil
	}
	obj := inv.Items[idx]
	return uint32(obj.ID), nil
}

func (inv *Inventory) Store(uint32, uint32, *core.MmioContext) error { return nil }

func (inv *Inventory) Advance() {}
