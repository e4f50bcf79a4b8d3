package peripherals

import "github.com/kartoffels/kartoffels/internal/core"

// Timer exposes a per-bot random seed (latched at spawn) and a
// monotonic world-tick counter. Both registers are read-only from the
// firmware's perspective; writes are ignored.
type Timer struct {
	Seed  uint32
	Ticks uint64
}

// NewTimer creates a timer latched with seed.
func NewTimer(seed uint32) *Timer {
	return &Timer{Seed: seed}
}

func (t *Timer) Load(offset uint32, _ *core.MmioContext) (uint32, error) {
	switch offset {
	case 0:
		return t.Seed, nil
	case 4:
		return uint32(t.Ticks), nil
	default:
		return 0, nil
	}
}

func (t *Timer) Store(uint32, uint32, *core.MmioContext) error { return nil }

func (t *Timer) Advance() { t.Ticks++ }
