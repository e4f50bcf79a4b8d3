package peripherals

import "github.com/kartoffels/kartoffels/internal/core"

// Battery is a placeholder peripheral kept for ABI stability: reads
// yield a fixed "fully charged, ready" status word, writes are no-ops.
type Battery struct{}

// NewBattery creates a battery peripheral.
func NewBattery() *Battery { return &Battery{} }

const batteryStatusReady uint32 = 1

func (b *Battery) Load(offset uint32, _ *core.MmioContext) (uint32, error) {
	if offset == 0 {
		return batteryStatusReady, nil
	}
	return 0, nil
}

func (b *Battery) Store(uint32, uint32, *core.MmioContext) error { return nil }

func (b *Battery) Advance() {}
