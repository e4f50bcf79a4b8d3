package peripherals

import (
	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/engine"
)

// Compass is the one peripheral whose Load mutates state: reading a
// fresh measurement consumes it and resets the cooldown before another
// is available.
type Compass struct {
	Cooldown uint32
	Latched  core.Dir
	Ready    bool
}

// NewCompass creates a compass with a measurement ready immediately.
func NewCompass(initial core.Dir) *Compass {
	return &Compass{Latched: initial, Ready: true}
}

func (c *Compass) Load(offset uint32, _ *core.MmioContext) (uint32, error) {
	if offset != 0 {
		return 0, nil
	}
	if c.Cooldown != 0 || !c.Ready {
		return 0, nil
	}
	v := uint32(c.Latched.Code())
	c.Ready = false
	c.Cooldown = engine.CompassCooldown
	return v, nil
}

func (c *Compass) Store(uint32, uint32, *core.MmioContext) error { return nil }

// Latch arms a new measurement, taken by the scheduler once per world
// tick from the bot's current facing.
func (c *Compass) Latch(dir core.Dir) {
	c.Latched = dir
}

func (c *Compass) Advance() {
	if c.Cooldown > 0 {
		c.Cooldown--
		if c.Cooldown == 0 {
			c.Ready = true
		}
	}
}
