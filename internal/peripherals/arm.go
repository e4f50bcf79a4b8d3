package peripherals

import (
	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/engine"
)

const (
	armCmdStab byte = 0x01
	armCmdPick byte = 0x02
	armCmdDrop byte = 0x03
)

// Arm queues stab/pick/drop actions in front of the bot. All three
// commands share one cooldown, charged even when the resulting action
// turns out to be a no-op.
type Arm struct {
	Cooldown uint32
}

// NewArm creates a ready-to-command arm.
func NewArm() *Arm { return &Arm{} }

func (a *Arm) Load(offset uint32, _ *core.MmioContext) (uint32, error) {
	if offset == 0 {
		if a.Cooldown == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 0, nil
}

func (a *Arm) Store(_ uint32, val uint32, ctx *core.MmioContext) error {
	if a.Cooldown != 0 {
		return nil
	}
	cmd := byte(val)
	at := ctx.Pos.Add(ctx.Dir.Vector())

	switch cmd {
	case armCmdStab:
		a.Cooldown = jitter(engine.ArmCooldown, ctx.RNG)
		setAction(ctx, core.Action{Kind: core.ActionArmStab, At: at})
	case armCmdPick:
		a.Cooldown = jitter(engine.ArmCooldown, ctx.RNG)
		setAction(ctx, core.Action{Kind: core.ActionArmPick, At: at})
	case armCmdDrop:
		idx := byte(val >> 8)
		a.Cooldown = jitter(engine.ArmCooldown, ctx.RNG)
		setAction(ctx, core.Action{Kind: core.ActionArmDrop, At: at, Idx: idx})
	}
	return nil
}

func (a *Arm) Advance() {
	if a.Cooldown > 0 {
		a.Cooldown--
	}
}
