package peripherals

import (
	"math/rand"

	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/engine"
)

// Command words, little-endian-packed exactly as the ABI specifies them
// byte-by-byte.
const (
	motorCmdStepForward uint32 = 0x00010101
	motorCmdStepBack    uint32 = 0x00FFFF01
	motorCmdTurnRight   uint32 = 0x00FF0101
	motorCmdTurnLeft    uint32 = 0x0001FF01
)

// Motor queues MotorMove/Turn actions and enforces a jittered cooldown
// between commands.
type Motor struct {
	Cooldown uint32
}

// NewMotor creates a ready-to-command motor.
func NewMotor() *Motor { return &Motor{} }

func (m *Motor) Load(offset uint32, _ *core.MmioContext) (uint32, error) {
	if offset == 0 {
		if m.Cooldown == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 0, nil
}

func jitter(base uint32, rng *rand.Rand) uint32 {
	if rng == nil {
		return base
	}
	span := int(base) * engine.MotorJitterNumerator / engine.MotorJitterDenominator
	if span == 0 {
		return base
	}
	delta := rng.Intn(2*span+1) - span
	return uint32(int(base) + delta)
}

func (m *Motor) Store(_ uint32, val uint32, ctx *core.MmioContext) error {
	if m.Cooldown != 0 {
		return nil
	}
	switch val {
	case motorCmdStepForward:
		m.Cooldown = jitter(engine.MotorStepCooldown, ctx.RNG)
		setAction(ctx, core.Action{Kind: core.ActionMove, At: ctx.Pos.Add(ctx.Dir.Vector())})
	case motorCmdStepBack:
		m.Cooldown = jitter(engine.MotorBackCooldown, ctx.RNG)
		back := core.Pos{X: -ctx.Dir.Vector().X, Y: -ctx.Dir.Vector().Y}
		setAction(ctx, core.Action{Kind: core.ActionMove, At: ctx.Pos.Add(back)})
	case motorCmdTurnRight:
		m.Cooldown = jitter(engine.MotorTurnCooldown, ctx.RNG)
		setAction(ctx, core.Action{Kind: core.ActionTurn, Dir: ctx.Dir.TurnRight()})
	case motorCmdTurnLeft:
		m.Cooldown = jitter(engine.MotorTurnCooldown, ctx.RNG)
		setAction(ctx, core.Action{Kind: core.ActionTurn, Dir: ctx.Dir.TurnLeft()})
	}
	return nil
}

func (m *Motor) Advance() {
	if m.Cooldown > 0 {
		m.Cooldown--
	}
}

// setAction claims the single per-step action slot, first write wins.
func setAction(ctx *core.MmioContext, a core.Action) {
	if ctx.Action == nil || ctx.Action.Kind != core.ActionNone {
		return
	}
	*ctx.Action = a
}
