package peripherals

import (
	"math/rand"
	"testing"

	"github.com/kartoffels/kartoffels/internal/core"
)

func newCtx() *core.MmioContext {
	return &core.MmioContext{
		Action: &core.Action{},
		Map:    core.NewMap(5, 5),
		Pos:    core.Pos{X: 2, Y: 2},
		Dir:    core.DirN,
		RNG:    rand.New(rand.NewSource(1)),
	}
}

func TestMotorStepForwardQueuesMoveAndCooldown(t *testing.T) {
	m := NewMotor()
	ctx := newCtx()

	if err := m.Store(0, motorCmdStepForward, ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Action.Kind != core.ActionMove {
		t.Fatalf("expected ActionMove, got %v", ctx.Action.Kind)
	}
	want := ctx.Pos.Add(core.DirN.Vector())
	if ctx.Action.At != want {
		t.Errorf("expected move to %+v, got %+v", want, ctx.Action.At)
	}
	if m.Cooldown == 0 {
		t.Error("expected a nonzero cooldown after a step command")
	}

	ready, _ := m.Load(0, ctx)
	if ready != 0 {
		t.Error("expected motor not ready while cooldown is active")
	}
}

func TestMotorIgnoresCommandsDuringCooldown(t *testing.T) {
	m := NewMotor()
	ctx := newCtx()
	m.Store(0, motorCmdStepForward, ctx)

	ctx2 := newCtx()
	ctx2.Action = &core.Action{}
	if err := m.Store(0, motorCmdTurnRight, ctx2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx2.Action.Kind != core.ActionNone {
		t.Error("expected command to be ignored while motor is on cooldown")
	}
}

func TestArmPickAndDrop(t *testing.T) {
	a := NewArm()
	ctx := newCtx()

	if err := a.Store(0, uint32(armCmdPick), ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Action.Kind != core.ActionArmPick {
		t.Errorf("expected ActionArmPick, got %v", ctx.Action.Kind)
	}

	a2 := NewArm()
	ctx2 := newCtx()
	dropVal := uint32(armCmdDrop) | uint32(3)<<8
	if err := a2.Store(0, dropVal, ctx2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx2.Action.Kind != core.ActionArmDrop || ctx2.Action.Idx != 3 {
		t.Errorf("expected ActionArmDrop idx=3, got %v idx=%d", ctx2.Action.Kind, ctx2.Action.Idx)
	}
}

func TestSerialBufferingAndFlush(t *testing.T) {
	s := NewSerial()
	ctx := newCtx()

	s.Store(0, 'a', ctx)
	s.Store(0, serialCmdBeginBuffer, ctx)
	s.Store(0, 'b', ctx)
	if len(s.Current) != 1 || s.Current[0] != 'a' {
		t.Fatalf("expected current to still hold just 'a', got %v", s.Current)
	}

	s.Store(0, serialCmdFlush, ctx)
	if len(s.Current) != 1 || s.Current[0] != 'b' {
		t.Fatalf("expected current to be ['b'] after flush, got %v", s.Current)
	}
}

func TestSerialOverflowDropsOldest(t *testing.T) {
	s := NewSerial()
	ctx := newCtx()
	for i := uint32(0); i < 260; i++ {
		s.Store(0, i+1, ctx) // avoid control-word collisions
	}
	if len(s.Current) != 256 {
		t.Fatalf("expected buffer capped at 256, got %d", len(s.Current))
	}
	if s.Current[0] != 5 { // words 1..4 were dropped
		t.Errorf("expected oldest retained word to be 5, got %d", s.Current[0])
	}
}

func TestCompassConsumesLatchOnRead(t *testing.T) {
	c := NewCompass(core.DirE)
	ctx := newCtx()

	v, _ := c.Load(0, ctx)
	if v != uint32(core.DirE.Code()) {
		t.Fatalf("expected latched direction code, got %d", v)
	}

	v2, _ := c.Load(0, ctx)
	if v2 != 0 {
		t.Errorf("expected second read to yield 0 before cooldown elapses, got %d", v2)
	}
}

func TestInventoryAddShiftsExisting(t *testing.T) {
	inv := NewInventory()
	inv.Add(core.Object{ID: 1})
	inv.Add(core.Object{ID: 2})

	if inv.Items[0].ID != 2 || inv.Items[1].ID != 1 {
		t.Fatalf("expected newest at index 0, got %+v", inv.Items[:2])
	}

	obj, ok := inv.Take(1)
	if !ok || obj.ID != 1 {
		t.Fatalf("expected to take object 1, got %+v ok=%v", obj, ok)
	}
	if inv.Count != 1 {
		t.Errorf("expected count=1 after take, got %d", inv.Count)
	}
}

func TestRadarScanEncodesGrid(t *testing.T) {
	r := NewRadar()
	ctx := newCtx()

	if err := r.Store(0, 3|uint32(RadarTilesOnly)<<8, ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Cooldown == 0 {
		t.Error("expected a nonzero cooldown after a scan command")
	}
	if len(r.result) != 9 {
		t.Fatalf("expected a 3x3 result, got %d cells", len(r.result))
	}
	if r.result[4] != '@' {
		t.Errorf("expected the center cell to be the bot itself, got %q", r.result[4])
	}
}

func TestTimerAdvanceIncrementsTicks(t *testing.T) {
	tm := NewTimer(42)
	ctx := newCtx()

	seed, _ := tm.Load(0, ctx)
	if seed != 42 {
		t.Fatalf("expected seed=42, got %d", seed)
	}
	tm.Advance()
	tm.Advance()
	ticks, _ := tm.Load(4, ctx)
	if ticks != 2 {
		t.Errorf("expected ticks=2, got %d", ticks)
	}
}
