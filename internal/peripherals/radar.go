package peripherals

import (
	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/engine"
)

// Radar capability levels, requested in the second byte (bits 8-15) of
// the scan command: how much detail each scanned cell carries.
const (
	RadarTilesOnly      byte = 0
	RadarTilesAndBots    byte = 1
	RadarTilesBotsFacing byte = 2
)

// Radar performs an atomic N x N scan of the tiles around a bot: the
// result reflects world state at the moment of the scan, never at read
// time. Results are packed one byte per cell, four cells per readable
// word, row-major starting at the top-left of the window.
type Radar struct {
	Cooldown uint32
	size     uint32
	result   []byte
}

// NewRadar creates an idle radar.
func NewRadar() *Radar { return &Radar{} }

func (r *Radar) Load(offset uint32, _ *core.MmioContext) (uint32, error) {
	if offset == 0 {
		ready := uint32(0)
		if r.Cooldown == 0 {
			ready = 1
		}
		return ready | r.size<<8, nil
	}
	idx := int(offset - 4)
	var v uint32
	for i := 0; i < 4; i++ {
		if idx+i < len(r.result) {
			v |= uint32(r.result[idx+i]) << (8 * i)
		}
	}
	return v, nil
}

func (r *Radar) Store(_ uint32, val uint32, ctx *core.MmioContext) error {
	if r.Cooldown != 0 {
		return nil
	}
	n := val & 0xff
	capLevel := byte(val >> 8)
	cooldown, ok := engine.RadarCooldowns[n]
	if !ok {
		return nil
	}

	r.Cooldown = cooldown
	r.size = n
	r.result = scan(ctx, n, capLevel)
	return nil
}

func (r *Radar) Advance() {
	if r.Cooldown > 0 {
		r.Cooldown--
	}
}

func scan(ctx *core.MmioContext, n uint32, capLevel byte) []byte {
	half := int32(n / 2)
	out := make([]byte, 0, n*n)
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			p := core.Pos{X: ctx.Pos.X + dx, Y: ctx.Pos.Y + dy}
			out = append(out, scanCell(ctx, p, capLevel))
		}
	}
	return out
}

func scanCell(ctx *core.MmioContext, p core.Pos, capLevel byte) byte {
	if p == ctx.Pos {
		return '@'
	}
	tile := ctx.Map.At(p)
	if tile.Kind == core.TileVoid {
		return ' '
	}
	if capLevel >= RadarTilesAndBots && ctx.Occupied != nil {
		if _, ok := ctx.Occupied(p); ok {
			return '@'
		}
	}
	if ctx.ObjectAt != nil {
		if obj, ok := ctx.ObjectAt(p); ok {
			return byte(obj.Kind)
		}
	}
	switch tile.Kind {
	case core.TileFloor:
		return '.'
	case core.TileWallH:
		return '-'
	case core.TileWallV:
		return '|'
	case core.TileWater:
		return '~'
	default:
		return ' '
	}
}
