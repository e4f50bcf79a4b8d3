package kartoffels

import (
	"strconv"

	"github.com/kartoffels/kartoffels/internal/bots"
	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/cpu"
	"github.com/kartoffels/kartoffels/internal/engine"
	"github.com/kartoffels/kartoffels/internal/mmio"
	"github.com/kartoffels/kartoffels/internal/objects"
	"github.com/kartoffels/kartoffels/internal/storage"
	"github.com/kartoffels/kartoffels/internal/storage/migrations"
)

func botIDKey(id core.BotID) string { return strconv.FormatUint(uint64(id), 10) }

func keyToBotID(key string) (core.BotID, error) {
	v, err := strconv.ParseUint(key, 10, 64)
	if err != nil {
		return 0, err
	}
	return core.BotID(v), nil
}

// The on-disk DOM mirrors spec §4.6's body shape, {bots, lives, map, name,
// policy, rng, theme?}, as plain CBOR-taggable structs. "lives" carries
// each bot's lifetime score, the one piece of history that outlives the
// bot itself; map objects travel nested under "map" since they are
// positional state the same way tiles are.

type objectDOM struct {
	ID   uint64 `cbor:"id"`
	Kind uint8  `cbor:"kind"`
	X    int32  `cbor:"x"`
	Y    int32  `cbor:"y"`
}

type mapDOM struct {
	Width   int32       `cbor:"width"`
	Height  int32       `cbor:"height"`
	Tiles   []byte      `cbor:"tiles"`
	Objects []objectDOM `cbor:"objects"`
}

type aliveBotDOM struct {
	ID        uint64      `cbor:"id"`
	Firmware  []byte      `cbor:"firmware"`
	X         int32       `cbor:"x"`
	Y         int32       `cbor:"y"`
	Dir       uint8       `cbor:"dir"`
	Birth     uint64      `cbor:"birth"`
	Oneshot   bool        `cbor:"oneshot"`
	Serial    []uint32    `cbor:"serial"`
	Inventory []objectDOM `cbor:"inventory"`
}

type queuedBotDOM struct {
	ID            uint64      `cbor:"id"`
	Firmware      []byte      `cbor:"firmware"`
	Serial        []uint32    `cbor:"serial"`
	RequestedX    *int32      `cbor:"requested_x,omitempty"`
	RequestedY    *int32      `cbor:"requested_y,omitempty"`
	RequestedDir  *uint8      `cbor:"requested_dir,omitempty"`
	Requeued      bool        `cbor:"requeued"`
	Oneshot       bool        `cbor:"oneshot"`
}

type deadBotDOM struct {
	ID     uint64   `cbor:"id"`
	Serial []uint32 `cbor:"serial"`
}

type botsDOM struct {
	Alive  []aliveBotDOM  `cbor:"alive"`
	Queued []queuedBotDOM `cbor:"queued"`
	Dead   []deadBotDOM   `cbor:"dead"`
}

type policyDOM struct {
	MaxAliveBots     int  `cbor:"max_alive_bots"`
	MaxQueuedBots    int  `cbor:"max_queued_bots"`
	AutoRespawn      bool `cbor:"auto_respawn"`
	AllowBreakpoints bool `cbor:"allow_breakpoints"`
}

// rngDOM persists only the seed the world's RNG stream was started from.
// math/rand exposes no portable way to snapshot a *rand.Rand's internal
// state, so a restored world resumes determinism from this seed rather
// than from the exact point the live stream had reached — documented as
// an accepted deviation from bit-for-bit RNG continuity across restarts.
type rngDOM struct {
	Seed int64 `cbor:"seed"`
}

type saveDOM struct {
	Name   string     `cbor:"name"`
	Theme  string     `cbor:"theme,omitempty"`
	Map    mapDOM     `cbor:"map"`
	Bots   botsDOM    `cbor:"bots"`
	Lives  map[string]uint64 `cbor:"lives"`
	Policy policyDOM  `cbor:"policy"`
	RNG    rngDOM     `cbor:"rng"`
}

func dirToByte(d core.Dir) uint8 { return uint8(d) }
func byteToDir(b uint8) core.Dir { return core.Dir(b) }

func objectsToDOM(idx *objects.Index) []objectDOM {
	all := idx.All()
	out := make([]objectDOM, 0, len(all))
	for _, obj := range all {
		pos, ok := idx.PosOf(obj.ID)
		if !ok {
			continue
		}
		out = append(out, objectDOM{ID: uint64(obj.ID), Kind: uint8(obj.Kind), X: pos.X, Y: pos.Y})
	}
	return out
}

func inventoryToDOM(disp *mmio.Dispatcher) []objectDOM {
	out := make([]objectDOM, 0, disp.Inventory.Count)
	for i := 0; i < disp.Inventory.Count; i++ {
		obj := disp.Inventory.Items[i]
		out = append(out, objectDOM{ID: uint64(obj.ID), Kind: uint8(obj.Kind)})
	}
	return out
}

// buildSaveDOM captures a complete, independent copy of the world's state.
// It must run on the actor goroutine so the snapshot it returns is
// consistent with a single tick boundary; the caller may then hand the
// result to a background goroutine for encoding and I/O.
func (w *World) buildSaveDOM() saveDOM {
	m := w.mapState
	tiles := make([]byte, len(m.Tiles))
	for i, t := range m.Tiles {
		tiles[i] = byte(t.Kind)
	}

	dom := saveDOM{
		Name:  w.name,
		Theme: w.theme,
		Map: mapDOM{
			Width:   m.Size.X,
			Height:  m.Size.Y,
			Tiles:   tiles,
			Objects: objectsToDOM(w.objects),
		},
		Policy: policyDOM{
			MaxAliveBots:     w.lifecycleMgr.Policy.MaxAliveBots,
			MaxQueuedBots:    w.lifecycleMgr.Policy.MaxQueuedBots,
			AutoRespawn:      w.lifecycleMgr.Policy.AutoRespawn,
			AllowBreakpoints: w.lifecycleMgr.Policy.AllowBreakpoints,
		},
		RNG:   rngDOM{Seed: w.rngSeed},
		Lives: make(map[string]uint64, len(w.scores)),
	}

	for id, score := range w.scores {
		dom.Lives[botIDKey(id)] = score
	}

	for _, id := range w.alive.IDs() {
		b, _ := w.alive.Get(id)
		dom.Bots.Alive = append(dom.Bots.Alive, aliveBotDOM{
			ID:        uint64(b.ID),
			Firmware:  b.Firmware,
			X:         b.Pos.X,
			Y:         b.Pos.Y,
			Dir:       dirToByte(b.Dir),
			Birth:     b.Birth,
			Oneshot:   b.Oneshot,
			Serial:    b.MMIO.Serial.Snapshot(),
			Inventory: inventoryToDOM(b.MMIO),
		})
	}

	for _, qb := range w.queued.All() {
		entry := queuedBotDOM{
			ID:       uint64(qb.ID),
			Firmware: qb.Firmware,
			Serial:   qb.SerialSnapshot,
			Requeued: qb.Requeued,
			Oneshot:  qb.Oneshot,
		}
		if qb.RequestedPos != nil {
			entry.RequestedX = &qb.RequestedPos.X
			entry.RequestedY = &qb.RequestedPos.Y
		}
		if qb.RequestedDir != nil {
			d := dirToByte(*qb.RequestedDir)
			entry.RequestedDir = &d
		}
		dom.Bots.Queued = append(dom.Bots.Queued, entry)
	}

	for _, db := range w.dead.All() {
		dom.Bots.Dead = append(dom.Bots.Dead, deadBotDOM{ID: uint64(db.ID), Serial: db.SerialSnapshot})
	}

	return dom
}

// restoreFromDOM rebuilds a world's mutable state from a decoded,
// migrated save body. It runs once, before the actor loop starts.
func (w *World) restoreFromDOM(dom saveDOM) error {
	w.name = dom.Name
	w.theme = dom.Theme

	m := core.NewMap(dom.Map.Width, dom.Map.Height)
	for i, kind := range dom.Map.Tiles {
		if i >= len(m.Tiles) {
			break
		}
		m.Tiles[i].Kind = core.TileKind(kind)
	}
	w.mapState = m
	w.objects = objects.NewIndex()
	for _, o := range dom.Map.Objects {
		w.objects.Place(core.Pos{X: o.X, Y: o.Y}, core.Object{ID: core.ObjectID(o.ID), Kind: core.ObjectKind(o.Kind)})
	}

	w.lifecycleMgr.Policy = Policy{
		MaxAliveBots:     dom.Policy.MaxAliveBots,
		MaxQueuedBots:    dom.Policy.MaxQueuedBots,
		AutoRespawn:      dom.Policy.AutoRespawn,
		AllowBreakpoints: dom.Policy.AllowBreakpoints,
	}

	w.scores = make(map[core.BotID]uint64, len(dom.Lives))
	for key, score := range dom.Lives {
		id, err := keyToBotID(key)
		if err != nil {
			continue
		}
		w.scores[id] = score
	}

	w.alive = bots.NewAliveBots()
	for _, a := range dom.Bots.Alive {
		firmwareCPU, err := cpu.LoadFirmware(a.Firmware)
		if err != nil {
			return WrapError("Restore", err)
		}
		disp := mmio.New(uint32(w.rng.Int31()), byteToDir(a.Dir))
		if len(a.Serial) > 0 {
			disp.Serial.Current = append([]uint32(nil), a.Serial...)
		}
		for _, o := range a.Inventory {
			disp.Inventory.Add(core.Object{ID: core.ObjectID(o.ID), Kind: core.ObjectKind(o.Kind)})
		}
		w.alive.Insert(&bots.AliveBot{
			ID:       core.BotID(a.ID),
			CPU:      firmwareCPU,
			MMIO:     disp,
			Pos:      core.Pos{X: a.X, Y: a.Y},
			Dir:      byteToDir(a.Dir),
			Birth:    a.Birth,
			RNG:      newChildRNG(w.rng),
			Firmware: a.Firmware,
			Oneshot:  a.Oneshot,
		})
	}

	w.queued = bots.NewQueuedBots()
	for _, q := range dom.Bots.Queued {
		qb := &bots.QueuedBot{
			ID:             core.BotID(q.ID),
			Firmware:       q.Firmware,
			SerialSnapshot: q.Serial,
			Requeued:       q.Requeued,
			Oneshot:        q.Oneshot,
		}
		if q.RequestedX != nil && q.RequestedY != nil {
			qb.RequestedPos = &core.Pos{X: *q.RequestedX, Y: *q.RequestedY}
		}
		if q.RequestedDir != nil {
			d := byteToDir(*q.RequestedDir)
			qb.RequestedDir = &d
		}
		w.queued.Push(qb)
	}

	w.dead = bots.NewDeadBots(engine.DeadBotsCapacity)
	for _, d := range dom.Bots.Dead {
		w.dead.Push(&bots.DeadBot{ID: core.BotID(d.ID), SerialSnapshot: d.Serial})
	}

	return nil
}

// loadFromStorage reads and migrates a save file, if one exists, and
// restores it into w. A missing file is not an error: the world simply
// starts empty, the way a brand-new save slot would.
func (w *World) loadFromStorage() error {
	raw, err := w.storage.Load()
	if err != nil {
		return nil
	}

	var dom saveDOM
	if err := storage.Decode(raw, migrations.Chain(), &dom); err != nil {
		return WrapError("Restore", err)
	}
	return w.restoreFromDOM(dom)
}
