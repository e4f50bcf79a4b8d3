package lifecycle

import (
	"fmt"
	"math/rand"

	"github.com/kartoffels/kartoffels/internal/bots"
	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/cpu"
	"github.com/kartoffels/kartoffels/internal/events"
	"github.com/kartoffels/kartoffels/internal/mmio"
)

// Manager owns no state of its own beyond policy: every method takes the
// containers it needs to mutate explicitly, the same way scheduler.Step
// does, so the world actor is the sole owner of all of it.
type Manager struct {
	Policy Policy
}

// NewManager creates a manager enforcing policy.
func NewManager(policy Policy) *Manager {
	return &Manager{Policy: policy}
}

// CreateRequest describes an upload.
type CreateRequest struct {
	Firmware     []byte
	RequestedPos *core.Pos
	RequestedDir *core.Dir
	Instant      bool
	Oneshot      bool
}

// Create validates firmware, assigns a fresh id, and either spawns the
// bot immediately (if requested and a slot is free) or enqueues it.
func (mgr *Manager) Create(
	alive *bots.AliveBots, queued *bots.QueuedBots, dead *bots.DeadBots,
	m *core.Map, rng *rand.Rand, req CreateRequest, tick uint64,
) (core.BotID, error) {
	if _, err := cpu.LoadFirmware(req.Firmware); err != nil {
		return 0, fmt.Errorf("invalid firmware: %w", err)
	}

	id := freshID(alive, queued, dead, rng)
	qb := &bots.QueuedBot{
		ID:           id,
		Firmware:     req.Firmware,
		RequestedPos: req.RequestedPos,
		RequestedDir: req.RequestedDir,
		Oneshot:      req.Oneshot,
	}

	if req.Instant && alive.Len() < mgr.Policy.MaxAliveBots {
		if err := mgr.spawnFromQueue(qb, alive, m, rng, nil, nil, tick); err != nil {
			return 0, err
		}
		return id, nil
	}

	if queued.Len() >= mgr.Policy.MaxQueuedBots {
		return 0, ErrQueueFull
	}
	queued.Push(qb)
	return id, nil
}

// SpawnTick runs once per world tick: while there is room among the
// alive bots and a bot at the front of the queue, it resolves a spawn
// position and places it. defaultPos/defaultDir are the world's
// configured spawn point, if any (SetSpawn).
func (mgr *Manager) SpawnTick(
	alive *bots.AliveBots, queued *bots.QueuedBots, m *core.Map, rng *rand.Rand,
	defaultPos *core.Pos, defaultDir *core.Dir, tick uint64,
) []events.Event {
	var born []events.Event
	for alive.Len() < mgr.Policy.MaxAliveBots {
		qb, ok := queued.PopFront()
		if !ok {
			break
		}
		if err := mgr.spawnFromQueue(qb, alive, m, rng, defaultPos, defaultDir, tick); err != nil {
			// No legal position could be found this tick; put it back at
			// the front and stop — trying the rest of the queue in the
			// same tick would reorder arrivals.
			queued.PushFront(qb)
			break
		}
		born = append(born, events.Event{Kind: events.BotBorn, BotID: qb.ID, Version: tick})
	}
	return born
}

func (mgr *Manager) spawnFromQueue(
	qb *bots.QueuedBot, alive *bots.AliveBots, m *core.Map, rng *rand.Rand,
	defaultPos *core.Pos, defaultDir *core.Dir, tick uint64,
) error {
	pos, dir, err := resolveSpawnPoint(qb, alive, m, rng, defaultPos, defaultDir)
	if err != nil {
		return err
	}
	firmwareCPU, err := cpu.LoadFirmware(qb.Firmware)
	if err != nil {
		// Firmware was already validated at Create time; a failure here
		// would be a programmer error, not a user-facing one.
		core.Fatalf("lifecycle.spawnFromQueue", "previously-valid firmware failed to reload: %v", err)
	}

	disp := mmio.New(uint32(rng.Int31()), dir)
	if len(qb.SerialSnapshot) > 0 {
		disp.Serial.Current = append([]uint32(nil), qb.SerialSnapshot...)
	}

	bot := &bots.AliveBot{
		ID:       qb.ID,
		CPU:      firmwareCPU,
		MMIO:     disp,
		Pos:      pos,
		Dir:      dir,
		Birth:    tick,
		RNG:      rand.New(rand.NewSource(rng.Int63())),
		Firmware: qb.Firmware,
		Oneshot:  qb.Oneshot,
		Events:   qb.Events,
	}
	alive.Insert(bot)
	return nil
}

const maxSpawnAttempts = 1024

func resolveSpawnPoint(
	qb *bots.QueuedBot, alive *bots.AliveBots, m *core.Map, rng *rand.Rand,
	defaultPos *core.Pos, defaultDir *core.Dir,
) (core.Pos, core.Dir, error) {
	if qb.RequestedPos != nil {
		dir := core.DirN
		if qb.RequestedDir != nil {
			dir = *qb.RequestedDir
		}
		if legalSpawn(m, alive, *qb.RequestedPos) {
			return *qb.RequestedPos, dir, nil
		}
		return core.Pos{}, 0, ErrInvalidSpawnPoint
	}
	if defaultPos != nil {
		dir := core.DirN
		if defaultDir != nil {
			dir = *defaultDir
		}
		if legalSpawn(m, alive, *defaultPos) {
			return *defaultPos, dir, nil
		}
		return core.Pos{}, 0, ErrInvalidSpawnPoint
	}
	for i := 0; i < maxSpawnAttempts; i++ {
		p := core.Pos{X: rng.Int31n(m.Size.X), Y: rng.Int31n(m.Size.Y)}
		if legalSpawn(m, alive, p) {
			return p, core.Dir(rng.Intn(4)), nil
		}
	}
	return core.Pos{}, 0, ErrInvalidSpawnPoint
}

func legalSpawn(m *core.Map, alive *bots.AliveBots, p core.Pos) bool {
	if m.At(p).Kind != core.TileFloor {
		return false
	}
	_, occupied := alive.At(p)
	return !occupied
}

// Kill transitions an alive bot to dead or, if auto-respawn applies,
// back into the queue. It returns the events produced (BotDied and,
// if killer is non-zero, BotScored).
func (mgr *Manager) Kill(
	alive *bots.AliveBots, queued *bots.QueuedBots, dead *bots.DeadBots,
	id core.BotID, reason string, killer core.BotID, tick uint64,
) ([]events.Event, error) {
	bot, ok := alive.Remove(id)
	if !ok {
		return nil, ErrBotNotFound
	}

	out := []events.Event{{Kind: events.BotDied, BotID: id, At: bot.Pos, Reason: reason, Version: tick}}
	if killer != 0 {
		out = append(out, events.Event{Kind: events.BotScored, BotID: killer, Version: tick})
	}

	queueFull := queued.Len() >= mgr.Policy.MaxQueuedBots

	if bot.Oneshot || !mgr.Policy.AutoRespawn || queueFull {
		evicted, wasEvicted := dead.Push(&bots.DeadBot{
			ID:             id,
			EventsSnapshot: bot.Events,
			SerialSnapshot: bot.MMIO.Serial.Snapshot(),
		})
		if wasEvicted {
			out = append(out, events.Event{Kind: events.BotDiscarded, BotID: evicted.ID, Version: tick})
		}
		return out, nil
	}

	queued.Push(&bots.QueuedBot{
		ID:             id,
		Firmware:       bot.Firmware,
		Events:         bot.Events,
		SerialSnapshot: bot.MMIO.Serial.Snapshot(),
		Requeued:       true,
		Oneshot:        bot.Oneshot,
	})
	return out, nil
}

// Delete removes a bot from the alive or the queued container. Dead-bot
// records are not removed: for a bot found only among the dead, Delete
// reports false.
func Delete(alive *bots.AliveBots, queued *bots.QueuedBots, dead *bots.DeadBots, id core.BotID) bool {
	if _, ok := alive.Remove(id); ok {
		return true
	}
	if _, ok := queued.Remove(id); ok {
		return true
	}
	return false
}

func freshID(alive *bots.AliveBots, queued *bots.QueuedBots, dead *bots.DeadBots, rng *rand.Rand) core.BotID {
	for {
		id := core.BotID(rng.Uint64())
		if id == 0 {
			continue
		}
		if _, ok := alive.Get(id); ok {
			continue
		}
		if queued.Contains(id) {
			continue
		}
		if _, ok := dead.Get(id); ok {
			continue
		}
		return id
	}
}
