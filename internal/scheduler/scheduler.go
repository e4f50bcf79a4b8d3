// Package scheduler runs one world tick: it visits every alive bot in a
// randomized order, steps its CPU, applies the single action it queued,
// and advances every peripheral's cooldown — exactly the sequence
// described for the world actor's tick loop.
package scheduler

import (
	"math/rand"

	"github.com/kartoffels/kartoffels/internal/bots"
	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/cpu"
	"github.com/kartoffels/kartoffels/internal/events"
	"github.com/kartoffels/kartoffels/internal/objects"
)

// Kill records that a bot must die as a consequence of this tick's step;
// the lifecycle manager is the one that actually removes it from the
// alive container, since that also involves spawn-queue bookkeeping.
type Kill struct {
	ID     core.BotID
	Reason string
	Killer core.BotID // zero if nobody gets credit
}

// Result carries everything produced by one Step call.
type Result struct {
	Events          []events.Event
	Kills           []Kill
	InstructionsRun uint64
	Crashes         uint64
}

// Options configures one Step call.
type Options struct {
	// InstructionsPerTick bounds how many instructions each bot's CPU may
	// retire this tick before the scheduler moves on regardless.
	InstructionsPerTick uint32
}

// Step advances every alive bot by one world tick. alive and objIdx are
// mutated directly for moves/pick/drop; kills are reported rather than
// applied so the caller can run lifecycle bookkeeping (events, requeue
// decisions) uniformly for crashes, falls, and stabs alike. killed tracks
// every bot already scheduled to die earlier this same tick, so the
// randomized visit order acts as the tie-break the spec calls for: once a
// bot has been stabbed (or has fallen), it neither takes its own turn nor
// counts as a valid stab target for anyone still to come, even though it
// physically remains in alive until the lifecycle manager removes it.
func Step(tick uint64, alive *bots.AliveBots, objIdx *objects.Index, m *core.Map, rng *rand.Rand, opts Options) Result {
	ids := alive.IDs()
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	var result Result
	killed := make(map[core.BotID]bool, len(ids))
	for _, id := range ids {
		if killed[id] {
			continue
		}
		bot, ok := alive.Get(id)
		if !ok {
			// Killed earlier in this same tick (e.g. stabbed by a bot
			// scheduled before it).
			continue
		}

		stepBot(tick, id, bot, alive, objIdx, m, opts, &result, killed)
	}
	return result
}

// aliveAt reports the bot occupying p, treating anyone already marked
// killed this tick as absent even though alive hasn't removed it yet.
func aliveAt(alive *bots.AliveBots, killed map[core.BotID]bool, p core.Pos) (core.BotID, bool) {
	id, ok := alive.At(p)
	if !ok || killed[id] {
		return 0, false
	}
	return id, true
}

func stepBot(tick uint64, id core.BotID, bot *bots.AliveBot, alive *bots.AliveBots, objIdx *objects.Index, m *core.Map, opts Options, result *Result, killed map[core.BotID]bool) {
	var action core.Action
	ctx := &core.MmioContext{
		Action:   &action,
		Map:      m,
		Pos:      bot.Pos,
		Dir:      bot.Dir,
		Occupied: func(p core.Pos) (core.BotID, bool) { return aliveAt(alive, killed, p) },
		ObjectAt: func(p core.Pos) (core.Object, bool) { return objIdx.At(p) },
		Tick:     tick,
		RNG:      bot.RNG,
	}
	bot.MMIO.SetContext(ctx)
	bot.MMIO.Compass.Latch(bot.Dir)
	bot.Crashed = nil

	var i uint32
	for ; i < opts.InstructionsPerTick; i++ {
		err := bot.CPU.Tick(bot.MMIO)
		if err == nil {
			continue
		}
		if cpu.IsEbreak(err) {
			result.Events = append(result.Events, events.Event{Kind: events.BotReachedBreakpoint, BotID: id, At: bot.Pos})
			i++
			break
		}
		bot.Crashed = err
		i++
		break
	}
	result.InstructionsRun += uint64(i)

	if bot.Crashed != nil {
		result.Crashes++
		result.Kills = append(result.Kills, Kill{ID: id, Reason: bot.Crashed.Error()})
		killed[id] = true
		return
	}

	applyAction(id, bot, action, alive, objIdx, m, result, killed)
	bot.MMIO.Advance()
}

func applyAction(id core.BotID, bot *bots.AliveBot, action core.Action, alive *bots.AliveBots, objIdx *objects.Index, m *core.Map, result *Result, killed map[core.BotID]bool) {
	switch action.Kind {
	case core.ActionNone:
		return

	case core.ActionMove:
		applyMove(id, bot, action.At, alive, m, result, killed)

	case core.ActionTurn:
		bot.Dir = action.Dir

	case core.ActionArmStab:
		// The kill credit (and its BotScored event) is recorded by the
		// lifecycle manager once the kill is actually applied, since that
		// is the one place that knows both victim and killer. target is
		// filtered through killed so two bots stabbing each other the same
		// tick resolve to exactly one death, per the randomized visit
		// order: whichever bot's turn comes first claims the kill, and the
		// other's stab lands on a target already gone.
		if target, ok := aliveAt(alive, killed, action.At); ok && target != id {
			result.Kills = append(result.Kills, Kill{ID: target, Reason: "stabbed", Killer: id})
			if killed != nil {
				killed[target] = true
			}
		}

	case core.ActionArmPick:
		applyPick(id, bot, action.At, objIdx, result)

	case core.ActionArmDrop:
		applyDrop(id, bot, action.At, action.Idx, objIdx, m, result)
	}
}

func applyMove(id core.BotID, bot *bots.AliveBot, at core.Pos, alive *bots.AliveBots, m *core.Map, result *Result, killed map[core.BotID]bool) {
	tile := m.At(at)
	if tile.Kind == core.TileVoid {
		bot.Fallen = true
		result.Kills = append(result.Kills, Kill{ID: id, Reason: "fell into the void"})
		if killed != nil {
			killed[id] = true
		}
		return
	}
	if tile.Kind != core.TileFloor {
		return // wall/water: no-op
	}
	if _, occupied := aliveAt(alive, killed, at); occupied {
		return // another bot got there first this tick
	}
	alive.Move(id, at)
	result.Events = append(result.Events, events.Event{Kind: events.BotMoved, BotID: id, At: at})
}

func applyPick(id core.BotID, bot *bots.AliveBot, at core.Pos, objIdx *objects.Index, result *Result) {
	obj, ok := objIdx.At(at)
	if !ok {
		return
	}
	if !bot.MMIO.Inventory.Add(obj) {
		return // inventory full: object stays on the map
	}
	objIdx.Remove(at)
	result.Events = append(result.Events, events.Event{Kind: events.ObjectPicked, BotID: id, At: at})
}

func applyDrop(id core.BotID, bot *bots.AliveBot, at core.Pos, idx uint8, objIdx *objects.Index, m *core.Map, result *Result) {
	obj, ok := bot.MMIO.Inventory.Take(int(idx))
	if !ok {
		return
	}
	if m.At(at).Kind == core.TileFloor {
		if _, occupied := objIdx.At(at); !occupied {
			objIdx.Place(at, obj)
			result.Events = append(result.Events, events.Event{Kind: events.ObjectDropped, BotID: id, At: at})
			return
		}
	}
	bot.MMIO.Inventory.Add(obj) // target tile unusable: return the object to the inventory
}
