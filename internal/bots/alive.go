package bots

import "github.com/kartoffels/kartoffels/internal/core"

// AliveBots is a bidirectional index over alive bots: id -> bot and
// pos -> id are kept in lockstep behind a single update API, so callers
// can never update one side without the other.
type AliveBots struct {
	byID  map[core.BotID]*AliveBot
	byPos map[core.Pos]core.BotID
}

// NewAliveBots creates an empty index.
func NewAliveBots() *AliveBots {
	return &AliveBots{
		byID:  make(map[core.BotID]*AliveBot),
		byPos: make(map[core.Pos]core.BotID),
	}
}

// Insert adds a freshly spawned bot. Both its id and its tile must be free.
func (a *AliveBots) Insert(b *AliveBot) {
	if _, ok := a.byID[b.ID]; ok {
		core.Fatalf("bots.AliveBots.Insert", "bot %d already alive", b.ID)
	}
	if occupant, ok := a.byPos[b.Pos]; ok {
		core.Fatalf("bots.AliveBots.Insert", "tile %v already occupied by bot %d", b.Pos, occupant)
	}
	a.byID[b.ID] = b
	a.byPos[b.Pos] = b.ID
}

// Remove drops a bot (it died or was discarded) and frees its tile.
func (a *AliveBots) Remove(id core.BotID) (*AliveBot, bool) {
	b, ok := a.byID[id]
	if !ok {
		return nil, false
	}
	delete(a.byID, id)
	delete(a.byPos, b.Pos)
	return b, true
}

// Get looks a bot up by id.
func (a *AliveBots) Get(id core.BotID) (*AliveBot, bool) {
	b, ok := a.byID[id]
	return b, ok
}

// At looks a bot up by tile.
func (a *AliveBots) At(pos core.Pos) (core.BotID, bool) {
	id, ok := a.byPos[pos]
	return id, ok
}

// Move relocates a bot to a new, currently-free tile, keeping both
// indices consistent. Callers must check the destination is free (or
// handle the resulting collision) before calling this.
func (a *AliveBots) Move(id core.BotID, to core.Pos) {
	b, ok := a.byID[id]
	if !ok {
		core.Fatalf("bots.AliveBots.Move", "bot %d is not alive", id)
	}
	if occupant, ok := a.byPos[to]; ok && occupant != id {
		core.Fatalf("bots.AliveBots.Move", "tile %v already occupied by bot %d", to, occupant)
	}
	delete(a.byPos, b.Pos)
	b.Pos = to
	a.byPos[to] = id
}

// Len reports the number of alive bots.
func (a *AliveBots) Len() int {
	return len(a.byID)
}

// IDs returns a fresh slice of every alive bot id, for the scheduler to
// permute into a per-tick visitation order.
func (a *AliveBots) IDs() []core.BotID {
	out := make([]core.BotID, 0, len(a.byID))
	for id := range a.byID {
		out = append(out, id)
	}
	return out
}
