package bots

import (
	"testing"

	"github.com/kartoffels/kartoffels/internal/core"
)

func TestQueuedBotsFIFOOrder(t *testing.T) {
	q := NewQueuedBots()
	q.Push(&QueuedBot{ID: 1})
	q.Push(&QueuedBot{ID: 2})
	q.Push(&QueuedBot{ID: 3})

	if !q.Contains(2) {
		t.Fatal("expected bot 2 to be queued")
	}
	if q.Len() != 3 {
		t.Fatalf("expected length 3, got %d", q.Len())
	}

	first, ok := q.PopFront()
	if !ok || first.ID != 1 {
		t.Fatalf("expected bot 1 first, got %+v", first)
	}
	if q.Contains(1) {
		t.Fatal("bot 1 should no longer be queued")
	}
}

func TestQueuedBotsRemoveOutOfOrder(t *testing.T) {
	q := NewQueuedBots()
	q.Push(&QueuedBot{ID: 1})
	q.Push(&QueuedBot{ID: 2})
	q.Push(&QueuedBot{ID: 3})

	removed, ok := q.Remove(2)
	if !ok || removed.ID != 2 {
		t.Fatalf("expected to remove bot 2, got %+v", removed)
	}

	all := q.All()
	if len(all) != 2 || all[0].ID != 1 || all[1].ID != 3 {
		t.Fatalf("unexpected remaining order: %+v", all)
	}
}

func TestAliveBotsInsertGetMove(t *testing.T) {
	a := NewAliveBots()
	b := &AliveBot{ID: 1, Pos: core.Pos{X: 0, Y: 0}}
	a.Insert(b)

	if got, ok := a.At(core.Pos{X: 0, Y: 0}); !ok || got != 1 {
		t.Fatalf("expected bot 1 at origin, got %v, %v", got, ok)
	}

	a.Move(1, core.Pos{X: 1, Y: 0})
	if _, ok := a.At(core.Pos{X: 0, Y: 0}); ok {
		t.Fatal("origin should be vacated after move")
	}
	if got, ok := a.At(core.Pos{X: 1, Y: 0}); !ok || got != 1 {
		t.Fatalf("expected bot 1 at new tile, got %v, %v", got, ok)
	}
	if b.Pos != (core.Pos{X: 1, Y: 0}) {
		t.Fatalf("expected bot's own Pos field updated, got %v", b.Pos)
	}
}

func TestAliveBotsInsertDuplicateIDPanics(t *testing.T) {
	a := NewAliveBots()
	a.Insert(&AliveBot{ID: 1, Pos: core.Pos{X: 0, Y: 0}})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate id insert")
		}
	}()
	a.Insert(&AliveBot{ID: 1, Pos: core.Pos{X: 1, Y: 1}})
}

func TestAliveBotsRemoveFreesTile(t *testing.T) {
	a := NewAliveBots()
	a.Insert(&AliveBot{ID: 1, Pos: core.Pos{X: 2, Y: 2}})

	removed, ok := a.Remove(1)
	if !ok || removed.ID != 1 {
		t.Fatalf("expected to remove bot 1, got %+v", removed)
	}
	if _, ok := a.At(core.Pos{X: 2, Y: 2}); ok {
		t.Fatal("tile should be free after removal")
	}
	if a.Len() != 0 {
		t.Fatalf("expected 0 alive bots, got %d", a.Len())
	}
}

func TestDeadBotsEvictsOldestAtCapacity(t *testing.T) {
	d := NewDeadBots(2)

	if _, evicted := d.Push(&DeadBot{ID: 1}); evicted {
		t.Fatal("expected no eviction under capacity")
	}
	if _, evicted := d.Push(&DeadBot{ID: 2}); evicted {
		t.Fatal("expected no eviction at exactly capacity")
	}
	evicted, ok := d.Push(&DeadBot{ID: 3})
	if !ok || evicted.ID != 1 {
		t.Fatalf("expected bot 1 evicted, got %+v, %v", evicted, ok)
	}
	if _, ok := d.Get(1); ok {
		t.Fatal("bot 1 should no longer be retained")
	}
	if d.Len() != 2 {
		t.Fatalf("expected 2 retained records, got %d", d.Len())
	}
}
