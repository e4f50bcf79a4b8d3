package objects

import (
	"testing"

	"github.com/kartoffels/kartoffels/internal/core"
)

func TestPlaceAndAt(t *testing.T) {
	idx := NewIndex()
	pos := core.Pos{X: 1, Y: 1}
	obj := core.Object{ID: 7, Kind: core.ObjectGem}

	idx.Place(pos, obj)

	got, ok := idx.At(pos)
	if !ok || got.ID != 7 {
		t.Fatalf("expected object 7 at %v, got %+v, %v", pos, got, ok)
	}
	if idx.Len() != 1 {
		t.Fatalf("expected length 1, got %d", idx.Len())
	}
}

func TestRemoveClearsBothSides(t *testing.T) {
	idx := NewIndex()
	pos := core.Pos{X: 2, Y: 3}
	idx.Place(pos, core.Object{ID: 1, Kind: core.ObjectFlag})

	removed, ok := idx.Remove(pos)
	if !ok || removed.ID != 1 {
		t.Fatalf("expected to remove object 1, got %+v, %v", removed, ok)
	}
	if _, ok := idx.At(pos); ok {
		t.Fatal("expected tile to be empty after removal")
	}
	if idx.Len() != 0 {
		t.Fatalf("expected length 0, got %d", idx.Len())
	}
}

func TestPosOfReportsMapPosition(t *testing.T) {
	idx := NewIndex()
	pos := core.Pos{X: 4, Y: 5}
	idx.Place(pos, core.Object{ID: 9, Kind: core.ObjectGem})

	got, ok := idx.PosOf(9)
	if !ok || got != pos {
		t.Fatalf("expected position %v for object 9, got %v, %v", pos, got, ok)
	}

	idx.Remove(pos)
	if _, ok := idx.PosOf(9); ok {
		t.Fatal("expected PosOf to report false after removal")
	}
}

func TestPlaceOnOccupiedTilePanics(t *testing.T) {
	idx := NewIndex()
	pos := core.Pos{X: 0, Y: 0}
	idx.Place(pos, core.Object{ID: 1, Kind: core.ObjectFlag})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when placing on an occupied tile")
		}
	}()
	idx.Place(pos, core.Object{ID: 2, Kind: core.ObjectGem})
}
