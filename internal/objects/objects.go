// Package objects tracks map objects (flags, gems) that are not currently
// held in any bot's inventory — each one occupies a unique map position
// until picked up.
package objects

import "github.com/kartoffels/kartoffels/internal/core"

// Index is a bidirectional map-position index over objects lying on the
// ground. An object id appears here or in exactly one bot's inventory,
// never both and never in two places at once.
type Index struct {
	byPos map[core.Pos]core.Object
	posOf map[core.ObjectID]core.Pos
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		byPos: make(map[core.Pos]core.Object),
		posOf: make(map[core.ObjectID]core.Pos),
	}
}

// Place puts obj at pos. The tile must not already hold an object.
func (idx *Index) Place(pos core.Pos, obj core.Object) {
	if _, ok := idx.byPos[pos]; ok {
		core.Fatalf("objects.Index.Place", "tile %v already holds an object", pos)
	}
	idx.byPos[pos] = obj
	idx.posOf[obj.ID] = pos
}

// At returns the object sitting at pos, if any.
func (idx *Index) At(pos core.Pos) (core.Object, bool) {
	obj, ok := idx.byPos[pos]
	return obj, ok
}

// Remove takes the object off the map at pos, if present.
func (idx *Index) Remove(pos core.Pos) (core.Object, bool) {
	obj, ok := idx.byPos[pos]
	if !ok {
		return core.Object{}, false
	}
	delete(idx.byPos, pos)
	delete(idx.posOf, obj.ID)
	return obj, true
}

// PosOf reports the position of the object with the given id, if it is
// currently lying on the map.
func (idx *Index) PosOf(id core.ObjectID) (core.Pos, bool) {
	pos, ok := idx.posOf[id]
	return pos, ok
}

// Len reports how many objects currently lie on the map.
func (idx *Index) Len() int {
	return len(idx.byPos)
}

// All returns every object currently on the map, in unspecified order —
// used for snapshot publication.
func (idx *Index) All() []core.Object {
	out := make([]core.Object, 0, len(idx.byPos))
	for _, obj := range idx.byPos {
		out = append(out, obj)
	}
	return out
}
