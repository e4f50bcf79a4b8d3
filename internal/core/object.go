package core

// ObjectKind is the recognized kind of a map/inventory object.
type ObjectKind uint8

const (
	ObjectFlag ObjectKind = '='
	ObjectGem  ObjectKind = '*'
)

// Object is a piece of world state that is either on the map at a unique
// position, or in exactly one bot's inventory — never both.
type Object struct {
	ID   ObjectID
	Kind ObjectKind
	Meta [3]byte
}
