package core

import "fmt"

// InvariantError marks a condition that must never occur — a bug, not a
// user-facing error. Internal packages panic with it directly (they
// cannot import the root package's richer Error type without creating
// an import cycle). The root package does not recover these: they
// propagate as panics.
type InvariantError struct {
	Op  string
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation (%s): %s", e.Op, e.Msg)
}

// Fatalf panics with an InvariantError — reserved for world-level bugs
// (double-inserted id, map-out-of-bounds in a core path) that must
// never occur and are never user errors.
func Fatalf(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Msg: fmt.Sprintf(format, args...)})
}
