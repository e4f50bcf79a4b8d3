package kartoffels

import "github.com/kartoffels/kartoffels/internal/lifecycle"

// Policy bounds admission into a world: how many bots may be alive or
// queued at once, and whether a killed bot automatically requeues.
type Policy = lifecycle.Policy

// DefaultPolicy returns the engine's default admission policy.
func DefaultPolicy() Policy {
	return lifecycle.DefaultPolicy()
}
