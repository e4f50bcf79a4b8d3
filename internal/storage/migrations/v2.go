// Package migrations holds every save-format migration, one file per
// target version, plus the chain that wires them together in order.
// Migrations are never edited after being committed — a format change
// adds a new file and bumps engine.CurrentSaveVersion instead.
package migrations

import "github.com/kartoffels/kartoffels/internal/storage"

// RunV2 introduces the world clock as an explicit save field: saves
// from before the clock was configurable default to the automatic
// metronome at its standard rate.
func RunV2(dom interface{}) error {
	root, ok := dom.(map[string]interface{})
	if !ok {
		return nil
	}
	root["clock"] = map[string]interface{}{
		"type":  "auto",
		"hz":    64_000,
		"steps": 1_000,
	}
	return nil
}
