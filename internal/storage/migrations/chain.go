package migrations

import "github.com/kartoffels/kartoffels/internal/storage"

// Chain returns every registered migration in order. storage.Migrate
// looks one up by its From version, so order here only needs to be
// readable, not load-bearing.
func Chain() []storage.Migration {
	return []storage.Migration{
		{From: 1, Apply: RunV2},
		{From: 2, Apply: RunV3},
	}
}
