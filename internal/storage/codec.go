package storage

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/kartoffels/kartoffels/internal/engine"
)

// domDecMode decodes every CBOR map into map[string]interface{} (rather
// than the library's default map[interface{}]interface{}) so Transform
// can mutate nested maps in place without copying them out and back in.
var domDecMode = mustDecMode()

func mustDecMode() cbor.DecMode {
	mode, err := cbor.DecOptions{DefaultMapType: reflect.TypeOf(map[string]interface{}{})}.DecMode()
	if err != nil {
		panic(err) // static configuration; a failure here is a build-time bug
	}
	return mode
}

// Migration is one pure step in the chain: it rewrites dom, a generic
// decoded CBOR value, from its own From version to From+1.
type Migration struct {
	From  uint32
	Apply func(dom interface{}) error
}

// Encode builds a complete save file: header at CurrentSaveVersion
// followed by the CBOR encoding of body.
func Encode(body interface{}) ([]byte, error) {
	payload, err := cbor.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding save body: %w", err)
	}
	return append(EncodeHeader(engine.CurrentSaveVersion), payload...), nil
}

// Decode reads a complete save file, applies any migrations needed to
// bring it up to CurrentSaveVersion, and unmarshals the result into out.
func Decode(data []byte, chain []Migration, out interface{}) error {
	version, body, err := DecodeHeader(data)
	if err != nil {
		return err
	}

	var dom interface{}
	if err := domDecMode.Unmarshal(body, &dom); err != nil {
		return fmt.Errorf("decoding save body: %w", err)
	}

	dom, err = Migrate(dom, version, chain)
	if err != nil {
		return err
	}

	migrated, err := cbor.Marshal(dom)
	if err != nil {
		return fmt.Errorf("re-encoding migrated save body: %w", err)
	}
	if err := cbor.Unmarshal(migrated, out); err != nil {
		return fmt.Errorf("decoding migrated save body into target: %w", err)
	}
	return nil
}

// Migrate applies every migration in chain whose From version is in
// [fromVersion, engine.CurrentSaveVersion), in order, and returns the
// resulting DOM. The chain must be sorted by From and cover every
// version gap; a missing step is a migration-authoring bug.
func Migrate(dom interface{}, fromVersion uint32, chain []Migration) (interface{}, error) {
	version := fromVersion
	for version < engine.CurrentSaveVersion {
		step, ok := findMigration(chain, version)
		if !ok {
			return nil, fmt.Errorf("%w: no migration registered from version %d", ErrMigrationFailed, version)
		}
		if err := step.Apply(dom); err != nil {
			return nil, fmt.Errorf("%w: migrating from version %d: %v", ErrMigrationFailed, version, err)
		}
		version++
	}
	return dom, nil
}

func findMigration(chain []Migration, from uint32) (Migration, bool) {
	for _, m := range chain {
		if m.From == from {
			return m, true
		}
	}
	return Migration{}, false
}
