package migrations

import "github.com/kartoffels/kartoffels/internal/storage"

// RunV3 gives every alive bot an explicit inventory (32 empty slots) and
// every dead bot an explicit serial log, both of which used to be
// implicit zero values rather than saved fields.
func RunV3(dom interface{}) error {
	storage.Transform(dom, "bots/alive/*", func(bot interface{}) interface{} {
		m, ok := bot.(map[string]interface{})
		if !ok {
			return bot
		}
		m["inventory"] = map[string]interface{}{
			"objects": make([]interface{}, 32),
		}
		return bot
	})

	storage.Transform(dom, "bots/dead/*", func(bot interface{}) interface{} {
		m, ok := bot.(map[string]interface{})
		if !ok {
			return bot
		}
		m["serial"] = []interface{}{}
		return bot
	})

	return nil
}
