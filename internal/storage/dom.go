package storage

import "strings"

// Transform applies fn to every value addressed by path within dom,
// writing each result back in place. path segments are separated by
// '/'; a "*" segment fans out across every element of a slice at that
// level, and "{a,b,c}" matches whichever of several alternative keys is
// present at that level — useful when a migration must address a field
// that may carry one of several prior names. This is the DOM query
// language migrations are written against: a small, generic,
// JSON-Pointer-like navigator over the decoded save body, independent
// of any particular save version's Go struct shape.
func Transform(dom interface{}, path string, fn func(interface{}) interface{}) {
	segs := splitPath(path)
	if len(segs) == 0 {
		fn(dom) // the root has no parent to write a result back into
		return
	}
	transform(dom, segs, fn)
}

// Get returns the first value addressed by path, if any exists.
func Get(dom interface{}, path string) (interface{}, bool) {
	var found interface{}
	ok := false
	Transform(dom, path, func(v interface{}) interface{} {
		if !ok {
			found, ok = v, true
		}
		return v
	})
	return found, ok
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func transform(v interface{}, segs []string, fn func(interface{}) interface{}) {
	if len(segs) == 0 {
		return
	}
	seg, rest := segs[0], segs[1:]

	if seg == "*" {
		if arr, ok := v.([]interface{}); ok {
			for _, el := range arr {
				transform(el, rest, fn)
			}
		}
		return
	}

	m, ok := v.(map[string]interface{})
	if !ok {
		return
	}
	for _, key := range alternatives(seg) {
		cur, present := m[key]
		if !present {
			continue
		}
		if len(rest) == 0 {
			m[key] = fn(cur)
		} else {
			transform(cur, rest, fn)
		}
	}
}

func alternatives(seg string) []string {
	if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
		return strings.Split(seg[1:len(seg)-1], ",")
	}
	return []string{seg}
}

// RenameKey moves the value at oldKey to newKey within the map at path,
// a no-op if oldKey is absent. It is the Go rendition of the original
// engine's rename_entry helper, expressed over the generic DOM instead
// of a committed struct.
func RenameKey(dom interface{}, path, oldKey, newKey string) {
	Transform(dom, path, func(v interface{}) interface{} {
		m, ok := v.(map[string]interface{})
		if !ok {
			return v
		}
		if val, present := m[oldKey]; present {
			delete(m, oldKey)
			m[newKey] = val
		}
		return v
	})
}
