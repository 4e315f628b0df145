package layer

import "strings"

// DeepMerge merges src into dst and returns dst. Values from src win,
// following these rules:
//
//   - Tables merge key by key. A file that remaps one link command keeps the
//     built-in mappings for the others.
//   - Lists replace the lower list whole. A links.attributeKeys list in a
//     file is the complete set of link kinds, never an addition to the
//     defaults.
//   - A null value leaves the lower value in place, so an empty key in a
//     file does not erase a default.
//   - Anything else replaces the lower value, including a table replaced by
//     a scalar or the reverse.
//
// Values taken from src are deep copies.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, srcVal := range src {
		if merged, ok := mergeValue(dst[key], srcVal); ok {
			dst[key] = merged
		}
	}
	return dst
}

// mergeValue returns the value a key takes when src is layered over dst.
// It reports false when dst should be kept unchanged.
func mergeValue(dst, src any) (any, bool) {
	switch s := src.(type) {
	case nil:
		return nil, false
	case map[string]any:
		if d, ok := dst.(map[string]any); ok {
			return DeepMerge(d, s), true
		}
		return cloneMap(s), true
	case []any:
		return cloneSlice(s), true
	case []string:
		out := make([]any, len(s))
		for i, v := range s {
			out[i] = v
		}
		return out, true
	default:
		return src, true
	}
}

// cloneValue creates a deep copy of a value.
func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		return cloneSlice(v)
	default:
		return val
	}
}

// GetByPath retrieves a value from a nested map using a dot-separated path.
func GetByPath(data map[string]any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}

	parts := strings.Split(path, ".")
	current := any(data)

	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		val, exists := m[part]
		if !exists {
			return nil, false
		}

		current = val
	}

	return current, true
}

// SetByPath sets a value in a nested map using a dot-separated path.
// Creates intermediate maps as needed.
func SetByPath(data map[string]any, path string, value any) {
	if data == nil {
		return
	}

	parts := strings.Split(path, ".")
	current := data

	// Navigate/create intermediate maps
	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if next, ok := current[part].(map[string]any); ok {
			current = next
		} else {
			// Create intermediate map
			next := make(map[string]any)
			current[part] = next
			current = next
		}
	}

	// Set the final value
	current[parts[len(parts)-1]] = value
}
