package synapse

import (
	"strconv"
	"strings"
)

// Lookup finds key in a decoded structure of nested maps and slices. A key
// present verbatim wins; otherwise it is split on dots and each segment
// selects a map entry or, when numeric, a slice element. def is returned
// when any step is missing.
func Lookup(data any, key string, def any) any {
	if key == "" {
		if data == nil {
			return def
		}
		return data
	}

	if m, ok := asMap(data); ok {
		if value, exists := m[key]; exists {
			return orDefault(value, def)
		}
	}

	current := data
	for _, step := range strings.Split(key, ".") {
		switch node := current.(type) {
		case map[string]any:
			value, exists := node[step]
			if !exists {
				return def
			}
			current = value
		case Values:
			value, exists := node[step]
			if !exists {
				return def
			}
			current = value
		case []any:
			index, err := strconv.Atoi(step)
			if err != nil || index < 0 || index >= len(node) {
				return def
			}
			current = node[index]
		case []string:
			index, err := strconv.Atoi(step)
			if err != nil || index < 0 || index >= len(node) {
				return def
			}
			current = node[index]
		default:
			return def
		}
	}

	return orDefault(current, def)
}

func asMap(data any) (map[string]any, bool) {
	switch m := data.(type) {
	case map[string]any:
		return m, true
	case Values:
		return m, true
	}
	return nil, false
}

func orDefault(value, def any) any {
	if value == nil {
		return def
	}
	return value
}
