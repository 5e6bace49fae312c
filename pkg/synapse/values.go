package synapse

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Values is a parsed parameter collection: query string, form body, server
// variables. A value is a string, a []string for repeated keys, or any
// decoded JSON value.
type Values map[string]any

// FromURLValues converts url.Values. Single values become strings, repeated
// keys become []string and "name[]" keys are collected under "name" as a
// list.
func FromURLValues(in url.Values) Values {
	out := make(Values, len(in))
	for key, values := range in {
		if name, ok := strings.CutSuffix(key, "[]"); ok && name != "" {
			list := make([]string, len(values))
			copy(list, values)
			if existing, ok := out[name].([]string); ok {
				list = append(existing, list...)
			}
			out[name] = list
			continue
		}

		switch len(values) {
		case 0:
			out[key] = ""
		case 1:
			out[key] = values[0]
		default:
			list := make([]string, len(values))
			copy(list, values)
			out[key] = list
		}
	}
	return out
}

// Get returns the value for key, or def if the key is absent
func (v Values) Get(key string, def any) any {
	if value, ok := v[key]; ok && value != nil {
		return value
	}
	return def
}

// Has returns true if the key exists
func (v Values) Has(key string) bool {
	_, exists := v[key]
	return exists
}

// Keys returns all keys, sorted
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// String returns the value as a string. Lists yield their first element.
func (v Values) String(key, def string) string {
	switch value := v[key].(type) {
	case string:
		return value
	case []string:
		if len(value) > 0 {
			return value[0]
		}
	case nil:
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprintf("%v", value)
	}
	return def
}

// Strings returns every value for key
func (v Values) Strings(key string) []string {
	switch value := v[key].(type) {
	case []string:
		return value
	case string:
		return []string{value}
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	}
	return nil
}

// Int returns the value as an integer, or def if missing or invalid
func (v Values) Int(key string, def int) int {
	switch value := v[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	}
	if s := v.String(key, ""); s != "" {
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
	}
	return def
}

// Bool returns the value as a boolean.
// Accepts: "true", "1", "yes", "on" (case insensitive) as true
func (v Values) Bool(key string) bool {
	if b, ok := v[key].(bool); ok {
		return b
	}
	value := strings.ToLower(v.String(key, ""))
	return value == "true" || value == "1" || value == "yes" || value == "on"
}

// UUID parses the value as a UUID
func (v Values) UUID(key string) (uuid.UUID, bool) {
	s := v.String(key, "")
	if s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Merge returns a new collection holding v and then any keys of other that v
// does not define. Keys of v win.
func (v Values) Merge(other Values) Values {
	out := make(Values, len(v)+len(other))
	for key, value := range other {
		out[key] = value
	}
	for key, value := range v {
		out[key] = value
	}
	return out
}
