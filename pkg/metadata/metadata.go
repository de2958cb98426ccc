// Package metadata implements the open, loosely-typed context map carried by
// nodes, edges, graphs, findings and events.
package metadata

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Map is a string-keyed map of JSON-like values: nil, string, bool, numbers,
// []any and nested maps.
type Map map[string]any

// Clone returns a deep copy. Nested maps and slices are copied so the clone
// never aliases the receiver. A nil Map clones to nil.
//
// Values are stored in the shape JSON decoding produces: every number becomes
// a float64, nested maps become map[string]any and string slices become
// []any. A record built with Go integers therefore equals its decoded copy.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = cloneValue(inner)
		}
		return out
	case Map:
		return map[string]any(t.Clone())
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = cloneValue(inner)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		if f, ok := Float(v); ok {
			return f
		}
		return v
	}
}

// Float converts any numeric value, json.Number included, to float64.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Validate reports the first key holding a value that is not JSON-like.
// Keys are checked in sorted order so the error is stable.
func (m Map) Validate() error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := validateValue(m[k]); err != nil {
			return fmt.Errorf("metadata[%q]: %w", k, err)
		}
	}
	return nil
}

func validateValue(v any) error {
	switch t := v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return nil
	case []string:
		return nil
	case []any:
		for i, inner := range t {
			if err := validateValue(inner); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	case map[string]any:
		return Map(t).Validate()
	case Map:
		return t.Validate()
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
}

// String returns the string stored under key, if any.
func (m Map) String(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// Keys returns the keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
