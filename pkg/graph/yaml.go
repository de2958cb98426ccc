package graph

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeGraphYAML decodes a graph written as YAML. The document has the same
// shape as the JSON form and goes through the same type-directed decoder.
func DecodeGraphYAML(data []byte) (*Graph, error) {
	encoded, err := YAMLToJSON(data)
	if err != nil {
		return nil, NewError("decode").Graph("").Cause(err).Err()
	}
	var g Graph
	if err := json.Unmarshal(encoded, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// YAMLToJSON re-encodes a YAML document as JSON. Mapping keys must be scalars.
func YAMLToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	normalized, err := normalizeYAML(doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

func normalizeYAML(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			n, err := normalizeYAML(inner)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			switch k.(type) {
			case string, int, int64, uint64, float64, bool:
			default:
				return nil, fmt.Errorf("yaml: unsupported mapping key %v", k)
			}
			n, err := normalizeYAML(inner)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			n, err := normalizeYAML(inner)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return v, nil
	}
}
