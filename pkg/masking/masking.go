// Package masking finds and redacts credentials that leak into pipeline
// graphs, scan payloads and build logs.
package masking

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
)

// Masker redacts credentials. It is safe for concurrent use.
type Masker struct {
	config   *Config
	patterns []pattern
}

// New returns a masker using config, or DefaultConfig when nil.
func New(config *Config) *Masker {
	if config == nil {
		config = DefaultConfig()
	}
	return &Masker{config: config, patterns: builtinPatterns}
}

var defaultMasker = New(nil)

// Default returns the shared masker with DefaultConfig.
func Default() *Masker { return defaultMasker }

// sensitiveKeys are map key fragments whose values are masked wholesale.
var sensitiveKeys = []string{
	"value", "secret", "password", "passwd", "token", "plaintext",
	"private_key", "api_key", "apikey", "credential", "authorization",
}

// IsSensitiveKey reports whether key contains a sensitive fragment, case
// insensitively. extra adds fragments for this call. Reference keys such as
// token_ref or secretRef name a secret without holding it and are never
// sensitive.
func IsSensitiveKey(key string, extra ...string) bool {
	lk := strings.ToLower(key)
	if IsReferenceKey(lk) {
		return false
	}
	for _, list := range [][]string{sensitiveKeys, extra} {
		for _, s := range list {
			if s != "" && strings.Contains(lk, strings.ToLower(s)) {
				return true
			}
		}
	}
	return false
}

// IsReferenceKey reports whether key names a reference to a secret, i.e.
// ends in "ref" or "reference".
func IsReferenceKey(key string) bool {
	lk := strings.ToLower(key)
	return strings.HasSuffix(lk, "ref") || strings.HasSuffix(lk, "reference")
}

func (m *Masker) sensitive(key string) bool {
	return IsSensitiveKey(key, m.config.ExtraKeys...)
}

// Detect returns the credentials found in s, ordered by position.
func (m *Masker) Detect(s string) []Finding {
	var out []Finding
	for _, p := range m.patterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(s, -1) {
			start, end := loc[2*p.group], loc[2*p.group+1]
			if start < 0 {
				continue
			}
			out = append(out, Finding{Kind: p.kind, Start: start, End: end})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Contains reports whether s holds anything Detect would find.
func (m *Masker) Contains(s string) bool {
	for _, p := range m.patterns {
		if p.re.MatchString(s) {
			return true
		}
	}
	return false
}

// String masks every detected credential in s.
func (m *Masker) String(s string) string {
	for _, p := range m.patterns {
		s = p.replace(s, m.mask)
	}
	return s
}

// Value masks strings inside v, descending into maps and slices. String
// values under sensitive keys are masked whole; other scalars are kept. v is
// not modified.
func (m *Masker) Value(v any) any {
	switch t := v.(type) {
	case string:
		return m.String(t)
	case map[string]any:
		return m.Map(t)
	case metadata.Map:
		return m.Metadata(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = m.Value(item)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, item := range t {
			out[i] = m.String(item)
		}
		return out
	default:
		return v
	}
}

// Map returns a masked copy of data.
func (m *Masker) Map(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = m.entry(k, v)
	}
	return out
}

func (m *Masker) Metadata(md metadata.Map) metadata.Map {
	if md == nil {
		return nil
	}
	return metadata.Map(m.Map(md))
}

func (m *Masker) entry(key string, v any) any {
	if !m.sensitive(key) {
		return m.Value(v)
	}
	if t, ok := v.(string); ok && t != "" {
		return m.mask(t)
	}
	return m.Value(v)
}

// Graph returns a clone of g whose graph, node and edge metadata are masked.
func (m *Masker) Graph(g *graph.Graph) *graph.Graph {
	out := g.Clone()
	out.Metadata = m.Metadata(out.Metadata)
	for _, n := range out.Nodes() {
		n.Metadata = m.Metadata(n.Metadata)
	}
	for _, e := range out.Edges() {
		e.Metadata = m.Metadata(e.Metadata)
	}
	return out
}

// JSON masks an encoded JSON document. Numbers keep their exact text.
func (m *Masker) JSON(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return json.Marshal(m.Value(v))
}
