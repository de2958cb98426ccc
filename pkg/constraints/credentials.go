package constraints

import (
	"fmt"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
	"github.com/Matza-labs/atlas-sdk/pkg/masking"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
)

// LeakedCredentialConstraint reports credentials written in clear text into
// step commands or any node or edge metadata value. Masker defaults to
// masking.Default().
type LeakedCredentialConstraint struct {
	Masker *masking.Masker
}

func (*LeakedCredentialConstraint) Name() string { return "LeakedCredential" }

func (c *LeakedCredentialConstraint) Validate(g *graph.Graph) ([]Violation, error) {
	m := c.Masker
	if m == nil {
		m = masking.Default()
	}
	violations := make([]Violation, 0)
	report := func(nodeID, edgeID, where string, found []masking.Finding) {
		kinds := make([]string, 0, len(found))
		for _, f := range found {
			kinds = append(kinds, string(f.Kind))
		}
		subject := "Node " + nodeID
		if edgeID != "" {
			subject = "Edge " + edgeID
		}
		violations = append(violations, Violation{
			Type:       SecretExposure,
			Severity:   Error,
			NodeID:     nodeID,
			EdgeID:     edgeID,
			Constraint: c.Name(),
			Message:    fmt.Sprintf("%s exposes a credential in %s", subject, where),
			Details:    map[string]any{"field": where, "kinds": kinds},
		})
	}

	for _, n := range g.Nodes() {
		if step, ok := graph.As[graph.Step](n); ok && step.Command != nil {
			if found := m.Detect(*step.Command); len(found) > 0 {
				report(n.ID(), "", "command", found)
			}
		}
		for _, hit := range scanMetadata(m, n.Metadata) {
			report(n.ID(), "", "metadata."+hit.key, hit.found)
		}
	}
	for _, e := range g.Edges() {
		for _, hit := range scanMetadata(m, e.Metadata) {
			report("", e.ID(), "metadata."+hit.key, hit.found)
		}
	}
	return violations, nil
}

type metadataHit struct {
	key   string
	found []masking.Finding
}

// scanMetadata checks every string reachable from md, in key order.
func scanMetadata(m *masking.Masker, md metadata.Map) []metadataHit {
	var hits []metadataHit
	for _, key := range md.Keys() {
		var found []masking.Finding
		walkStrings(md[key], func(s string) {
			found = append(found, m.Detect(s)...)
		})
		if len(found) > 0 {
			hits = append(hits, metadataHit{key: key, found: found})
		}
	}
	return hits
}

func walkStrings(v any, fn func(string)) {
	switch t := v.(type) {
	case string:
		fn(t)
	case []string:
		for _, s := range t {
			fn(s)
		}
	case []any:
		for _, item := range t {
			walkStrings(item, fn)
		}
	case map[string]any:
		walkStrings(metadata.Map(t), fn)
	case metadata.Map:
		for _, k := range t.Keys() {
			walkStrings(t[k], fn)
		}
	}
}
