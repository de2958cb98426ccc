package constraints

import (
	"fmt"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
)

// MetadataConstraint validates one metadata key on nodes of a type. An
// empty NodeType applies to every node.
type MetadataConstraint struct {
	NodeType graph.NodeType
	Key      string
	Required bool     // Whether the key must exist
	Allowed  []string // Permitted string values (empty = anything)
	Severity Severity
}

// Name returns the constraint name
func (mc *MetadataConstraint) Name() string {
	t := string(mc.NodeType)
	if t == "" {
		t = "*"
	}
	return fmt.Sprintf("Metadata(%s.%s)", t, mc.Key)
}

// Validate checks the key on every node in scope
func (mc *MetadataConstraint) Validate(g *graph.Graph) ([]Violation, error) {
	nodes := g.Nodes()
	if mc.NodeType != "" {
		nodes = g.NodesOfType(mc.NodeType)
	}

	violations := make([]Violation, 0)
	for _, node := range nodes {
		value, exists := node.Metadata[mc.Key]
		if !exists {
			if mc.Required {
				violations = append(violations, Violation{
					Type:       MissingMetadata,
					Severity:   mc.Severity,
					NodeID:     node.ID(),
					Constraint: mc.Name(),
					Message:    fmt.Sprintf("Node %s missing required metadata '%s'", node.ID(), mc.Key),
					Details:    map[string]any{"key": mc.Key},
				})
			}
			continue
		}
		if len(mc.Allowed) == 0 {
			continue
		}
		s, _ := value.(string)
		if !contains(mc.Allowed, s) {
			violations = append(violations, Violation{
				Type:       InvalidShape,
				Severity:   mc.Severity,
				NodeID:     node.ID(),
				Constraint: mc.Name(),
				Message:    fmt.Sprintf("Node %s metadata '%s' has value %v, allowed %v", node.ID(), mc.Key, value, mc.Allowed),
				Details:    map[string]any{"key": mc.Key, "value": value, "allowed": mc.Allowed},
			})
		}
	}
	return violations, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
