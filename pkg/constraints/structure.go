package constraints

import (
	"fmt"
	"strings"

	"github.com/Matza-labs/atlas-sdk/pkg/algorithms"
	"github.com/Matza-labs/atlas-sdk/pkg/graph"
	"github.com/Matza-labs/atlas-sdk/pkg/masking"
)

// NodeShapeConstraint reports nodes and edges that fail their own
// validation.
type NodeShapeConstraint struct{}

func (*NodeShapeConstraint) Name() string { return "NodeShape" }

func (c *NodeShapeConstraint) Validate(g *graph.Graph) ([]Violation, error) {
	violations := make([]Violation, 0)
	for _, n := range g.Nodes() {
		if err := n.Validate(); err != nil {
			violations = append(violations, Violation{
				Type:       InvalidShape,
				Severity:   Error,
				NodeID:     n.ID(),
				Constraint: c.Name(),
				Message:    fmt.Sprintf("Node %s is malformed: %v", n.ID(), err),
				Details:    map[string]any{"node_type": string(n.Type())},
			})
		}
	}
	for _, e := range g.Edges() {
		if err := e.Validate(); err != nil {
			violations = append(violations, Violation{
				Type:       InvalidShape,
				Severity:   Error,
				EdgeID:     e.ID(),
				Constraint: c.Name(),
				Message:    fmt.Sprintf("Edge %s is malformed: %v", e.ID(), err),
				Details:    map[string]any{"edge_type": string(e.Type)},
			})
		}
	}
	return violations, nil
}

// DanglingEdgeConstraint reports edges whose endpoints are not in the graph.
type DanglingEdgeConstraint struct{}

func (*DanglingEdgeConstraint) Name() string { return "DanglingEdge" }

func (c *DanglingEdgeConstraint) Validate(g *graph.Graph) ([]Violation, error) {
	violations := make([]Violation, 0)
	for _, e := range g.DanglingEdges() {
		var missing []string
		if !g.HasNode(e.SourceNodeID) {
			missing = append(missing, e.SourceNodeID)
		}
		if !g.HasNode(e.TargetNodeID) {
			missing = append(missing, e.TargetNodeID)
		}
		violations = append(violations, Violation{
			Type:       DanglingReference,
			Severity:   Error,
			EdgeID:     e.ID(),
			Constraint: c.Name(),
			Message:    fmt.Sprintf("Edge %s references missing node(s) %s", e.ID(), strings.Join(missing, ", ")),
			Details: map[string]any{
				"source_node_id": e.SourceNodeID,
				"target_node_id": e.TargetNodeID,
				"missing":        missing,
			},
		})
	}
	return violations, nil
}

// SecretHygieneConstraint reports secret references whose metadata carries a
// key that looks like it holds the secret itself. Extra names the caller
// also treats as value-like.
type SecretHygieneConstraint struct {
	Extra []string
}

func (*SecretHygieneConstraint) Name() string { return "SecretHygiene" }

func (c *SecretHygieneConstraint) Validate(g *graph.Graph) ([]Violation, error) {
	violations := make([]Violation, 0)
	for _, n := range g.NodesOfType(graph.NodeSecretRef) {
		for _, key := range n.Metadata.Keys() {
			if !masking.IsSensitiveKey(key, c.Extra...) {
				continue
			}
			violations = append(violations, Violation{
				Type:       SecretExposure,
				Severity:   Error,
				NodeID:     n.ID(),
				Constraint: c.Name(),
				Message:    fmt.Sprintf("Secret reference %s carries metadata key %q", n.ID(), key),
				Details:    map[string]any{"key": key},
			})
		}
	}
	return violations, nil
}

// AcyclicConstraint warns about every cycle over EdgeTypes (all types when
// empty). Cycles are legal in the model, so this is a warning.
type AcyclicConstraint struct {
	EdgeTypes []graph.EdgeType
}

func (c *AcyclicConstraint) Name() string {
	if len(c.EdgeTypes) == 0 {
		return "Acyclic(*)"
	}
	names := make([]string, len(c.EdgeTypes))
	for i, t := range c.EdgeTypes {
		names[i] = string(t)
	}
	return fmt.Sprintf("Acyclic(%s)", strings.Join(names, ","))
}

func (c *AcyclicConstraint) Validate(g *graph.Graph) ([]Violation, error) {
	violations := make([]Violation, 0)
	for _, comp := range algorithms.CyclicComponents(g, c.EdgeTypes...) {
		violations = append(violations, Violation{
			Type:       CycleDetected,
			Severity:   Warning,
			NodeID:     comp[0],
			Constraint: c.Name(),
			Message:    fmt.Sprintf("Cycle among %d node(s): %s", len(comp), strings.Join(comp, ", ")),
			Details:    map[string]any{"nodes": comp},
		})
	}
	return violations, nil
}
