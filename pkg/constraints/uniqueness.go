package constraints

import (
	"fmt"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
)

// UniqueNodeIDConstraint reports every repeated occurrence of a node id.
// The graph accepts duplicates on insert; this is where they surface.
type UniqueNodeIDConstraint struct{}

func (*UniqueNodeIDConstraint) Name() string { return "UniqueNodeID" }

func (c *UniqueNodeIDConstraint) Validate(g *graph.Graph) ([]Violation, error) {
	counts := make(map[string]int)
	for _, n := range g.Nodes() {
		counts[n.ID()]++
	}
	violations := make([]Violation, 0)
	for _, id := range g.DuplicateNodeIDs() {
		violations = append(violations, Violation{
			Type:       DuplicateID,
			Severity:   Error,
			NodeID:     id,
			Constraint: c.Name(),
			Message:    fmt.Sprintf("Node id %s appears %d times", id, counts[id]),
			Details:    map[string]any{"occurrences": counts[id]},
		})
	}
	return violations, nil
}

// UniqueScope defines the scope of uniqueness checking
type UniqueScope int

const (
	// ScopeGlobal means the name must be unique across all nodes
	ScopeGlobal UniqueScope = iota
	// ScopeType means the name must be unique among nodes of the same type
	ScopeType
)

func (s UniqueScope) String() string {
	switch s {
	case ScopeGlobal:
		return "Global"
	case ScopeType:
		return "Type"
	default:
		return "Unknown"
	}
}

// UniqueNameConstraint ensures node names are unique, either across the
// graph or per node type. NodeType optionally restricts the check to one
// type. Duplicate names are a warning: scanners legitimately produce them.
type UniqueNameConstraint struct {
	NodeType graph.NodeType
	Scope    UniqueScope
}

// Name returns a human-readable name for this constraint
func (c *UniqueNameConstraint) Name() string {
	if c.NodeType != "" {
		return fmt.Sprintf("UniqueName(%s)", c.NodeType)
	}
	if c.Scope == ScopeGlobal {
		return "UniqueNameGlobal"
	}
	return "UniqueNamePerType"
}

// Validate reports every node after the first that reuses a name in scope
func (c *UniqueNameConstraint) Validate(g *graph.Graph) ([]Violation, error) {
	nodes := g.Nodes()
	if c.NodeType != "" {
		nodes = g.NodesOfType(c.NodeType)
	}

	first := make(map[string]string)
	violations := make([]Violation, 0)
	for _, n := range nodes {
		key := n.Name
		if c.Scope == ScopeType {
			key = string(n.Type()) + "\x00" + n.Name
		}
		original, seen := first[key]
		if !seen {
			first[key] = n.ID()
			continue
		}
		violations = append(violations, Violation{
			Type:       UniquenessViolation,
			Severity:   Warning,
			NodeID:     n.ID(),
			Constraint: c.Name(),
			Message:    fmt.Sprintf("Duplicate name '%s' (also used by node %s)", n.Name, original),
			Details: map[string]any{
				"name":         n.Name,
				"node_type":    string(n.Type()),
				"duplicate_of": original,
			},
		})
	}
	return violations, nil
}
