package constraints

import (
	"fmt"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
)

// Direction specifies edge direction for cardinality constraints
type Direction int

const (
	Outgoing Direction = iota // Edges from this node
	Incoming                  // Edges to this node
	Any                       // Edges in either direction
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "Outgoing"
	case Incoming:
		return "Incoming"
	case Any:
		return "Any"
	default:
		return "Unknown"
	}
}

// CardinalityConstraint bounds the number of edges on nodes of one type,
// for example "every job is called by at least one pipeline or stage".
type CardinalityConstraint struct {
	NodeType  graph.NodeType // Type to apply constraint to
	EdgeType  graph.EdgeType // Type of edge (empty = any type)
	Direction Direction      // Direction of edges to count
	Min       int            // Minimum number of edges (0 = optional)
	Max       int            // Maximum number of edges (0 = unlimited)
	Severity  Severity       // Severity of a violation (zero = Info)
}

// Name returns the constraint name
func (cc *CardinalityConstraint) Name() string {
	edgeType := string(cc.EdgeType)
	if edgeType == "" {
		edgeType = "*"
	}
	return fmt.Sprintf("Cardinality(%s,%s,%s,[%d,%d])",
		cc.NodeType, edgeType, cc.Direction, cc.Min, cc.Max)
}

// Validate checks the cardinality constraint against all nodes of the target type
func (cc *CardinalityConstraint) Validate(g *graph.Graph) ([]Violation, error) {
	if cc.Max > 0 && cc.Min > cc.Max {
		return nil, fmt.Errorf("min %d exceeds max %d", cc.Min, cc.Max)
	}
	violations := make([]Violation, 0)

	for _, node := range g.NodesOfType(cc.NodeType) {
		count := cc.countEdges(g, node.ID())

		var bound string
		var limit int
		switch {
		case cc.Min > 0 && count < cc.Min:
			bound, limit = "min", cc.Min
		case cc.Max > 0 && count > cc.Max:
			bound, limit = "max", cc.Max
		default:
			continue
		}

		violations = append(violations, Violation{
			Type:       CardinalityViolation,
			Severity:   cc.Severity,
			NodeID:     node.ID(),
			Constraint: cc.Name(),
			Message: fmt.Sprintf("Node %s has %d %s edge(s) of type '%s', %simum is %d",
				node.ID(), count, cc.Direction, cc.EdgeType, bound, limit),
			Details: map[string]any{
				"node_type": string(cc.NodeType),
				"edge_type": string(cc.EdgeType),
				"direction": cc.Direction.String(),
				"count":     count,
				bound:       limit,
			},
		})
	}

	return violations, nil
}

// countEdges counts edges for a node based on direction and type
func (cc *CardinalityConstraint) countEdges(g *graph.Graph, nodeID string) int {
	count := 0
	if cc.Direction == Outgoing || cc.Direction == Any {
		for _, e := range g.EdgesFrom(nodeID) {
			if cc.EdgeType == "" || e.Type == cc.EdgeType {
				count++
			}
		}
	}
	if cc.Direction == Incoming || cc.Direction == Any {
		for _, e := range g.EdgesTo(nodeID) {
			if cc.EdgeType == "" || e.Type == cc.EdgeType {
				count++
			}
		}
	}
	return count
}
