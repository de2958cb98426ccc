package algorithms

import (
	"errors"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
)

// ErrCycle is returned by orderings that require an acyclic graph.
var ErrCycle = errors.New("graph contains cycles")

// IsDAG reports whether the graph has no cycles.
func IsDAG(g *graph.Graph, edgeTypes ...graph.EdgeType) bool {
	return !HasCycle(g, edgeTypes...)
}

// TopologicalSort orders node ids with Kahn's algorithm so that for every
// followed edge u->v, u comes first. Ties keep insertion order.
func TopologicalSort(g *graph.Graph, edgeTypes ...graph.EdgeType) ([]string, error) {
	v := newView(g, edgeTypes)
	inDegree := make(map[string]int, len(v.order))
	for _, id := range v.order {
		for _, next := range v.out[id] {
			inDegree[next]++
		}
	}

	queue := make([]string, 0)
	for _, id := range v.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make([]string, 0, len(v.order))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, current)
		for _, next := range v.out[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(sorted) != len(v.order) {
		return nil, ErrCycle
	}
	return sorted, nil
}

// Roots returns the nodes with no incoming followed edge, in insertion order.
func Roots(g *graph.Graph, edgeTypes ...graph.EdgeType) []string {
	v := newView(g, edgeTypes)
	var roots []string
	for _, id := range v.order {
		if len(v.in[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}
