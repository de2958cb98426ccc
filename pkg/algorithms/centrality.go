package algorithms

import (
	"sort"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
)

// DegreeCentrality is the in-degree plus out-degree of every node,
// normalized by n-1. A single-node graph scores 0.
func DegreeCentrality(g *graph.Graph, edgeTypes ...graph.EdgeType) map[string]float64 {
	v := newView(g, edgeTypes)
	degree := make(map[string]float64, len(v.order))
	for _, id := range v.order {
		if len(v.order) > 1 {
			degree[id] = float64(len(v.in[id])+len(v.out[id])) / float64(len(v.order)-1)
		} else {
			degree[id] = 0
		}
	}
	return degree
}

// RankedNode pairs a node id with a score.
type RankedNode struct {
	NodeID string
	Score  float64
}

// TopByDegree returns the n most connected nodes, highest first. Ties keep
// insertion order.
func TopByDegree(g *graph.Graph, n int, edgeTypes ...graph.EdgeType) []RankedNode {
	v := newView(g, edgeTypes)
	scores := DegreeCentrality(g, edgeTypes...)
	ranked := make([]RankedNode, 0, len(v.order))
	for _, id := range v.order {
		ranked = append(ranked, RankedNode{NodeID: id, Score: scores[id]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
