// Package algorithms implements structural analyses over a pipeline graph:
// cycle detection, topological ordering, strongly connected components,
// reachability and degree ranking.
//
// Every function accepts an optional set of edge types; when given, only
// edges of those types are followed. Edges whose endpoints are not nodes of
// the graph are ignored.
package algorithms

import "github.com/Matza-labs/atlas-sdk/pkg/graph"

// view is a read-only adjacency snapshot of a graph.
type view struct {
	order []string // distinct node ids in insertion order
	out   map[string][]string
	in    map[string][]string
}

func newView(g *graph.Graph, edgeTypes []graph.EdgeType) *view {
	allowed := make(map[graph.EdgeType]bool, len(edgeTypes))
	for _, t := range edgeTypes {
		allowed[t] = true
	}
	v := &view{
		out: make(map[string][]string),
		in:  make(map[string][]string),
	}
	seen := make(map[string]bool, g.NodeCount())
	for _, n := range g.Nodes() {
		if !seen[n.ID()] {
			seen[n.ID()] = true
			v.order = append(v.order, n.ID())
		}
	}
	for _, e := range g.Edges() {
		if len(allowed) > 0 && !allowed[e.Type] {
			continue
		}
		if !seen[e.SourceNodeID] || !seen[e.TargetNodeID] {
			continue
		}
		v.out[e.SourceNodeID] = append(v.out[e.SourceNodeID], e.TargetNodeID)
		v.in[e.TargetNodeID] = append(v.in[e.TargetNodeID], e.SourceNodeID)
	}
	return v
}
