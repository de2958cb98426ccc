package algorithms

import (
	"fmt"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
)

// NeighborDirection selects which edges a traversal follows.
type NeighborDirection int

const (
	DirectionOut NeighborDirection = iota
	DirectionIn
	DirectionBoth
)

// KHopOptions configures the k-hop neighbourhood traversal.
type KHopOptions struct {
	MaxHops    int // 0 = unlimited
	Direction  NeighborDirection
	EdgeTypes  []graph.EdgeType // nil means all edge types
	MaxResults int              // 0 = unlimited; BFS order gives closer nodes priority
}

// DefaultKHopOptions returns two outgoing hops over every edge type.
func DefaultKHopOptions() KHopOptions {
	return KHopOptions{MaxHops: 2, Direction: DirectionOut}
}

// KHopResult holds the BFS neighbourhood of a set of sources.
type KHopResult struct {
	Sources        []string
	ByHop          map[int][]string // hop distance -> node ids at that distance
	Distances      map[string]int   // node id -> shortest hop count
	Order          []string         // discovery order
	TotalReachable int
}

type bfsEntry struct {
	nodeID string
	hop    int
}

// KHopNeighbours runs a BFS from the given sources. Sources themselves are
// never part of the result. Unknown source ids are skipped.
func KHopNeighbours(g *graph.Graph, sources []string, opts KHopOptions) (*KHopResult, error) {
	if opts.MaxHops < 0 {
		return nil, fmt.Errorf("MaxHops must be >= 0, got %d", opts.MaxHops)
	}
	v := newView(g, opts.EdgeTypes)
	result := &KHopResult{
		Sources:   append([]string(nil), sources...),
		ByHop:     make(map[int][]string),
		Distances: make(map[string]int),
	}

	visited := make(map[string]bool, len(sources))
	queue := make([]bfsEntry, 0, len(sources))
	for _, id := range sources {
		if !g.HasNode(id) || visited[id] {
			continue
		}
		visited[id] = true
		queue = append(queue, bfsEntry{nodeID: id})
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if opts.MaxHops > 0 && current.hop >= opts.MaxHops {
			continue
		}
		nextHop := current.hop + 1

		var neighbours []string
		if opts.Direction == DirectionOut || opts.Direction == DirectionBoth {
			neighbours = append(neighbours, v.out[current.nodeID]...)
		}
		if opts.Direction == DirectionIn || opts.Direction == DirectionBoth {
			neighbours = append(neighbours, v.in[current.nodeID]...)
		}

		for _, id := range neighbours {
			if visited[id] {
				continue
			}
			visited[id] = true
			result.Distances[id] = nextHop
			result.ByHop[nextHop] = append(result.ByHop[nextHop], id)
			result.Order = append(result.Order, id)
			result.TotalReachable++
			if opts.MaxResults > 0 && result.TotalReachable >= opts.MaxResults {
				return result, nil
			}
			queue = append(queue, bfsEntry{nodeID: id, hop: nextHop})
		}
	}
	return result, nil
}

// Downstream returns the given nodes and everything reachable from them over
// outgoing edges, in graph insertion order. Unknown ids are dropped.
func Downstream(g *graph.Graph, ids []string, edgeTypes ...graph.EdgeType) []string {
	return closure(g, ids, DirectionOut, edgeTypes)
}

// Upstream is Downstream over incoming edges.
func Upstream(g *graph.Graph, ids []string, edgeTypes ...graph.EdgeType) []string {
	return closure(g, ids, DirectionIn, edgeTypes)
}

func closure(g *graph.Graph, ids []string, dir NeighborDirection, edgeTypes []graph.EdgeType) []string {
	res, _ := KHopNeighbours(g, ids, KHopOptions{Direction: dir, EdgeTypes: edgeTypes})
	keep := make(map[string]bool, len(ids)+res.TotalReachable)
	for _, id := range ids {
		keep[id] = true
	}
	for _, id := range res.Order {
		keep[id] = true
	}
	out := make([]string, 0, len(keep))
	seen := make(map[string]bool, len(keep))
	for _, n := range g.Nodes() {
		if keep[n.ID()] && !seen[n.ID()] {
			seen[n.ID()] = true
			out = append(out, n.ID())
		}
	}
	return out
}
