package algorithms

import "github.com/Matza-labs/atlas-sdk/pkg/graph"

// Cycle is a detected cycle as a sequence of node ids.
type Cycle []string

const (
	white = iota // unvisited
	gray         // on the DFS stack
	black        // finished
)

// DetectCycles finds cycles with a three-color DFS. Each back edge yields one
// cycle, so a cycle reachable through several back edges is reported once
// per edge. Self-loops are cycles of length one.
func DetectCycles(g *graph.Graph, edgeTypes ...graph.EdgeType) []Cycle {
	v := newView(g, edgeTypes)
	color := make(map[string]int, len(v.order))
	parent := make(map[string]string, len(v.order))
	cycles := make([]Cycle, 0)

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		for _, next := range v.out[id] {
			switch {
			case next == id:
				cycles = append(cycles, Cycle{id})
			case color[next] == white:
				parent[next] = id
				visit(next)
			case color[next] == gray:
				cycles = append(cycles, extractCycle(next, id, parent))
			}
		}
		color[id] = black
	}

	for _, id := range v.order {
		if color[id] == white {
			visit(id)
		}
	}
	return cycles
}

// extractCycle walks parent pointers from end back to start.
func extractCycle(start, end string, parent map[string]string) Cycle {
	cycle := Cycle{start}
	for current := end; current != start; {
		cycle = append(cycle, current)
		p, ok := parent[current]
		if !ok {
			break
		}
		current = p
	}
	return cycle
}

// HasCycle reports whether any cycle exists, stopping at the first one.
func HasCycle(g *graph.Graph, edgeTypes ...graph.EdgeType) bool {
	v := newView(g, edgeTypes)
	color := make(map[string]int, len(v.order))

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		for _, next := range v.out[id] {
			if color[next] == gray {
				return true
			}
			if color[next] == white && visit(next) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range v.order {
		if color[id] == white && visit(id) {
			return true
		}
	}
	return false
}

// CycleStats summarizes detected cycles.
type CycleStats struct {
	TotalCycles   int
	ShortestCycle int
	LongestCycle  int
	AverageLength float64
	SelfLoops     int
}

func AnalyzeCycles(cycles []Cycle) CycleStats {
	if len(cycles) == 0 {
		return CycleStats{}
	}
	stats := CycleStats{
		TotalCycles:   len(cycles),
		ShortestCycle: len(cycles[0]),
		LongestCycle:  len(cycles[0]),
	}
	total := 0
	for _, c := range cycles {
		total += len(c)
		if len(c) == 1 {
			stats.SelfLoops++
		}
		stats.ShortestCycle = min(stats.ShortestCycle, len(c))
		stats.LongestCycle = max(stats.LongestCycle, len(c))
	}
	stats.AverageLength = float64(total) / float64(len(cycles))
	return stats
}
