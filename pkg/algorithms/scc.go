package algorithms

import "github.com/Matza-labs/atlas-sdk/pkg/graph"

type tarjanState struct {
	index   int
	lowlink int
	onStack bool
}

// StronglyConnectedComponents finds all SCCs using Tarjan's algorithm in
// O(V+E). Components are listed in the order Tarjan completes them, which is
// a reverse topological order of the condensation.
func StronglyConnectedComponents(g *graph.Graph, edgeTypes ...graph.EdgeType) [][]string {
	v := newView(g, edgeTypes)
	state := make(map[string]*tarjanState, len(v.order))
	var stack []string
	var components [][]string
	counter := 0

	var connect func(u string)
	connect = func(u string) {
		state[u] = &tarjanState{index: counter, lowlink: counter, onStack: true}
		counter++
		stack = append(stack, u)

		for _, w := range v.out[u] {
			if _, seen := state[w]; !seen {
				connect(w)
				state[u].lowlink = min(state[u].lowlink, state[w].lowlink)
			} else if state[w].onStack {
				state[u].lowlink = min(state[u].lowlink, state[w].index)
			}
		}

		if state[u].lowlink == state[u].index {
			var members []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				state[w].onStack = false
				members = append(members, w)
				if w == u {
					break
				}
			}
			components = append(components, members)
		}
	}

	for _, id := range v.order {
		if _, seen := state[id]; !seen {
			connect(id)
		}
	}
	return components
}

// CyclicComponents returns the SCCs that contain a cycle: those with more
// than one member, and single nodes with a self-loop.
func CyclicComponents(g *graph.Graph, edgeTypes ...graph.EdgeType) [][]string {
	v := newView(g, edgeTypes)
	var out [][]string
	for _, c := range StronglyConnectedComponents(g, edgeTypes...) {
		if len(c) > 1 || selfLoop(v, c[0]) {
			out = append(out, c)
		}
	}
	return out
}

func selfLoop(v *view, id string) bool {
	for _, next := range v.out[id] {
		if next == id {
			return true
		}
	}
	return false
}
