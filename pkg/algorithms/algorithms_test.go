package algorithms

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
)

// buildGraph creates one step node per id and an edge of type typ per pair.
func buildGraph(t *testing.T, nodes []string, edges [][2]string, typ graph.EdgeType) *graph.Graph {
	t.Helper()
	seq := ids.NewSequence("e", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)
	g, err := graph.New(seq, "test")
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range nodes {
		n, err := graph.NewNode(seq, id, graph.Step{}, graph.WithNodeID(id))
		if err != nil {
			t.Fatal(err)
		}
		g.AddNode(n)
	}
	for _, pair := range edges {
		addEdge(t, g, seq, typ, pair[0], pair[1])
	}
	return g
}

func addEdge(t *testing.T, g *graph.Graph, p ids.Provider, typ graph.EdgeType, from, to string) {
	t.Helper()
	e, err := graph.NewEdge(p, typ, from, to)
	if err != nil {
		t.Fatal(err)
	}
	g.AddEdge(e)
}

func TestDetectCycles_NoCycles(t *testing.T) {
	g := buildGraph(t, []string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}}, graph.EdgeCalls)
	if cycles := DetectCycles(g); len(cycles) != 0 {
		t.Errorf("Expected no cycles, got %v", cycles)
	}
	if HasCycle(g) || !IsDAG(g) {
		t.Error("linear graph should be a DAG")
	}
}

func TestDetectCycles_SimpleCycle(t *testing.T) {
	g := buildGraph(t, []string{"A", "B"}, [][2]string{{"A", "B"}, {"B", "A"}}, graph.EdgeTriggers)
	cycles := DetectCycles(g)
	if len(cycles) != 1 {
		t.Fatalf("Expected 1 cycle, got %d", len(cycles))
	}
	if !reflect.DeepEqual(cycles[0], Cycle{"A", "B"}) {
		t.Errorf("cycle = %v, want [A B]", cycles[0])
	}
	if !HasCycle(g) {
		t.Error("HasCycle should be true")
	}
}

func TestDetectCycles_SelfLoop(t *testing.T) {
	g := buildGraph(t, []string{"A"}, [][2]string{{"A", "A"}}, graph.EdgeTriggers)
	cycles := DetectCycles(g)
	if len(cycles) != 1 || len(cycles[0]) != 1 {
		t.Fatalf("cycles = %v, want one self-loop", cycles)
	}
	stats := AnalyzeCycles(cycles)
	if stats.SelfLoops != 1 || stats.TotalCycles != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDetectCycles_EdgeTypeFilter(t *testing.T) {
	g := buildGraph(t, []string{"A", "B"}, [][2]string{{"A", "B"}}, graph.EdgeCalls)
	seq := ids.NewSequence("x", time.Time{}, 0)
	addEdge(t, g, seq, graph.EdgeImports, "B", "A")

	if !HasCycle(g) {
		t.Error("cycle over all edge types expected")
	}
	if HasCycle(g, graph.EdgeCalls) {
		t.Error("no cycle expected when following calls only")
	}
}

func TestAnalyzeCycles(t *testing.T) {
	stats := AnalyzeCycles([]Cycle{{"a"}, {"a", "b", "c"}, {"x", "y"}})
	want := CycleStats{TotalCycles: 3, ShortestCycle: 1, LongestCycle: 3, AverageLength: 2, SelfLoops: 1}
	if stats != want {
		t.Errorf("AnalyzeCycles = %+v, want %+v", stats, want)
	}
	if AnalyzeCycles(nil) != (CycleStats{}) {
		t.Error("empty input should give zero stats")
	}
}

func TestTopologicalSort(t *testing.T) {
	g := buildGraph(t, []string{"deploy", "build", "test", "lint"},
		[][2]string{{"build", "test"}, {"test", "deploy"}, {"lint", "deploy"}}, graph.EdgeTriggers)
	order, err := TopologicalSort(g)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"build", "lint", "test", "deploy"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if roots := Roots(g); !reflect.DeepEqual(roots, []string{"build", "lint"}) {
		t.Errorf("Roots = %v", roots)
	}

	cyclic := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}}, graph.EdgeTriggers)
	if _, err := TopologicalSort(cyclic); !errors.Is(err, ErrCycle) {
		t.Errorf("err = %v, want ErrCycle", err)
	}
}

func TestDanglingEdgesAreIgnored(t *testing.T) {
	g := buildGraph(t, []string{"a"}, [][2]string{{"a", "ghost"}, {"ghost", "a"}}, graph.EdgeCalls)
	if HasCycle(g) {
		t.Error("edges to unknown nodes must not form cycles")
	}
	if order, err := TopologicalSort(g); err != nil || !reflect.DeepEqual(order, []string{"a"}) {
		t.Errorf("order = %v, err = %v", order, err)
	}
}

func TestStronglyConnectedComponents(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c", "d", "e"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"c", "d"}, {"e", "e"}}, graph.EdgeDependsOn)
	comps := StronglyConnectedComponents(g)
	if len(comps) != 3 {
		t.Fatalf("components = %v, want 3", comps)
	}
	cyclic := CyclicComponents(g)
	if len(cyclic) != 2 {
		t.Fatalf("cyclic components = %v, want 2", cyclic)
	}
	sizes := map[int]bool{len(cyclic[0]): true, len(cyclic[1]): true}
	if !sizes[3] || !sizes[1] {
		t.Errorf("cyclic component sizes = %v", sizes)
	}
}

func TestKHopNeighbours(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}}, graph.EdgeTriggers)

	res, err := KHopNeighbours(g, []string{"a"}, DefaultKHopOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalReachable != 2 || res.Distances["c"] != 2 {
		t.Errorf("result = %+v", res)
	}
	if _, ok := res.Distances["a"]; ok {
		t.Error("source must not be part of the result")
	}

	in, _ := KHopNeighbours(g, []string{"d"}, KHopOptions{MaxHops: 1, Direction: DirectionIn})
	if !reflect.DeepEqual(in.Order, []string{"c"}) {
		t.Errorf("incoming 1-hop = %v", in.Order)
	}

	limited, _ := KHopNeighbours(g, []string{"a"}, KHopOptions{MaxResults: 1})
	if limited.TotalReachable != 1 {
		t.Errorf("MaxResults ignored: %+v", limited)
	}

	if _, err := KHopNeighbours(g, []string{"a"}, KHopOptions{MaxHops: -1}); err == nil {
		t.Error("negative MaxHops should fail")
	}
}

func TestDownstreamAndUpstream(t *testing.T) {
	g := buildGraph(t, []string{"src", "build", "image", "deploy", "docs"},
		[][2]string{{"src", "build"}, {"build", "image"}, {"image", "deploy"}}, graph.EdgeProduces)

	got := Downstream(g, []string{"build", "missing"})
	if !reflect.DeepEqual(got, []string{"build", "image", "deploy"}) {
		t.Errorf("Downstream = %v", got)
	}
	if got := Upstream(g, []string{"image"}); !reflect.DeepEqual(got, []string{"src", "build", "image"}) {
		t.Errorf("Upstream = %v", got)
	}
	if got := Downstream(g, []string{"build"}, graph.EdgeCalls); !reflect.DeepEqual(got, []string{"build"}) {
		t.Errorf("Downstream over calls only = %v", got)
	}
}

func TestTopByDegree(t *testing.T) {
	g := buildGraph(t, []string{"hub", "a", "b", "c"},
		[][2]string{{"hub", "a"}, {"hub", "b"}, {"c", "hub"}}, graph.EdgeCalls)
	top := TopByDegree(g, 2)
	if len(top) != 2 || top[0].NodeID != "hub" || top[0].Score != 1 {
		t.Errorf("TopByDegree = %+v", top)
	}
	if all := TopByDegree(g, -1); len(all) != 4 {
		t.Errorf("TopByDegree(-1) = %d entries, want 4", len(all))
	}
}
