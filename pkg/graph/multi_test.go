package graph

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Matza-labs/atlas-sdk/pkg/confidence"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

func twoProjects(t *testing.T) (*MultiProjectGraph, *Graph, *Graph) {
	t.Helper()
	seq := newSeq()
	api := mustGraph(t, seq, "api")
	apiP := mustNode(t, seq, "api-ci", Pipeline{}, WithNodeID("api-p"))
	apiJar := mustNode(t, seq, "api.jar", Artifact{ArtifactType: ArtifactJar}, WithNodeID("api-jar"))
	api.AddNode(apiP)
	api.AddNode(apiJar)
	api.AddEdge(mustEdge(t, seq, EdgeProduces, apiP.ID(), apiJar.ID()))

	web := mustGraph(t, seq, "web")
	for _, id := range []string{"web-p", "web-j1", "web-j2"} {
		web.AddNode(mustNode(t, seq, id, Job{}, WithNodeID(id)))
	}
	web.AddEdge(mustEdge(t, seq, EdgeCalls, "web-p", "web-j1"))
	web.AddEdge(mustEdge(t, seq, EdgeCalls, "web-p", "web-j2"))

	m := NewMulti()
	m.AddGraph(api)
	m.AddGraph(web)
	return m, api, web
}

func TestMultiProjectGraph_Totals(t *testing.T) {
	m, api, web := twoProjects(t)
	cross, err := NewCrossProjectEdge(newSeq(), LinkSharedArtifact, api.ID(), "api-jar", web.ID(), "web-j1", 0.9)
	if err != nil {
		t.Fatal(err)
	}
	m.AddCrossEdge(cross)

	if got := m.TotalNodes(); got != 5 {
		t.Errorf("TotalNodes = %d, want 5", got)
	}
	if got := m.TotalEdges(); got != 4 {
		t.Errorf("TotalEdges = %d, want 4 (1 + 2 + 1 cross)", got)
	}
}

func TestCrossProjectEdge_Validation(t *testing.T) {
	if _, err := NewCrossProjectEdge(newSeq(), LinkCrossTrigger, "a", "x", "b", "y", 1.5); !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("confidence > 1: err = %v", err)
	}
	if _, err := NewCrossProjectEdge(newSeq(), "mirrors", "a", "x", "b", "y", 0.5); !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("unknown link type: err = %v", err)
	}
}

func TestMultiProjectGraph_ResolveIsLazy(t *testing.T) {
	m, api, _ := twoProjects(t)
	early, err := NewCrossProjectEdge(newSeq(), LinkCrossTrigger, api.ID(), "api-p", "graph-later", "deploy", 0.3)
	if err != nil {
		t.Fatal(err)
	}
	m.AddCrossEdge(early)

	if _, _, err := m.Resolve(early); !errors.Is(err, ErrGraphNotFound) {
		t.Errorf("Resolve err = %v, want ErrGraphNotFound", err)
	}
	if got := m.UnresolvedCrossEdges(); len(got) != 1 {
		t.Errorf("UnresolvedCrossEdges = %d, want 1", len(got))
	}

	later := mustGraph(t, newSeq(), "later", WithGraphID("graph-later"))
	later.AddNode(mustNode(t, newSeq(), "deploy", Job{}, WithNodeID("deploy")))
	m.AddGraph(later)

	src, dst, err := m.Resolve(early)
	if err != nil {
		t.Fatalf("Resolve after assembly: %v", err)
	}
	if src.ID() != "api-p" || dst.ID() != "deploy" {
		t.Errorf("resolved %s -> %s", src.ID(), dst.ID())
	}
	if got := m.UnresolvedCrossEdges(); len(got) != 0 {
		t.Errorf("UnresolvedCrossEdges = %d, want 0", len(got))
	}
}

func TestMultiProjectGraph_Flatten(t *testing.T) {
	m, api, web := twoProjects(t)
	strong, _ := NewCrossProjectEdge(newSeq(), LinkSharedArtifact, api.ID(), "api-jar", web.ID(), "web-j1", 0.9)
	weak, _ := NewCrossProjectEdge(newSeq(), LinkCrossTrigger, api.ID(), "api-p", web.ID(), "web-p", 0.2)
	dangling, _ := NewCrossProjectEdge(newSeq(), LinkSharedSecret, api.ID(), "missing", web.ID(), "web-p", 0.9)
	m.AddCrossEdge(strong)
	m.AddCrossEdge(weak)
	m.AddCrossEdge(dangling)

	flat, err := m.Flatten(newSeq(), "org")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if flat.NodeCount() != 5 {
		t.Errorf("NodeCount = %d, want 5", flat.NodeCount())
	}
	if flat.EdgeCount() != 5 {
		t.Errorf("EdgeCount = %d, want 5 (3 own + 2 resolvable cross)", flat.EdgeCount())
	}

	consumes := flat.EdgesTo("web-j1")
	if len(consumes) != 1 || consumes[0].Type != EdgeConsumes {
		t.Fatalf("edges into web-j1 = %v", consumes)
	}
	if consumes[0].Metadata["link_type"] != "shared_artifact" || consumes[0].Provenance() != confidence.Medium() {
		t.Errorf("strong link = %+v", consumes[0])
	}

	triggers := flat.EdgesTo("web-p")
	if len(triggers) != 1 || triggers[0].Type != EdgeTriggers || triggers[0].Provenance() != confidence.Low() {
		t.Errorf("weak link = %v", triggers)
	}
	if err := flat.Validate(); err != nil {
		t.Errorf("flattened graph invalid: %v", err)
	}

	flat.Nodes()[0].Name = "changed"
	if api.Nodes()[0].Name == "changed" {
		t.Error("Flatten must copy nodes")
	}
}

func TestMultiProjectGraph_JSONRoundTrip(t *testing.T) {
	m, api, web := twoProjects(t)
	cross, _ := NewCrossProjectEdge(newSeq(), LinkSharedEnvironment, api.ID(), "api-p", web.ID(), "web-p", 0.75)
	m.AddCrossEdge(cross)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var back MultiProjectGraph
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.TotalNodes() != m.TotalNodes() || back.TotalEdges() != m.TotalEdges() {
		t.Errorf("totals %d/%d, want %d/%d", back.TotalNodes(), back.TotalEdges(), m.TotalNodes(), m.TotalEdges())
	}
	if got := back.CrossEdges()[0]; got.Confidence != 0.75 || got.LinkType != LinkSharedEnvironment {
		t.Errorf("cross edge = %+v", got)
	}
}
