package graph

import (
	"encoding/json"
	"fmt"

	"github.com/Matza-labs/atlas-sdk/pkg/confidence"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

// CrossProjectEdge links a node of one graph to a node of another.
type CrossProjectEdge struct {
	ID            string       `json:"id" validate:"required"`
	SourceGraphID string       `json:"source_graph_id" validate:"required"`
	SourceNodeID  string       `json:"source_node_id" validate:"required"`
	TargetGraphID string       `json:"target_graph_id" validate:"required"`
	TargetNodeID  string       `json:"target_node_id" validate:"required"`
	LinkType      LinkType     `json:"link_type" validate:"enum"`
	Confidence    float64      `json:"confidence" validate:"gte=0,lte=1"`
	Metadata      metadata.Map `json:"metadata"`
}

// NewCrossProjectEdge builds and validates a cross-project link. The
// referenced graphs and nodes need not exist yet.
func NewCrossProjectEdge(p ids.Provider, link LinkType, srcGraph, srcNode, dstGraph, dstNode string, conf float64) (*CrossProjectEdge, error) {
	c := &CrossProjectEdge{
		ID:            ids.OrSystem(p).NewID(),
		SourceGraphID: srcGraph,
		SourceNodeID:  srcNode,
		TargetGraphID: dstGraph,
		TargetNodeID:  dstNode,
		LinkType:      link,
		Confidence:    conf,
		Metadata:      metadata.Map{},
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CrossProjectEdge) Validate() error {
	if err := validation.Struct("cross_edge", c); err != nil {
		return NewError("validate").CrossEdge(c.ID).Cause(err).Err()
	}
	if err := c.Metadata.Validate(); err != nil {
		return NewError("validate").CrossEdge(c.ID).Field("metadata").Cause(err).Err()
	}
	return nil
}

func (c *CrossProjectEdge) Clone() *CrossProjectEdge {
	clone := *c
	clone.Metadata = c.Metadata.Clone()
	return &clone
}

// MultiProjectGraph aggregates several graphs and the links between them.
// Cross edges are accepted before either side is assembled; Resolve and
// UnresolvedCrossEdges check them on demand.
type MultiProjectGraph struct {
	graphs     []*Graph
	crossEdges []*CrossProjectEdge
}

func NewMulti() *MultiProjectGraph {
	return &MultiProjectGraph{}
}

// AddGraph appends g; the multi-project graph takes ownership.
func (m *MultiProjectGraph) AddGraph(g *Graph) {
	m.graphs = append(m.graphs, g)
}

// AddCrossEdge appends c without checking its endpoints.
func (m *MultiProjectGraph) AddCrossEdge(c *CrossProjectEdge) {
	m.crossEdges = append(m.crossEdges, c)
}

// Graph returns the first graph with the given id.
func (m *MultiProjectGraph) Graph(id string) (*Graph, bool) {
	for _, g := range m.graphs {
		if g.ID() == id {
			return g, true
		}
	}
	return nil, false
}

func (m *MultiProjectGraph) Graphs() []*Graph {
	return append([]*Graph(nil), m.graphs...)
}

func (m *MultiProjectGraph) CrossEdges() []*CrossProjectEdge {
	return append([]*CrossProjectEdge(nil), m.crossEdges...)
}

// TotalNodes is the sum of node counts over every graph.
func (m *MultiProjectGraph) TotalNodes() int {
	total := 0
	for _, g := range m.graphs {
		total += g.NodeCount()
	}
	return total
}

// TotalEdges is the sum of edge counts over every graph plus the number of
// cross edges.
func (m *MultiProjectGraph) TotalEdges() int {
	total := len(m.crossEdges)
	for _, g := range m.graphs {
		total += g.EdgeCount()
	}
	return total
}

// Resolve returns both endpoints of c when both graphs and nodes are present.
func (m *MultiProjectGraph) Resolve(c *CrossProjectEdge) (src, dst *Node, err error) {
	src, err = m.endpoint(c, c.SourceGraphID, c.SourceNodeID)
	if err != nil {
		return nil, nil, err
	}
	dst, err = m.endpoint(c, c.TargetGraphID, c.TargetNodeID)
	if err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}

func (m *MultiProjectGraph) endpoint(c *CrossProjectEdge, graphID, nodeID string) (*Node, error) {
	g, ok := m.Graph(graphID)
	if !ok {
		return nil, NewError("resolve").CrossEdge(c.ID).
			Cause(fmt.Errorf("%w: %s", ErrGraphNotFound, graphID)).Err()
	}
	n, ok := g.GetNode(nodeID)
	if !ok {
		return nil, NewError("resolve").CrossEdge(c.ID).
			Cause(fmt.Errorf("%w: %s/%s", ErrUnresolvedEndpoint, graphID, nodeID)).Err()
	}
	return n, nil
}

// UnresolvedCrossEdges returns the cross edges with a missing endpoint.
func (m *MultiProjectGraph) UnresolvedCrossEdges() []*CrossProjectEdge {
	var out []*CrossProjectEdge
	for _, c := range m.crossEdges {
		if _, _, err := m.Resolve(c); err != nil {
			out = append(out, c)
		}
	}
	return out
}

// lowLinkConfidence is the cut-off under which a flattened link is marked as
// inferred rather than statically established.
const lowLinkConfidence = 0.5

// Flatten merges clones of every graph into one new graph and turns each
// resolvable cross edge into an ordinary edge. Unresolvable cross edges are
// skipped. The receiver is not modified.
func (m *MultiProjectGraph) Flatten(p ids.Provider, name string) (*Graph, error) {
	p = ids.OrSystem(p)
	out, err := New(p, name, WithGraphMetadata(metadata.Map{"source_graphs": m.graphIDs()}))
	if err != nil {
		return nil, err
	}
	for _, g := range m.graphs {
		for _, n := range g.nodes {
			out.AddNode(n.Clone())
		}
		for _, e := range g.edges {
			out.AddEdge(e.Clone())
		}
	}
	for _, c := range m.crossEdges {
		if _, _, err := m.Resolve(c); err != nil {
			continue
		}
		prov := confidence.Default()
		if c.Confidence < lowLinkConfidence {
			prov = confidence.Low()
		}
		md := c.Metadata.Clone()
		if md == nil {
			md = metadata.Map{}
		}
		md["link_type"] = string(c.LinkType)
		md["link_confidence"] = c.Confidence
		md["cross_edge_id"] = c.ID
		e, err := NewEdge(p, c.LinkType.EdgeType(), c.SourceNodeID, c.TargetNodeID,
			WithEdgeProvenance(prov), WithEdgeMetadata(md), WithLabel(string(c.LinkType)))
		if err != nil {
			return nil, err
		}
		out.AddEdge(e)
	}
	return out, nil
}

func (m *MultiProjectGraph) graphIDs() []any {
	out := make([]any, 0, len(m.graphs))
	for _, g := range m.graphs {
		out = append(out, g.ID())
	}
	return out
}

type multiWire struct {
	Graphs     []*Graph            `json:"graphs"`
	CrossEdges []*CrossProjectEdge `json:"cross_edges"`
}

func (m MultiProjectGraph) MarshalJSON() ([]byte, error) {
	w := multiWire{Graphs: m.graphs, CrossEdges: m.crossEdges}
	if w.Graphs == nil {
		w.Graphs = []*Graph{}
	}
	if w.CrossEdges == nil {
		w.CrossEdges = []*CrossProjectEdge{}
	}
	return json.Marshal(w)
}

func (m *MultiProjectGraph) UnmarshalJSON(data []byte) error {
	var w multiWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	for _, c := range w.CrossEdges {
		if c == nil {
			continue
		}
		if c.Metadata == nil {
			c.Metadata = metadata.Map{}
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}
	*m = MultiProjectGraph{}
	for _, g := range w.Graphs {
		if g != nil {
			m.AddGraph(g)
		}
	}
	for _, c := range w.CrossEdges {
		if c != nil {
			m.AddCrossEdge(c)
		}
	}
	return nil
}
