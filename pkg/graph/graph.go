package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

// Graph owns the nodes and edges of one scanned CI/CD system.
//
// Insertion order is preserved and is the iteration order of every query.
// Nodes and edges handed to AddNode/AddEdge become owned by the graph; the
// caller must not keep mutating them. Duplicate node ids are accepted on
// insert and reported by Validate. There is no removal.
type Graph struct {
	id string

	Name      string
	Platform  *Platform
	ScannedAt time.Time
	Metadata  metadata.Map

	nodes []*Node
	edges []*Edge
	index map[string]int // node id -> position of its first occurrence
}

// GraphOption customizes a graph at construction.
type GraphOption func(*Graph)

func WithGraphID(id string) GraphOption {
	return func(g *Graph) { g.id = id }
}

func WithGraphPlatform(p Platform) GraphOption {
	return func(g *Graph) { g.Platform = &p }
}

func WithGraphMetadata(m metadata.Map) GraphOption {
	return func(g *Graph) { g.Metadata = m.Clone() }
}

// WithScannedAt overrides the scan timestamp, which otherwise comes from the
// provider's clock.
func WithScannedAt(t time.Time) GraphOption {
	return func(g *Graph) { g.ScannedAt = t.UTC() }
}

// New creates an empty graph.
func New(p ids.Provider, name string, opts ...GraphOption) (*Graph, error) {
	p = ids.OrSystem(p)
	g := &Graph{
		Name:     name,
		Metadata: metadata.Map{},
		index:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.id == "" {
		g.id = p.NewID()
	}
	if g.ScannedAt.IsZero() {
		g.ScannedAt = p.Now()
	}
	if g.Metadata == nil {
		g.Metadata = metadata.Map{}
	}
	h := g.header()
	if err := validation.Struct("graph", &h); err != nil {
		return nil, NewError("create").Graph(g.id).Cause(err).Err()
	}
	return g, nil
}

func (g *Graph) ID() string { return g.id }

// AddNode appends n. No uniqueness check is made.
func (g *Graph) AddNode(n *Node) {
	if g.index == nil {
		g.index = make(map[string]int)
	}
	if _, seen := g.index[n.ID()]; !seen {
		g.index[n.ID()] = len(g.nodes)
	}
	g.nodes = append(g.nodes, n)
}

// AddEdge appends e. Its endpoints are not checked.
func (g *Graph) AddEdge(e *Edge) {
	g.edges = append(g.edges, e)
}

// GetNode returns the first node with the given id.
func (g *Graph) GetNode(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// HasNode reports whether a node with the given id is present.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// EdgesFrom returns the edges whose source is id, in insertion order.
func (g *Graph) EdgesFrom(id string) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.SourceNodeID == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns the edges whose target is id, in insertion order.
func (g *Graph) EdgesTo(id string) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.TargetNodeID == id {
			out = append(out, e)
		}
	}
	return out
}

// Nodes returns the owned nodes in insertion order. The slice is a copy; the
// nodes are not.
func (g *Graph) Nodes() []*Node {
	return append([]*Node(nil), g.nodes...)
}

// Edges returns the owned edges in insertion order.
func (g *Graph) Edges() []*Edge {
	return append([]*Edge(nil), g.edges...)
}

func (g *Graph) NodesOfType(t NodeType) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Type() == t {
			out = append(out, n)
		}
	}
	return out
}

func (g *Graph) EdgesOfType(t EdgeType) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Clone returns a deep copy that shares no node, edge or map with g.
func (g *Graph) Clone() *Graph {
	clone := &Graph{
		id:        g.id,
		Name:      g.Name,
		Platform:  clonePtr(g.Platform),
		ScannedAt: g.ScannedAt,
		Metadata:  g.Metadata.Clone(),
		nodes:     make([]*Node, 0, len(g.nodes)),
		edges:     make([]*Edge, 0, len(g.edges)),
		index:     make(map[string]int, len(g.index)),
	}
	for _, n := range g.nodes {
		clone.AddNode(n.Clone())
	}
	for _, e := range g.edges {
		clone.AddEdge(e.Clone())
	}
	return clone
}

// DanglingEdges returns the edges with an endpoint that is not in the graph.
func (g *Graph) DanglingEdges() []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if !g.HasNode(e.SourceNodeID) || !g.HasNode(e.TargetNodeID) {
			out = append(out, e)
		}
	}
	return out
}

// DuplicateNodeIDs returns every node id that occurs more than once, in order
// of first occurrence.
func (g *Graph) DuplicateNodeIDs() []string {
	counts := make(map[string]int, len(g.nodes))
	var order []string
	for _, n := range g.nodes {
		if counts[n.ID()] == 0 {
			order = append(order, n.ID())
		}
		counts[n.ID()]++
	}
	var dups []string
	for _, id := range order {
		if counts[id] > 1 {
			dups = append(dups, id)
		}
	}
	return dups
}

// Validate runs the graph's consistency check: every node and edge is well
// formed, node ids are unique, and no edge dangles. All failures are joined.
func (g *Graph) Validate() error {
	var errs []error
	h := g.header()
	if err := validation.Struct("graph", &h); err != nil {
		errs = append(errs, NewError("validate").Graph(g.id).Cause(err).Err())
	}
	if err := g.Metadata.Validate(); err != nil {
		errs = append(errs, NewError("validate").Graph(g.id).Field("metadata").Cause(err).Err())
	}
	for _, n := range g.nodes {
		if err := n.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, e := range g.edges {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, id := range g.DuplicateNodeIDs() {
		errs = append(errs, NewError("validate").Node(id).Cause(ErrDuplicateNodeID).Err())
	}
	for _, e := range g.DanglingEdges() {
		errs = append(errs, NewError("validate").Edge(e.ID()).
			Cause(fmt.Errorf("%w: %s -> %s", ErrDanglingEdge, e.SourceNodeID, e.TargetNodeID)).Err())
	}
	return errors.Join(errs...)
}

type graphHeader struct {
	ID        string       `json:"id" validate:"required"`
	Name      string       `json:"name" validate:"required"`
	Platform  *Platform    `json:"platform" validate:"omitempty,enum"`
	ScannedAt time.Time    `json:"scanned_at"`
	Metadata  metadata.Map `json:"metadata"`
}

func (g *Graph) header() graphHeader {
	return graphHeader{
		ID:        g.id,
		Name:      g.Name,
		Platform:  g.Platform,
		ScannedAt: g.ScannedAt,
		Metadata:  g.Metadata,
	}
}

type graphWire struct {
	graphHeader
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

func (g Graph) MarshalJSON() ([]byte, error) {
	w := graphWire{graphHeader: g.header(), Nodes: g.nodes, Edges: g.edges}
	if w.Nodes == nil {
		w.Nodes = []*Node{}
	}
	if w.Edges == nil {
		w.Edges = []*Edge{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a graph, dispatching each node on its node_type.
// Dangling edges and duplicate ids are kept; Validate reports them.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var w graphWire
	if err := json.Unmarshal(data, &w); err != nil {
		var me *ModelError
		if errors.As(err, &me) {
			return err
		}
		return NewError("decode").Graph("").Cause(err).Err()
	}
	if err := validation.Struct("graph", &w.graphHeader); err != nil {
		return NewError("decode").Graph(w.ID).Cause(err).Err()
	}
	decoded := Graph{
		id:        w.ID,
		Name:      w.Name,
		Platform:  w.Platform,
		ScannedAt: w.ScannedAt,
		Metadata:  w.Metadata,
		index:     make(map[string]int, len(w.Nodes)),
	}
	if decoded.Metadata == nil {
		decoded.Metadata = metadata.Map{}
	}
	for i, n := range w.Nodes {
		if n == nil {
			return NewError("decode").Graph(w.ID).Field(fmt.Sprintf("nodes[%d]", i)).Cause(ErrMissingAttributes).Err()
		}
		decoded.AddNode(n)
	}
	for i, e := range w.Edges {
		if e == nil {
			return NewError("decode").Graph(w.ID).Field(fmt.Sprintf("edges[%d]", i)).Cause(errors.New("null edge")).Err()
		}
		decoded.AddEdge(e)
	}
	*g = decoded
	return nil
}
