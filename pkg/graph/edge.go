package graph

import (
	"encoding/json"

	"github.com/Matza-labs/atlas-sdk/pkg/confidence"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

// Edge is a directed, typed relationship between two node identifiers.
// It does not own its endpoints; whether they exist in a given graph is
// checked by the graph, not here. Self-loops and parallel edges are allowed.
type Edge struct {
	id string

	Type         EdgeType
	SourceNodeID string
	TargetNodeID string
	Label        *string
	Metadata     metadata.Map
	Source       confidence.Source
	Confidence   confidence.Level
}

// EdgeOption customizes an edge at construction.
type EdgeOption func(*Edge)

func WithEdgeID(id string) EdgeOption {
	return func(e *Edge) { e.id = id }
}

func WithLabel(label string) EdgeOption {
	return func(e *Edge) { e.Label = &label }
}

func WithEdgeMetadata(m metadata.Map) EdgeOption {
	return func(e *Edge) { e.Metadata = m.Clone() }
}

func WithEdgeProvenance(s confidence.Score) EdgeOption {
	return func(e *Edge) {
		e.Source = s.Source
		e.Confidence = s.Level
	}
}

// NewEdge builds and validates an edge from one node id to another.
func NewEdge(p ids.Provider, t EdgeType, from, to string, opts ...EdgeOption) (*Edge, error) {
	def := confidence.Default()
	e := &Edge{
		Type:         t,
		SourceNodeID: from,
		TargetNodeID: to,
		Metadata:     metadata.Map{},
		Source:       def.Source,
		Confidence:   def.Level,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.id == "" {
		e.id = ids.OrSystem(p).NewID()
	}
	if e.Metadata == nil {
		e.Metadata = metadata.Map{}
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Edge) ID() string { return e.id }

// Provenance returns the edge's confidence without reasoning.
func (e *Edge) Provenance() confidence.Score {
	return confidence.Score{Level: e.Confidence, Source: e.Source}
}

// Clone returns a deep copy.
func (e *Edge) Clone() *Edge {
	clone := *e
	clone.Label = clonePtr(e.Label)
	clone.Metadata = e.Metadata.Clone()
	return &clone
}

// Validate checks the edge's shape. Endpoint existence is not checked.
func (e *Edge) Validate() error {
	w := e.wire()
	if err := validation.Struct("edge", &w); err != nil {
		return NewError("validate").Edge(e.id).Cause(err).Err()
	}
	if err := e.Metadata.Validate(); err != nil {
		return NewError("validate").Edge(e.id).Field("metadata").Cause(err).Err()
	}
	return nil
}

type edgeWire struct {
	ID           string            `json:"id" validate:"required"`
	EdgeType     EdgeType          `json:"edge_type" validate:"enum"`
	SourceNodeID string            `json:"source_node_id" validate:"required"`
	TargetNodeID string            `json:"target_node_id" validate:"required"`
	Metadata     metadata.Map      `json:"metadata"`
	Source       confidence.Source `json:"source" validate:"enum"`
	Confidence   confidence.Level  `json:"confidence" validate:"enum"`
	Label        *string           `json:"label"`
}

func (e *Edge) wire() edgeWire {
	return edgeWire{
		ID:           e.id,
		EdgeType:     e.Type,
		SourceNodeID: e.SourceNodeID,
		TargetNodeID: e.TargetNodeID,
		Metadata:     e.Metadata,
		Source:       e.Source,
		Confidence:   e.Confidence,
		Label:        e.Label,
	}
}

func (e Edge) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.wire())
}

// UnmarshalJSON decodes and validates an edge, keeping its identifier.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var w edgeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return NewError("decode").Edge("").Cause(err).Err()
	}
	decoded := Edge{
		id:           w.ID,
		Type:         w.EdgeType,
		SourceNodeID: w.SourceNodeID,
		TargetNodeID: w.TargetNodeID,
		Label:        w.Label,
		Metadata:     w.Metadata,
		Source:       w.Source,
		Confidence:   w.Confidence,
	}
	decoded.Metadata, decoded.Source, decoded.Confidence = fillProvenance(w.Metadata, w.Source, w.Confidence)
	if err := decoded.Validate(); err != nil {
		return err
	}
	*e = decoded
	return nil
}

// DecodeEdge rebuilds an edge from an untyped record.
func DecodeEdge(payload map[string]any) (*Edge, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, NewError("decode").Edge(idOf(payload)).Cause(err).Err()
	}
	var e Edge
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
