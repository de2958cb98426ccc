package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Matza-labs/atlas-sdk/pkg/confidence"
	"github.com/Matza-labs/atlas-sdk/pkg/findings"
	"github.com/Matza-labs/atlas-sdk/pkg/graph"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/metrics"
)

// ParseResult carries parsed nodes and edges as untyped records. Each node
// record names its own node_type.
type ParseResult struct {
	Base
	ScanRequestID string   `json:"scan_request_id" validate:"required"`
	Nodes         []Record `json:"nodes"`
	Edges         []Record `json:"edges"`
}

func NewParseResult(p ids.Provider, scanRequestID string) *ParseResult {
	return &ParseResult{Base: NewBase(p), ScanRequestID: scanRequestID, Nodes: []Record{}, Edges: []Record{}}
}

// AddNode appends the encoded form of n.
func (e *ParseResult) AddNode(n *graph.Node) error {
	r, err := toRecord(n)
	if err != nil {
		return err
	}
	e.Nodes = append(e.Nodes, r)
	return nil
}

// AddEdge appends the encoded form of ed.
func (e *ParseResult) AddEdge(ed *graph.Edge) error {
	r, err := toRecord(ed)
	if err != nil {
		return err
	}
	e.Edges = append(e.Edges, r)
	return nil
}

func (*ParseResult) Kind() Kind         { return KindParseResult }
func (e *ParseResult) Validate() error { return validate("parse_result", e) }

// DecodeNodes rebuilds typed nodes, dispatching on each record's node_type.
func (e *ParseResult) DecodeNodes() ([]*graph.Node, error) {
	nodes := make([]*graph.Node, 0, len(e.Nodes))
	for i, r := range e.Nodes {
		n, err := decodeRecordNode(r)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func decodeRecordNode(r Record) (*graph.Node, error) {
	tag, _ := r["node_type"].(string)
	return graph.DecodeNode(graph.NodeType(tag), r)
}

func (e *ParseResult) DecodeEdges() ([]*graph.Edge, error) {
	edges := make([]*graph.Edge, 0, len(e.Edges))
	for i, r := range e.Edges {
		ed, err := graph.DecodeEdge(r)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		edges = append(edges, ed)
	}
	return edges, nil
}

// BuildGraph decodes every record into a new graph named name and checks it.
// Every record is attempted; the returned error joins all decode failures
// and the graph's consistency errors. reg may be nil.
func (e *ParseResult) BuildGraph(p ids.Provider, name string, reg *metrics.Registry, opts ...graph.GraphOption) (*graph.Graph, error) {
	opts = append([]graph.GraphOption{graph.WithGraphMetadata(metadata.Map{"scan_request_id": e.ScanRequestID})}, opts...)
	g, err := graph.New(p, name, opts...)
	if err != nil {
		return nil, err
	}

	var errs []error
	for i, r := range e.Nodes {
		n, err := decodeRecordNode(r)
		if err != nil {
			reg.RecordDecodeFailure("node")
			errs = append(errs, fmt.Errorf("node %d: %w", i, err))
			continue
		}
		reg.RecordNodeDecoded(string(n.Type()))
		g.AddNode(n)
	}
	for i, r := range e.Edges {
		ed, err := graph.DecodeEdge(r)
		if err != nil {
			reg.RecordDecodeFailure("edge")
			errs = append(errs, fmt.Errorf("edge %d: %w", i, err))
			continue
		}
		g.AddEdge(ed)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	err = g.Validate()
	reg.RecordGraphValidation(err == nil)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// FindingsReady carries rule engine output for one graph.
type FindingsReady struct {
	Base
	ScanRequestID string   `json:"scan_request_id" validate:"required"`
	GraphID       string   `json:"graph_id" validate:"required"`
	Findings      []Record `json:"findings"`
}

func NewFindingsReady(p ids.Provider, scanRequestID, graphID string) *FindingsReady {
	return &FindingsReady{Base: NewBase(p), ScanRequestID: scanRequestID, GraphID: graphID, Findings: []Record{}}
}

// AddFinding appends the encoded form of f.
func (e *FindingsReady) AddFinding(f *findings.Finding) error {
	r, err := toRecord(f)
	if err != nil {
		return err
	}
	e.Findings = append(e.Findings, r)
	return nil
}

func (*FindingsReady) Kind() Kind         { return KindFindingsReady }
func (e *FindingsReady) Validate() error { return validate("findings_ready", e) }

// DecodeFindings rebuilds and validates the findings. An absent confidence
// becomes the default medium/static score.
func (e *FindingsReady) DecodeFindings() ([]*findings.Finding, error) {
	out := make([]*findings.Finding, 0, len(e.Findings))
	for i, r := range e.Findings {
		data, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("finding %d: %w", i, err)
		}
		var f findings.Finding
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("finding %d: %w", i, err)
		}
		if f.Confidence == (confidence.Score{}) {
			f.Confidence = confidence.Default()
		}
		if f.Evidence == nil {
			f.Evidence = []findings.Evidence{}
		}
		if f.AffectedNodeIDs == nil {
			f.AffectedNodeIDs = []string{}
		}
		if f.Metadata == nil {
			f.Metadata = metadata.Map{}
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("finding %d: %w", i, err)
		}
		out = append(out, &f)
	}
	return out, nil
}

func toRecord(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return r, nil
}
