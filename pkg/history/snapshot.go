// Package history records score snapshots of a named graph over time and
// derives trends between the two most recent ones.
package history

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/scoring"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

// ErrGraphMismatch is returned when a snapshot of another graph is added to
// a trend report.
var ErrGraphMismatch = errors.New("snapshot belongs to a different graph")

// Snapshot is an immutable point-in-time record of a graph's health.
type Snapshot struct {
	ID              string       `json:"id" validate:"required"`
	GraphName       string       `json:"graph_name" validate:"required"`
	GraphID         string       `json:"graph_id"`
	ComplexityScore float64      `json:"complexity_score"`
	FragilityScore  float64      `json:"fragility_score"`
	MaturityScore   float64      `json:"maturity_score"`
	FindingCount    int          `json:"finding_count" validate:"gte=0"`
	NodeCount       int          `json:"node_count" validate:"gte=0"`
	EdgeCount       int          `json:"edge_count" validate:"gte=0"`
	GraphDigest     string       `json:"graph_digest"`
	ScannedAt       time.Time    `json:"scanned_at"`
	Metadata        metadata.Map `json:"metadata"`
}

// NewSnapshot captures g's counts and content digest alongside the scores.
func NewSnapshot(p ids.Provider, g *graph.Graph, scores scoring.Scores, findingCount int) (*Snapshot, error) {
	p = ids.OrSystem(p)
	digest, err := Fingerprint(g)
	if err != nil {
		return nil, err
	}
	s := &Snapshot{
		ID:              p.NewID(),
		GraphName:       g.Name,
		GraphID:         g.ID(),
		ComplexityScore: scores.Complexity,
		FragilityScore:  scores.Fragility,
		MaturityScore:   scores.Maturity,
		FindingCount:    findingCount,
		NodeCount:       g.NodeCount(),
		EdgeCount:       g.EdgeCount(),
		GraphDigest:     digest,
		ScannedAt:       p.Now(),
		Metadata:        metadata.Map{},
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Snapshot) Validate() error {
	if err := validation.Struct("snapshot", s); err != nil {
		return err
	}
	return s.Metadata.Validate()
}

// Scores returns the three scores of the snapshot.
func (s *Snapshot) Scores() scoring.Scores {
	return scoring.Scores{
		Complexity: s.ComplexityScore,
		Fragility:  s.FragilityScore,
		Maturity:   s.MaturityScore,
	}
}

func (s *Snapshot) Clone() *Snapshot {
	clone := *s
	clone.Metadata = s.Metadata.Clone()
	return &clone
}

// Fingerprint returns the hex BLAKE2b-256 digest of g's nodes and edges in
// insertion order. Graphs with the same content have the same fingerprint
// regardless of their id, name or scan time.
func Fingerprint(g *graph.Graph) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	enc := json.NewEncoder(h)
	for _, n := range g.Nodes() {
		if err := enc.Encode(n); err != nil {
			return "", fmt.Errorf("fingerprint node %s: %w", n.ID(), err)
		}
	}
	// Separates the node section from the edge section.
	if _, err := h.Write([]byte{0}); err != nil {
		return "", err
	}
	for _, e := range g.Edges() {
		if err := enc.Encode(e); err != nil {
			return "", fmt.Errorf("fingerprint edge %s: %w", e.ID(), err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
