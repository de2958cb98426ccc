// Package findings holds the records a rule engine emits about a graph.
package findings

import (
	"github.com/Matza-labs/atlas-sdk/pkg/confidence"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

// Severity of a finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// AllSeverities returns the severities from most to least severe.
func AllSeverities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
}

func (s Severity) Valid() bool { return s.Rank() >= 0 }

// Rank orders severities: critical is 4, info is 0, unknown values are -1.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	case SeverityInfo:
		return 0
	}
	return -1
}

// Evidence is one piece of support for a finding.
type Evidence struct {
	SourceFile  *string `json:"source_file"`
	LineNumber  *int    `json:"line_number" validate:"omitempty,gte=1"`
	Snippet     *string `json:"snippet"`
	NodeID      *string `json:"node_id"`
	Description string  `json:"description"`
}

// Finding is a rule engine result.
type Finding struct {
	ID              string           `json:"id" validate:"required"`
	RuleID          string           `json:"rule_id" validate:"required"`
	Title           string           `json:"title" validate:"required"`
	Description     string           `json:"description"`
	Severity        Severity         `json:"severity" validate:"enum"`
	Evidence        []Evidence       `json:"evidence" validate:"dive"`
	Confidence      confidence.Score `json:"confidence"`
	Recommendation  string           `json:"recommendation"`
	ImpactCategory  string           `json:"impact_category"`
	AffectedNodeIDs []string         `json:"affected_node_ids"`
	Metadata        metadata.Map     `json:"metadata"`
}

// New builds a finding with medium confidence and empty collections.
func New(p ids.Provider, ruleID, title, description string, severity Severity) (*Finding, error) {
	f := &Finding{
		ID:              ids.OrSystem(p).NewID(),
		RuleID:          ruleID,
		Title:           title,
		Description:     description,
		Severity:        severity,
		Evidence:        []Evidence{},
		Confidence:      confidence.Default(),
		AffectedNodeIDs: []string{},
		Metadata:        metadata.Map{},
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Finding) Validate() error {
	if err := validation.Struct("finding", f); err != nil {
		return err
	}
	return f.Metadata.Validate()
}

// Affects reports whether the finding names the given node, either directly
// or through its evidence.
func (f *Finding) Affects(nodeID string) bool {
	for _, id := range f.AffectedNodeIDs {
		if id == nodeID {
			return true
		}
	}
	for _, ev := range f.Evidence {
		if ev.NodeID != nil && *ev.NodeID == nodeID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (f *Finding) Clone() *Finding {
	clone := *f
	if f.Evidence != nil {
		clone.Evidence = make([]Evidence, len(f.Evidence))
	}
	for i, ev := range f.Evidence {
		clone.Evidence[i] = Evidence{
			SourceFile:  clonePtr(ev.SourceFile),
			LineNumber:  clonePtr(ev.LineNumber),
			Snippet:     clonePtr(ev.Snippet),
			NodeID:      clonePtr(ev.NodeID),
			Description: ev.Description,
		}
	}
	clone.Confidence.Reasoning = clonePtr(f.Confidence.Reasoning)
	if f.AffectedNodeIDs != nil {
		clone.AffectedNodeIDs = append([]string{}, f.AffectedNodeIDs...)
	}
	clone.Metadata = f.Metadata.Clone()
	return &clone
}

// CountBySeverity tallies findings per severity.
func CountBySeverity(fs []*Finding) map[Severity]int {
	out := make(map[Severity]int, len(AllSeverities()))
	for _, f := range fs {
		out[f.Severity]++
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
