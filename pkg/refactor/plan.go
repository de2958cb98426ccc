// Package refactor models remediation suggestions and the plans that group
// them.
package refactor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

// RiskLevel is the risk of applying a suggestion.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// DefaultEffort is the estimate given to suggestions that do not state one.
const DefaultEffort = "5 minutes"

// Suggestion is one concrete fix tied to a rule and, optionally, to a
// specific finding.
type Suggestion struct {
	ID              string       `json:"id" validate:"required"`
	RuleID          string       `json:"rule_id" validate:"required"`
	FindingID       *string      `json:"finding_id"`
	Description     string       `json:"description" validate:"required"`
	BeforeSnippet   string       `json:"before_snippet"`
	AfterSnippet    string       `json:"after_snippet"`
	EffortEstimate  string       `json:"effort_estimate"`
	RiskLevel       RiskLevel    `json:"risk_level" validate:"enum"`
	AffectedNodeIDs []string     `json:"affected_node_ids"`
	Metadata        metadata.Map `json:"metadata"`
}

// NewSuggestion builds a low-risk suggestion with the default effort.
func NewSuggestion(p ids.Provider, ruleID, description, before, after string) (*Suggestion, error) {
	s := &Suggestion{
		ID:              ids.OrSystem(p).NewID(),
		RuleID:          ruleID,
		Description:     description,
		BeforeSnippet:   before,
		AfterSnippet:    after,
		EffortEstimate:  DefaultEffort,
		RiskLevel:       RiskLow,
		AffectedNodeIDs: []string{},
		Metadata:        metadata.Map{},
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ForFinding ties the suggestion to one finding. An empty id unties it.
func (s *Suggestion) ForFinding(findingID string) *Suggestion {
	if findingID == "" {
		s.FindingID = nil
		return s
	}
	s.FindingID = &findingID
	return s
}

// UnmarshalJSON fills omitted fields with the NewSuggestion defaults. An empty
// finding_id means the suggestion is not tied to a finding.
func (s *Suggestion) UnmarshalJSON(data []byte) error {
	type wire Suggestion
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.FindingID != nil && *w.FindingID == "" {
		w.FindingID = nil
	}
	if w.EffortEstimate == "" {
		w.EffortEstimate = DefaultEffort
	}
	if w.RiskLevel == "" {
		w.RiskLevel = RiskLow
	}
	if w.AffectedNodeIDs == nil {
		w.AffectedNodeIDs = []string{}
	}
	if w.Metadata == nil {
		w.Metadata = metadata.Map{}
	}
	*s = Suggestion(w)
	return nil
}

func (s *Suggestion) Validate() error {
	if err := validation.Struct("suggestion", s); err != nil {
		return err
	}
	return s.Metadata.Validate()
}

func (s *Suggestion) Clone() *Suggestion {
	clone := *s
	if s.FindingID != nil {
		id := *s.FindingID
		clone.FindingID = &id
	}
	if s.AffectedNodeIDs != nil {
		clone.AffectedNodeIDs = append([]string{}, s.AffectedNodeIDs...)
	}
	clone.Metadata = s.Metadata.Clone()
	return &clone
}

// Plan is an ordered list of suggestions for one graph. The plan keeps the
// order it is given; putting the highest impact first is up to the caller.
type Plan struct {
	ID          string        `json:"id" validate:"required"`
	Name        string        `json:"name" validate:"required"`
	GraphID     string        `json:"graph_id"`
	Suggestions []*Suggestion `json:"suggestions" validate:"dive,required"`
}

// NewPlan creates an empty plan for the named pipeline.
func NewPlan(p ids.Provider, name, graphID string) (*Plan, error) {
	plan := &Plan{
		ID:          ids.OrSystem(p).NewID(),
		Name:        name,
		GraphID:     graphID,
		Suggestions: []*Suggestion{},
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// Add appends suggestions in the given order.
func (p *Plan) Add(s ...*Suggestion) {
	p.Suggestions = append(p.Suggestions, s...)
}

func (p *Plan) TotalSuggestions() int { return len(p.Suggestions) }

func (p *Plan) HighRiskCount() int {
	n := 0
	for _, s := range p.Suggestions {
		if s.RiskLevel == RiskHigh {
			n++
		}
	}
	return n
}

// TotalEffort sums every effort estimate it can parse. unparsed counts the
// estimates that were skipped.
func (p *Plan) TotalEffort() (total time.Duration, unparsed int) {
	for _, s := range p.Suggestions {
		d, err := ParseEffort(s.EffortEstimate)
		if err != nil {
			unparsed++
			continue
		}
		total += d
	}
	return total, unparsed
}

func (p *Plan) Validate() error {
	if err := validation.Struct("plan", p); err != nil {
		return err
	}
	for _, s := range p.Suggestions {
		if err := s.Metadata.Validate(); err != nil {
			return fmt.Errorf("suggestion %s: %w", s.ID, err)
		}
	}
	return nil
}

func (p *Plan) Clone() *Plan {
	clone := *p
	if p.Suggestions != nil {
		clone.Suggestions = make([]*Suggestion, len(p.Suggestions))
	}
	for i, s := range p.Suggestions {
		clone.Suggestions[i] = s.Clone()
	}
	return &clone
}

var effortPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(minute|minutes|min|mins|hour|hours|hr|hrs|day|days)$`)

// ParseEffort reads estimates such as "5 minutes", "1 hour", "2 days" or a
// Go duration like "90m". A day counts as eight working hours.
func ParseEffort(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if m := effortPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, err
		}
		var unit time.Duration
		switch {
		case strings.HasPrefix(m[2], "min"):
			unit = time.Minute
		case strings.HasPrefix(m[2], "h"):
			unit = time.Hour
		default:
			unit = 8 * time.Hour
		}
		return time.Duration(n * float64(unit)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("effort estimate %q: unrecognized format", s)
	}
	return d, nil
}
