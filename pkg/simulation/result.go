// Package simulation projects the outcome of applying a refactor plan to a
// graph without touching the graph, the plan or the findings.
package simulation

import (
	"encoding/json"

	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/scoring"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

// ScoreDelta compares one metric before and after a simulated plan.
type ScoreDelta struct {
	Metric scoring.Metric
	Before float64
	After  float64
}

func (d ScoreDelta) Delta() float64 {
	return scoring.Delta(d.Before, d.After)
}

// Improved reports whether the change moves the metric in its good
// direction. Lower is better for complexity and fragility.
func (d ScoreDelta) Improved() bool {
	return scoring.Classify(d.Metric, d.Delta()) == scoring.Improved
}

type deltaWire struct {
	Metric   scoring.Metric `json:"metric" validate:"enum"`
	Before   float64        `json:"before"`
	After    float64        `json:"after"`
	Delta    float64        `json:"delta"`
	Improved bool           `json:"improved"`
}

func (d ScoreDelta) MarshalJSON() ([]byte, error) {
	return json.Marshal(deltaWire{
		Metric:   d.Metric,
		Before:   d.Before,
		After:    d.After,
		Delta:    d.Delta(),
		Improved: d.Improved(),
	})
}

// UnmarshalJSON discards the encoded delta and improved flag.
func (d *ScoreDelta) UnmarshalJSON(data []byte) error {
	var w deltaWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := validation.Struct("score_delta", &w); err != nil {
		return err
	}
	*d = ScoreDelta{Metric: w.Metric, Before: w.Before, After: w.After}
	return nil
}

// Result is the projected outcome of one plan against one graph.
type Result struct {
	ID                 string       `json:"id" validate:"required"`
	PlanID             string       `json:"plan_id" validate:"required"`
	GraphID            string       `json:"graph_id" validate:"required"`
	FindingsRemoved    int          `json:"findings_removed" validate:"gte=0"`
	FindingsRemaining  int          `json:"findings_remaining" validate:"gte=0"`
	ScoreDeltas        []ScoreDelta `json:"score_deltas"`
	DiffPreview        string       `json:"diff_preview"`
	ProjectedNodeCount int          `json:"projected_node_count" validate:"gte=0"`
	ProjectedEdgeCount int          `json:"projected_edge_count" validate:"gte=0"`
	ImpactedNodeIDs    []string     `json:"impacted_node_ids"`
	Metadata           metadata.Map `json:"metadata"`
}

// TotalImprovements counts the metrics that improved.
func (r *Result) TotalImprovements() int {
	n := 0
	for _, d := range r.ScoreDeltas {
		if d.Improved() {
			n++
		}
	}
	return n
}

// Delta returns the delta recorded for m.
func (r *Result) Delta(m scoring.Metric) (ScoreDelta, bool) {
	for _, d := range r.ScoreDeltas {
		if d.Metric == m {
			return d, true
		}
	}
	return ScoreDelta{}, false
}

func (r *Result) Validate() error {
	if err := validation.Struct("simulation_result", r); err != nil {
		return err
	}
	return r.Metadata.Validate()
}
