// Package scoring defines the three health metrics, their polarity, and the
// scorers that derive them from a graph and its findings.
//
// Classify is the only place the polarity rule lives. Trend reports and
// simulation results both call it, so maturity cannot be special-cased in one
// and forgotten in the other.
package scoring

import (
	"math"
	"strconv"
	"strings"

	"github.com/Matza-labs/atlas-sdk/pkg/findings"
	"github.com/Matza-labs/atlas-sdk/pkg/graph"
)

// Metric names a health score.
type Metric string

const (
	MetricComplexity Metric = "complexity"
	MetricFragility  Metric = "fragility"
	MetricMaturity   Metric = "maturity"
)

// AllMetrics returns the metrics in reporting order.
func AllMetrics() []Metric {
	return []Metric{MetricComplexity, MetricFragility, MetricMaturity}
}

func (m Metric) Valid() bool {
	switch m {
	case MetricComplexity, MetricFragility, MetricMaturity:
		return true
	}
	return false
}

// HigherIsBetter is true for maturity only.
func (m Metric) HigherIsBetter() bool {
	return m == MetricMaturity
}

// Direction classifies a change in a metric.
type Direction string

const (
	Improved  Direction = "improved"
	Regressed Direction = "regressed"
	Stable    Direction = "stable"
)

func (d Direction) Valid() bool {
	switch d {
	case Improved, Regressed, Stable:
		return true
	}
	return false
}

// Delta returns cur - prev rounded to one decimal place. Exact halves round
// to even, so 0.25 becomes 0.2 and 0.75 becomes 0.8.
func Delta(prev, cur float64) float64 {
	d, _ := strconv.ParseFloat(strconv.FormatFloat(cur-prev, 'f', 1, 64), 64)
	return d
}

// Classify maps a delta to a direction using the metric's polarity.
func Classify(m Metric, delta float64) Direction {
	if m.HigherIsBetter() {
		delta = -delta
	}
	switch {
	case delta < 0:
		return Improved
	case delta > 0:
		return Regressed
	default:
		return Stable
	}
}

// Scores holds one value per metric, conventionally in [0, 100].
type Scores struct {
	Complexity float64 `json:"complexity"`
	Fragility  float64 `json:"fragility"`
	Maturity   float64 `json:"maturity"`
}

// Get returns the score for m. Unknown metrics read as 0.
func (s Scores) Get(m Metric) float64 {
	switch m {
	case MetricComplexity:
		return s.Complexity
	case MetricFragility:
		return s.Fragility
	case MetricMaturity:
		return s.Maturity
	}
	return 0
}

// Scorer derives scores for a graph given the findings raised against it.
type Scorer interface {
	Score(g *graph.Graph, fs []*findings.Finding) Scores
}

// SeverityScorer weighs findings by severity. A finding counts towards the
// metric named by its impact category: complexity and fragility grow with the
// weight, maturity starts at 100 and shrinks. Results are clamped to [0, 100].
// Findings with any other impact category are ignored.
type SeverityScorer struct {
	Weights map[findings.Severity]float64
}

// DefaultWeights returns critical=20 high=10 medium=5 low=2 info=0.
func DefaultWeights() map[findings.Severity]float64 {
	return map[findings.Severity]float64{
		findings.SeverityCritical: 20,
		findings.SeverityHigh:     10,
		findings.SeverityMedium:   5,
		findings.SeverityLow:      2,
		findings.SeverityInfo:     0,
	}
}

// NewSeverityScorer returns a scorer using weights, or DefaultWeights when
// weights is empty.
func NewSeverityScorer(weights map[findings.Severity]float64) *SeverityScorer {
	if len(weights) == 0 {
		weights = DefaultWeights()
	}
	return &SeverityScorer{Weights: weights}
}

func (s *SeverityScorer) Score(_ *graph.Graph, fs []*findings.Finding) Scores {
	var complexity, fragility, maturityLoss float64
	for _, f := range fs {
		w := s.Weights[f.Severity]
		switch Metric(strings.ToLower(strings.TrimSpace(f.ImpactCategory))) {
		case MetricComplexity:
			complexity += w
		case MetricFragility:
			fragility += w
		case MetricMaturity:
			maturityLoss += w
		}
	}
	return Scores{
		Complexity: clamp(complexity),
		Fragility:  clamp(fragility),
		Maturity:   clamp(100 - maturityLoss),
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
