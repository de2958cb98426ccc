package history

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/scoring"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

// ScoreTrend compares one metric across two snapshots. Delta and Direction
// are computed from Previous and Current on every read.
type ScoreTrend struct {
	Metric   scoring.Metric
	Previous float64
	Current  float64
}

func (t ScoreTrend) Delta() float64 {
	return scoring.Delta(t.Previous, t.Current)
}

func (t ScoreTrend) Direction() scoring.Direction {
	return scoring.Classify(t.Metric, t.Delta())
}

type trendWire struct {
	Metric    scoring.Metric    `json:"metric" validate:"enum"`
	Previous  float64           `json:"previous"`
	Current   float64           `json:"current"`
	Delta     float64           `json:"delta"`
	Direction scoring.Direction `json:"direction"`
}

// MarshalJSON includes the derived delta and direction.
func (t ScoreTrend) MarshalJSON() ([]byte, error) {
	return json.Marshal(trendWire{
		Metric:    t.Metric,
		Previous:  t.Previous,
		Current:   t.Current,
		Delta:     t.Delta(),
		Direction: t.Direction(),
	})
}

// UnmarshalJSON ignores any encoded delta and direction; they are recomputed.
func (t *ScoreTrend) UnmarshalJSON(data []byte) error {
	var w trendWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := validation.Struct("score_trend", &w); err != nil {
		return err
	}
	*t = ScoreTrend{Metric: w.Metric, Previous: w.Previous, Current: w.Current}
	return nil
}

// TrendReport holds the snapshots of one named graph in chronological order
// and the trends last computed from them.
type TrendReport struct {
	ID          string
	GraphName   string
	GeneratedAt time.Time

	snapshots []*Snapshot
	trends    []ScoreTrend
}

// NewTrendReport creates an empty report for graphName.
func NewTrendReport(p ids.Provider, graphName string) (*TrendReport, error) {
	if graphName == "" {
		return nil, validation.Invalid("trend_report", "graph_name", graphName)
	}
	p = ids.OrSystem(p)
	return &TrendReport{
		ID:          p.NewID(),
		GraphName:   graphName,
		GeneratedAt: p.Now(),
	}, nil
}

// Add inserts s by scan time. Snapshots with equal timestamps keep arrival
// order.
func (r *TrendReport) Add(s *Snapshot) error {
	if s.GraphName != r.GraphName {
		return fmt.Errorf("%w: report %q, snapshot %q", ErrGraphMismatch, r.GraphName, s.GraphName)
	}
	i := sort.Search(len(r.snapshots), func(i int) bool {
		return r.snapshots[i].ScannedAt.After(s.ScannedAt)
	})
	r.snapshots = append(r.snapshots, nil)
	copy(r.snapshots[i+1:], r.snapshots[i:])
	r.snapshots[i] = s
	return nil
}

func (r *TrendReport) TotalSnapshots() int { return len(r.snapshots) }

// Latest returns the most recent snapshot.
func (r *TrendReport) Latest() (*Snapshot, bool) {
	if len(r.snapshots) == 0 {
		return nil, false
	}
	return r.snapshots[len(r.snapshots)-1], true
}

// Snapshots returns the snapshots oldest first.
func (r *TrendReport) Snapshots() []*Snapshot {
	return append([]*Snapshot(nil), r.snapshots...)
}

// Trends returns the trends of the last ComputeTrends call.
func (r *TrendReport) Trends() []ScoreTrend {
	return append([]ScoreTrend(nil), r.trends...)
}

// ComputeTrends compares the two most recent snapshots, one trend per metric,
// and replaces the stored trends with the result. With fewer than two
// snapshots it returns an empty list and leaves the stored trends alone.
func (r *TrendReport) ComputeTrends() []ScoreTrend {
	if len(r.snapshots) < 2 {
		return []ScoreTrend{}
	}
	prev := r.snapshots[len(r.snapshots)-2].Scores()
	cur := r.snapshots[len(r.snapshots)-1].Scores()
	trends := make([]ScoreTrend, 0, len(scoring.AllMetrics()))
	for _, m := range scoring.AllMetrics() {
		trends = append(trends, ScoreTrend{Metric: m, Previous: prev.Get(m), Current: cur.Get(m)})
	}
	r.trends = trends
	return append([]ScoreTrend(nil), trends...)
}

type reportWire struct {
	ID          string       `json:"id" validate:"required"`
	GraphName   string       `json:"graph_name" validate:"required"`
	Snapshots   []*Snapshot  `json:"snapshots" validate:"dive,required"`
	Trends      []ScoreTrend `json:"trends"`
	GeneratedAt time.Time    `json:"generated_at"`
}

func (r TrendReport) MarshalJSON() ([]byte, error) {
	w := reportWire{
		ID:          r.ID,
		GraphName:   r.GraphName,
		Snapshots:   r.snapshots,
		Trends:      r.trends,
		GeneratedAt: r.GeneratedAt,
	}
	if w.Snapshots == nil {
		w.Snapshots = []*Snapshot{}
	}
	if w.Trends == nil {
		w.Trends = []ScoreTrend{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON restores a report. Snapshots are re-sorted by scan time and
// must all belong to the report's graph.
func (r *TrendReport) UnmarshalJSON(data []byte) error {
	var w reportWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := validation.Struct("trend_report", &w); err != nil {
		return err
	}
	decoded := TrendReport{ID: w.ID, GraphName: w.GraphName, GeneratedAt: w.GeneratedAt}
	for _, s := range w.Snapshots {
		if err := decoded.Add(s); err != nil {
			return err
		}
	}
	if len(w.Trends) > 0 {
		decoded.trends = w.Trends
	}
	*r = decoded
	return nil
}
