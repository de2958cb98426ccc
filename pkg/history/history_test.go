package history

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/scoring"
)

var t0 = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func snap(name string, at time.Time, c, f, m float64) *Snapshot {
	return &Snapshot{
		ID: "s-" + at.Format("150405"), GraphName: name, ScannedAt: at,
		ComplexityScore: c, FragilityScore: f, MaturityScore: m,
	}
}

func newReport(t *testing.T, name string) *TrendReport {
	t.Helper()
	r, err := NewTrendReport(ids.NewSequence("r", t0, time.Second), name)
	require.NoError(t, err)
	return r
}

func trendFor(trends []ScoreTrend, m scoring.Metric) ScoreTrend {
	for _, tr := range trends {
		if tr.Metric == m {
			return tr
		}
	}
	return ScoreTrend{}
}

func TestComputeTrends_Polarity(t *testing.T) {
	r := newReport(t, "api")
	require.NoError(t, r.Add(snap("api", t0, 60, 30, 40)))
	require.NoError(t, r.Add(snap("api", t0.Add(time.Hour), 40, 35, 55)))

	trends := r.ComputeTrends()
	require.Len(t, trends, 3)

	c := trendFor(trends, scoring.MetricComplexity)
	assert.Equal(t, -20.0, c.Delta())
	assert.Equal(t, scoring.Improved, c.Direction())

	f := trendFor(trends, scoring.MetricFragility)
	assert.Equal(t, 5.0, f.Delta())
	assert.Equal(t, scoring.Regressed, f.Direction())

	m := trendFor(trends, scoring.MetricMaturity)
	assert.Equal(t, 15.0, m.Delta())
	assert.Equal(t, scoring.Improved, m.Direction())

	assert.Equal(t, trends, r.Trends())
}

func TestComputeTrends_FewerThanTwo(t *testing.T) {
	r := newReport(t, "api")
	assert.Empty(t, r.ComputeTrends())
	assert.NotNil(t, r.ComputeTrends())

	require.NoError(t, r.Add(snap("api", t0, 1, 2, 3)))
	assert.Empty(t, r.ComputeTrends())
	assert.Empty(t, r.Trends())
}

func TestComputeTrends_UsesOnlyLastTwo(t *testing.T) {
	r := newReport(t, "api")
	require.NoError(t, r.Add(snap("api", t0, 90, 0, 0)))
	require.NoError(t, r.Add(snap("api", t0.Add(time.Hour), 50, 0, 0)))
	require.NoError(t, r.Add(snap("api", t0.Add(2*time.Hour), 55, 0, 0)))

	c := trendFor(r.ComputeTrends(), scoring.MetricComplexity)
	assert.Equal(t, 50.0, c.Previous)
	assert.Equal(t, 55.0, c.Current)
	assert.Equal(t, scoring.Regressed, c.Direction())
}

func TestTrendReport_AddKeepsChronologicalOrder(t *testing.T) {
	r := newReport(t, "api")
	late := snap("api", t0.Add(2*time.Hour), 0, 0, 0)
	early := snap("api", t0, 0, 0, 0)
	mid := snap("api", t0.Add(time.Hour), 0, 0, 0)
	for _, s := range []*Snapshot{late, early, mid} {
		require.NoError(t, r.Add(s))
	}
	assert.Equal(t, []*Snapshot{early, mid, late}, r.Snapshots())
	latest, ok := r.Latest()
	require.True(t, ok)
	assert.Same(t, late, latest)
	assert.Equal(t, 3, r.TotalSnapshots())
}

func TestTrendReport_RejectsOtherGraph(t *testing.T) {
	r := newReport(t, "api")
	err := r.Add(snap("web", t0, 0, 0, 0))
	assert.True(t, errors.Is(err, ErrGraphMismatch))
	assert.Equal(t, 0, r.TotalSnapshots())
	_, ok := r.Latest()
	assert.False(t, ok)

	_, err = NewTrendReport(nil, "")
	assert.Error(t, err)
}

func TestScoreTrend_JSONRecomputesDerivedFields(t *testing.T) {
	tr := ScoreTrend{Metric: scoring.MetricMaturity, Previous: 40, Current: 55}
	data, err := json.Marshal(tr)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 15.0, raw["delta"])
	assert.Equal(t, "improved", raw["direction"])

	tampered := []byte(`{"metric":"maturity","previous":40,"current":55,"delta":-99,"direction":"regressed"}`)
	var back ScoreTrend
	require.NoError(t, json.Unmarshal(tampered, &back))
	assert.Equal(t, tr, back)
	assert.Equal(t, scoring.Improved, back.Direction())

	assert.Error(t, json.Unmarshal([]byte(`{"metric":"speed","previous":1,"current":2}`), &back))
}

func TestTrendReport_JSONRoundTrip(t *testing.T) {
	r := newReport(t, "api")
	require.NoError(t, r.Add(snap("api", t0, 60, 30, 40)))
	require.NoError(t, r.Add(snap("api", t0.Add(time.Hour), 40, 35, 55)))
	r.ComputeTrends()

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var back TrendReport
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, r.ID, back.ID)
	assert.Equal(t, r.Trends(), back.Trends())
	require.Equal(t, 2, back.TotalSnapshots())
	assert.True(t, back.Snapshots()[1].ScannedAt.Equal(t0.Add(time.Hour)))
}

func TestNewSnapshot_CapturesGraph(t *testing.T) {
	seq := ids.NewSequence("g", t0, time.Minute)
	g, err := graph.New(seq, "api")
	require.NoError(t, err)
	p, err := graph.NewNode(seq, "ci", graph.Pipeline{})
	require.NoError(t, err)
	j, err := graph.NewNode(seq, "build", graph.Job{})
	require.NoError(t, err)
	g.AddNode(p)
	g.AddNode(j)
	e, err := graph.NewEdge(seq, graph.EdgeCalls, p.ID(), j.ID())
	require.NoError(t, err)
	g.AddEdge(e)

	s, err := NewSnapshot(seq, g, scoring.Scores{Complexity: 12, Fragility: 8, Maturity: 70}, 4)
	require.NoError(t, err)
	assert.Equal(t, "api", s.GraphName)
	assert.Equal(t, g.ID(), s.GraphID)
	assert.Equal(t, 2, s.NodeCount)
	assert.Equal(t, 1, s.EdgeCount)
	assert.Equal(t, 4, s.FindingCount)
	assert.Equal(t, scoring.Scores{Complexity: 12, Fragility: 8, Maturity: 70}, s.Scores())
	assert.Len(t, s.GraphDigest, 64)

	same, err := Fingerprint(g.Clone())
	require.NoError(t, err)
	assert.Equal(t, s.GraphDigest, same)

	extra, err := graph.NewNode(seq, "test", graph.Job{})
	require.NoError(t, err)
	g.AddNode(extra)
	changed, err := Fingerprint(g)
	require.NoError(t, err)
	assert.NotEqual(t, s.GraphDigest, changed)
}
