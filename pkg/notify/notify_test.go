package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matza-labs/atlas-sdk/pkg/history"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/metrics"
	"github.com/Matza-labs/atlas-sdk/pkg/scoring"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

var t0 = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func seq() *ids.Sequence { return ids.NewSequence("n", t0, time.Second) }

func newConfig(t *testing.T, graphName string, ch Channel) *Config {
	t.Helper()
	c, err := NewConfig(seq(), graphName, ch, "https://hooks.example/"+graphName)
	require.NoError(t, err)
	return c
}

func snap(id, graph string, at time.Time, c, f, m float64) *history.Snapshot {
	return &history.Snapshot{
		ID: id, GraphName: graph, ScannedAt: at,
		ComplexityScore: c, FragilityScore: f, MaturityScore: m,
	}
}

func TestShouldAlert(t *testing.T) {
	c := newConfig(t, "api", ChannelSlack)
	assert.Equal(t, DefaultThresholds(), c.Thresholds)

	assert.True(t, c.ShouldAlert(85, 50, 50))
	assert.True(t, c.ShouldAlert(10, 71, 50))
	assert.True(t, c.ShouldAlert(10, 10, 29.9))
	assert.False(t, c.ShouldAlert(80, 70, 30))

	c.Enabled = false
	assert.False(t, c.ShouldAlert(85, 50, 50))
}

func TestShouldAlert_AbsentKeysNeverBreach(t *testing.T) {
	c := newConfig(t, "api", ChannelSlack)
	c.Thresholds = map[string]float64{}
	assert.False(t, c.ShouldAlert(100, 100, 0))
	assert.True(t, c.ShouldAlert(100.5, 0, 50))

	c.Thresholds = map[string]float64{MaturityMin: 60}
	assert.True(t, c.ShouldAlert(0, 0, 59))
}

func TestBreaches(t *testing.T) {
	c := newConfig(t, "api", ChannelSlack)
	b := c.Breaches(scoring.Scores{Complexity: 90, Fragility: 10, Maturity: 20})
	require.Len(t, b, 2)
	assert.Equal(t, ComplexityMax, b[0].Threshold)
	assert.Equal(t, MaturityMin, b[1].Threshold)
	assert.Equal(t, "complexity 90.0 above 80.0", b[0].String())
	assert.Equal(t, "maturity 20.0 below 30.0", b[1].String())
}

func TestEvaluate(t *testing.T) {
	c := newConfig(t, "api", ChannelEmail)

	_, fire := c.Evaluate(seq(), snap("s1", "api", t0, 10, 10, 90))
	assert.False(t, fire)

	_, fire = c.Evaluate(seq(), snap("s2", "web", t0, 99, 99, 0))
	assert.False(t, fire, "other graph")

	ev, fire := c.Evaluate(seq(), snap("s3", "api", t0, 85, 50, 50))
	require.True(t, fire)
	assert.Equal(t, SeverityWarning, ev.Severity)
	assert.Equal(t, c.ID, ev.ConfigID)
	assert.Equal(t, "api: complexity 85.0 above 80.0", ev.Message)
	assert.Equal(t, 85.0, ev.Scores["complexity"])
	assert.False(t, ev.Delivered)
	assert.NoError(t, ev.Validate())

	ev, fire = c.Evaluate(seq(), snap("s4", "api", t0, 85, 75, 50))
	require.True(t, fire)
	assert.Equal(t, SeverityCritical, ev.Severity)
}

func TestNewConfig_RejectsUnknownChannel(t *testing.T) {
	_, err := NewConfig(seq(), "api", Channel("pager"), "")
	assert.True(t, errors.Is(err, validation.ErrInvalid))
}

func TestLoadConfigs(t *testing.T) {
	doc := []byte(`
notifications:
  - graph_name: api
    target: https://hooks.slack.example/T1
  - id: cfg-web
    graph_name: web
    channel: webhook
    enabled: false
    thresholds:
      complexity_max: 50
`)
	cs, err := LoadConfigs(seq(), doc)
	require.NoError(t, err)
	require.Len(t, cs, 2)

	assert.NotEmpty(t, cs[0].ID)
	assert.Equal(t, ChannelSlack, cs[0].Channel)
	assert.True(t, cs[0].Enabled)
	assert.Equal(t, DefaultThresholds(), cs[0].Thresholds)

	assert.Equal(t, "cfg-web", cs[1].ID)
	assert.Equal(t, ChannelWebhook, cs[1].Channel)
	assert.False(t, cs[1].Enabled)
	assert.Equal(t, map[string]float64{ComplexityMax: 50}, cs[1].Thresholds)
}

func TestConfig_UnmarshalJSONDefaults(t *testing.T) {
	var c Config
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c1","graph_name":"app"}`), &c))
	assert.Equal(t, ChannelSlack, c.Channel)
	assert.True(t, c.Enabled)
	assert.Equal(t, DefaultThresholds(), c.Thresholds)
	assert.True(t, c.ShouldAlert(95, 50, 50))
	assert.NoError(t, c.Validate())

	var off Config
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c2","graph_name":"app","channel":"email","enabled":false,"thresholds":{"fragility_max":10}}`), &off))
	assert.Equal(t, ChannelEmail, off.Channel)
	assert.False(t, off.Enabled)
	assert.Equal(t, map[string]float64{FragilityMax: 10}, off.Thresholds)

	orig := newConfig(t, "api", ChannelWebhook)
	data, err := json.Marshal(orig)
	require.NoError(t, err)
	var back Config
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, *orig, back)
}

func TestLoadConfigs_Invalid(t *testing.T) {
	_, err := LoadConfigs(seq(), []byte("notifications:\n  - channel: slack\n"))
	assert.True(t, errors.Is(err, validation.ErrInvalid), "missing graph_name")

	_, err = LoadConfigs(seq(), []byte("notifications: [oops"))
	assert.Error(t, err)
}

func TestDispatcher(t *testing.T) {
	reg := metrics.NewRegistry()
	d := NewDispatcher(nil, reg)
	defer d.Close()

	sub, err := d.Subscribe(context.Background(), ChannelSlack)
	require.NoError(t, err)

	c := newConfig(t, "api", ChannelSlack)
	ev, _ := c.Evaluate(seq(), snap("s1", "api", t0, 85, 50, 50))
	assert.True(t, d.Dispatch(ChannelSlack, ev))
	assert.True(t, ev.Delivered)

	select {
	case got := <-sub.C():
		assert.Equal(t, ev.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("no alert received")
	}

	other, _ := c.Evaluate(seq(), snap("s2", "api", t0, 85, 50, 50))
	assert.False(t, d.Dispatch(ChannelEmail, other), "no email subscriber")
	assert.False(t, other.Delivered)
}

func TestMonitor_IngestComputesTrendsAndAlerts(t *testing.T) {
	d := NewDispatcher(nil, nil)
	defer d.Close()
	sub, err := d.Subscribe(context.Background(), ChannelSlack)
	require.NoError(t, err)

	m, err := NewMonitor(d, MonitorOptions{Provider: seq(), Metrics: metrics.NewRegistry()})
	require.NoError(t, err)
	require.NoError(t, m.AddConfig(newConfig(t, "api", ChannelSlack)))

	first, err := m.Ingest(snap("s1", "api", t0, 60, 30, 40))
	require.NoError(t, err)
	assert.Empty(t, first.Trends)
	assert.Empty(t, first.Alerts)

	second, err := m.Ingest(snap("s2", "api", t0.Add(time.Hour), 85, 35, 55))
	require.NoError(t, err)
	require.Len(t, second.Trends, 3)
	require.Len(t, second.Alerts, 1)
	assert.True(t, second.Alerts[0].Delivered)
	assert.Equal(t, 2, second.Report.TotalSnapshots())

	select {
	case got := <-sub.C():
		assert.Equal(t, "api", got.GraphName)
	case <-time.After(time.Second):
		t.Fatal("no alert received")
	}

	report, ok := m.Report("api")
	require.True(t, ok)
	latest, _ := report.Latest()
	assert.Equal(t, "s2", latest.ID)

	_, ok = m.Report("web")
	assert.False(t, ok)
}

func TestMonitor_EvictsLeastRecentlyUpdated(t *testing.T) {
	m, err := NewMonitor(nil, MonitorOptions{Capacity: 2, Provider: seq()})
	require.NoError(t, err)

	for i, name := range []string{"a", "b", "c"} {
		_, err := m.Ingest(snap("s", name, t0.Add(time.Duration(i)*time.Minute), 1, 1, 99))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, m.Tracked())
	_, ok := m.Report("a")
	assert.False(t, ok)
	_, ok = m.Report("c")
	assert.True(t, ok)
}

func TestMonitor_RejectsInvalidSnapshot(t *testing.T) {
	m, err := NewMonitor(nil, MonitorOptions{})
	require.NoError(t, err)
	_, err = m.Ingest(&history.Snapshot{ID: "s1"})
	assert.True(t, errors.Is(err, validation.ErrInvalid))
}
