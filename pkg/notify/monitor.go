package notify

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Matza-labs/atlas-sdk/pkg/history"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/logging"
	"github.com/Matza-labs/atlas-sdk/pkg/metrics"
)

// DefaultCapacity is the number of graphs a Monitor tracks when none is set.
const DefaultCapacity = 128

// MonitorOptions configures a Monitor. Zero values pick defaults.
type MonitorOptions struct {
	Capacity int
	Provider ids.Provider
	Logger   logging.Logger
	Metrics  *metrics.Registry
}

// Monitor follows the trend of each graph it sees and raises alerts when a
// new snapshot breaches a config for that graph. The least recently updated
// graph's history is dropped once Capacity graphs are tracked.
type Monitor struct {
	mu         sync.Mutex
	reports    *lru.Cache[string, *history.TrendReport]
	configs    map[string][]*Config
	dispatcher *Dispatcher
	provider   ids.Provider
	logger     logging.Logger
	metrics    *metrics.Registry
}

// Ingestion is the outcome of one snapshot.
type Ingestion struct {
	Report *history.TrendReport
	Trends []history.ScoreTrend
	Alerts []*AlertEvent
}

// NewMonitor creates a monitor dispatching through d.
func NewMonitor(d *Dispatcher, opts MonitorOptions) (*Monitor, error) {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	m := &Monitor{
		configs:    make(map[string][]*Config),
		dispatcher: d,
		provider:   ids.OrSystem(opts.Provider),
		logger:     logging.OrNop(opts.Logger).With(logging.Component("notify.monitor")),
		metrics:    opts.Metrics,
	}
	cache, err := lru.NewWithEvict[string, *history.TrendReport](opts.Capacity, func(name string, _ *history.TrendReport) {
		m.logger.Debug("trend report evicted", logging.GraphName(name))
	})
	if err != nil {
		return nil, err
	}
	m.reports = cache
	return m, nil
}

// AddConfig registers c for its graph.
func (m *Monitor) AddConfig(c *Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[c.GraphName] = append(m.configs[c.GraphName], c)
	return nil
}

// Configs returns the configs registered for graphName.
func (m *Monitor) Configs(graphName string) []*Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Config(nil), m.configs[graphName]...)
}

// Report returns the tracked trend report for graphName.
func (m *Monitor) Report(graphName string) (*history.TrendReport, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reports.Peek(graphName)
}

// Tracked returns the number of graphs with a trend report.
func (m *Monitor) Tracked() int {
	return m.reports.Len()
}

// Ingest adds s to its graph's trend report, recomputes the trends and
// dispatches an alert for every config the snapshot breaches.
func (m *Monitor) Ingest(s *history.Snapshot) (*Ingestion, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	report, ok := m.reports.Get(s.GraphName)
	if !ok {
		var err error
		report, err = history.NewTrendReport(m.provider, s.GraphName)
		if err != nil {
			m.mu.Unlock()
			return nil, err
		}
		m.reports.Add(s.GraphName, report)
	}
	if err := report.Add(s); err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("ingest snapshot %s: %w", s.ID, err)
	}
	trends := report.ComputeTrends()
	total := report.TotalSnapshots()
	configs := append([]*Config(nil), m.configs[s.GraphName]...)
	m.mu.Unlock()

	m.metrics.RecordSnapshotIngested()
	m.metrics.SetTrackedGraphs(m.reports.Len())
	for _, t := range trends {
		m.metrics.RecordTrend(string(t.Metric), string(t.Direction()))
	}

	res := &Ingestion{Report: report, Trends: trends, Alerts: []*AlertEvent{}}
	for _, c := range configs {
		ev, fire := c.Evaluate(m.provider, s)
		if !fire {
			continue
		}
		if m.dispatcher != nil {
			m.dispatcher.Dispatch(c.Channel, ev)
		}
		res.Alerts = append(res.Alerts, ev)
	}

	m.logger.Info("snapshot ingested",
		logging.GraphName(s.GraphName),
		logging.Int("snapshots", total),
		logging.Int("alerts", len(res.Alerts)))
	return res, nil
}
