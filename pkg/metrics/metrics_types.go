package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the SDK
type Registry struct {
	// Model Metrics
	NodesDecodedTotal    *prometheus.CounterVec
	DecodeFailuresTotal  *prometheus.CounterVec
	GraphValidationTotal *prometheus.CounterVec
	EventsEncodedTotal   *prometheus.CounterVec
	EventPayloadBytes    *prometheus.HistogramVec

	// Analytics Metrics
	SimulationsTotal       *prometheus.CounterVec
	SimulationDuration     prometheus.Histogram
	SnapshotsIngestedTotal prometheus.Counter
	TrendDirectionsTotal   *prometheus.CounterVec

	// Workflow and Alerting Metrics
	ProposalTransitionsTotal *prometheus.CounterVec
	AlertsFiredTotal         *prometheus.CounterVec
	AlertsDeliveredTotal     *prometheus.CounterVec
	TrackedGraphs            prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initModelMetrics()
	r.initAnalyticsMetrics()
	r.initWorkflowMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
