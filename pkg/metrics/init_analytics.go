package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalyticsMetrics() {
	r.SimulationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_simulations_total",
			Help: "Total number of refactor plan simulations by status",
		},
		[]string{"status"},
	)

	r.SimulationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "atlas_simulation_duration_seconds",
			Help:    "Simulation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	r.SnapshotsIngestedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "atlas_snapshots_ingested_total",
			Help: "Total number of scan snapshots added to trend reports",
		},
	)

	r.TrendDirectionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_trend_directions_total",
			Help: "Computed score trends by metric and direction",
		},
		[]string{"metric", "direction"},
	)
}
