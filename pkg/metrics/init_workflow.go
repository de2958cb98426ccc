package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initWorkflowMetrics() {
	r.ProposalTransitionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_proposal_transitions_total",
			Help: "Proposal state transitions attempted, by outcome",
		},
		[]string{"from", "to", "result"},
	)

	r.AlertsFiredTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_alerts_fired_total",
			Help: "Total number of alert events raised by severity",
		},
		[]string{"severity"},
	)

	r.AlertsDeliveredTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_alerts_delivered_total",
			Help: "Alert dispatch attempts by channel and whether a subscriber received them",
		},
		[]string{"channel", "delivered"},
	)

	r.TrackedGraphs = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "atlas_monitor_tracked_graphs",
			Help: "Number of graphs whose trend report is held by the monitor",
		},
	)
}
