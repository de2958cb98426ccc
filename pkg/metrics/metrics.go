// Package metrics exposes Prometheus instrumentation for model operations.
//
// Every Record method is safe to call on a nil *Registry, so components can
// take an optional registry without guarding each call.
package metrics

import (
	"strconv"
	"time"
)

// RecordNodeDecoded counts one node reconstructed with the given type tag
func (r *Registry) RecordNodeDecoded(nodeType string) {
	if r == nil {
		return
	}
	r.NodesDecodedTotal.WithLabelValues(nodeType).Inc()
}

// RecordDecodeFailure counts a record of the given kind that failed to decode
func (r *Registry) RecordDecodeFailure(kind string) {
	if r == nil {
		return
	}
	r.DecodeFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordGraphValidation records the outcome of a graph consistency check
func (r *Registry) RecordGraphValidation(valid bool) {
	if r == nil {
		return
	}
	result := "valid"
	if !valid {
		result = "invalid"
	}
	r.GraphValidationTotal.WithLabelValues(result).Inc()
}

// RecordEventEncoded records an encoded bus payload and its size
func (r *Registry) RecordEventEncoded(kind string, compressed bool, size int) {
	if r == nil {
		return
	}
	r.EventsEncodedTotal.WithLabelValues(kind).Inc()
	r.EventPayloadBytes.WithLabelValues(kind, strconv.FormatBool(compressed)).Observe(float64(size))
}

// RecordSimulation records a simulation run
func (r *Registry) RecordSimulation(status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.SimulationsTotal.WithLabelValues(status).Inc()
	r.SimulationDuration.Observe(duration.Seconds())
}

// RecordSnapshotIngested counts a snapshot added to a trend report
func (r *Registry) RecordSnapshotIngested() {
	if r == nil {
		return
	}
	r.SnapshotsIngestedTotal.Inc()
}

// RecordTrend counts one computed trend
func (r *Registry) RecordTrend(metric, direction string) {
	if r == nil {
		return
	}
	r.TrendDirectionsTotal.WithLabelValues(metric, direction).Inc()
}

// RecordProposalTransition records an attempted proposal transition
func (r *Registry) RecordProposalTransition(from, to string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	r.ProposalTransitionsTotal.WithLabelValues(from, to, result).Inc()
}

// RecordAlertFired counts an alert raised at the given severity
func (r *Registry) RecordAlertFired(severity string) {
	if r == nil {
		return
	}
	r.AlertsFiredTotal.WithLabelValues(severity).Inc()
}

// RecordAlertDelivery records a dispatch attempt on a channel
func (r *Registry) RecordAlertDelivery(channel string, delivered bool) {
	if r == nil {
		return
	}
	r.AlertsDeliveredTotal.WithLabelValues(channel, strconv.FormatBool(delivered)).Inc()
}

// SetTrackedGraphs sets the number of graphs held by the monitor
func (r *Registry) SetTrackedGraphs(n int) {
	if r == nil {
		return
	}
	r.TrackedGraphs.Set(float64(n))
}
