package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initModelMetrics() {
	r.NodesDecodedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_nodes_decoded_total",
			Help: "Total number of nodes reconstructed by type-directed decoding",
		},
		[]string{"node_type"},
	)

	r.DecodeFailuresTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_decode_failures_total",
			Help: "Total number of records that failed to decode",
		},
		[]string{"kind"},
	)

	r.GraphValidationTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_graph_validations_total",
			Help: "Total number of graph consistency checks by outcome",
		},
		[]string{"result"},
	)

	r.EventsEncodedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_events_encoded_total",
			Help: "Total number of bus payloads encoded",
		},
		[]string{"kind"},
	)

	r.EventPayloadBytes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atlas_event_payload_bytes",
			Help:    "Size of encoded bus payloads in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"kind", "compressed"},
	)
}
