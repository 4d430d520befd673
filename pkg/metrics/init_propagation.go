package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPropagationMetrics() {
	r.PropagationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "conduit_propagations_total",
			Help: "Total number of parameter propagations by outcome",
		},
		[]string{"outcome"},
	)

	r.PropagationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "conduit_propagation_duration_seconds",
			Help:    "End-to-end propagation duration in seconds, excluding user prompts",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.ParameterWritesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "conduit_parameter_writes_total",
			Help: "Parameter values written by propagation, by target classification",
		},
		[]string{"classification"},
	)

	r.ConfirmationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "conduit_junction_box_confirmations_total",
			Help: "Answers to the multiple junction box confirmation",
		},
		[]string{"answer"},
	)
}
