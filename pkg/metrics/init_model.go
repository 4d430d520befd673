package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initModelMetrics() {
	r.ModelElementsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "conduit_model_elements_total",
			Help: "Total number of elements in the building model",
		},
	)

	r.ModelConnectionsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "conduit_model_connections_total",
			Help: "Total number of connections in the building model",
		},
	)

	r.ModelCommitsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "conduit_model_commits_total",
			Help: "Total number of model transactions by outcome",
		},
		[]string{"status"},
	)

	r.ModelCheckpointDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "conduit_model_checkpoint_duration_seconds",
			Help:    "Snapshot and journal truncation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)
}
