package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTraversalMetrics() {
	r.TraversalsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "conduit_traversals_total",
			Help: "Total number of run network traversals by outcome",
		},
		[]string{"status"},
	)

	r.TraversalDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "conduit_traversal_duration_seconds",
			Help:    "Run network traversal duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	r.TraversalElementsVisited = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "conduit_traversal_elements_visited",
			Help:    "Number of classified elements per traversal",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000},
		},
	)

	r.TraversalSkippedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "conduit_traversal_skipped_elements_total",
			Help: "Elements that degraded to dead ends during traversal",
		},
	)

	r.TraversalJunctionBoxes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "conduit_traversal_junction_boxes",
			Help:    "Number of junction boxes bounding each traversed run",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)
}
