package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the conduit collectors on a private Prometheus registry.
type Registry struct {
	// conduit-server
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec
	UptimeSeconds         prometheus.Gauge

	// Model Metrics
	ModelElementsTotal      prometheus.Gauge
	ModelConnectionsTotal   prometheus.Gauge
	ModelCommitsTotal       *prometheus.CounterVec
	ModelCheckpointDuration prometheus.Histogram

	// Traversal Metrics
	TraversalsTotal          *prometheus.CounterVec
	TraversalDuration        prometheus.Histogram
	TraversalElementsVisited prometheus.Histogram
	TraversalSkippedTotal    prometheus.Counter
	TraversalJunctionBoxes   prometheus.Histogram

	// Propagation Metrics
	PropagationsTotal    *prometheus.CounterVec
	PropagationDuration  prometheus.Histogram
	ParameterWritesTotal *prometheus.CounterVec
	ConfirmationsTotal   *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initServiceMetrics()
	r.initModelMetrics()
	r.initTraversalMetrics()
	r.initPropagationMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
