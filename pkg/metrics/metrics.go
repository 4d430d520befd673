package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// RecordTraversal records one traversal. status is "success" or an error class.
func (r *Registry) RecordTraversal(status string, duration time.Duration, visited, skipped, junctionBoxes int) {
	r.TraversalsTotal.WithLabelValues(status).Inc()
	r.TraversalDuration.Observe(duration.Seconds())
	if status != "success" {
		return
	}
	r.TraversalElementsVisited.Observe(float64(visited))
	r.TraversalSkippedTotal.Add(float64(skipped))
	r.TraversalJunctionBoxes.Observe(float64(junctionBoxes))
}

// RecordPropagation records a finished propagation and its writes per classification.
func (r *Registry) RecordPropagation(outcome string, duration time.Duration, writes map[string]int) {
	r.PropagationsTotal.WithLabelValues(outcome).Inc()
	r.PropagationDuration.Observe(duration.Seconds())
	for class, n := range writes {
		r.ParameterWritesTotal.WithLabelValues(class).Add(float64(n))
	}
}

// RecordConfirmation records the answer to the junction box confirmation.
func (r *Registry) RecordConfirmation(accepted bool) {
	answer := "no"
	if accepted {
		answer = "yes"
	}
	r.ConfirmationsTotal.WithLabelValues(answer).Inc()
}

// RecordCommit records a model transaction outcome.
func (r *Registry) RecordCommit(status string) {
	r.ModelCommitsTotal.WithLabelValues(status).Inc()
}

// RecordCheckpoint records a model checkpoint duration.
func (r *Registry) RecordCheckpoint(duration time.Duration) {
	r.ModelCheckpointDuration.Observe(duration.Seconds())
}

// UpdateModelMetrics sets the model size gauges.
func (r *Registry) UpdateModelMetrics(elements, connections int) {
	r.ModelElementsTotal.Set(float64(elements))
	r.ModelConnectionsTotal.Set(float64(connections))
}

// UpdateSystemMetrics refreshes the uptime gauge. Go runtime and process
// figures come from the registered collectors at scrape time.
func (r *Registry) UpdateSystemMetrics(started time.Time) {
	r.UptimeSeconds.Set(time.Since(started).Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RecordResponseSize records the size of an HTTP response body.
func (r *Registry) RecordResponseSize(method, route string, size float64) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, route).Observe(size)
}

// IncHTTPRequestsInFlight marks a request as started.
func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight marks a request as finished.
func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}
