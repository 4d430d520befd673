package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// initServiceMetrics covers the HTTP surface of conduit-server and the
// process it runs in. Requests are labelled by route pattern, never by raw
// path, so element ids do not explode cardinality.
func (r *Registry) initServiceMetrics() {
	factory := promauto.With(r.registry)
	byRoute := []string{"method", "route", "status"}

	r.HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "conduit_http_requests_total",
		Help: "Requests served, by route and status code",
	}, byRoute)
	r.HTTPRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "conduit_http_request_duration_seconds",
		Help:    "Time to serve a request; /propagate includes the write transaction",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
	}, byRoute)
	r.HTTPRequestsInFlight = factory.NewGauge(prometheus.GaugeOpts{
		Name: "conduit_http_requests_in_flight",
		Help: "Requests currently being served",
	})
	r.HTTPResponseSizeBytes = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "conduit_http_response_size_bytes",
		Help:    "Response body size; large /traverse bodies mean large run networks",
		Buckets: prometheus.ExponentialBuckets(128, 4, 7),
	}, []string{"method", "route"})

	r.UptimeSeconds = factory.NewGauge(prometheus.GaugeOpts{
		Name: "conduit_uptime_seconds",
		Help: "Seconds since conduit-server started",
	})

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: "conduit"}),
	)
}
