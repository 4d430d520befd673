package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves the checks of kind. Unhealthy answers 503. Readiness and
// liveness are binary, so for them degraded answers 503 as well.
func (hc *HealthChecker) Handler(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		response := hc.Run(kind)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(StatusCode(kind, response.Status))
		json.NewEncoder(w).Encode(response)
	}
}

// StatusCode maps a check status to an HTTP status for kind.
func StatusCode(kind Kind, status Status) int {
	switch {
	case status == StatusHealthy:
		return http.StatusOK
	case status == StatusDegraded && kind == General:
		return http.StatusOK
	default:
		return http.StatusServiceUnavailable
	}
}
