package health

import (
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Kind groups checks by the endpoint that runs them.
type Kind int

const (
	// General checks run for GET /health.
	General Kind = iota
	// Readiness checks decide whether the service can take traffic.
	Readiness
	// Liveness checks decide whether the process should be restarted.
	Liveness
)

// Check represents a health check for a specific component
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ms"`
}

// CheckFunc is a function that performs a health check
type CheckFunc func() Check

// HealthChecker runs registered checks per Kind.
type HealthChecker struct {
	mu     sync.RWMutex
	checks map[Kind]map[string]CheckFunc
}

// Response represents the overall health response
type Response struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
}
