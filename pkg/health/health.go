// Package health runs the readiness and liveness checks of the conduit service.
package health

import (
	"time"
)

// NewHealthChecker creates a new health checker
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{checks: make(map[Kind]map[string]CheckFunc)}
}

// Register adds a check of the given kind, replacing one with the same name.
func (hc *HealthChecker) Register(kind Kind, name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	if hc.checks[kind] == nil {
		hc.checks[kind] = make(map[string]CheckFunc)
	}
	hc.checks[kind][name] = check
}

// Run performs every check of kind. The worst status wins.
func (hc *HealthChecker) Run(kind Kind) Response {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	response := Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]Check, len(hc.checks[kind])),
	}

	for name, checkFunc := range hc.checks[kind] {
		start := time.Now()
		check := checkFunc()
		check.Duration = time.Since(start)
		check.LastChecked = start
		if check.Name == "" {
			check.Name = name
		}
		response.Checks[name] = check

		switch {
		case check.Status == StatusUnhealthy:
			response.Status = StatusUnhealthy
		case check.Status == StatusDegraded && response.Status != StatusUnhealthy:
			response.Status = StatusDegraded
		}
	}

	return response
}
