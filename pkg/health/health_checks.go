package health

import (
	"runtime"
	"time"

	"github.com/dd0wney/cluso-conduit/pkg/model"
)

// SimpleCheck creates a simple health check that always returns healthy
func SimpleCheck(name string) CheckFunc {
	return func() Check {
		return Check{Name: name, Status: StatusHealthy, LastChecked: time.Now()}
	}
}

// ModelCheck reports the loaded model. An empty model has nothing to
// traverse and is unhealthy.
func ModelCheck(stats func() model.Statistics) CheckFunc {
	return func() Check {
		s := stats()
		check := Check{
			Name: "model",
			Details: map[string]any{
				"elements":         s.Elements,
				"connections":      s.Connections,
				"commits":          s.Commits,
				"parameter_writes": s.ParameterWrites,
			},
		}
		if !s.LastCheckpoint.IsZero() {
			check.Details["last_checkpoint"] = s.LastCheckpoint
		}

		if s.Elements == 0 {
			check.Status = StatusUnhealthy
			check.Message = "Model is empty"
		} else {
			check.Status = StatusHealthy
			check.Message = "Model loaded"
		}
		return check
	}
}

// MemoryCheck is degraded when more than 90% of the memory obtained from
// the OS is allocated.
func MemoryCheck() CheckFunc {
	return func() Check {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		check := Check{
			Name: "memory",
			Details: map[string]any{
				"alloc_bytes": m.Alloc,
				"sys_bytes":   m.Sys,
				"goroutines":  runtime.NumGoroutine(),
			},
		}

		if m.Sys > 0 && float64(m.Alloc)/float64(m.Sys) > 0.9 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}
		return check
	}
}
