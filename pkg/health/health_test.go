package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dd0wney/cluso-conduit/pkg/model"
)

func fixed(status Status) CheckFunc {
	return func() Check { return Check{Status: status} }
}

func TestRun_WorstStatusWins(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"no checks", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy beats degraded", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			for i, s := range tt.statuses {
				hc.Register(General, string(rune('a'+i)), fixed(s))
			}
			resp := hc.Run(General)
			if resp.Status != tt.want {
				t.Errorf("status = %s, want %s", resp.Status, tt.want)
			}
			if len(resp.Checks) != len(tt.statuses) {
				t.Errorf("checks = %d, want %d", len(resp.Checks), len(tt.statuses))
			}
		})
	}
}

func TestRun_KindsAreSeparate(t *testing.T) {
	hc := NewHealthChecker()
	called := false
	hc.Register(Readiness, "model", func() Check {
		called = true
		return Check{Status: StatusUnhealthy}
	})
	hc.Register(Liveness, "process", SimpleCheck("process"))

	if resp := hc.Run(Liveness); resp.Status != StatusHealthy {
		t.Errorf("liveness = %s, want healthy", resp.Status)
	}
	if called {
		t.Error("readiness check ran for liveness")
	}

	resp := hc.Run(Readiness)
	if !called || resp.Status != StatusUnhealthy {
		t.Errorf("readiness = %s (called %v)", resp.Status, called)
	}
	if resp.Checks["model"].Name != "model" {
		t.Errorf("unnamed check should take its registration name, got %q", resp.Checks["model"].Name)
	}
}

func TestModelCheck(t *testing.T) {
	check := ModelCheck(func() model.Statistics { return model.Statistics{} })()
	if check.Status != StatusUnhealthy {
		t.Errorf("empty model = %s, want unhealthy", check.Status)
	}

	check = ModelCheck(func() model.Statistics { return model.Statistics{Elements: 6, Connections: 5} })()
	if check.Status != StatusHealthy {
		t.Errorf("loaded model = %s, want healthy", check.Status)
	}
	if check.Details["elements"] != 6 {
		t.Errorf("elements detail = %v, want 6", check.Details["elements"])
	}
}

func TestMemoryCheck(t *testing.T) {
	check := MemoryCheck()()
	if check.Status == StatusUnhealthy {
		t.Errorf("memory check must never be unhealthy")
	}
	if _, ok := check.Details["alloc_bytes"]; !ok {
		t.Error("missing alloc_bytes detail")
	}
}

func TestHandler(t *testing.T) {
	tests := []struct {
		kind   Kind
		status Status
		want   int
	}{
		{General, StatusHealthy, http.StatusOK},
		{General, StatusDegraded, http.StatusOK},
		{General, StatusUnhealthy, http.StatusServiceUnavailable},
		{Readiness, StatusDegraded, http.StatusServiceUnavailable},
		{Liveness, StatusHealthy, http.StatusOK},
	}

	for _, tt := range tests {
		hc := NewHealthChecker()
		hc.Register(tt.kind, "c", fixed(tt.status))

		rec := httptest.NewRecorder()
		hc.Handler(tt.kind).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != tt.want {
			t.Errorf("kind %d status %s: code = %d, want %d", tt.kind, tt.status, rec.Code, tt.want)
		}

		var resp Response
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Status != tt.status {
			t.Errorf("body status = %s, want %s", resp.Status, tt.status)
		}
	}

	rec := httptest.NewRecorder()
	NewHealthChecker().Handler(General).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST code = %d, want 405", rec.Code)
	}
}
