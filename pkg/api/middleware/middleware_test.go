package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dd0wney/cluso-conduit/pkg/logging"
)

type fakeRecorder struct {
	mu       sync.Mutex
	requests []string
	sizes    []float64
	inFlight int
	peak     int
}

func (f *fakeRecorder) RecordHTTPRequest(method, path, status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, method+" "+path+" "+status)
}

func (f *fakeRecorder) RecordResponseSize(_, _ string, size float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sizes = append(f.sizes, size)
}

func (f *fakeRecorder) IncHTTPRequestsInFlight() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
}

func (f *fakeRecorder) DecHTTPRequestsInFlight() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if seen == "" {
			t.Fatal("expected a generated request ID")
		}
		if got := rec.Header().Get(RequestIDHeader); got != seen {
			t.Errorf("header = %q, context = %q", got, seen)
		}
	})

	t.Run("client supplied is sanitized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "abc-123\n<script>")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if seen != "abc-123script" {
			t.Errorf("request ID = %q, want %q", seen, "abc-123script")
		}
	})

	t.Run("long IDs are truncated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("a", 100))
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if len(seen) != maxRequestIDLength {
			t.Errorf("len = %d, want %d", len(seen), maxRequestIDLength)
		}
	})
}

func TestPanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.DebugLevel)

	handler := PanicRecovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/propagate", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("panic value leaked to client")
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.InfoLevel)

	handler := RequestID()(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/propagate", nil))

	out := buf.String()
	for _, want := range []string{`"path":"/propagate"`, `"status":422`, `"request_id"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %s: %s", want, out)
		}
	}
}

func TestMetrics(t *testing.T) {
	rec := &fakeRecorder{}
	handler := Metrics(rec, RoutePattern)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/99") {
			w.WriteHeader(http.StatusNotFound)
		}
		w.Write([]byte("hello"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/elements/42", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/elements/99", nil))

	want := []string{"GET /elements/{id} 200", "GET /elements/{id} 404"}
	if len(rec.requests) != len(want) {
		t.Fatalf("requests = %v, want %v", rec.requests, want)
	}
	for i := range want {
		if rec.requests[i] != want[i] {
			t.Errorf("request[%d] = %q, want %q", i, rec.requests[i], want[i])
		}
	}
	if rec.sizes[0] != 5 {
		t.Errorf("size = %v, want 5", rec.sizes[0])
	}
	if rec.inFlight != 0 || rec.peak != 1 {
		t.Errorf("in flight = %d (peak %d), want 0 (peak 1)", rec.inFlight, rec.peak)
	}
}

func TestMetrics_NilRecorder(t *testing.T) {
	called := false
	handler := Metrics(nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if !called {
		t.Error("handler not called")
	}
}

func TestRoutePattern(t *testing.T) {
	tests := map[string]string{
		"/elements/12":  "/elements/{id}",
		"/elements/12/": "/elements/{id}/",
		"/traverse":     "/traverse",
		"/elements/abc": "/elements/abc",
		"/":             "/",
	}
	for path, want := range tests {
		if got := RoutePattern(httptest.NewRequest(http.MethodGet, path, nil)); got != want {
			t.Errorf("RoutePattern(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestBodySizeLimit(t *testing.T) {
	tests := []struct {
		name         string
		bodySize     int
		maxSize      int64
		expectStatus int
	}{
		{"within limit", 100, 1024, http.StatusOK},
		{"at exact limit", 1024, 1024, http.StatusOK},
		{"exceeds limit", 2048, 1024, http.StatusRequestEntityTooLarge},
		{"empty", 0, 1024, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := BodySizeLimit(tt.maxSize)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/propagate", bytes.NewReader(make([]byte, tt.bodySize)))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.expectStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectStatus)
			}
		})
	}
}
