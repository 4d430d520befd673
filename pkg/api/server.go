// Package api serves traversals and propagations over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dd0wney/cluso-conduit/pkg/api/middleware"
	"github.com/dd0wney/cluso-conduit/pkg/audit"
	"github.com/dd0wney/cluso-conduit/pkg/config"
	"github.com/dd0wney/cluso-conduit/pkg/graphql"
	"github.com/dd0wney/cluso-conduit/pkg/health"
	"github.com/dd0wney/cluso-conduit/pkg/logging"
	"github.com/dd0wney/cluso-conduit/pkg/metrics"
	"github.com/dd0wney/cluso-conduit/pkg/model"
	"github.com/dd0wney/cluso-conduit/pkg/propagation"
	"github.com/dd0wney/cluso-conduit/pkg/traversal"
)

// maxBodyBytes bounds request bodies; every request body is a small JSON object.
const maxBodyBytes = 1 << 20

// Server represents the HTTP API server
type Server struct {
	cfg            config.ServerConfig
	model          *model.Model
	propagator     *propagation.Propagator
	graphqlHandler *graphql.GraphQLHandler
	healthChecker  *health.HealthChecker
	auditLogger    *audit.AuditLogger
	metrics        *metrics.Registry
	logger         logging.Logger
	startTime      time.Time
	version        string
}

// Option configures a Server.
type Option func(*Server)

// WithAuditLogger exposes the audit trail on GET /audit and records traversals in it.
func WithAuditLogger(l *audit.AuditLogger) Option {
	return func(s *Server) { s.auditLogger = l }
}

// WithMetrics serves registry on GET /metrics and records HTTP metrics into it.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Server) { s.metrics = r }
}

// WithLogger sets the request and error logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a new API server over m. Propagations run through p.
func NewServer(cfg config.ServerConfig, m *model.Model, p *propagation.Propagator, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:        cfg,
		model:      m,
		propagator: p,
		logger:     logging.NewNopLogger(),
		startTime:  time.Now(),
		version:    "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.Component("api"))

	schema, err := graphql.GenerateSchema(s)
	if err != nil {
		return nil, fmt.Errorf("generate GraphQL schema: %w", err)
	}
	s.graphqlHandler = graphql.NewGraphQLHandler(schema)

	s.healthChecker = health.NewHealthChecker()
	s.healthChecker.Register(health.General, "model", health.ModelCheck(m.Statistics))
	s.healthChecker.Register(health.General, "memory", health.MemoryCheck())
	s.healthChecker.Register(health.Readiness, "model", health.ModelCheck(m.Statistics))
	s.healthChecker.Register(health.Liveness, "process", health.SimpleCheck("process"))
	return s, nil
}

// Element and Discover let the server back the GraphQL schema.
func (s *Server) Element(id model.ElementID) (*model.Element, error) {
	return s.model.Element(id)
}

func (s *Server) Discover(start model.ElementID) (*traversal.Result, error) {
	return s.propagator.Discover(start)
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/ready", s.healthChecker.Handler(health.Readiness))
	mux.HandleFunc("/health/live", s.healthChecker.Handler(health.Liveness))
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	mux.HandleFunc("/elements/", s.handleElement) // /elements/{id}
	mux.HandleFunc("/traverse", s.handleTraverse)
	mux.HandleFunc("/propagate", s.handlePropagate)
	mux.HandleFunc("/audit", s.handleAudit)
	mux.HandleFunc("/graphql", s.handleGraphQL)

	var handler http.Handler = mux
	handler = middleware.BodySizeLimit(maxBodyBytes)(handler)
	handler = middleware.PanicRecovery(s.logger)(handler)
	if s.metrics != nil {
		handler = middleware.Metrics(s.metrics, middleware.RoutePattern)(handler)
	}
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.RequestID()(handler)
	return handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", logging.String("addr", s.cfg.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
