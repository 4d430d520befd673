package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dd0wney/cluso-conduit/pkg/audit"
	"github.com/dd0wney/cluso-conduit/pkg/health"
	"github.com/dd0wney/cluso-conduit/pkg/logging"
	"github.com/dd0wney/cluso-conduit/pkg/model"
	"github.com/dd0wney/cluso-conduit/pkg/propagation"
	"github.com/dd0wney/cluso-conduit/pkg/prompt"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).Get(func() {
		stats := s.model.Statistics()
		checks := s.healthChecker.Run(health.General)
		s.respondJSON(w, health.StatusCode(health.General, checks.Status), HealthResponse{
			Status:      string(checks.Status),
			Timestamp:   time.Now(),
			Version:     s.version,
			Uptime:      time.Since(s.startTime).String(),
			Elements:    stats.Elements,
			Connections: stats.Connections,
			Checks:      checks.Checks,
		})
	}).NotAllowed()
}

func (s *Server) handleElement(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).Get(func() {
		id, ok := s.NewPathExtractor(w, r).ExtractUint64("/elements/")
		if !ok {
			return
		}

		el, err := s.model.Element(model.ElementID(id))
		if err != nil {
			s.respondDomainError(w, err, "get element")
			return
		}

		resp := ElementResponse{
			ID:         uint64(el.ID),
			Category:   el.Category,
			Name:       el.Name,
			Connectors: el.Connectors,
			Parameters: el.Parameters,
		}
		if resp.Parameters == nil {
			resp.Parameters = map[string]string{}
		}
		if class, err := s.propagator.Classify(el.ID); err == nil {
			resp.Classification = class.String()
		}
		s.respondJSON(w, http.StatusOK, resp)
	}).NotAllowed()
}

func (s *Server) handleTraverse(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).Post(func() {
		var req TraversalRequest
		if s.NewRequestDecoder(w, r).DecodeJSON(&req).Validate(&req).RespondError() {
			return
		}

		start := time.Now()
		network, err := s.propagator.Discover(model.ElementID(req.Start))

		event := audit.NewRunEvent(r.RemoteAddr, audit.ActionTraverse, req.Start, audit.StatusSuccess)
		if err != nil {
			s.logAudit(event.Fail(err))
			s.respondDomainError(w, err, "traverse")
			return
		}

		resp := TraversalResponse{
			Start:         req.Start,
			Runs:          toUint64s(network.RunIDs()),
			Fittings:      toUint64s(network.FittingIDs()),
			JunctionBoxes: toUint64s(network.ConnectedJboxIDs()),
			Order:         toUint64s(network.Order()),
			Time:          time.Since(start).String(),
		}
		for _, sk := range network.Skipped() {
			resp.Skipped = append(resp.Skipped, SkippedElement{ID: uint64(sk.ID), Reason: sk.Err.Error()})
		}

		s.logAudit(event.
			With("runs", len(resp.Runs)).
			With("fittings", len(resp.Fittings)).
			With("junction_boxes", len(resp.JunctionBoxes)).
			With("skipped", len(resp.Skipped)))
		s.respondJSON(w, http.StatusOK, resp)
	}).NotAllowed()
}

func (s *Server) handlePropagate(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).Post(func() {
		var req PropagationRequest
		if s.NewRequestDecoder(w, r).DecodeJSON(&req).Validate(&req).RespondError() {
			return
		}

		start := time.Now()
		out, err := s.propagator.Propagate(r.Context(), propagation.Request{
			Start:     model.ElementID(req.Start),
			Actor:     r.RemoteAddr,
			Confirmer: prompt.Answer(req.AnnotateAllJunctionBoxes),
		})
		if err != nil {
			s.respondDomainError(w, err, "propagate")
			return
		}

		resp := newPropagationResponse(out)
		resp.Time = time.Since(start).String()
		s.respondJSON(w, http.StatusOK, resp)
	}).NotAllowed()
}

// handleAudit lists recent events, newest first. Query parameters action,
// status and actor filter; limit caps the result; format=jsonl or csv exports
// instead of returning JSON.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).Get(func() {
		if s.auditLogger == nil {
			s.respondError(w, http.StatusServiceUnavailable, "Audit log not available")
			return
		}

		q := r.URL.Query()
		limit := defaultAuditLimit
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxAuditLimit)
		}

		events := s.auditLogger.GetEvents(&audit.Filter{
			Actor:  q.Get("actor"),
			Action: audit.Action(q.Get("action")),
			Status: audit.Status(q.Get("status")),
		})
		recent := make([]*audit.Event, 0, min(limit, len(events)))
		for i := len(events) - 1; i >= 0 && len(recent) < limit; i-- {
			recent = append(recent, events[i])
		}

		switch format := audit.ExportFormat(q.Get("format")); format {
		case "":
			s.respondJSON(w, http.StatusOK, AuditResponse{Events: recent, Count: len(recent)})
		case audit.FormatJSONL, audit.FormatCSV:
			contentType := "application/x-ndjson"
			if format == audit.FormatCSV {
				contentType = "text/csv"
			}
			w.Header().Set("Content-Type", contentType)
			w.WriteHeader(http.StatusOK)
			if err := audit.Export(w, recent, format); err != nil {
				s.logger.Warn("audit export failed", logging.Error(err))
			}
		default:
			s.respondError(w, http.StatusBadRequest, "format must be jsonl or csv")
		}
	}).NotAllowed()
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	s.graphqlHandler.ServeHTTP(w, r)
}

func (s *Server) logAudit(event *audit.Event) {
	if s.auditLogger == nil {
		return
	}
	if err := s.auditLogger.Log(event); err != nil {
		s.logger.Warn("audit log failed", logging.Error(err))
	}
}
