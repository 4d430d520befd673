package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-conduit/pkg/logging"
	"github.com/dd0wney/cluso-conduit/pkg/model"
	"github.com/dd0wney/cluso-conduit/pkg/propagation"
	"github.com/dd0wney/cluso-conduit/pkg/traversal"
)

var validate = validator.New()

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("error encoding JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}

// respondDomainError maps traversal and propagation failures to HTTP statuses.
// Internal errors are logged and replaced by a generic message.
func (s *Server) respondDomainError(w http.ResponseWriter, err error, operation string) {
	if ue, ok := propagation.AsUserError(err); ok {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, traversal.ErrInvalidStartElement) {
			status = http.StatusNotFound
		}
		msg := ue.Message()
		s.respondJSON(w, status, ErrorResponse{
			Error:   http.StatusText(status),
			Message: ue.Error(),
			Code:    status,
			Header:  msg.Header,
			Sub:     msg.Sub,
		})
		return
	}

	switch {
	case errors.Is(err, traversal.ErrInvalidStartElement), model.IsNotFound(err):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, traversal.ErrVisitLimitExceeded):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.respondError(w, http.StatusServiceUnavailable, fmt.Sprintf("%s cancelled", operation))
	default:
		s.respondError(w, http.StatusInternalServerError, s.sanitizeError(err, operation))
	}
}

// sanitizeError logs err and returns a message without internal details.
func (s *Server) sanitizeError(err error, operation string) string {
	s.logger.Error("request failed", logging.Operation(operation), logging.Error(err))
	return fmt.Sprintf("%s failed", operation)
}

// requestDecoder decodes and validates request bodies.
type requestDecoder struct {
	r          *http.Request
	w          http.ResponseWriter
	server     *Server
	err        error
	statusCode int
}

// NewRequestDecoder creates a new request decoder for the given request.
func (s *Server) NewRequestDecoder(w http.ResponseWriter, r *http.Request) *requestDecoder {
	return &requestDecoder{r: r, w: w, server: s}
}

// DecodeJSON decodes the request body into v. Unknown fields are rejected.
func (rd *requestDecoder) DecodeJSON(v any) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	dec := json.NewDecoder(rd.r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		rd.err = fmt.Errorf("invalid request body: %w", err)
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// Validate checks v's validate tags.
func (rd *requestDecoder) Validate(v any) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			err = fmt.Errorf("%s is %s", strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		rd.err = err
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// RespondError sends the error response and returns true if there was an error.
func (rd *requestDecoder) RespondError() bool {
	if rd.err == nil {
		return false
	}
	rd.server.respondError(rd.w, rd.statusCode, rd.err.Error())
	return true
}

// pathIDExtractor extracts IDs from URL paths.
type pathIDExtractor struct {
	w      http.ResponseWriter
	server *Server
	path   string
}

// NewPathExtractor creates a new path extractor.
func (s *Server) NewPathExtractor(w http.ResponseWriter, r *http.Request) *pathIDExtractor {
	return &pathIDExtractor{w: w, server: s, path: r.URL.Path}
}

// ExtractUint64 extracts a uint64 ID from the path after the given prefix.
// On failure a 400 response has been sent.
func (pe *pathIDExtractor) ExtractUint64(prefix string) (uint64, bool) {
	if !strings.HasPrefix(pe.path, prefix) {
		pe.server.respondError(pe.w, http.StatusBadRequest, "Invalid path")
		return 0, false
	}
	idStr := strings.TrimSuffix(pe.path[len(prefix):], "/")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		pe.server.respondError(pe.w, http.StatusBadRequest, "Invalid ID format")
		return 0, false
	}
	return id, true
}

// methodRouter routes requests based on HTTP method.
type methodRouter struct {
	w       http.ResponseWriter
	r       *http.Request
	server  *Server
	handled bool
}

// NewMethodRouter creates a new method router.
func (s *Server) NewMethodRouter(w http.ResponseWriter, r *http.Request) *methodRouter {
	return &methodRouter{w: w, r: r, server: s}
}

// Get handles GET requests with the provided handler.
func (mr *methodRouter) Get(handler func()) *methodRouter {
	if !mr.handled && mr.r.Method == http.MethodGet {
		handler()
		mr.handled = true
	}
	return mr
}

// Post handles POST requests with the provided handler.
func (mr *methodRouter) Post(handler func()) *methodRouter {
	if !mr.handled && mr.r.Method == http.MethodPost {
		handler()
		mr.handled = true
	}
	return mr
}

// NotAllowed sends a 405 response if no method matched.
func (mr *methodRouter) NotAllowed() {
	if !mr.handled {
		mr.server.respondError(mr.w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func toUint64s(ids []model.ElementID) []uint64 {
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	return out
}
