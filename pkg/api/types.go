package api

import (
	"time"

	"github.com/dd0wney/cluso-conduit/pkg/audit"
	"github.com/dd0wney/cluso-conduit/pkg/health"
	"github.com/dd0wney/cluso-conduit/pkg/propagation"
	"github.com/dd0wney/cluso-conduit/pkg/prompt"
)

// API Request/Response Types

// HealthResponse represents health check response
type HealthResponse struct {
	Status      string                  `json:"status"`
	Timestamp   time.Time               `json:"timestamp"`
	Version     string                  `json:"version"`
	Uptime      string                  `json:"uptime"`
	Elements    int                     `json:"elements"`
	Connections int                     `json:"connections"`
	Checks      map[string]health.Check `json:"checks,omitempty"`
}

// ElementResponse represents an element in API responses
type ElementResponse struct {
	ID             uint64            `json:"id"`
	Category       string            `json:"category"`
	Name           string            `json:"name,omitempty"`
	Connectors     int               `json:"connectors"`
	Classification string            `json:"classification,omitempty"`
	Parameters     map[string]string `json:"parameters"`
}

// TraversalRequest asks for the run network around a start element.
type TraversalRequest struct {
	Start uint64 `json:"start" validate:"required"`
}

// SkippedElement is an element the traversal treated as a dead end.
type SkippedElement struct {
	ID     uint64 `json:"id"`
	Reason string `json:"reason"`
}

// TraversalResponse represents traversal results
type TraversalResponse struct {
	Start         uint64           `json:"start"`
	Runs          []uint64         `json:"runs"`
	Fittings      []uint64         `json:"fittings"`
	JunctionBoxes []uint64         `json:"junction_boxes"`
	Order         []uint64         `json:"order"`
	Skipped       []SkippedElement `json:"skipped,omitempty"`
	Time          string           `json:"time"`
}

// PropagationRequest starts a propagation. AnnotateAllJunctionBoxes answers
// the multi-junction-box confirmation up front; false declines.
type PropagationRequest struct {
	Start                    uint64 `json:"start" validate:"required"`
	AnnotateAllJunctionBoxes bool   `json:"annotate_all_junction_boxes"`
}

// PropagationResponse reports the plan that was applied.
type PropagationResponse struct {
	OperationID           string            `json:"operation_id"`
	Start                 uint64            `json:"start"`
	Values                map[string]string `json:"values"`
	Runs                  []uint64          `json:"runs"`
	Fittings              []uint64          `json:"fittings"`
	JunctionBoxes         []uint64          `json:"junction_boxes"`
	AnnotateJunctionBoxes bool              `json:"annotate_junction_boxes"`
	Declined              bool              `json:"declined"`
	Notices               []prompt.Message  `json:"notices,omitempty"`
	Highlight             []uint64          `json:"highlight"`
	Writes                int               `json:"writes"`
	WritesByClass         map[string]int    `json:"writes_by_class"`
	Time                  string            `json:"time"`
}

// AuditResponse lists recent audit events, newest first.
type AuditResponse struct {
	Events []*audit.Event `json:"events"`
	Count  int            `json:"count"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	// Header and Sub carry the user message of a propagation failure.
	Header string `json:"header,omitempty"`
	Sub    string `json:"sub,omitempty"`
}

func newPropagationResponse(out *propagation.Outcome) PropagationResponse {
	plan := out.Plan
	return PropagationResponse{
		OperationID:           out.OperationID,
		Start:                 uint64(out.Start),
		Values:                plan.Values,
		Runs:                  toUint64s(plan.Runs),
		Fittings:              toUint64s(plan.Fittings),
		JunctionBoxes:         toUint64s(plan.JunctionBoxes),
		AnnotateJunctionBoxes: plan.AnnotateJunctionBoxes,
		Declined:              plan.Declined,
		Notices:               plan.Notices,
		Highlight:             toUint64s(plan.Highlight),
		Writes:                out.Writes,
		WritesByClass:         out.WritesByClass,
	}
}
