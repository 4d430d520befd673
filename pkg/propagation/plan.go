package propagation

import (
	"github.com/dd0wney/cluso-conduit/pkg/model"
	"github.com/dd0wney/cluso-conduit/pkg/prompt"
	"github.com/dd0wney/cluso-conduit/pkg/traversal"
)

// Plan is the outcome of the decide phase: what will be written and shown.
type Plan struct {
	Source model.ElementID `json:"source"`
	// Values holds the source element's run parameters.
	Values map[string]string `json:"values"`

	Runs          []model.ElementID `json:"runs"`
	Fittings      []model.ElementID `json:"fittings"`
	JunctionBoxes []model.ElementID `json:"junction_boxes"`

	// AnnotateJunctionBoxes is false when the user declined a push to several
	// junction boxes or when the fixture parameters are missing.
	AnnotateJunctionBoxes bool `json:"annotate_junction_boxes"`
	Declined              bool `json:"declined"`

	Notices   []prompt.Message  `json:"notices,omitempty"`
	Highlight []model.ElementID `json:"highlight"`

	runParameters     []string
	fixtureParameters []string
}

// Writes returns the number of parameter writes Apply will perform.
func (p *Plan) Writes() int {
	n := (len(p.Runs) + len(p.Fittings)) * len(p.runParameters)
	if p.AnnotateJunctionBoxes {
		n += len(p.JunctionBoxes) * len(p.fixtureParameters)
	}
	return n
}

// Outcome summarises one propagation.
type Outcome struct {
	OperationID   string            `json:"operation_id"`
	Start         model.ElementID   `json:"start"`
	Cancelled     bool              `json:"cancelled,omitempty"`
	Network       *traversal.Result `json:"-"`
	Plan          *Plan             `json:"plan,omitempty"`
	Writes        int               `json:"writes"`
	WritesByClass map[string]int    `json:"writes_by_class,omitempty"` // keyed by classification name
}
