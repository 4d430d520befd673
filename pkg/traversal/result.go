package traversal

import (
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-conduit/pkg/connectivity"
	"github.com/dd0wney/cluso-conduit/pkg/model"
)

// Skipped records an element that degraded to a dead end.
type Skipped struct {
	ID model.ElementID
	// Classified is false when the element itself could not be classified,
	// true when it was classified but its neighbors could not be read.
	Classified bool
	Err        error
}

func (s Skipped) Error() string {
	return fmt.Sprintf("element %d: %v", s.ID, s.Err)
}

func (s Skipped) Unwrap() error {
	return s.Err
}

// Result is the classified run network reached from one start element.
// The three sets are pairwise disjoint. It is immutable; accessors return copies.
type Result struct {
	start   model.ElementID
	classes map[model.ElementID]connectivity.Classification
	order   []model.ElementID
	skipped []Skipped
}

func newResult(start model.ElementID) *Result {
	return &Result{
		start:   start,
		classes: make(map[model.ElementID]connectivity.Classification),
	}
}

func (r *Result) add(id model.ElementID, class connectivity.Classification) {
	r.classes[id] = class
	r.order = append(r.order, id)
}

// Start returns the element the traversal began at.
func (r *Result) Start() model.ElementID {
	return r.start
}

// RunIDs returns the run segments, ascending.
func (r *Result) RunIDs() []model.ElementID {
	return r.collect(connectivity.RunSegment)
}

// FittingIDs returns the fittings, ascending.
func (r *Result) FittingIDs() []model.ElementID {
	return r.collect(connectivity.Fitting)
}

// ConnectedJboxIDs returns the junction boxes bounding the run, ascending.
func (r *Result) ConnectedJboxIDs() []model.ElementID {
	return r.collect(connectivity.JunctionBox)
}

// Classification returns the class of id and whether it was visited.
func (r *Result) Classification(id model.ElementID) (connectivity.Classification, bool) {
	c, ok := r.classes[id]
	return c, ok
}

// Contains reports whether id is in one of the three sets.
func (r *Result) Contains(id model.ElementID) bool {
	_, ok := r.classes[id]
	return ok
}

// Visited returns the union of the three sets, ascending.
func (r *Result) Visited() []model.ElementID {
	out := make([]model.ElementID, 0, len(r.classes))
	for id := range r.classes {
		out = append(out, id)
	}
	sortIDs(out)
	return out
}

// Order returns classified elements in discovery order.
func (r *Result) Order() []model.ElementID {
	return append([]model.ElementID(nil), r.order...)
}

// Skipped returns the elements that degraded to dead ends, in discovery order.
func (r *Result) Skipped() []Skipped {
	return append([]Skipped(nil), r.skipped...)
}

// Counts returns the sizes of the run, fitting and junction-box sets.
func (r *Result) Counts() (runs, fittings, jboxes int) {
	for _, c := range r.classes {
		switch c {
		case connectivity.RunSegment:
			runs++
		case connectivity.Fitting:
			fittings++
		case connectivity.JunctionBox:
			jboxes++
		}
	}
	return runs, fittings, jboxes
}

// RequireJunctionBoxes returns ErrEmptyJunctionBoxSet when no junction box was reached.
func (r *Result) RequireJunctionBoxes() error {
	if _, _, jboxes := r.Counts(); jboxes == 0 {
		return fmt.Errorf("start element %d: %w", r.start, ErrEmptyJunctionBoxSet)
	}
	return nil
}

func (r *Result) collect(class connectivity.Classification) []model.ElementID {
	out := make([]model.ElementID, 0)
	for id, c := range r.classes {
		if c == class {
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out
}

func sortIDs(ids []model.ElementID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
