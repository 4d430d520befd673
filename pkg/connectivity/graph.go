package connectivity

import (
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-conduit/pkg/model"
)

// Graph is the read-only view of connectivity the traversal engine walks.
//
// Implementations must be deterministic for a fixed model state.
type Graph interface {
	// Exists reports whether id refers to an element of the model.
	Exists(id model.ElementID) bool
	// Classify returns ErrUnclassifiableElement for an element outside the three roles.
	Classify(id model.ElementID) (Classification, error)
	// Neighbors returns every element joined to id at any connector, excluding id,
	// de-duplicated and sorted ascending. An empty result is valid.
	Neighbors(id model.ElementID) ([]model.ElementID, error)
}

// ModelGraph adapts a *model.Model.
type ModelGraph struct {
	m          *model.Model
	classifier *Classifier
}

// NewModelGraph creates a Graph over m. A nil classifier means DefaultClassifier.
func NewModelGraph(m *model.Model, classifier *Classifier) *ModelGraph {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	return &ModelGraph{m: m, classifier: classifier}
}

func (g *ModelGraph) Exists(id model.ElementID) bool {
	return g.m.Exists(id)
}

func (g *ModelGraph) Classify(id model.ElementID) (Classification, error) {
	category, err := g.m.Category(id)
	if err != nil {
		return Unclassified, err
	}
	class, err := g.classifier.Classify(category)
	if err != nil {
		return Unclassified, fmt.Errorf("element %d: %w", id, err)
	}
	return class, nil
}

func (g *ModelGraph) Neighbors(id model.ElementID) ([]model.ElementID, error) {
	perConnector, err := g.m.ConnectedElements(id)
	if err != nil {
		return nil, err
	}

	var all []model.ElementID
	for _, ids := range perConnector {
		all = append(all, ids...)
	}
	return normalize(id, all), nil
}

// normalize drops self, de-duplicates and sorts.
func normalize(self model.ElementID, ids []model.ElementID) []model.ElementID {
	seen := make(map[model.ElementID]struct{}, len(ids))
	out := make([]model.ElementID, 0, len(ids))
	for _, id := range ids {
		if id == self {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
