package connectivity

import (
	"fmt"

	"github.com/dd0wney/cluso-conduit/pkg/model"
)

// MemoryGraph is a synthetic Graph held in maps.
// Elements with Unclassified class exist but fail Classify.
type MemoryGraph struct {
	classes  map[model.ElementID]Classification
	adjacent map[model.ElementID][]model.ElementID
	broken   map[model.ElementID]error
}

// NewMemoryGraph creates an empty graph.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		classes:  make(map[model.ElementID]Classification),
		adjacent: make(map[model.ElementID][]model.ElementID),
		broken:   make(map[model.ElementID]error),
	}
}

// Add registers id with class. Re-adding changes the class.
func (g *MemoryGraph) Add(id model.ElementID, class Classification) *MemoryGraph {
	g.classes[id] = class
	if _, ok := g.adjacent[id]; !ok {
		g.adjacent[id] = nil
	}
	return g
}

// Join connects a and b in both directions. Both must have been added.
func (g *MemoryGraph) Join(a, b model.ElementID) *MemoryGraph {
	if _, ok := g.classes[a]; !ok {
		panic(fmt.Sprintf("connectivity: join of unknown element %d", a))
	}
	if _, ok := g.classes[b]; !ok {
		panic(fmt.Sprintf("connectivity: join of unknown element %d", b))
	}
	g.adjacent[a] = append(g.adjacent[a], b)
	g.adjacent[b] = append(g.adjacent[b], a)
	return g
}

// Chain joins consecutive ids.
func (g *MemoryGraph) Chain(ids ...model.ElementID) *MemoryGraph {
	for i := 1; i < len(ids); i++ {
		g.Join(ids[i-1], ids[i])
	}
	return g
}

// FailNeighbors makes Neighbors(id) return err.
func (g *MemoryGraph) FailNeighbors(id model.ElementID, err error) *MemoryGraph {
	g.broken[id] = err
	return g
}

// IDs returns every element id, in no particular order.
func (g *MemoryGraph) IDs() []model.ElementID {
	out := make([]model.ElementID, 0, len(g.classes))
	for id := range g.classes {
		out = append(out, id)
	}
	return out
}

func (g *MemoryGraph) Exists(id model.ElementID) bool {
	_, ok := g.classes[id]
	return ok
}

func (g *MemoryGraph) Classify(id model.ElementID) (Classification, error) {
	class, ok := g.classes[id]
	if !ok {
		return Unclassified, model.ElementNotFoundError("Classify", id)
	}
	if class == Unclassified {
		return Unclassified, fmt.Errorf("element %d: %w", id, ErrUnclassifiableElement)
	}
	return class, nil
}

func (g *MemoryGraph) Neighbors(id model.ElementID) ([]model.ElementID, error) {
	if err := g.broken[id]; err != nil {
		return nil, err
	}
	adj, ok := g.adjacent[id]
	if !ok {
		return nil, model.ElementNotFoundError("Neighbors", id)
	}
	return normalize(id, adj), nil
}

var (
	_ Graph = (*ModelGraph)(nil)
	_ Graph = (*MemoryGraph)(nil)
)
