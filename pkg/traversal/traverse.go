// Package traversal discovers the conduit run reachable from one element,
// classifying each element and stopping at junction boxes.
package traversal

import (
	"fmt"
	"time"

	"github.com/dd0wney/cluso-conduit/pkg/connectivity"
	"github.com/dd0wney/cluso-conduit/pkg/logging"
	"github.com/dd0wney/cluso-conduit/pkg/model"
)

// Traverse walks g from start.
//
// Run segments and fittings are expanded to their neighbors. Junction boxes are
// recorded and never expanded, including when start is itself a junction box.
// Elements that cannot be classified, and classified elements whose neighbors
// cannot be read, become dead ends listed in Result.Skipped; the walk goes on.
//
// The only fatal conditions are a start that does not exist and, when
// configured, exceeding WithMaxVisited. The walk is O(V+E) and terminates on
// cyclic graphs because every element is visited at most once.
func Traverse(g connectivity.Graph, start model.ElementID, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if !g.Exists(start) {
		return nil, fmt.Errorf("element %d: %w", start, ErrInvalidStartElement)
	}

	began := time.Now()
	result := newResult(start)
	visited := make(map[model.ElementID]bool)
	frontier := newFrontier(o.strategy, start)

	for !frontier.empty() {
		id := frontier.pop()
		if visited[id] {
			continue
		}
		visited[id] = true

		if o.maxVisited > 0 && len(visited) > o.maxVisited {
			return nil, fmt.Errorf("start element %d, limit %d: %w", start, o.maxVisited, ErrVisitLimitExceeded)
		}

		class, err := g.Classify(id)
		if err != nil {
			result.skipped = append(result.skipped, Skipped{ID: id, Err: err})
			continue
		}

		result.add(id, class)
		o.logger.Debug("visit", logging.ElementID(uint64(id)), logging.Classification(class.String()))
		if o.onVisit != nil {
			o.onVisit(id, class)
		}

		if class == connectivity.JunctionBox {
			continue
		}

		neighbors, err := g.Neighbors(id)
		if err != nil {
			result.skipped = append(result.skipped, Skipped{ID: id, Classified: true, Err: err})
			continue
		}

		next := make([]model.ElementID, 0, len(neighbors))
		for _, n := range neighbors {
			if !visited[n] {
				next = append(next, n)
			}
		}
		frontier.push(next)
	}

	if len(result.skipped) > 0 {
		ids := make([]uint64, len(result.skipped))
		for i, s := range result.skipped {
			ids[i] = uint64(s.ID)
		}
		o.logger.Warn("traversal skipped elements",
			logging.ElementID(uint64(start)),
			logging.Count(len(result.skipped)),
			logging.Any("skipped_ids", ids),
			logging.Error(result.skipped[0].Err))
	}

	runs, fittings, jboxes := result.Counts()
	o.logger.Debug("traversal complete",
		logging.ElementID(uint64(start)),
		logging.String("strategy", o.strategy.String()),
		logging.Int("runs", runs),
		logging.Int("fittings", fittings),
		logging.Int("junction_boxes", jboxes),
		logging.Latency(time.Since(began)))

	return result, nil
}

// frontier is a FIFO queue for breadth-first and a LIFO stack for depth-first.
type frontier struct {
	lifo  bool
	items []model.ElementID
}

func newFrontier(s Strategy, start model.ElementID) *frontier {
	return &frontier{lifo: s == DepthFirst, items: []model.ElementID{start}}
}

func (f *frontier) empty() bool {
	return len(f.items) == 0
}

func (f *frontier) pop() model.ElementID {
	if f.lifo {
		id := f.items[len(f.items)-1]
		f.items = f.items[:len(f.items)-1]
		return id
	}
	id := f.items[0]
	f.items = f.items[1:]
	return id
}

// push adds ids so that, for both disciplines, lower ids are popped first.
func (f *frontier) push(ids []model.ElementID) {
	if !f.lifo {
		f.items = append(f.items, ids...)
		return
	}
	for i := len(ids) - 1; i >= 0; i-- {
		f.items = append(f.items, ids[i])
	}
}
