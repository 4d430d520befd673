package traversal

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-conduit/pkg/connectivity"
	"github.com/dd0wney/cluso-conduit/pkg/logging"
	"github.com/dd0wney/cluso-conduit/pkg/model"
)

var (
	// ErrInvalidStartElement is returned when the start does not exist in the graph.
	ErrInvalidStartElement = errors.New("invalid start element")
	// ErrEmptyJunctionBoxSet marks a run that reaches no junction box. This is
	// malformed topology, never a valid zero-junction-box network.
	ErrEmptyJunctionBoxSet = errors.New("run network reaches no junction box")
	// ErrVisitLimitExceeded is returned when a traversal visits more elements than WithMaxVisited allows.
	ErrVisitLimitExceeded = errors.New("traversal visit limit exceeded")
)

// Strategy selects the frontier discipline. It changes discovery order only;
// the classified sets are identical for both.
type Strategy int

const (
	BreadthFirst Strategy = iota
	DepthFirst
)

func (s Strategy) String() string {
	if s == DepthFirst {
		return "depth_first"
	}
	return "breadth_first"
}

// ParseStrategy accepts "breadth_first", "bfs", "depth_first" and "dfs".
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "breadth_first", "bfs":
		return BreadthFirst, nil
	case "depth_first", "dfs":
		return DepthFirst, nil
	default:
		return BreadthFirst, fmt.Errorf("unknown traversal strategy %q", s)
	}
}

// VisitFunc is called once per classified element, in discovery order.
type VisitFunc func(id model.ElementID, class connectivity.Classification)

// Option configures a traversal.
type Option func(*options)

type options struct {
	strategy   Strategy
	onVisit    VisitFunc
	logger     logging.Logger
	maxVisited int
}

func defaultOptions() options {
	return options{
		strategy: BreadthFirst,
		logger:   logging.NewNopLogger(),
	}
}

// WithStrategy selects breadth-first (default) or depth-first discovery.
func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithOnVisit installs a hook called for every classified element.
func WithOnVisit(fn VisitFunc) Option {
	return func(o *options) { o.onVisit = fn }
}

// WithLogger sets the logger for the skipped-element summary.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxVisited bounds the number of elements a traversal may visit.
// Zero, the default, means unlimited.
func WithMaxVisited(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxVisited = n
		}
	}
}
