package model

import (
	"sort"
	"sync"
	"time"

	"github.com/dd0wney/cluso-conduit/pkg/logging"
	"github.com/dd0wney/cluso-conduit/pkg/wal"
)

// Model is an in-process building model: elements, their connection points,
// the connections between them and their text parameters.
//
// Reads are safe for concurrent use. Parameter writes go through a Transaction.
type Model struct {
	elements    map[ElementID]*Element
	byCategory  map[string][]ElementID
	connections map[uint64]*Connection
	// links[id][c] lists the far ends of every connection at connector c of id.
	links      map[ElementID][][]ConnectorRef
	nextConnID uint64
	nextTxID   uint64

	mu     sync.RWMutex
	closed bool

	// Persistence
	dataDir  string
	compress bool
	journal  wal.WriteAheadLog

	stats  Statistics
	logger logging.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger used for recovery and checkpoint messages.
func WithLogger(logger logging.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates an empty in-memory model with no persistence.
func New(opts ...Option) *Model {
	m := &Model{
		elements:    make(map[ElementID]*Element),
		byCategory:  make(map[string][]ElementID),
		connections: make(map[uint64]*Connection),
		links:       make(map[ElementID][][]ConnectorRef),
		logger:      logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logging.Component("model"))
	return m
}

// AddElement inserts a copy of e. The ID must be non-zero and unused.
func (m *Model) AddElement(e Element) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrModelClosed
	}
	return m.addElementLocked(&e)
}

func (m *Model) addElementLocked(e *Element) error {
	if e.ID == 0 {
		return NewError("AddElement").Cause(ErrInvalidID).Err()
	}
	if e.Connectors < 0 {
		return NewError("AddElement").Element(e.ID).Context("negative connector count").Cause(ErrInvalidID).Err()
	}
	if _, exists := m.elements[e.ID]; exists {
		return NewError("AddElement").Element(e.ID).Cause(ErrDuplicateElement).Err()
	}

	stored := e.Clone()
	if stored.Parameters == nil {
		stored.Parameters = make(map[string]string)
	}
	m.elements[stored.ID] = stored
	m.byCategory[stored.Category] = append(m.byCategory[stored.Category], stored.ID)
	m.links[stored.ID] = make([][]ConnectorRef, stored.Connectors)
	return nil
}

// Connect joins two connection points and returns the connection ID.
func (m *Model) Connect(a, b ConnectorRef) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrModelClosed
	}
	return m.connectLocked(Connection{A: a, B: b})
}

func (m *Model) connectLocked(c Connection) (uint64, error) {
	for _, ref := range []ConnectorRef{c.A, c.B} {
		el, ok := m.elements[ref.Element]
		if !ok {
			return 0, NewError("Connect").Connector(ref).Cause(ErrElementNotFound).Err()
		}
		if ref.Connector < 0 || int(ref.Connector) >= el.Connectors {
			return 0, NewError("Connect").Connector(ref).Cause(ErrConnectorNotFound).Err()
		}
	}
	if c.A == c.B {
		return 0, NewError("Connect").Connector(c.A).Cause(ErrSelfConnection).Err()
	}

	if c.ID == 0 {
		c.ID = m.nextConnID + 1
	}
	if _, exists := m.connections[c.ID]; exists {
		return 0, NewError("Connect").Context("duplicate connection id").Cause(ErrInvalidID).Err()
	}
	if c.ID > m.nextConnID {
		m.nextConnID = c.ID
	}

	conn := c
	m.connections[conn.ID] = &conn
	m.links[c.A.Element][c.A.Connector] = append(m.links[c.A.Element][c.A.Connector], c.B)
	m.links[c.B.Element][c.B.Connector] = append(m.links[c.B.Element][c.B.Connector], c.A)
	return conn.ID, nil
}

// Element returns a copy of the element.
func (m *Model) Element(id ElementID) (*Element, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	el, ok := m.elements[id]
	if !ok {
		return nil, ElementNotFoundError("Element", id)
	}
	return el.Clone(), nil
}

// Exists reports whether id refers to an element of the model.
func (m *Model) Exists(id ElementID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.elements[id]
	return ok
}

// Category returns the category of the element.
func (m *Model) Category(id ElementID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	el, ok := m.elements[id]
	if !ok {
		return "", ElementNotFoundError("Category", id)
	}
	return el.Category, nil
}

// ElementsByCategory returns the IDs in category, ascending.
func (m *Model) ElementsByCategory(category string) []ElementID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := append([]ElementID(nil), m.byCategory[category]...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ConnectedElements returns, per connector of id, the elements joined at it.
// The outer slice is indexed by connector; inner slices keep connection order
// and may contain id itself when two of its own connectors are joined.
func (m *Model) ConnectedElements(id ElementID) ([][]ElementID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links, ok := m.links[id]
	if !ok {
		return nil, ElementNotFoundError("ConnectedElements", id)
	}

	out := make([][]ElementID, len(links))
	for c, refs := range links {
		out[c] = make([]ElementID, len(refs))
		for i, ref := range refs {
			out[c][i] = ref.Element
		}
	}
	return out, nil
}

// Parameter returns the value of a defined parameter.
func (m *Model) Parameter(id ElementID, name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	el, ok := m.elements[id]
	if !ok {
		return "", ElementNotFoundError("Parameter", id)
	}
	v, ok := el.Parameters[name]
	if !ok {
		return "", ParameterNotDefinedError("Parameter", id, name)
	}
	return v, nil
}

// Statistics returns a snapshot of model statistics.
func (m *Model) Statistics() Statistics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.stats
	s.Elements = len(m.elements)
	s.Connections = len(m.connections)
	s.ByCategory = make(map[string]int, len(m.byCategory))
	for cat, ids := range m.byCategory {
		s.ByCategory[cat] = len(ids)
	}
	return s
}

// Close releases the journal. Further writes fail with ErrModelClosed.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	if m.journal != nil {
		return m.journal.Close()
	}
	return nil
}

func (m *Model) markCheckpoint() {
	m.stats.LastCheckpoint = time.Now()
}
