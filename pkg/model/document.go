package model

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Document is the exchange format for a whole model, used by snapshots and loaders.
type Document struct {
	Elements    []Element    `json:"elements"`
	Connections []Connection `json:"connections"`
}

// DecodeDocument reads a JSON document from r.
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode model document: %w", err)
	}
	return &doc, nil
}

// FromDocument builds an in-memory model from doc.
func FromDocument(doc *Document, opts ...Option) (*Model, error) {
	m := New(opts...)
	if err := m.Import(doc); err != nil {
		return nil, err
	}
	return m, nil
}

// Import adds every element and connection of doc.
// It is all-or-nothing: an invalid element or connection leaves m unchanged.
func (m *Model) Import(doc *Document) error {
	if doc == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrModelClosed
	}

	staged := m.stageLocked()
	for i := range doc.Elements {
		if err := staged.addElementLocked(&doc.Elements[i]); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	for i, c := range doc.Connections {
		if _, err := staged.connectLocked(c); err != nil {
			return fmt.Errorf("connection %d: %w", i, err)
		}
	}

	m.elements = staged.elements
	m.byCategory = staged.byCategory
	m.connections = staged.connections
	m.links = staged.links
	m.nextConnID = staged.nextConnID
	return nil
}

// Document exports the model, elements and connections ordered by ID.
func (m *Model) Document() *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.documentLocked()
}

func (m *Model) documentLocked() *Document {
	doc := &Document{
		Elements:    make([]Element, 0, len(m.elements)),
		Connections: make([]Connection, 0, len(m.connections)),
	}
	for _, el := range m.elements {
		doc.Elements = append(doc.Elements, *el.Clone())
	}
	for _, c := range m.connections {
		doc.Connections = append(doc.Connections, *c)
	}
	sort.Slice(doc.Elements, func(i, j int) bool { return doc.Elements[i].ID < doc.Elements[j].ID })
	sort.Slice(doc.Connections, func(i, j int) bool { return doc.Connections[i].ID < doc.Connections[j].ID })
	return doc
}

// stageLocked copies the topology indexes so an import can be validated
// without touching m. Elements are shared; imports never mutate existing ones.
func (m *Model) stageLocked() *Model {
	staged := &Model{
		elements:    make(map[ElementID]*Element, len(m.elements)),
		byCategory:  make(map[string][]ElementID, len(m.byCategory)),
		connections: make(map[uint64]*Connection, len(m.connections)),
		links:       make(map[ElementID][][]ConnectorRef, len(m.links)),
		nextConnID:  m.nextConnID,
	}
	for id, el := range m.elements {
		staged.elements[id] = el
		staged.links[id] = cloneLinks(m.links[id])
	}
	for cat, ids := range m.byCategory {
		staged.byCategory[cat] = append([]ElementID(nil), ids...)
	}
	for id, c := range m.connections {
		staged.connections[id] = c
	}
	return staged
}

func cloneLinks(links [][]ConnectorRef) [][]ConnectorRef {
	out := make([][]ConnectorRef, len(links))
	for i, refs := range links {
		out[i] = append([]ConnectorRef(nil), refs...)
	}
	return out
}
