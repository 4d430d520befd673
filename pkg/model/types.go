package model

import (
	"time"
)

// ElementID identifies an element. It is assigned by the model and never reused.
type ElementID uint64

// Connector is the index of a connection point on an element.
// A run segment has two: 0 (start) and 1 (end).
type Connector int

// ConnectorRef names one connection point of one element.
type ConnectorRef struct {
	Element   ElementID `json:"element"`
	Connector Connector `json:"connector"`
}

// Element is a physical object in the building model.
// A parameter is defined when its name is a key of Parameters, even with an empty value.
type Element struct {
	ID         ElementID         `json:"id"`
	Category   string            `json:"category"`
	Name       string            `json:"name,omitempty"`
	Connectors int               `json:"connectors"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	c := *e
	if e.Parameters != nil {
		c.Parameters = make(map[string]string, len(e.Parameters))
		for k, v := range e.Parameters {
			c.Parameters[k] = v
		}
	}
	return &c
}

// HasParameter reports whether name is defined on the element.
func (e *Element) HasParameter(name string) bool {
	_, ok := e.Parameters[name]
	return ok
}

// Connection joins two connection points. Connections are undirected.
type Connection struct {
	ID uint64       `json:"id,omitempty"`
	A  ConnectorRef `json:"a"`
	B  ConnectorRef `json:"b"`
}

// Statistics tracks model contents and write activity
type Statistics struct {
	Elements        int            `json:"elements"`
	Connections     int            `json:"connections"`
	ByCategory      map[string]int `json:"by_category"`
	Commits         uint64         `json:"commits"`
	ParameterWrites uint64         `json:"parameter_writes"`
	ReplayedWrites  uint64         `json:"replayed_writes"`
	LastCheckpoint  time.Time      `json:"last_checkpoint,omitempty"`
}
