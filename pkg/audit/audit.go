// Package audit keeps an in-memory trail of traversals and propagations.
package audit

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action types for audit events
type Action string

const (
	ActionTraverse   Action = "traverse"
	ActionPropagate  Action = "propagate"
	ActionCheckpoint Action = "checkpoint"
	ActionLoad       Action = "load"
)

// ResourceType represents the type of resource being accessed
type ResourceType string

const (
	ResourceRun   ResourceType = "run"
	ResourceModel ResourceType = "model"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailure   Status = "failure"
	StatusCancelled Status = "cancelled"
)

// Event represents a single audit log entry
type Event struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	Actor        string         `json:"actor,omitempty"` // "cli", or the remote address of an API client
	Action       Action         `json:"action"`
	ResourceType ResourceType   `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Status       Status         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Filter represents filtering criteria for audit events
type Filter struct {
	Actor        string
	Action       Action
	ResourceType ResourceType
	ResourceID   string
	Status       Status
	StartTime    *time.Time
	EndTime      *time.Time
}

// Logger is the interface for audit logging implementations.
type Logger interface {
	// Log records an audit event
	Log(event *Event) error

	// GetEventCount returns the number of events logged
	GetEventCount() int64
}

// AuditLogger manages audit log events with a circular buffer
type AuditLogger struct {
	events     []*Event
	bufferSize int
	index      int
	count      int
	mu         sync.RWMutex
}

// NewAuditLogger creates a new audit logger with specified buffer size.
// A non-positive size is treated as 1.
func NewAuditLogger(bufferSize int) *AuditLogger {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &AuditLogger{
		events:     make([]*Event, bufferSize),
		bufferSize: bufferSize,
	}
}

// Log records an audit event, assigning an ID and timestamp when missing.
func (l *AuditLogger) Log(event *Event) error {
	if event == nil {
		return fmt.Errorf("audit: nil event")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	l.events[l.index] = event
	l.index = (l.index + 1) % l.bufferSize

	if l.count < l.bufferSize {
		l.count++
	}

	return nil
}

// GetEvents retrieves audit events, oldest first, with optional filtering
func (l *AuditLogger) GetEvents(filter *Filter) []*Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Event, 0, l.count)

	for i := 0; i < l.count; i++ {
		idx := (l.index - l.count + i + l.bufferSize) % l.bufferSize
		event := l.events[idx]
		if event == nil || !filter.matches(event) {
			continue
		}
		result = append(result, event)
	}

	return result
}

func (f *Filter) matches(event *Event) bool {
	if f == nil {
		return true
	}
	if f.Actor != "" && event.Actor != f.Actor {
		return false
	}
	if f.Action != "" && event.Action != f.Action {
		return false
	}
	if f.ResourceType != "" && event.ResourceType != f.ResourceType {
		return false
	}
	if f.ResourceID != "" && event.ResourceID != f.ResourceID {
		return false
	}
	if f.Status != "" && event.Status != f.Status {
		return false
	}
	if f.StartTime != nil && event.Timestamp.Before(*f.StartTime) {
		return false
	}
	if f.EndTime != nil && event.Timestamp.After(*f.EndTime) {
		return false
	}
	return true
}

// GetRecentEvents returns the N most recent events, newest first
func (l *AuditLogger) GetRecentEvents(n int) []*Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > l.count {
		n = l.count
	}

	result := make([]*Event, 0, n)
	for i := 0; i < n; i++ {
		idx := (l.index - 1 - i + l.bufferSize) % l.bufferSize
		if l.events[idx] != nil {
			result = append(result, l.events[idx])
		}
	}

	return result
}

// GetEventCount returns the total number of events currently stored
func (l *AuditLogger) GetEventCount() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(l.count)
}

// Clear removes all events from the logger
func (l *AuditLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = make([]*Event, l.bufferSize)
	l.index = 0
	l.count = 0
}

// NewRunEvent creates an event about the run network starting at element start.
func NewRunEvent(actor string, action Action, start uint64, status Status) *Event {
	return &Event{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		Actor:        actor,
		Action:       action,
		ResourceType: ResourceRun,
		ResourceID:   fmt.Sprintf("%d", start),
		Status:       status,
		Metadata:     make(map[string]any),
	}
}

// Fail marks the event failed with err's message.
func (e *Event) Fail(err error) *Event {
	e.Status = StatusFailure
	if err != nil {
		e.ErrorMessage = err.Error()
	}
	return e
}

// With sets a metadata key.
func (e *Event) With(key string, value any) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

// String returns a human-readable representation of an event
func (e *Event) String() string {
	actor := e.Actor
	if actor == "" {
		actor = "unknown"
	}
	return fmt.Sprintf("[%s] %s %s %s %s (status: %s)",
		e.Timestamp.Format(time.RFC3339),
		actor,
		e.Action,
		e.ResourceType,
		e.ResourceID,
		e.Status,
	)
}
