package model

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrElementNotFound         = errors.New("element not found")
	ErrConnectorNotFound       = errors.New("connector not found")
	ErrParameterNotDefined     = errors.New("parameter not defined")
	ErrModelClosed             = errors.New("model is closed")
	ErrTransactionNotActive    = errors.New("transaction is not active")
	ErrTransactionAlreadyEnded = errors.New("transaction has already been committed or rolled back")
	ErrInvalidID               = errors.New("invalid ID")
	ErrDuplicateElement        = errors.New("duplicate element")
	ErrSelfConnection          = errors.New("connector joined to itself")
	ErrNotPersistent           = errors.New("model has no data directory")
)

// ModelError provides structured error information for model operations.
type ModelError struct {
	Op        string        // Operation that failed (e.g., "SetParameter", "Connect")
	Element   ElementID     // Element ID (if applicable)
	Connector *ConnectorRef // Connection point (for topology operations)
	Parameter string        // Parameter name (for parameter operations)
	Context   string        // Additional context
	Cause     error         // Underlying error
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	subject := e.Op
	switch {
	case e.Connector != nil:
		subject = fmt.Sprintf("%s element %d connector %d", e.Op, e.Connector.Element, e.Connector.Connector)
	case e.Element != 0:
		subject = fmt.Sprintf("%s element %d", e.Op, e.Element)
	}
	if e.Parameter != "" {
		subject = fmt.Sprintf("%s (parameter %q)", subject, e.Parameter)
	}
	if e.Context != "" {
		subject = fmt.Sprintf("%s (%s)", subject, e.Context)
	}
	return fmt.Sprintf("%s: %v", subject, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ModelError) Unwrap() error {
	return e.Cause
}

// ErrorBuilder provides a fluent interface for building ModelErrors.
type ErrorBuilder struct {
	err ModelError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: ModelError{Op: op}}
}

// Element sets the element the error refers to.
func (b *ErrorBuilder) Element(id ElementID) *ErrorBuilder {
	b.err.Element = id
	return b
}

// Connector sets the connection point the error refers to.
func (b *ErrorBuilder) Connector(ref ConnectorRef) *ErrorBuilder {
	b.err.Connector = &ref
	b.err.Element = ref.Element
	return b
}

// Parameter sets the parameter name for parameter operations.
func (b *ErrorBuilder) Parameter(name string) *ErrorBuilder {
	b.err.Parameter = name
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed ModelError.
func (b *ErrorBuilder) Build() *ModelError {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// ElementNotFoundError creates an element not found error.
func ElementNotFoundError(op string, id ElementID) error {
	return NewError(op).Element(id).Cause(ErrElementNotFound).Err()
}

// ParameterNotDefinedError creates a parameter not defined error.
func ParameterNotDefinedError(op string, id ElementID, name string) error {
	return NewError(op).Element(id).Parameter(name).Cause(ErrParameterNotDefined).Err()
}

// IsNotFound reports whether err is a missing element or connector.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrElementNotFound) || errors.Is(err, ErrConnectorNotFound)
}
