package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrUnknownNodeType    = errors.New("unknown node type")
	ErrTypeMismatch       = errors.New("node type mismatch")
	ErrMissingAttributes  = errors.New("node has no attributes")
	ErrDuplicateNodeID    = errors.New("duplicate node id")
	ErrDanglingEdge       = errors.New("edge references a node outside the graph")
	ErrGraphNotFound      = errors.New("graph not found")
	ErrUnresolvedEndpoint = errors.New("cross-project endpoint not found")
)

// ModelError provides structured error information for model operations.
type ModelError struct {
	Op     string // operation that failed, e.g. "decode", "validate"
	Entity string // "node", "edge", "graph", "cross_edge"
	ID     string
	Field  string
	Cause  error
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	subject := e.Entity
	if e.ID != "" {
		subject = fmt.Sprintf("%s %s", e.Entity, e.ID)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s %s (field %s): %v", e.Op, subject, e.Field, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, subject, e.Cause)
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

// Node sets the entity to "node" with the given ID.
func (b *ErrorBuilder) Node(id string) *ErrorBuilder {
	b.err.Entity = "node"
	b.err.ID = id
	return b
}

// Edge sets the entity to "edge" with the given ID.
func (b *ErrorBuilder) Edge(id string) *ErrorBuilder {
	b.err.Entity = "edge"
	b.err.ID = id
	return b
}

// Graph sets the entity to "graph" with the given ID.
func (b *ErrorBuilder) Graph(id string) *ErrorBuilder {
	b.err.Entity = "graph"
	b.err.ID = id
	return b
}

// CrossEdge sets the entity to "cross_edge" with the given ID.
func (b *ErrorBuilder) CrossEdge(id string) *ErrorBuilder {
	b.err.Entity = "cross_edge"
	b.err.ID = id
	return b
}

// Field sets the offending field name.
func (b *ErrorBuilder) Field(name string) *ErrorBuilder {
	b.err.Field = name
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	e := b.err
	return &e
}

// IsUnknownNodeType reports whether err came from decoding an unrecognized tag.
func IsUnknownNodeType(err error) bool {
	return errors.Is(err, ErrUnknownNodeType)
}
