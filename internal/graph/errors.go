package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for resolution and field access failures. Callers match
// them with errors.Is; the typed errors below carry the query context.
var (
	// ErrNotFound indicates that no node satisfied a resolution query.
	ErrNotFound = errors.New("node not found")

	// ErrAmbiguous indicates that an unanchored query matched more than one
	// node, so there is no single valid target.
	ErrAmbiguous = errors.New("multiple candidate nodes")

	// ErrKindMismatch indicates that a node exists but its kind does not
	// match the kind the caller requested.
	ErrKindMismatch = errors.New("node kind mismatch")

	// ErrFieldUnset indicates that a value field cannot be read or written
	// because the workflow never populated it, or because it is fed by a
	// link instead of a literal value.
	ErrFieldUnset = errors.New("field not set")
)

// NotFoundError reports a failed resolution query.
type NotFoundError struct {
	// Kind is the node kind the query asked for.
	Kind string
	// ID is the node id that was looked up directly, if any.
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("node %q not found", e.ID)
	}
	return fmt.Sprintf("no node of kind %q found", e.Kind)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AmbiguousError reports an unanchored query with more than one match.
type AmbiguousError struct {
	Kind  string
	Count int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("found %d nodes of kind %q, need exactly one", e.Count, e.Kind)
}

func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguous }

// KindMismatchError reports a failed downcast from a generic node to a
// concrete kind.
type KindMismatchError struct {
	ID   string
	Want string
	Got  string
}

func (e *KindMismatchError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("node %q has kind %q, want %q", e.ID, e.Got, e.Want)
	}
	return fmt.Sprintf("node has kind %q, want %q", e.Got, e.Want)
}

func (e *KindMismatchError) Is(target error) bool { return target == ErrKindMismatch }
