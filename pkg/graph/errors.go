// Package graph provides standardized error types for graph mutations.
package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound indicates a node was not found by the given identifier.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidReference indicates a connection endpoint does not name a current node.
	ErrInvalidReference = errors.New("connection endpoint references an unknown node")

	// ErrSelfLoop indicates a connection's endpoints are the same node.
	ErrSelfLoop = errors.New("connection endpoints must be distinct nodes")

	// ErrDanglingReference indicates a stored document contains a connection
	// whose endpoints are not among its nodes.
	ErrDanglingReference = errors.New("document connection references a missing node")

	// ErrInvalidNodeType indicates an unknown node type was supplied.
	ErrInvalidNodeType = errors.New("invalid node type")
)

// MutationError wraps a failed graph mutation with the operation and the
// element it targeted.
type MutationError struct {
	Op  string // Operation being performed (e.g. "AddConnection", "UpdateNode")
	ID  string // Node or connection id if applicable
	Err error  // Underlying error
}

func (e *MutationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.ID, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

func (e *MutationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
