// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"

	"github.com/procurehub/floweditor/pkg/graph"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest       = errors.New("invalid request")
	ErrWorkflowNil          = errors.New("workflow cannot be nil")
	ErrWorkflowNameRequired = errors.New("workflow name is required")

	// Conflicts (409 Conflict).
	ErrCannotModifyPublished = errors.New("cannot modify published workflow")

	// Lifecycle errors (422 Unprocessable Entity).
	ErrNodesRequired    = errors.New("workflow must have at least one node")
	ErrAlreadyPublished = errors.New("workflow is already published")
)

// IsValidationError checks if an error is a validation error that should
// return HTTP 400. Graph integrity violations count: a document carrying a
// dangling connection or self-loop is malformed client input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrWorkflowNameRequired) ||
		errors.Is(err, graph.ErrDanglingReference) ||
		errors.Is(err, graph.ErrSelfLoop) ||
		errors.Is(err, graph.ErrInvalidNodeType)
}

// IsConflictError checks if an error should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrCannotModifyPublished)
}

// IsInvalidStateError checks if an error indicates a rejected lifecycle
// transition that should return HTTP 422.
func IsInvalidStateError(err error) bool {
	return errors.Is(err, ErrNodesRequired) ||
		errors.Is(err, ErrAlreadyPublished)
}
