// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrWorkflowAlreadyExists indicates a workflow with the same identifier already exists.
	ErrWorkflowAlreadyExists = errors.New("workflow already exists")

	// ErrConflict indicates a save was rejected because the stored document changed underneath it.
	ErrConflict = errors.New("workflow was modified concurrently")

	// ErrInvalidState indicates a lifecycle operation was applied to a document
	// in the wrong state, e.g. publishing an empty document.
	ErrInvalidState = errors.New("workflow is not in a valid state for this operation")

	// ErrNetworkFailure indicates a transport-level failure reaching the backing store.
	ErrNetworkFailure = errors.New("could not reach workflow store")
)

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g. "WorkflowByID", "SaveWorkflow")
	WorkflowID string // Workflow ID if applicable
	Err        error  // Underlying error
}

func (e *WorkflowError) Error() string {
	if e.WorkflowID != "" {
		return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
	}

	return fmt.Sprintf("%s operation failed: %v", e.Op, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for workflow errors.
func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsConflict checks if an error indicates a concurrent-modification conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsInvalidState checks if an error indicates a rejected lifecycle transition.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsNetworkFailure checks if an error indicates a transport-level failure.
func IsNetworkFailure(err error) bool {
	return errors.Is(err, ErrNetworkFailure)
}
