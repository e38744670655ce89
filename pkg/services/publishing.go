// Package services provides workflow publishing functionality.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/procurehub/floweditor/pkg/graph"
	"github.com/procurehub/floweditor/pkg/models"
	"github.com/procurehub/floweditor/pkg/persistence"
)

// Publishing handles workflow lifecycle transitions.
type Publishing struct {
	persistence persistence.Persistence
}

// NewPublishing creates a new workflow publishing service.
func NewPublishing(persistence persistence.Persistence) *Publishing {
	return &Publishing{
		persistence: persistence,
	}
}

// PublishWorkflow transitions a draft to published, making it live for the
// approval engine. Publishing validates the document first so an empty or
// referentially broken graph can never go live.
func (p *Publishing) PublishWorkflow(ctx context.Context, workflowID string) (*models.Workflow, error) {
	workflow, err := p.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if err := p.validateForPublishing(workflow); err != nil {
		return nil, fmt.Errorf("workflow validation failed: %w", err)
	}

	now := time.Now().UTC()
	workflow.Status = models.WorkflowStatusPublished
	workflow.Active = true
	workflow.PublishedAt = &now

	if err := p.persistence.SaveWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save published workflow: %w", err)
	}

	return workflow, nil
}

// validateForPublishing ensures a workflow is ready to go live.
func (p *Publishing) validateForPublishing(workflow *models.Workflow) error {
	if workflow == nil {
		return ErrWorkflowNil
	}

	if !workflow.IsDraft() {
		return ErrAlreadyPublished
	}

	if workflow.Name == "" {
		return ErrWorkflowNameRequired
	}

	if len(workflow.Nodes) == 0 {
		return ErrNodesRequired
	}

	if _, err := graph.FromDocument(workflow); err != nil {
		return err
	}

	return nil
}
