package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/procurehub/floweditor/pkg/graph"
	"github.com/procurehub/floweditor/pkg/models"
	"github.com/procurehub/floweditor/pkg/persistence"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

// Workflow provides document CRUD on top of the persistence layer, keeping
// every stored document referentially intact.
type Workflow struct {
	persistence persistence.Persistence
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence) *Workflow {
	return &Workflow{
		persistence: persistence,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflows retrieves workflows, optionally filtered by status.
func (w *Workflow) ListWorkflows(ctx context.Context, status *models.WorkflowStatus) ([]*models.Workflow, error) {
	workflows, err := w.persistence.Workflows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	if status == nil {
		return workflows, nil
	}

	filtered := make([]*models.Workflow, 0, len(workflows))

	for _, workflow := range workflows {
		if workflow.Status == *status {
			filtered = append(filtered, workflow)
		}
	}

	return filtered, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return workflow, nil
}

// Create stores a new workflow document. The server assigns the id; any id
// supplied by the caller is replaced.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if err := validateDocument(workflow); err != nil {
		return nil, err
	}

	workflow.ID = uuid.New().String()

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusDraft
	}

	normalizeDocument(workflow)

	if err := w.persistence.SaveWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	return workflow, nil
}

// Update replaces a stored workflow document. Published documents are
// immutable; clone them to keep editing.
func (w *Workflow) Update(ctx context.Context, id string, workflow *models.Workflow) (*models.Workflow, error) {
	existing, err := w.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !existing.IsDraft() {
		return nil, ErrCannotModifyPublished
	}

	if err := validateDocument(workflow); err != nil {
		return nil, err
	}

	workflow.ID = id
	workflow.Status = existing.Status
	workflow.CreatedAt = existing.CreatedAt
	normalizeDocument(workflow)

	if err := w.persistence.SaveWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to update workflow %s: %w", id, err)
	}

	return workflow, nil
}

// Delete removes a workflow document.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	return w.persistence.DeleteWorkflow(ctx, id)
}

// Clone stores a draft copy of an existing workflow under a new id, with
// regenerated node ids and remapped connections.
func (w *Workflow) Clone(ctx context.Context, id, name string) (*models.Workflow, error) {
	original, err := w.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	clone := original.CloneWith(name)
	clone.ID = uuid.New().String()

	if err := w.persistence.SaveWorkflow(ctx, clone); err != nil {
		return nil, fmt.Errorf("failed to save cloned workflow: %w", err)
	}

	return clone, nil
}

// normalizeDocument replaces nil node/connection slices with empty ones so
// stored documents always carry JSON arrays, never null.
func normalizeDocument(workflow *models.Workflow) {
	if workflow.Nodes == nil {
		workflow.Nodes = []*models.Node{}
	}

	if workflow.Connections == nil {
		workflow.Connections = []*models.Connection{}
	}
}

// validateDocument checks the invariants every stored document must hold:
// a name, valid nodes, and connections that reference only present nodes.
func validateDocument(workflow *models.Workflow) error {
	if workflow == nil {
		return ErrWorkflowNil
	}

	if workflow.Name == "" {
		return ErrWorkflowNameRequired
	}

	for _, node := range workflow.Nodes {
		if err := node.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}

	if _, err := graph.FromDocument(workflow); err != nil {
		return err
	}

	return nil
}
