// Package file provides file-based persistence for workflow documents.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/procurehub/floweditor/pkg/models"
	"github.com/procurehub/floweditor/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface on the file
// system: one JSON document per workflow under {root}/workflows.
type Persistence struct {
	root string
}

// NewPersistence creates a file persistence layer rooted at the given
// directory. A "file://" prefix on the path is accepted and stripped.
func NewPersistence(root string) *Persistence {
	return &Persistence{root: strings.Replace(root, "file://", "", 1)}
}

// Close performs any necessary cleanup. For file-based persistence there is
// nothing to clean up.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Workflows returns every stored workflow document.
func (p *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	root := os.DirFS(path.Join(p.root, "workflows"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		workflowID := strings.TrimSuffix(file, ".json")

		workflow, err := p.WorkflowByID(ctx, workflowID)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", workflowID, err)
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

// WorkflowByID reads one workflow document. The raw payload is validated
// against the document schema before decoding so a corrupted file surfaces
// as a typed error instead of a half-decoded document.
func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	filePath := filepath.Clean(path.Join(p.root, "workflows", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to fetch workflow %s: %w", id, err)
	}

	if err := models.ValidateDocumentJSON(body); err != nil {
		return nil, fmt.Errorf("stored workflow %s is invalid: %w", id, err)
	}

	var workflow models.Workflow

	err = json.Unmarshal(body, &workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", id, err)
	}

	return &workflow, nil
}

// SaveWorkflow writes a workflow document, creating the storage directory on
// first use and stamping created/updated times.
func (p *Persistence) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	err := os.MkdirAll(path.Join(p.root, "workflows"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	filePath := filepath.Clean(path.Join(p.root, "workflows", workflow.ID+".json"))

	err = os.WriteFile(filePath, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// DeleteWorkflow removes a workflow document.
func (p *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	filePath := filepath.Clean(path.Join(p.root, "workflows", id+".json"))

	err := os.Remove(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
		}

		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return nil
}
