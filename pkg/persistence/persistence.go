// Package persistence provides the storage abstraction for workflow documents.
package persistence

import (
	"context"

	"github.com/procurehub/floweditor/pkg/models"
)

// Persistence is the only boundary the editor talks to for stored workflow
// documents. Implementations exist for the local file system, Redis,
// PostgreSQL and the remote REST API.
type Persistence interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
