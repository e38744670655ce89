// Package redis provides Redis-backed persistence for workflow documents.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/procurehub/floweditor/pkg/models"
	"github.com/procurehub/floweditor/pkg/persistence"
)

const (
	keyPrefix = "floweditor:workflow:"
	indexKey  = "floweditor:workflows"
)

// Persistence implements the persistence.Persistence interface on Redis.
// Each workflow is a JSON value under its own key; a set keeps the index of
// stored ids so listing never needs SCAN.
type Persistence struct {
	client *goredis.Client
}

// NewPersistence creates a Redis persistence layer from a redis:// URL.
func NewPersistence(redisURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &Persistence{client: goredis.NewClient(opts)}, nil
}

// Close closes the underlying client.
func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

// HealthCheck pings the server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("%w: %w", persistence.ErrNetworkFailure, err)
	}

	return nil
}

// Workflows returns every stored workflow document.
func (p *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	ids, err := p.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow ids: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		workflow, err := p.WorkflowByID(ctx, id)
		if err != nil {
			// Index and value can diverge if a delete raced; skip stale ids.
			if persistence.IsWorkflowNotFound(err) {
				continue
			}

			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

// WorkflowByID reads one workflow document.
func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	body, err := p.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to fetch workflow %s: %w", id, err)
	}

	var workflow models.Workflow

	err = json.Unmarshal(body, &workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", id, err)
	}

	return &workflow, nil
}

// SaveWorkflow writes a workflow document and records its id in the index.
func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	data, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	pipe := p.client.TxPipeline()
	pipe.Set(ctx, keyPrefix+workflow.ID, data, 0)
	pipe.SAdd(ctx, indexKey, workflow.ID)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// DeleteWorkflow removes a workflow document and its index entry.
func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	deleted, err := p.client.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	if deleted == 0 {
		return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
	}

	err = p.client.SRem(ctx, indexKey, id).Err()
	if err != nil {
		return fmt.Errorf("failed to unindex workflow %s: %w", id, err)
	}

	return nil
}
