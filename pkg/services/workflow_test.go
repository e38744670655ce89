package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehub/floweditor/pkg/graph"
	"github.com/procurehub/floweditor/pkg/models"
	"github.com/procurehub/floweditor/pkg/persistence"
	"github.com/procurehub/floweditor/pkg/persistence/file"
)

func newTestService(t *testing.T) *Workflow {
	t.Helper()

	return NewWorkflow(file.NewPersistence(t.TempDir()))
}

func TestCreate_AssignsServerID(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	draft := models.NewDraft("Standard Procurement", "")
	draft.ID = "client-supplied"

	created, err := service.Create(ctx, draft)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEqual(t, "client-supplied", created.ID)
	assert.Equal(t, models.WorkflowStatusDraft, created.Status)

	fetched, err := service.FetchByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standard Procurement", fetched.Name)
}

func TestCreate_RejectsInvalidDocuments(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.Create(ctx, nil)
	assert.ErrorIs(t, err, ErrWorkflowNil)

	unnamed := models.NewDraft("", "")
	_, err = service.Create(ctx, unnamed)
	assert.ErrorIs(t, err, ErrWorkflowNameRequired)

	dangling := models.NewDraft("Standard Procurement", "")
	dangling.Connections = []*models.Connection{
		{ID: "c-1", From: dangling.Nodes[0].ID, To: "approval-gone"},
	}
	_, err = service.Create(ctx, dangling)
	assert.ErrorIs(t, err, graph.ErrDanglingReference)
	assert.True(t, IsValidationError(err))

	looped := models.NewDraft("Standard Procurement", "")
	looped.Connections = []*models.Connection{
		{ID: "c-1", From: looped.Nodes[0].ID, To: looped.Nodes[0].ID},
	}
	_, err = service.Create(ctx, looped)
	assert.ErrorIs(t, err, graph.ErrSelfLoop)
	assert.True(t, IsValidationError(err))
}

func TestUpdate_ReplacesDraftDocument(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	created, err := service.Create(ctx, models.NewDraft("Standard Procurement", ""))
	require.NoError(t, err)

	created.Description = "Now with a description"

	updated, err := service.Update(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, "Now with a description", updated.Description)
	assert.Equal(t, created.ID, updated.ID)
}

func TestUpdate_RejectsPublishedDocuments(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	service := NewWorkflow(store)
	publishing := NewPublishing(store)
	ctx := context.Background()

	created, err := service.Create(ctx, models.NewDraft("Standard Procurement", ""))
	require.NoError(t, err)

	_, err = publishing.PublishWorkflow(ctx, created.ID)
	require.NoError(t, err)

	_, err = service.Update(ctx, created.ID, created)
	assert.ErrorIs(t, err, ErrCannotModifyPublished)
	assert.True(t, IsConflictError(err))
}

func TestUpdate_NotFound(t *testing.T) {
	service := newTestService(t)

	_, err := service.Update(context.Background(), "wf-missing", models.NewDraft("Standard Procurement", ""))
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestListWorkflows_StatusFilter(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	service := NewWorkflow(store)
	publishing := NewPublishing(store)
	ctx := context.Background()

	first, err := service.Create(ctx, models.NewDraft("Standard Procurement", ""))
	require.NoError(t, err)
	_, err = service.Create(ctx, models.NewDraft("High Value Purchases", ""))
	require.NoError(t, err)

	_, err = publishing.PublishWorkflow(ctx, first.ID)
	require.NoError(t, err)

	all, err := service.ListWorkflows(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	published := models.WorkflowStatusPublished

	live, err := service.ListWorkflows(ctx, &published)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, first.ID, live[0].ID)
}

func TestClone_CreatesIndependentDraft(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	service := NewWorkflow(store)
	publishing := NewPublishing(store)
	ctx := context.Background()

	created, err := service.Create(ctx, models.NewDraft("Standard Procurement", ""))
	require.NoError(t, err)
	_, err = publishing.PublishWorkflow(ctx, created.ID)
	require.NoError(t, err)

	clone, err := service.Clone(ctx, created.ID, "Standard Procurement v2")
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, clone.ID)
	assert.Equal(t, "Standard Procurement v2", clone.Name)
	assert.True(t, clone.IsDraft())
	require.Len(t, clone.Nodes, 2)
	assert.NotEqual(t, created.Nodes[0].ID, clone.Nodes[0].ID)

	// Clones are editable even when the original is published.
	clone.Description = "tweaked"
	_, err = service.Update(ctx, clone.ID, clone)
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	created, err := service.Create(ctx, models.NewDraft("Standard Procurement", ""))
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.ID))
	assert.ErrorIs(t, service.Delete(ctx, created.ID), persistence.ErrWorkflowNotFound)
}
