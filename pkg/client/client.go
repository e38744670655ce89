// Package client implements the workflow store adapter over the REST API.
// It speaks the same wire format the floweditor-api server exposes and is
// the only component that talks HTTP on behalf of an editor session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/procurehub/floweditor/pkg/models"
	"github.com/procurehub/floweditor/pkg/persistence"
)

// Client is an HTTP workflow store adapter with bearer-token authentication.
// It satisfies persistence.Persistence and adds the lifecycle operations the
// API exposes on top of plain document CRUD.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the given API base URL. A nil httpClient falls
// back to http.DefaultClient, inheriting its timeout behavior.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{baseURL: baseURL, token: token, http: httpClient}
}

// Close releases idle connections.
func (c *Client) Close(_ context.Context) error {
	c.http.CloseIdleConnections()

	return nil
}

// HealthCheck calls the API's health endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// Workflows lists every workflow document.
func (c *Client) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	var listing struct {
		Workflows []*models.Workflow `json:"workflows"`
	}

	if err := c.do(ctx, http.MethodGet, "/workflows", nil, &listing); err != nil {
		return nil, err
	}

	return listing.Workflows, nil
}

// WorkflowByID fetches one workflow document.
func (c *Client) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := c.do(ctx, http.MethodGet, "/workflows/"+id, nil, &workflow); err != nil {
		return nil, persistence.NewWorkflowError("WorkflowByID", id, err)
	}

	return &workflow, nil
}

// SaveWorkflow creates or replaces a workflow document. Unsaved drafts are
// POSTed and pick up the server-assigned id; documents with an id are PUT.
func (c *Client) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	var (
		saved models.Workflow
		err   error
	)

	if workflow.ID == "" {
		err = c.do(ctx, http.MethodPost, "/workflows", workflow, &saved)
	} else {
		err = c.do(ctx, http.MethodPut, "/workflows/"+workflow.ID, workflow, &saved)
	}

	if err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	*workflow = saved

	return nil
}

// DeleteWorkflow removes a workflow document.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/workflows/"+id, nil, nil); err != nil {
		return persistence.NewWorkflowError("DeleteWorkflow", id, err)
	}

	return nil
}

// Publish transitions a draft to published and returns the updated document.
func (c *Client) Publish(ctx context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := c.do(ctx, http.MethodPost, "/workflows/"+id+"/publish", nil, &workflow); err != nil {
		return nil, persistence.NewWorkflowError("Publish", id, err)
	}

	return &workflow, nil
}

// Clone asks the server for a draft copy of an existing workflow. An empty
// name keeps the server's default naming.
func (c *Client) Clone(ctx context.Context, id, name string) (*models.Workflow, error) {
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}

	var workflow models.Workflow
	if err := c.do(ctx, http.MethodPost, "/workflows/"+id+"/clone", body, &workflow); err != nil {
		return nil, persistence.NewWorkflowError("Clone", id, err)
	}

	return &workflow, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", persistence.ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp); err != nil {
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// statusError maps HTTP status codes to the persistence error taxonomy. The
// problem+json detail, when present, is carried along for diagnostics.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	detail := problemDetail(resp)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return persistence.ErrWorkflowNotFound
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", persistence.ErrConflict, detail)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", persistence.ErrInvalidState, detail)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, detail)
	}
}

func problemDetail(resp *http.Response) string {
	var problem struct {
		Detail string `json:"detail"`
		Title  string `json:"title"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&problem); err != nil {
		return resp.Status
	}

	if problem.Detail != "" {
		return problem.Detail
	}

	if problem.Title != "" {
		return problem.Title
	}

	return resp.Status
}
