// Package refdata fetches the read-only reference catalogs the editor
// consumes: departments and approver-eligible users. Both come from the
// same backend the workflow store lives on, but through independent
// endpoints, and are never written back.
package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/procurehub/floweditor/pkg/models"
	"github.com/procurehub/floweditor/pkg/persistence"
)

// Department is a reference-data department record.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is the full user record as reference data serves it. Only the four
// reference fields survive into a stored workflow document; the rest exist
// for display while editing.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Title      string `json:"title,omitempty"`
}

// AsApprover reduces a user record to the approver reference shape carried
// on the wire.
func (u User) AsApprover() models.Approver {
	return models.Approver{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	}
}

// Client fetches reference catalogs over HTTP with bearer authentication.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a reference-data client. A nil httpClient falls back to
// http.DefaultClient.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{baseURL: baseURL, token: token, http: httpClient}
}

// Departments fetches the department catalog.
func (c *Client) Departments(ctx context.Context) ([]Department, error) {
	var departments []Department
	if err := c.get(ctx, "/departments", &departments); err != nil {
		return nil, err
	}

	return departments, nil
}

// Users fetches the user catalog, optionally filtered to one role.
func (c *Client) Users(ctx context.Context, role string) ([]User, error) {
	path := "/users"
	if role != "" {
		path += "?role=" + url.QueryEscape(role)
	}

	var users []User
	if err := c.get(ctx, path, &users); err != nil {
		return nil, err
	}

	return users, nil
}

// FieldCatalog builds the condition field catalog with department options
// sourced from the live department list.
func (c *Client) FieldCatalog(ctx context.Context) (*models.FieldCatalog, error) {
	departments, err := c.Departments(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(departments))
	for _, department := range departments {
		ids = append(ids, department.ID)
	}

	return models.NewFieldCatalog(ids), nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", persistence.ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reference data request %s failed with status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode reference data: %w", err)
	}

	return nil
}
