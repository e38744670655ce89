// Package web provides HTTP request and response types for the workflow API.
package web

import "github.com/procurehub/floweditor/pkg/models"

// CreateWorkflowRequest represents the request body for creating a workflow.
// The graph is optional: a body without nodes gets the default start/end
// seed, which is what the editor sends for a brand new draft.
type CreateWorkflowRequest struct {
	Name        string `json:"name"        validate:"required,min=3"`
	Description string `json:"description"`

	Priority int `json:"priority"  validate:"min=0"`
	SLAHours int `json:"sla_hours" validate:"min=0"`

	AutoApproveLimit *float64 `json:"auto_approve_limit,omitempty" validate:"omitempty,gt=0"`
	CFORequiredLimit *float64 `json:"cfo_required_limit,omitempty" validate:"omitempty,gt=0"`

	RequiresLegalReview bool `json:"requires_legal_review"`
	RequiresITReview    bool `json:"requires_it_review"`
	AllowDelegation     bool `json:"allow_delegation"`

	AppliesToAll  bool     `json:"applies_to_all"`
	DepartmentIDs []string `json:"department_ids,omitempty"`

	MinAmount float64  `json:"min_amount" validate:"min=0"`
	MaxAmount *float64 `json:"max_amount,omitempty"`

	Nodes       []*models.Node       `json:"nodes,omitempty"`
	Connections []*models.Connection `json:"connections,omitempty"`
}

// CloneWorkflowRequest represents the request body for cloning a workflow.
// An empty name yields "<original> (copy)".
type CloneWorkflowRequest struct {
	Name string `json:"name" validate:"omitempty,min=3"`
}

func (r *CreateWorkflowRequest) toWorkflow() *models.Workflow {
	var workflow *models.Workflow

	if len(r.Nodes) == 0 {
		workflow = models.NewDraft(r.Name, r.Description)
	} else {
		workflow = &models.Workflow{
			Name:        r.Name,
			Description: r.Description,
			Status:      models.WorkflowStatusDraft,
			Nodes:       r.Nodes,
			Connections: r.Connections,
		}
	}

	workflow.Priority = r.Priority

	if r.SLAHours > 0 {
		workflow.SLAHours = r.SLAHours
	}

	workflow.AutoApproveLimit = r.AutoApproveLimit
	workflow.CFORequiredLimit = r.CFORequiredLimit
	workflow.RequiresLegalReview = r.RequiresLegalReview
	workflow.RequiresITReview = r.RequiresITReview
	workflow.AllowDelegation = r.AllowDelegation
	workflow.AppliesToAll = r.AppliesToAll
	workflow.DepartmentIDs = r.DepartmentIDs
	workflow.MinAmount = r.MinAmount
	workflow.MaxAmount = r.MaxAmount

	return workflow
}
