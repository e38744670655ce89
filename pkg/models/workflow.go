// Package models defines the core domain models for approval workflow documents.
package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowStatus represents the lifecycle state of a workflow document.
type WorkflowStatus string

const (
	WorkflowStatusDraft     WorkflowStatus = "draft"     // Editable, not live
	WorkflowStatusPublished WorkflowStatus = "published" // Live, consumed by the approval engine
)

// Default canvas positions for the auto-seeded start and end nodes.
const (
	defaultStartX = 100
	defaultStartY = 300
	defaultEndX   = 700
	defaultEndY   = 300
)

// Workflow represents an approval workflow document: metadata, routing rules
// and the node/connection graph edited on the canvas.
type Workflow struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Status      WorkflowStatus `json:"status"      validate:"required"`
	Active      bool           `json:"active"`
	Priority    int            `json:"priority"    validate:"min=0"`
	SLAHours    int            `json:"sla_hours"   validate:"min=0"`

	// Routing thresholds. Nil means the rule does not apply.
	AutoApproveLimit *float64 `json:"auto_approve_limit,omitempty" validate:"omitempty,gt=0"`
	CFORequiredLimit *float64 `json:"cfo_required_limit,omitempty" validate:"omitempty,gt=0"`

	RequiresLegalReview bool `json:"requires_legal_review"`
	RequiresITReview    bool `json:"requires_it_review"`
	AllowDelegation     bool `json:"allow_delegation"`

	// Applicability: either all departments or an explicit set.
	AppliesToAll  bool     `json:"applies_to_all"`
	DepartmentIDs []string `json:"department_ids,omitempty"`

	// Amount range the workflow applies to.
	MinAmount float64  `json:"min_amount" validate:"min=0"`
	MaxAmount *float64 `json:"max_amount,omitempty"`

	Version string `json:"version,omitempty"`

	Nodes       []*Node       `json:"nodes"`
	Connections []*Connection `json:"connections"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// IsDraft reports whether the document is still editable.
func (w *Workflow) IsDraft() bool {
	return w.Status == WorkflowStatusDraft
}

// NewDraft creates an unsaved draft workflow seeded with a start and an end
// node at fixed default positions, matching what the canvas shows for a
// freshly created workflow.
func NewDraft(name, description string) *Workflow {
	start := NewNode(NodeTypeStart, Position{X: defaultStartX, Y: defaultStartY})
	start.Name = "Start"

	end := NewNode(NodeTypeEnd, Position{X: defaultEndX, Y: defaultEndY})
	end.Name = "End"

	return &Workflow{
		Name:         name,
		Description:  description,
		Status:       WorkflowStatusDraft,
		AppliesToAll: true,
		SLAHours:     72,
		Nodes:        []*Node{start, end},
		Connections:  []*Connection{},
	}
}

// CloneWith returns a deep copy of the workflow as a new unsaved draft.
// Node ids are regenerated and connections are remapped to the new ids so
// the clone never aliases graph elements of the original.
func (w *Workflow) CloneWith(name string) *Workflow {
	clone := *w
	clone.ID = ""
	clone.Status = WorkflowStatusDraft
	clone.Active = false
	clone.PublishedAt = nil
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}

	if name != "" {
		clone.Name = name
	} else {
		clone.Name = w.Name + " (copy)"
	}

	idMap := make(map[string]string, len(w.Nodes))
	clone.Nodes = make([]*Node, 0, len(w.Nodes))

	for _, node := range w.Nodes {
		copied := node.Clone()
		copied.ID = string(node.Type) + "-" + uuid.New().String()
		idMap[node.ID] = copied.ID
		clone.Nodes = append(clone.Nodes, copied)
	}

	// Condition branch targets are node ids too and need the same remapping
	// as connections.
	for _, node := range clone.Nodes {
		if node.Condition == nil {
			continue
		}

		node.Condition.TrueBranch = idMap[node.Condition.TrueBranch]
		node.Condition.FalseBranch = idMap[node.Condition.FalseBranch]
	}

	clone.Connections = make([]*Connection, 0, len(w.Connections))
	for _, conn := range w.Connections {
		clone.Connections = append(clone.Connections, &Connection{
			ID:    uuid.New().String(),
			From:  idMap[conn.From],
			To:    idMap[conn.To],
			Label: conn.Label,
		})
	}

	clone.DepartmentIDs = append([]string(nil), w.DepartmentIDs...)

	return &clone
}
