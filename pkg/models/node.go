package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// NodeType represents the kind of step a node models in the approval graph.
type NodeType string

const (
	NodeTypeStart        NodeType = "start"
	NodeTypeApproval     NodeType = "approval"
	NodeTypeCondition    NodeType = "condition"
	NodeTypeParallel     NodeType = "parallel"
	NodeTypeNotification NodeType = "notification"
	NodeTypeEnd          NodeType = "end"
)

// NodeTypes lists every valid node type.
var NodeTypes = []NodeType{
	NodeTypeStart,
	NodeTypeApproval,
	NodeTypeCondition,
	NodeTypeParallel,
	NodeTypeNotification,
	NodeTypeEnd,
}

// IsValid reports whether t is a known node type.
func (t NodeType) IsValid() bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}

	return false
}

// ApprovalMode controls how multiple approvers on one node are consulted.
type ApprovalMode string

const (
	ApprovalModeSequential ApprovalMode = "sequential" // One after another, in listed order
	ApprovalModeParallel   ApprovalMode = "parallel"   // All at once, all must act
	ApprovalModeAny        ApprovalMode = "any"        // All at once, minApprovals suffice
)

// Position is a node's logical canvas coordinate. Logical coordinates are
// independent of the viewport zoom factor.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ApprovalConfig carries the fields only approval and parallel nodes use.
type ApprovalConfig struct {
	Approvers    []Approver   `json:"approvers"`
	Mode         ApprovalMode `json:"mode"          validate:"oneof=sequential parallel any"`
	MinApprovals int          `json:"min_approvals" validate:"min=1"`
	TimeoutHours int          `json:"timeout_hours" validate:"min=0"`
	EscalateTo   *Approver    `json:"escalate_to,omitempty"`
}

// ConditionConfig carries the fields only condition nodes use. Clauses are
// evaluated in order; each clause's logical operator joins it with the next
// one. When Expression is set it takes precedence over the clause list and is
// evaluated by the expression interpreter instead.
type ConditionConfig struct {
	Clauses     []ConditionClause `json:"clauses"`
	Expression  string            `json:"expression,omitempty"`
	TrueBranch  string            `json:"true_branch,omitempty"`
	FalseBranch string            `json:"false_branch,omitempty"`
}

// Node represents a single step in the workflow graph. Only the config
// matching the node type is populated; the others stay nil.
type Node struct {
	ID          string   `json:"id"          validate:"required"`
	Type        NodeType `json:"type"        validate:"required"`
	Name        string   `json:"name"        validate:"required,min=1"`
	Description string   `json:"description"`
	Position    Position `json:"position"`
	Mandatory   bool     `json:"mandatory"`
	CanDelegate bool     `json:"can_delegate"`

	Approval  *ApprovalConfig  `json:"approval,omitempty"`
	Condition *ConditionConfig `json:"condition,omitempty"`
}

// Node validation errors.
var (
	ErrInvalidNodeType      = errors.New("invalid node type")
	ErrMinApprovalsRange    = errors.New("min approvals must be between 1 and the number of approvers")
	ErrEscalationIsApprover = errors.New("escalation target must not be one of the node's approvers")
)

// NewNode creates a node of the given type at the given position with
// variant-appropriate defaults. Ids are prefixed with the node type so the
// graph stays readable in stored documents.
func NewNode(nodeType NodeType, position Position) *Node {
	node := &Node{
		ID:          string(nodeType) + "-" + uuid.New().String(),
		Type:        nodeType,
		Name:        string(nodeType),
		Position:    position,
		Mandatory:   true,
		CanDelegate: true,
	}

	switch nodeType {
	case NodeTypeApproval, NodeTypeParallel:
		node.Approval = &ApprovalConfig{
			Approvers:    []Approver{},
			Mode:         ApprovalModeSequential,
			MinApprovals: 1,
			TimeoutHours: 24,
		}
	case NodeTypeCondition:
		node.Condition = &ConditionConfig{
			Clauses: []ConditionClause{},
		}
	case NodeTypeStart, NodeTypeEnd, NodeTypeNotification:
		// No variant config.
	}

	return node
}

// HasApprovers reports whether this node type carries approver configuration.
func (n *Node) HasApprovers() bool {
	return n.Type == NodeTypeApproval || n.Type == NodeTypeParallel
}

// Validate checks the node's structural invariants.
func (n *Node) Validate() error {
	if !n.Type.IsValid() {
		return fmt.Errorf("node %s: %w: %q", n.ID, ErrInvalidNodeType, n.Type)
	}

	if n.Approval != nil {
		if err := n.Approval.validate(); err != nil {
			return fmt.Errorf("node %s: %w", n.ID, err)
		}
	}

	return nil
}

func (c *ApprovalConfig) validate() error {
	if c.MinApprovals < 1 {
		return ErrMinApprovalsRange
	}

	if len(c.Approvers) > 0 && c.MinApprovals > len(c.Approvers) {
		return ErrMinApprovalsRange
	}

	if c.EscalateTo != nil {
		for _, approver := range c.Approvers {
			if approver.UserID == c.EscalateTo.UserID {
				return ErrEscalationIsApprover
			}
		}
	}

	return nil
}

// Clone returns a deep copy of the node. The id is preserved; callers that
// need a fresh identity assign one afterwards.
func (n *Node) Clone() *Node {
	copied := *n

	if n.Approval != nil {
		approval := *n.Approval
		approval.Approvers = append([]Approver(nil), n.Approval.Approvers...)

		if n.Approval.EscalateTo != nil {
			escalate := *n.Approval.EscalateTo
			approval.EscalateTo = &escalate
		}

		copied.Approval = &approval
	}

	if n.Condition != nil {
		condition := *n.Condition
		condition.Clauses = append([]ConditionClause(nil), n.Condition.Clauses...)
		copied.Condition = &condition
	}

	return &copied
}
