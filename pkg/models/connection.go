package models

// Connection is a directed edge between two nodes of the same workflow.
// From and To reference Node.ID values. Label is free text rendered along
// the edge, typically "true"/"false" on branches leaving a condition node.
type Connection struct {
	ID    string `json:"id,omitempty"`
	From  string `json:"from" validate:"required"`
	To    string `json:"to"   validate:"required"`
	Label string `json:"label,omitempty"`
}
