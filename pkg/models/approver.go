package models

// Approver is the minimal user reference attached to approval steps. Name,
// email and role are cached display values; UserID is the authoritative key.
// The wire format only ever carries these four fields, so richer user records
// must be reduced to this shape before a document is saved.
type Approver struct {
	UserID string `json:"userId" validate:"required"`
	Name   string `json:"name"`
	Email  string `json:"email"  validate:"omitempty,email"`
	Role   string `json:"role"`
}
