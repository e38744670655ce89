package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FieldType is the declared value type of a condition field.
type FieldType string

const (
	FieldTypeNumber FieldType = "number"
	FieldTypeSelect FieldType = "select"
	FieldTypeText   FieldType = "text"
)

// ConditionOperator is a comparison drawn from the fixed operator catalog.
type ConditionOperator string

const (
	OperatorEquals       ConditionOperator = "equals"
	OperatorNotEquals    ConditionOperator = "not_equals"
	OperatorGreaterThan  ConditionOperator = "greater_than"
	OperatorGreaterEqual ConditionOperator = "greater_equal"
	OperatorLessThan     ConditionOperator = "less_than"
	OperatorLessEqual    ConditionOperator = "less_equal"
	OperatorContains     ConditionOperator = "contains"
	OperatorInList       ConditionOperator = "in"
	OperatorNotInList    ConditionOperator = "not_in"
)

// IsValid reports whether op is one of the catalog operators.
func (op ConditionOperator) IsValid() bool {
	switch op {
	case OperatorEquals, OperatorNotEquals,
		OperatorGreaterThan, OperatorGreaterEqual,
		OperatorLessThan, OperatorLessEqual,
		OperatorContains, OperatorInList, OperatorNotInList:
		return true
	default:
		return false
	}
}

// LogicalOperator joins a clause with the clause that follows it.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// ConditionClause is one comparison in a condition node's ordered clause
// sequence. Logical joins clause[i] with clause[i+1]; the last clause's
// Logical is ignored.
type ConditionClause struct {
	Field    string            `json:"field"    validate:"required"`
	Operator ConditionOperator `json:"operator" validate:"required"`
	Value    any               `json:"value"`
	Logical  LogicalOperator   `json:"logical"  validate:"omitempty,oneof=AND OR"`
}

// ConditionField describes one entry of the fixed field catalog: the form
// field condition clauses compare against.
type ConditionField struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Type    FieldType `json:"type"`
	Options []string  `json:"options,omitempty"` // Enumerated values for select fields
}

// Condition clause validation errors.
var (
	ErrUnknownField     = errors.New("unknown condition field")
	ErrUnknownOperator  = errors.New("unknown condition operator")
	ErrTypeMismatch     = errors.New("condition value does not match field type")
	ErrIndexOutOfRange  = errors.New("clause index out of range")
	ErrNotConditionNode = errors.New("node does not carry condition configuration")
)

// Built-in field catalog keys.
const (
	FieldEstimatedCost = "estimatedCost"
	FieldDepartment    = "department"
	FieldItemCategory  = "itemCategory"
	FieldUrgencyLevel  = "urgencyLevel"
	FieldBudgetCode    = "budgetCode"
)

// FieldCatalog is the fixed set of fields condition clauses may reference.
// Select-field options that come from reference data (departments) are
// injected at construction time.
type FieldCatalog struct {
	fields map[string]ConditionField
	order  []string
}

// NewFieldCatalog builds the standard procurement field catalog. The
// department options are sourced externally and passed in by the caller.
func NewFieldCatalog(departmentIDs []string) *FieldCatalog {
	catalog := &FieldCatalog{fields: make(map[string]ConditionField)}

	catalog.add(ConditionField{Key: FieldEstimatedCost, Label: "Estimated Cost", Type: FieldTypeNumber})
	catalog.add(ConditionField{Key: FieldDepartment, Label: "Department", Type: FieldTypeSelect, Options: departmentIDs})
	catalog.add(ConditionField{
		Key:     FieldItemCategory,
		Label:   "Item Category",
		Type:    FieldTypeSelect,
		Options: []string{"it-equipment", "office-supplies", "services", "software", "travel"},
	})
	catalog.add(ConditionField{
		Key:     FieldUrgencyLevel,
		Label:   "Urgency Level",
		Type:    FieldTypeSelect,
		Options: []string{"low", "medium", "high", "critical"},
	})
	catalog.add(ConditionField{Key: FieldBudgetCode, Label: "Budget Code", Type: FieldTypeText})

	return catalog
}

func (c *FieldCatalog) add(field ConditionField) {
	c.fields[field.Key] = field
	c.order = append(c.order, field.Key)
}

// Field looks up a catalog entry by key.
func (c *FieldCatalog) Field(key string) (ConditionField, bool) {
	field, ok := c.fields[key]

	return field, ok
}

// Fields returns the catalog entries in declaration order.
func (c *FieldCatalog) Fields() []ConditionField {
	fields := make([]ConditionField, 0, len(c.order))
	for _, key := range c.order {
		fields = append(fields, c.fields[key])
	}

	return fields
}

// ValidateClause checks a clause against the catalog: known field, known
// operator, and a value whose shape matches the field's declared type. For
// list operators the value must be a list whose elements each match.
func (c *FieldCatalog) ValidateClause(clause ConditionClause) error {
	field, ok := c.fields[clause.Field]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, clause.Field)
	}

	if !clause.Operator.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownOperator, clause.Operator)
	}

	if clause.Operator == OperatorInList || clause.Operator == OperatorNotInList {
		values, ok := toSlice(clause.Value)
		if !ok {
			return fmt.Errorf("%w: field %q operator %q requires a list value", ErrTypeMismatch, clause.Field, clause.Operator)
		}

		for _, v := range values {
			if err := checkValueType(field, v); err != nil {
				return err
			}
		}

		return nil
	}

	return checkValueType(field, clause.Value)
}

func checkValueType(field ConditionField, value any) error {
	switch field.Type {
	case FieldTypeNumber:
		if _, ok := toNumber(value); !ok {
			return fmt.Errorf("%w: field %q expects a number, got %T", ErrTypeMismatch, field.Key, value)
		}
	case FieldTypeSelect:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: field %q expects one of its options, got %T", ErrTypeMismatch, field.Key, value)
		}

		for _, option := range field.Options {
			if s == option {
				return nil
			}
		}

		return fmt.Errorf("%w: %q is not an option of field %q", ErrTypeMismatch, s, field.Key)
	case FieldTypeText:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: field %q expects text, got %T", ErrTypeMismatch, field.Key, value)
		}
	}

	return nil
}

// AddClause validates the clause and appends it to the node's sequence.
func (c *FieldCatalog) AddClause(node *Node, clause ConditionClause) error {
	if node.Condition == nil {
		return ErrNotConditionNode
	}

	if clause.Logical == "" {
		clause.Logical = LogicalAnd
	}

	if err := c.ValidateClause(clause); err != nil {
		return err
	}

	node.Condition.Clauses = append(node.Condition.Clauses, clause)

	return nil
}

// RemoveClause deletes the clause at index, preserving the order of the rest.
func RemoveClause(node *Node, index int) error {
	if node.Condition == nil {
		return ErrNotConditionNode
	}

	if index < 0 || index >= len(node.Condition.Clauses) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	node.Condition.Clauses = append(node.Condition.Clauses[:index], node.Condition.Clauses[index+1:]...)

	return nil
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}

func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		values := make([]any, len(v))
		for i, s := range v {
			values[i] = s
		}

		return values, true
	case []float64:
		values := make([]any, len(v))
		for i, f := range v {
			values[i] = f
		}

		return values, true
	default:
		return nil, false
	}
}
