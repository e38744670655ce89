package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog() *FieldCatalog {
	return NewFieldCatalog([]string{"dept-it", "dept-finance", "dept-hr"})
}

func TestFieldCatalog_Fields(t *testing.T) {
	catalog := newTestCatalog()

	fields := catalog.Fields()
	require.Len(t, fields, 5)
	assert.Equal(t, FieldEstimatedCost, fields[0].Key)

	department, ok := catalog.Field(FieldDepartment)
	require.True(t, ok)
	assert.Equal(t, FieldTypeSelect, department.Type)
	assert.Contains(t, department.Options, "dept-finance")

	_, ok = catalog.Field("requesterAge")
	assert.False(t, ok)
}

func TestValidateClause_UnknownField(t *testing.T) {
	err := newTestCatalog().ValidateClause(ConditionClause{
		Field:    "requesterAge",
		Operator: OperatorGreaterThan,
		Value:    30.0,
	})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestValidateClause_UnknownOperator(t *testing.T) {
	err := newTestCatalog().ValidateClause(ConditionClause{
		Field:    FieldEstimatedCost,
		Operator: "matches",
		Value:    100.0,
	})
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestValidateClause_TypeMismatch(t *testing.T) {
	catalog := newTestCatalog()

	// Numeric field with a text value.
	err := catalog.ValidateClause(ConditionClause{
		Field:    FieldEstimatedCost,
		Operator: OperatorGreaterThan,
		Value:    "high",
	})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	// Select field with a value outside the option list.
	err = catalog.ValidateClause(ConditionClause{
		Field:    FieldUrgencyLevel,
		Operator: OperatorEquals,
		Value:    "urgent",
	})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	// List operator with a scalar value.
	err = catalog.ValidateClause(ConditionClause{
		Field:    FieldDepartment,
		Operator: OperatorInList,
		Value:    "dept-it",
	})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestValidateClause_Valid(t *testing.T) {
	catalog := newTestCatalog()

	assert.NoError(t, catalog.ValidateClause(ConditionClause{
		Field:    FieldEstimatedCost,
		Operator: OperatorGreaterEqual,
		Value:    5000,
	}))
	assert.NoError(t, catalog.ValidateClause(ConditionClause{
		Field:    FieldDepartment,
		Operator: OperatorInList,
		Value:    []string{"dept-it", "dept-hr"},
	}))
	assert.NoError(t, catalog.ValidateClause(ConditionClause{
		Field:    FieldBudgetCode,
		Operator: OperatorContains,
		Value:    "CAPEX",
	}))
}

func TestAddClause(t *testing.T) {
	catalog := newTestCatalog()
	node := NewNode(NodeTypeCondition, Position{})

	require.NoError(t, catalog.AddClause(node, ConditionClause{
		Field:    FieldEstimatedCost,
		Operator: OperatorGreaterThan,
		Value:    10000.0,
	}))
	require.Len(t, node.Condition.Clauses, 1)
	assert.Equal(t, LogicalAnd, node.Condition.Clauses[0].Logical, "logical operator defaults to AND")

	err := catalog.AddClause(node, ConditionClause{
		Field:    FieldEstimatedCost,
		Operator: OperatorGreaterThan,
		Value:    "expensive",
	})
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Len(t, node.Condition.Clauses, 1, "failed add must not grow the sequence")

	start := NewNode(NodeTypeStart, Position{})
	assert.ErrorIs(t, catalog.AddClause(start, ConditionClause{}), ErrNotConditionNode)
}

func TestRemoveClause(t *testing.T) {
	catalog := newTestCatalog()
	node := NewNode(NodeTypeCondition, Position{})

	require.NoError(t, catalog.AddClause(node, ConditionClause{Field: FieldEstimatedCost, Operator: OperatorGreaterThan, Value: 100.0}))
	require.NoError(t, catalog.AddClause(node, ConditionClause{Field: FieldBudgetCode, Operator: OperatorEquals, Value: "OPEX-2026"}))

	assert.ErrorIs(t, RemoveClause(node, 2), ErrIndexOutOfRange)
	assert.ErrorIs(t, RemoveClause(node, -1), ErrIndexOutOfRange)

	require.NoError(t, RemoveClause(node, 0))
	require.Len(t, node.Condition.Clauses, 1)
	assert.Equal(t, FieldBudgetCode, node.Condition.Clauses[0].Field)
}
