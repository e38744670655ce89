// Package models provides condition clause evaluation for workflow branching.
package models

import (
	"fmt"
	"strings"
)

// ClauseConditionalInterpreter evaluates an ordered clause sequence against
// a requisition form. Clauses combine left to right: clause[i].Logical joins
// clause[i] with clause[i+1]. An empty sequence evaluates to true.
type ClauseConditionalInterpreter struct {
	Clauses []ConditionClause
	Catalog *FieldCatalog
}

func (s *ClauseConditionalInterpreter) Evaluate(form map[string]any) (bool, error) {
	if len(s.Clauses) == 0 {
		return true, nil
	}

	result, err := s.evaluateClause(s.Clauses[0], form)
	if err != nil {
		return false, err
	}

	for i := 1; i < len(s.Clauses); i++ {
		next, err := s.evaluateClause(s.Clauses[i], form)
		if err != nil {
			return false, err
		}

		switch s.Clauses[i-1].Logical {
		case LogicalOr:
			result = result || next
		default:
			result = result && next
		}
	}

	return result, nil
}

func (s *ClauseConditionalInterpreter) evaluateClause(clause ConditionClause, form map[string]any) (bool, error) {
	if s.Catalog != nil {
		if err := s.Catalog.ValidateClause(clause); err != nil {
			return false, err
		}
	}

	actual, ok := form[clause.Field]
	if !ok {
		return false, fmt.Errorf("form has no value for field %q", clause.Field)
	}

	switch clause.Operator {
	case OperatorEquals:
		return compareEqual(actual, clause.Value), nil
	case OperatorNotEquals:
		return !compareEqual(actual, clause.Value), nil
	case OperatorGreaterThan, OperatorGreaterEqual, OperatorLessThan, OperatorLessEqual:
		return compareOrdered(clause.Operator, actual, clause.Value)
	case OperatorContains:
		return compareContains(actual, clause.Value)
	case OperatorInList:
		return compareInList(actual, clause.Value)
	case OperatorNotInList:
		in, err := compareInList(actual, clause.Value)

		return !in, err
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownOperator, clause.Operator)
	}
}

func compareEqual(a, b any) bool {
	if fa, ok := toNumber(a); ok {
		if fb, ok := toNumber(b); ok {
			return fa == fb
		}
	}

	return a == b
}

func compareOrdered(op ConditionOperator, a, b any) (bool, error) {
	fa, okA := toNumber(a)
	fb, okB := toNumber(b)

	if !okA || !okB {
		return false, fmt.Errorf("%w: operator %q requires numeric operands", ErrTypeMismatch, op)
	}

	switch op {
	case OperatorGreaterThan:
		return fa > fb, nil
	case OperatorGreaterEqual:
		return fa >= fb, nil
	case OperatorLessThan:
		return fa < fb, nil
	default:
		return fa <= fb, nil
	}
}

func compareContains(actual, value any) (bool, error) {
	haystack, okA := actual.(string)
	needle, okB := value.(string)

	if !okA || !okB {
		return false, fmt.Errorf("%w: operator %q requires text operands", ErrTypeMismatch, OperatorContains)
	}

	return strings.Contains(haystack, needle), nil
}

func compareInList(actual, value any) (bool, error) {
	values, ok := toSlice(value)
	if !ok {
		return false, fmt.Errorf("%w: list operator requires a list value", ErrTypeMismatch)
	}

	for _, candidate := range values {
		if compareEqual(actual, candidate) {
			return true, nil
		}
	}

	return false, nil
}
