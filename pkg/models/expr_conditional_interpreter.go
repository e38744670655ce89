package models

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// ExprConditionalInterpreter evaluates a free-form boolean expression against
// the requisition form using the expr language. Form fields are exposed as
// top-level variables, so "estimatedCost > 5000 and department == 'it'" works
// directly.
type ExprConditionalInterpreter struct {
	Expression string
}

func (e *ExprConditionalInterpreter) Evaluate(form map[string]any) (bool, error) {
	if e.Expression == "" {
		return true, nil
	}

	program, err := expr.Compile(e.Expression, expr.Env(form), expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return false, fmt.Errorf("compile condition expression %q: %w", e.Expression, err)
	}

	out, err := expr.Run(program, form)
	if err != nil {
		return false, fmt.Errorf("evaluate condition expression %q: %w", e.Expression, err)
	}

	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition expression %q did not yield a boolean", e.Expression)
	}

	return result, nil
}
