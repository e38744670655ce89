package models

// Conditional evaluates a condition node against a requisition form,
// yielding the boolean that selects the true or false branch.
type Conditional interface {
	Evaluate(form map[string]any) (bool, error)
}

// GetConditional picks the evaluator for a condition node: the expression
// interpreter when a free-form expression is set, otherwise the clause-chain
// interpreter over the node's ordered clauses.
func GetConditional(config *ConditionConfig, catalog *FieldCatalog) Conditional {
	if config == nil {
		return nil
	}

	if config.Expression != "" {
		return &ExprConditionalInterpreter{Expression: config.Expression}
	}

	return &ClauseConditionalInterpreter{Clauses: config.Clauses, Catalog: catalog}
}
