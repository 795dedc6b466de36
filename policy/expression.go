package policy

import (
	"encoding/json"
	"fmt"

	"github.com/sharedcode/premortem"
	"github.com/sharedcode/premortem/cel"
)

// ExpressionRule vetoes a scenario when its CEL expression evaluates to true.
// Evaluation errors (e.g. a field the expression needs is missing) fail closed.
type ExpressionRule struct {
	id        string
	reason    string
	evaluator *cel.Evaluator
}

// NewExpressionRule compiles expression. The expression sees the scenario as a map
// keyed by its JSON field names, e.g. scenario.severity or scenario.minimalPreventiveChange.effort.
func NewExpressionRule(id, expression, reason string) (*ExpressionRule, error) {
	e, err := cel.NewEvaluator(id, expression)
	if err != nil {
		return nil, premortem.NewError(premortem.PolicyConfigInvalid, err, id)
	}
	if reason == "" {
		reason = fmt.Sprintf("violates rule %s", id)
	}
	return &ExpressionRule{id: id, reason: reason, evaluator: e}, nil
}

func (r *ExpressionRule) ID() string { return r.id }

// Check evaluates the expression against s.
func (r *ExpressionRule) Check(s premortem.FailureScenario) (bool, string) {
	m, err := scenarioMap(s)
	if err != nil {
		return false, fmt.Sprintf("%s: %v", r.reason, err)
	}
	violated, err := r.evaluator.Evaluate(m)
	if err != nil {
		return false, fmt.Sprintf("%s: %v", r.reason, err)
	}
	if violated {
		return false, r.reason
	}
	return true, ""
}

func scenarioMap(s premortem.FailureScenario) (map[string]any, error) {
	ba, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(ba, &m); err != nil {
		return nil, err
	}
	return m, nil
}
