package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Evaluator struct contains the CEL expression & the cel program used to evaluate expression vs. input variables.
type Evaluator struct {
	Name       string
	Expression string
	program    cel.Program
}

// NewEvaluator compiles a boolean CEL expression over a single variable, "scenario",
// holding a failure scenario decoded as map[string]any (JSON field names).
//
// Example: scenario.severity == 'Critical' && scenario.probability > 0.9
func NewEvaluator(name string, expression string) (*Evaluator, error) {
	if name == "" {
		return nil, fmt.Errorf("name can't be empty string")
	}
	if expression == "" {
		return nil, fmt.Errorf("expression can't be empty string")
	}

	env, err := cel.NewEnv(
		cel.Variable("scenario", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("error compiling CEL expression: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression %q must evaluate to bool, got %v", expression, ast.OutputType())
	}
	p, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("error creating Program: %w", err)
	}
	return &Evaluator{
		Name:       name,
		Expression: expression,
		program:    p,
	}, nil
}

// Evaluate runs the expression against scenario.
func (e *Evaluator) Evaluate(scenario map[string]any) (bool, error) {
	out, _, err := e.program.Eval(map[string]any{
		"scenario": scenario,
	})
	if err != nil {
		return false, fmt.Errorf("error evaluating CEL expression %s: %w", e.Name, err)
	}
	v, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("error converting to bool, got %v", out.Value())
	}
	return v, nil
}
