package policy

import (
	"github.com/sharedcode/premortem"
)

// Validator combines rules into one ScenarioValidator.
// It evaluates them in order and the first failing rule wins.
type Validator struct {
	rules []Rule
}

// NewValidator creates a validator over rules, evaluated in the given order.
func NewValidator(rules ...Rule) *Validator {
	return &Validator{rules: rules}
}

// Rules returns the IDs of the configured rules in evaluation order.
func (v *Validator) Rules() []string {
	ids := make([]string, len(v.rules))
	for i, r := range v.rules {
		ids[i] = r.ID()
	}
	return ids
}

// Validate returns the first failure, or a valid result when every rule passes.
func (v *Validator) Validate(s premortem.FailureScenario) premortem.ValidationResult {
	for _, r := range v.rules {
		if ok, reason := r.Check(s); !ok {
			return premortem.ValidationResult{Valid: false, OverrideReason: reason, RuleID: r.ID()}
		}
	}
	return premortem.ValidationResult{Valid: true}
}

// AllowAll is a validator that passes everything.
// It is useful to disable screening in demos and tests.
type AllowAll struct{}

// Validate always returns a valid result.
func (AllowAll) Validate(premortem.FailureScenario) premortem.ValidationResult {
	return premortem.ValidationResult{Valid: true}
}
