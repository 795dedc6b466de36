package policy

import (
	"github.com/sharedcode/premortem"
)

// NewDefaultValidator returns the built-in policy: the medical restricted-topic rule
// followed by the critical-mitigation rule at likelihood 0.5.
func NewDefaultValidator() *Validator {
	v, _ := FromConfig(premortem.DefaultPolicyConfig())
	return v
}

// FromConfig builds a validator from a PolicyConfig: the restricted-topic rule over
// RestrictedTerms, the critical-mitigation rule at LikelihoodThreshold, then each
// configured CEL rule in order.
func FromConfig(cfg premortem.PolicyConfig) (*Validator, error) {
	rules := []Rule{
		NewRestrictedTopicRule(NewKeywordMatcher(cfg.RestrictedTerms...)),
		NewCriticalMitigationRule(cfg.LikelihoodThreshold),
	}
	for _, rc := range cfg.Rules {
		r, err := NewExpressionRule(rc.ID, rc.Expression, rc.Reason)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return NewValidator(rules...), nil
}
