package policy

import (
	"fmt"

	"github.com/sharedcode/premortem"
)

const (
	RestrictedTopicRuleID    = "restricted-topic"
	CriticalMitigationRuleID = "critical-mitigation"

	RestrictedContextReason  = "restricted context without validated reference"
	CriticalMitigationReason = "critical severity lacks sufficiently likely mitigation"
)

// Rule is one safety check. Check returns false and a reason when the scenario violates it.
// Rules must be pure: the same scenario always yields the same answer.
type Rule interface {
	ID() string
	Check(s premortem.FailureScenario) (ok bool, reason string)
}

// RestrictedTopicRule rejects scenarios whose content touches a restricted topic unless
// a reference lookup found them in a catalog.
type RestrictedTopicRule struct {
	matcher Matcher
}

// NewRestrictedTopicRule creates the rule over matcher.
func NewRestrictedTopicRule(matcher Matcher) *RestrictedTopicRule {
	return &RestrictedTopicRule{matcher: matcher}
}

func (r *RestrictedTopicRule) ID() string { return RestrictedTopicRuleID }

// Check tests title, root cause and impact. A missing lookup counts as not found.
func (r *RestrictedTopicRule) Check(s premortem.FailureScenario) (bool, string) {
	if _, restricted := r.matcher.Match(s.Content()); !restricted {
		return true, ""
	}
	if s.AuthoritativeLookup == nil || !s.AuthoritativeLookup.Found {
		return false, RestrictedContextReason
	}
	return true, ""
}

// CriticalMitigationRule requires a Critical scenario to carry a preventive change
// whose likelihood reaches threshold.
type CriticalMitigationRule struct {
	threshold float64
}

// NewCriticalMitigationRule creates the rule. The default policy uses 0.5.
func NewCriticalMitigationRule(threshold float64) *CriticalMitigationRule {
	return &CriticalMitigationRule{threshold: threshold}
}

func (r *CriticalMitigationRule) ID() string { return CriticalMitigationRuleID }

// Check fails closed when the preventive change is absent.
func (r *CriticalMitigationRule) Check(s premortem.FailureScenario) (bool, string) {
	if s.Severity != premortem.Critical {
		return true, ""
	}
	if s.MinimalPreventiveChange == nil || s.MinimalPreventiveChange.Likelihood < r.threshold {
		return false, CriticalMitigationReason
	}
	return true, ""
}

// String is used in log lines.
func (r *CriticalMitigationRule) String() string {
	return fmt.Sprintf("%s(threshold=%.2f)", r.ID(), r.threshold)
}
