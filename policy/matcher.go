package policy

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Matcher decides whether free text touches a restricted topic.
// It returns the first term (or pattern label) that matched.
type Matcher interface {
	Match(text string) (term string, ok bool)
}

// KeywordMatcher matches case-insensitive substrings.
type KeywordMatcher struct {
	terms []string
}

// NewKeywordMatcher creates a matcher over terms. Empty terms are ignored and
// the remaining ones are lowercased.
func NewKeywordMatcher(terms ...string) *KeywordMatcher {
	km := &KeywordMatcher{}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			km.terms = append(km.terms, t)
		}
	}
	return km
}

// Terms returns the lowercased terms in the order they were given.
func (km *KeywordMatcher) Terms() []string {
	return append([]string(nil), km.terms...)
}

// Match reports the first term contained in text.
func (km *KeywordMatcher) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, t := range km.terms {
		if strings.Contains(lower, t) {
			return t, true
		}
	}
	return "", false
}

// RegexMatcher matches text based on named regular expression patterns.
type RegexMatcher struct {
	labels   []string
	patterns map[string]*regexp.Regexp
}

// NewRegexMatcher creates a matcher from patterns, a map where the key is the label name
// and the value is the regex pattern. Labels are tried in sorted order.
func NewRegexMatcher(patterns map[string]string) (*RegexMatcher, error) {
	rm := &RegexMatcher{
		patterns: make(map[string]*regexp.Regexp, len(patterns)),
	}
	for label, pat := range patterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("pattern %q for label %q: %w", pat, label, err)
		}
		rm.patterns[label] = re
		rm.labels = append(rm.labels, label)
	}
	sort.Strings(rm.labels)
	return rm, nil
}

// Match checks the text against the patterns and returns the first matching label.
func (rm *RegexMatcher) Match(text string) (string, bool) {
	for _, label := range rm.labels {
		if rm.patterns[label].MatchString(text) {
			return label, true
		}
	}
	return "", false
}

// AnyMatcher matches when any of its matchers does.
type AnyMatcher []Matcher

// Match returns the first match among the matchers.
func (am AnyMatcher) Match(text string) (string, bool) {
	for _, m := range am {
		if term, ok := m.Match(text); ok {
			return term, true
		}
	}
	return "", false
}
