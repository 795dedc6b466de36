package premortem

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// requiredAnalysisFields are the top-level keys a generated document must carry.
var requiredAnalysisFields = []string{
	"forensicVerdict", "overallRiskScore", "simulationConfidence", "calibration", "scenarios",
	"executiveMetrics", "modelCard", "riskDistribution", "failureTimeline", "stackVulnerabilities",
}

// requiredScenarioFields are the keys every scenario needs for the gate to identify
// and screen it. Anything else a rule needs is handled fail-closed by that rule.
var requiredScenarioFields = []string{"id", "title", "severity"}

// DecodeAnalysis parses generator output into a PreMortemAnalysis. Markdown code fences
// around the JSON are tolerated. Any failure is a GenerationFailure.
func DecodeAnalysis(text string) (PreMortemAnalysis, error) {
	var a PreMortemAnalysis
	body := stripFence(text)
	if body == "" {
		return a, NewError(GenerationFailure, errors.New("generator returned an empty document"), nil)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return a, NewError(GenerationFailure, fmt.Errorf("document is not a JSON object: %w", err), nil)
	}
	for _, f := range requiredAnalysisFields {
		if _, ok := raw[f]; !ok {
			return a, NewError(GenerationFailure, fmt.Errorf("document is missing %q", f), nil)
		}
	}
	var scenarios []map[string]json.RawMessage
	if err := json.Unmarshal(raw["scenarios"], &scenarios); err != nil {
		return a, NewError(GenerationFailure, fmt.Errorf("scenarios is not an array of objects: %w", err), nil)
	}
	for i, s := range scenarios {
		for _, f := range requiredScenarioFields {
			if _, ok := s[f]; !ok {
				return a, NewError(GenerationFailure, fmt.Errorf("scenario %d is missing %q", i, f), nil)
			}
		}
	}

	if err := json.Unmarshal([]byte(body), &a); err != nil {
		return a, NewError(GenerationFailure, fmt.Errorf("document does not match the analysis schema: %w", err), nil)
	}
	if err := a.Validate(); err != nil {
		return a, err
	}
	return a, nil
}

// DecodeScenarios parses either a full analysis document or a bare scenario array.
// A bare array is returned as an analysis holding only scenarios.
func DecodeScenarios(text string) (PreMortemAnalysis, bool, error) {
	body := stripFence(text)
	if strings.HasPrefix(body, "[") {
		var ss []FailureScenario
		if err := json.Unmarshal([]byte(body), &ss); err != nil {
			return PreMortemAnalysis{}, false, NewError(GenerationFailure, fmt.Errorf("scenario array does not match the schema: %w", err), nil)
		}
		a := PreMortemAnalysis{Scenarios: ss}
		for i := range a.Scenarios {
			normalizeSeverity(&a.Scenarios[i])
		}
		return a, false, nil
	}
	a, err := DecodeAnalysis(body)
	return a, true, err
}

// Validate checks the values the gate depends on. Severity spelled in a different case
// is normalized; an unknown severity is a GenerationFailure.
func (a *PreMortemAnalysis) Validate() error {
	for i := range a.Scenarios {
		s := &a.Scenarios[i]
		if s.ID == "" {
			return NewError(GenerationFailure, fmt.Errorf("scenario %d has an empty id", i), nil)
		}
		if !normalizeSeverity(s) {
			return NewError(GenerationFailure, fmt.Errorf("scenario %s has unknown severity %q", s.ID, s.Severity), nil)
		}
	}
	return nil
}

func normalizeSeverity(s *FailureScenario) bool {
	if s.Severity.Valid() {
		return true
	}
	for _, v := range []Severity{Critical, High, Medium, Low} {
		if strings.EqualFold(string(s.Severity), string(v)) {
			s.Severity = v
			return true
		}
	}
	return false
}

func stripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
