package premortem

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(t *testing.T, mutate func(map[string]any)) string {
	t.Helper()
	a := PreMortemAnalysis{
		ForensicVerdict:      "Viable with hardening.",
		OverallRiskScore:     55,
		SimulationConfidence: 0.8,
		StackVulnerabilities: []string{"Postgres"},
		ExecutiveMetrics:     ExecutiveMetrics{DecisionStatus: Caution},
		Scenarios: []FailureScenario{
			{ID: "S1", Title: "Pool exhaustion", Severity: Critical, Probability: 0.3},
			{ID: "S2", Title: "Clock skew", Severity: "low"},
		},
	}
	ba, err := json.Marshal(a)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(ba, &m))
	if mutate != nil {
		mutate(m)
	}
	ba, err = json.Marshal(m)
	require.NoError(t, err)
	return string(ba)
}

func TestDecodeAnalysis(t *testing.T) {
	doc := sampleDocument(t, nil)
	a, err := DecodeAnalysis(doc)
	require.NoError(t, err)
	require.Len(t, a.Scenarios, 2)
	assert.Equal(t, Low, a.Scenarios[1].Severity, "severity is normalized")

	fenced := "```json\n" + doc + "\n```\n"
	b, err := DecodeAnalysis(fenced)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecodeAnalysisRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", "  "},
		{"prose", "I'm sorry, I can't do that."},
		{"array", "[1,2]"},
		{"missing verdict", sampleDocument(t, func(m map[string]any) { delete(m, "forensicVerdict") })},
		{"scenarios not array", sampleDocument(t, func(m map[string]any) { m["scenarios"] = "none" })},
		{"scenario without id", sampleDocument(t, func(m map[string]any) {
			delete(m["scenarios"].([]any)[0].(map[string]any), "id")
		})},
		{"wrong type", sampleDocument(t, func(m map[string]any) { m["overallRiskScore"] = "high" })},
		{"unknown severity", sampleDocument(t, func(m map[string]any) {
			m["scenarios"].([]any)[1].(map[string]any)["severity"] = "Catastrophic"
		})},
		{"empty id", sampleDocument(t, func(m map[string]any) {
			m["scenarios"].([]any)[0].(map[string]any)["id"] = ""
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAnalysis(tt.text)
			require.Error(t, err)
			assert.True(t, IsGenerationFailure(err), "%v", err)
		})
	}
}

func TestDecodeScenarios(t *testing.T) {
	a, full, err := DecodeScenarios(`[{"id":"A","title":"t","severity":"HIGH"}]`)
	require.NoError(t, err)
	assert.False(t, full)
	require.Len(t, a.Scenarios, 1)
	assert.Equal(t, High, a.Scenarios[0].Severity)

	a, full, err = DecodeScenarios(sampleDocument(t, nil))
	require.NoError(t, err)
	assert.True(t, full)
	assert.Len(t, a.Scenarios, 2)

	_, _, err = DecodeScenarios(`[{"id":`)
	assert.True(t, IsGenerationFailure(err))
}

func TestValidateLeavesKnownSeverity(t *testing.T) {
	a := PreMortemAnalysis{Scenarios: []FailureScenario{{ID: "x", Severity: Medium}}}
	require.NoError(t, a.Validate())
	assert.Equal(t, Medium, a.Scenarios[0].Severity)

	a.Scenarios[0].Severity = Severity(strings.ToUpper(string(Critical)))
	require.NoError(t, a.Validate())
	assert.Equal(t, Critical, a.Scenarios[0].Severity)
}
