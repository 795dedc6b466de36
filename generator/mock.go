package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sharedcode/premortem"
)

// Mock is a deterministic generator. JSON requests get SampleAnalysis, other
// requests get a short markdown briefing. Response and Err override both.
type Mock struct {
	Response string
	Err      error
	calls    atomic.Int64
	last     atomic.Value
}

func init() {
	Register("mock", func(cfg map[string]any) (premortem.Generator, error) {
		m := &Mock{Response: stringOpt(cfg, "response", "")}
		if e := stringOpt(cfg, "error", ""); e != "" {
			m.Err = errors.New(e)
		}
		return m, nil
	})
}

// Name returns the name of the generator.
func (m *Mock) Name() string { return "mock" }

// Calls returns how many times Generate ran.
func (m *Mock) Calls() int { return int(m.calls.Load()) }

// LastPrompt returns the prompt of the latest Generate call.
func (m *Mock) LastPrompt() string {
	s, _ := m.last.Load().(string)
	return s
}

// Generate returns the canned response for opts.
func (m *Mock) Generate(ctx context.Context, prompt string, opts premortem.GenOptions) (premortem.GenOutput, error) {
	m.calls.Add(1)
	m.last.Store(prompt)
	if err := ctx.Err(); err != nil {
		return premortem.GenOutput{}, err
	}
	if m.Err != nil {
		return premortem.GenOutput{}, m.Err
	}
	text := m.Response
	if text == "" {
		if opts.JSON {
			ba, err := json.Marshal(SampleAnalysis())
			if err != nil {
				return premortem.GenOutput{}, err
			}
			text = string(ba)
		} else {
			text = fmt.Sprintf("## Anatomy\n%s\n\n## Causality\nSee root cause.\n\n## Trigger Vectors\nLoad.\n\n## Prevention roadmap\nHarden.", prompt)
		}
	}
	return premortem.GenOutput{Text: text, TokensUsed: (len(prompt) + len(text)) / 4}, nil
}

// EstimateCost is zero.
func (m *Mock) EstimateCost(inTokens, outTokens int) float64 { return 0 }

// SampleAnalysis returns a complete analysis with three scenarios: a medical one the
// default catalog validates, a Critical one with a likely mitigation, and a Critical
// one whose mitigation is too unlikely to pass the default policy.
func SampleAnalysis() premortem.PreMortemAnalysis {
	return premortem.PreMortemAnalysis{
		ForensicVerdict:      "Deployment is viable once connection handling is hardened.",
		OverallRiskScore:     64,
		SimulationConfidence: 0.82,
		Calibration: premortem.CalibrationMetrics{
			Prior: "Industry incident base rates", EvidenceRank: "B", UncertaintyBuffer: 0.1, DecayWindow: "90d",
		},
		FailureTimeline:      "T+0 deploy, T+3d traffic peak, T+5d pool exhaustion",
		StackVulnerabilities: []string{"Connection pooling", "Load balancer health checks"},
		RiskDistribution:     premortem.RiskDistribution{Logic: 30, Infrastructure: 50, Process: 20},
		ModelCard:            premortem.ModelCard{Version: "mock-1", DatasetLineage: "synthetic", PrivacyBudget: "n/a"},
		ExecutiveMetrics: premortem.ExecutiveMetrics{
			RiskTrend: []premortem.RiskTrendPoint{
				{Month: "Jan", Score: 70, Baseline: 50}, {Month: "Feb", Score: 64, Baseline: 50},
			},
			SLAImpact:        0.4,
			CostToHarden:     12000,
			CostOfInaction:   "$250k per major outage",
			RiskTolerance:    40,
			TopSystemicRisks: []string{"Shared database", "Single region"},
			RiskVsCost:       []premortem.RiskVsCost{{Name: "Pool tuning", Cost: 2000, RiskReduction: 30, Size: 10}},
			DecisionStatus:   premortem.Caution,
			ReadinessScore:   68,
			Heatmap:          []premortem.HeatmapPoint{{Probability: 3, Impact: 4, Count: 2, Label: "Infra"}},
		},
		Scenarios: []premortem.FailureScenario{
			{
				ID: "S1", Title: "Incorrect insulin dosage recommendation",
				Probability: 0.2, ExpectedDowntimeHours: 0, RevenueImpactRange: "$0-$50k",
				ErrorBudgetImpactPercent: 5, MTTRMinutes: 120, Severity: premortem.High,
				Detectability: "Low", TimeToImpact: "Days", BlastRadius: "Clinical users",
				RootCause: "Model hallucinates a dosage table", FailureType: premortem.ModelIntrinsic,
				CausalChain: []premortem.FailureStep{{Step: 1, Description: "Ambiguous prompt", Trigger: "User query"}},
				ObservabilitySignals: []premortem.ObservabilitySignal{
					{Type: "log", SignalName: "answer_flagged", DetectionGapMinutes: 60},
				},
				Impact:                  "Patient harm",
				PlainEnglishExplanation: premortem.PlainEnglishExplanation{Where: "Answer engine", Why: "Unverified numbers", HowToFix: "Ground answers in a formulary"},
				MinimalPreventiveChange: &premortem.MinimalPreventiveChange{Action: "Formulary grounding", Likelihood: 0.7, Effort: premortem.EffortWeek, Cost: premortem.CostMedium},
				Prevention:              []string{"Retrieval grounding"},
				ComplianceImpact:        []premortem.ComplianceMapping{{Framework: "HIPAA", Status: "At risk", Requirement: "Integrity", ActionRequired: "Audit"}},
				Explainability:          premortem.Explainability{ReasoningPath: "Domain risk", SourceAttribution: "FDA", ConfidenceInterval: "0.1-0.3", Counterfactual: "Grounded answers"},
			},
			{
				ID: "S2", Title: "Load balancer misconfiguration",
				Probability: 0.3, ExpectedDowntimeHours: 2, RevenueImpactRange: "$10k-$100k",
				ErrorBudgetImpactPercent: 40, MTTRMinutes: 45, Severity: premortem.Critical,
				Detectability: "High", TimeToImpact: "Minutes", BlastRadius: "All traffic",
				RootCause: "Health check points at the wrong port", FailureType: premortem.InfraExternal,
				CausalChain: []premortem.FailureStep{{Step: 1, Description: "Config drift", Trigger: "Deploy"}},
				ObservabilitySignals: []premortem.ObservabilitySignal{
					{Type: "metric", SignalName: "lb_healthy_hosts", DetectionGapMinutes: 2, IsCoveredBySLO: true},
				},
				Impact:                  "Full outage",
				PlainEnglishExplanation: premortem.PlainEnglishExplanation{Where: "Edge", Why: "Bad check", HowToFix: "Lint config"},
				MinimalPreventiveChange: &premortem.MinimalPreventiveChange{Action: "Config lint in CI", Likelihood: 0.85, Effort: premortem.EffortDay, Cost: premortem.CostLow},
				Prevention:              []string{"Canary deploys"},
				ComplianceImpact:        []premortem.ComplianceMapping{},
				Explainability:          premortem.Explainability{ReasoningPath: "Config", SourceAttribution: "NIST", ConfidenceInterval: "0.2-0.4", Counterfactual: "Validated config"},
			},
			{
				ID: "S3", Title: "Database connection pool exhaustion",
				Probability: 0.5, ExpectedDowntimeHours: 6, RevenueImpactRange: "$100k-$500k",
				ErrorBudgetImpactPercent: 80, MTTRMinutes: 180, Severity: premortem.Critical,
				Detectability: "Medium", TimeToImpact: "Hours", BlastRadius: "Write path",
				RootCause: "Leaked connections on retry", FailureType: premortem.SystemicArch,
				CausalChain: []premortem.FailureStep{{Step: 1, Description: "Retry storm", Trigger: "Latency spike"}},
				ObservabilitySignals: []premortem.ObservabilitySignal{
					{Type: "metric", SignalName: "db_pool_in_use", DetectionGapMinutes: 15},
				},
				Impact:                  "Degraded writes",
				PlainEnglishExplanation: premortem.PlainEnglishExplanation{Where: "Database", Why: "Connections leak", HowToFix: "Bound retries"},
				MinimalPreventiveChange: &premortem.MinimalPreventiveChange{Action: "Tune pool", Likelihood: 0.2, Effort: premortem.EffortHour, Cost: premortem.CostLow},
				Prevention:              []string{"Circuit breakers"},
				ComplianceImpact:        []premortem.ComplianceMapping{},
				Explainability:          premortem.Explainability{ReasoningPath: "Capacity", SourceAttribution: "Postmortems", ConfidenceInterval: "0.4-0.6", Counterfactual: "Bounded retries"},
			},
		},
	}
}
