package premortem

import (
	"strings"
	"unicode/utf8"
)

// Severity of a failure scenario.
type Severity string

const (
	Critical Severity = "Critical"
	High     Severity = "High"
	Medium   Severity = "Medium"
	Low      Severity = "Low"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case Critical, High, Medium, Low:
		return true
	}
	return false
}

// LookupSource names the reference catalog that backed an AuthoritativeLookup.
type LookupSource string

const (
	RxNorm  LookupSource = "RxNorm"
	OpenFDA LookupSource = "OpenFDA"
	NIST    LookupSource = "NIST"
)

// FailureType classifies where a failure originates.
type FailureType string

const (
	ModelIntrinsic FailureType = "Model-Intrinsic"
	SystemicArch   FailureType = "Systemic-Arch"
	HumanProcess   FailureType = "Human-Process"
	InfraExternal  FailureType = "Infra-External"
)

// EffortLevel is the estimated effort of a preventive change.
type EffortLevel string

const (
	EffortHour  EffortLevel = "1h"
	EffortDay   EffortLevel = "1d"
	EffortWeek  EffortLevel = "1w"
	EffortMonth EffortLevel = "1m+"
)

// CostLevel is the relative cost of a preventive change.
type CostLevel string

const (
	CostLow    CostLevel = "Low"
	CostMedium CostLevel = "Medium"
	CostHigh   CostLevel = "High"
)

// AdversarialModel selects the simulation mode sent to the generator.
type AdversarialModel string

const (
	Standard         AdversarialModel = "Standard"
	Adversarial      AdversarialModel = "Adversarial"
	SystemicCollapse AdversarialModel = "Systemic-Collapse"
)

// Tier selects the generator model family.
type Tier string

const (
	TierFlash Tier = "FLASH"
	TierPro   Tier = "PRO"
)

// DecisionStatus is the deployment recommendation of an analysis.
type DecisionStatus string

const (
	Go      DecisionStatus = "GO"
	NoGo    DecisionStatus = "NO-GO"
	Caution DecisionStatus = "CAUTION"
)

// DefaultVetoMarker is prefixed to the title of a scenario that fails policy.
const DefaultVetoMarker = "[ENFORCEMENT_VETO] "

// MaxLookupQueryBytes caps the free text sent to a reference lookup.
const MaxLookupQueryBytes = 2048

// FailureStep is one link of a scenario's causal chain.
type FailureStep struct {
	Step        int    `json:"step"`
	Description string `json:"description"`
	Trigger     string `json:"trigger"`
}

// ComplianceMapping ties a scenario to a compliance framework requirement.
type ComplianceMapping struct {
	Framework      string `json:"framework"`
	Status         string `json:"status"`
	Requirement    string `json:"requirement"`
	ActionRequired string `json:"actionRequired"`
}

// ObservabilitySignal is a metric, log or trace expected to fire for a scenario.
type ObservabilitySignal struct {
	Type                string  `json:"type"`
	SignalName          string  `json:"signalName"`
	DetectionGapMinutes float64 `json:"detectionGapMinutes"`
	IsCoveredBySLO      bool    `json:"isCoveredBySLO"`
}

// PlainEnglishExplanation is the non-technical summary of a scenario.
type PlainEnglishExplanation struct {
	Where    string `json:"where"`
	Why      string `json:"why"`
	HowToFix string `json:"howToFix"`
}

// MinimalPreventiveChange is the smallest mitigation proposed for a scenario.
// Likelihood is the probability, in [0,1], that the change prevents the failure.
type MinimalPreventiveChange struct {
	Action     string      `json:"action"`
	Likelihood float64     `json:"likelihood"`
	Effort     EffortLevel `json:"effort"`
	Cost       CostLevel   `json:"cost"`
}

// Explainability carries the generator's reasoning metadata.
type Explainability struct {
	ReasoningPath      string `json:"reasoningPath"`
	SourceAttribution  string `json:"sourceAttribution"`
	ConfidenceInterval string `json:"confidenceInterval"`
	Counterfactual     string `json:"counterfactual"`
}

// AuthoritativeLookup asserts a scenario's claims were checked against a reference catalog.
type AuthoritativeLookup struct {
	Source    LookupSource `json:"source"`
	Found     bool         `json:"found"`
	Reference string       `json:"reference"`
}

// ValidationResult is the outcome of evaluating one scenario against policy.
type ValidationResult struct {
	Valid          bool   `json:"valid"`
	OverrideReason string `json:"overrideReason,omitempty"`
	RuleID         string `json:"ruleId,omitempty"`
}

// FailureScenario is one generated failure hypothesis. It arrives from an untrusted
// generator; AuthoritativeLookup is attached by the admission gate.
type FailureScenario struct {
	ID                       string                   `json:"id"`
	Title                    string                   `json:"title"`
	Probability              float64                  `json:"probability"`
	ExpectedDowntimeHours    float64                  `json:"expectedDowntimeHours"`
	RevenueImpactRange       string                   `json:"revenueImpactRange"`
	ErrorBudgetImpactPercent float64                  `json:"errorBudgetImpactPercent"`
	MTTRMinutes              float64                  `json:"mttrMinutes"`
	Severity                 Severity                 `json:"severity"`
	Detectability            string                   `json:"detectability"`
	TimeToImpact             string                   `json:"timeToImpact"`
	BlastRadius              string                   `json:"blastRadius"`
	RootCause                string                   `json:"rootCause"`
	FailureType              FailureType              `json:"failureType"`
	CausalChain              []FailureStep            `json:"causalChain"`
	ObservabilitySignals     []ObservabilitySignal    `json:"observabilitySignals"`
	Impact                   string                   `json:"impact"`
	PlainEnglishExplanation  PlainEnglishExplanation  `json:"plainEnglishExplanation"`
	MinimalPreventiveChange  *MinimalPreventiveChange `json:"minimalPreventiveChange,omitempty"`
	Prevention               []string                 `json:"prevention"`
	ComplianceImpact         []ComplianceMapping      `json:"complianceImpact"`
	Explainability           Explainability           `json:"explainability"`
	AuthoritativeLookup      *AuthoritativeLookup     `json:"authoritativeLookup,omitempty"`
}

// LookupQuery returns the text handed to a reference lookup: title and root cause,
// capped to MaxLookupQueryBytes without splitting a rune.
func (s FailureScenario) LookupQuery() string {
	return CapQuery(s.Title + " " + s.RootCause)
}

// CapQuery truncates q to MaxLookupQueryBytes on a rune boundary.
func CapQuery(q string) string {
	return capText(q, MaxLookupQueryBytes)
}

// Content returns the lowercased title, root cause and impact used by content rules.
func (s FailureScenario) Content() string {
	return strings.ToLower(s.Title + s.RootCause + s.Impact)
}

// Vetoed reports whether the title already carries marker.
func (s FailureScenario) Vetoed(marker string) bool {
	return marker != "" && strings.HasPrefix(s.Title, marker)
}

// Clone returns a deep copy so an annotated scenario never aliases its source.
func (s FailureScenario) Clone() FailureScenario {
	c := s
	c.CausalChain = append([]FailureStep(nil), s.CausalChain...)
	c.ObservabilitySignals = append([]ObservabilitySignal(nil), s.ObservabilitySignals...)
	c.Prevention = append([]string(nil), s.Prevention...)
	c.ComplianceImpact = append([]ComplianceMapping(nil), s.ComplianceImpact...)
	if s.MinimalPreventiveChange != nil {
		m := *s.MinimalPreventiveChange
		c.MinimalPreventiveChange = &m
	}
	if s.AuthoritativeLookup != nil {
		l := *s.AuthoritativeLookup
		c.AuthoritativeLookup = &l
	}
	return c
}

// CalibrationMetrics describes how the generator calibrated its estimates.
type CalibrationMetrics struct {
	Prior             string  `json:"prior"`
	EvidenceRank      string  `json:"evidenceRank"`
	UncertaintyBuffer float64 `json:"uncertaintyBuffer"`
	DecayWindow       string  `json:"decayWindow"`
}

// HeatmapPoint is one cell of the probability/impact heatmap (both 1-5).
type HeatmapPoint struct {
	Probability float64 `json:"probability"`
	Impact      float64 `json:"impact"`
	Count       int     `json:"count"`
	Label       string  `json:"label"`
}

// RiskTrendPoint is one month of the risk trend series.
type RiskTrendPoint struct {
	Month    string  `json:"month"`
	Score    float64 `json:"score"`
	Baseline float64 `json:"baseline"`
}

// RiskVsCost is one bubble of the risk reduction vs cost chart.
type RiskVsCost struct {
	Name          string  `json:"name"`
	Cost          float64 `json:"cost"`
	RiskReduction float64 `json:"riskReduction"`
	Size          float64 `json:"size"`
}

// ExecutiveMetrics is the decision summary of an analysis.
type ExecutiveMetrics struct {
	RiskTrend        []RiskTrendPoint `json:"riskTrend"`
	SLAImpact        float64          `json:"slaImpact"`
	CostToHarden     float64          `json:"costToHarden"`
	CostOfInaction   string           `json:"costOfInaction"`
	RiskTolerance    float64          `json:"riskTolerance"`
	TopSystemicRisks []string         `json:"topSystemicRisks"`
	RiskVsCost       []RiskVsCost     `json:"riskVsCost"`
	DecisionStatus   DecisionStatus   `json:"decisionStatus"`
	ReadinessScore   float64          `json:"readinessScore"`
	Heatmap          []HeatmapPoint   `json:"heatmap"`
}

// RiskDistribution splits risk across logic, infrastructure and process.
type RiskDistribution struct {
	Logic          float64 `json:"logic"`
	Infrastructure float64 `json:"infrastructure"`
	Process        float64 `json:"process"`
}

// ModelCard identifies the model that produced an analysis.
type ModelCard struct {
	Version        string `json:"version"`
	DatasetLineage string `json:"datasetLineage"`
	PrivacyBudget  string `json:"privacyBudget"`
}

// PreMortemAnalysis is the document produced by the generator and returned, annotated,
// to the presentation layer.
type PreMortemAnalysis struct {
	ForensicVerdict      string             `json:"forensicVerdict"`
	Scenarios            []FailureScenario  `json:"scenarios"`
	OverallRiskScore     float64            `json:"overallRiskScore"`
	SimulationConfidence float64            `json:"simulationConfidence"`
	Calibration          CalibrationMetrics `json:"calibration"`
	FailureTimeline      string             `json:"failureTimeline"`
	StackVulnerabilities []string           `json:"stackVulnerabilities"`
	RiskDistribution     RiskDistribution   `json:"riskDistribution"`
	ExecutiveMetrics     ExecutiveMetrics   `json:"executiveMetrics"`
	ModelCard            ModelCard          `json:"modelCard"`
}

// Clone returns a copy of the analysis whose scenarios do not alias a.
func (a PreMortemAnalysis) Clone() PreMortemAnalysis {
	c := a
	if a.Scenarios != nil {
		c.Scenarios = make([]FailureScenario, len(a.Scenarios))
		for i := range a.Scenarios {
			c.Scenarios[i] = a.Scenarios[i].Clone()
		}
	}
	c.StackVulnerabilities = append([]string(nil), a.StackVulnerabilities...)
	return c
}

func capText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	// Back off only over a rune split by the cut.
	for i := 0; i < utf8.UTFMax-1 && cut > 0 && !utf8.RuneStart(s[cut]); i++ {
		cut--
	}
	return s[:cut]
}
