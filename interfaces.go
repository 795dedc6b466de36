package premortem

import (
	"context"
	"sort"
	"time"
)

// Generator defines the interface for the external model that produces analyses.
type Generator interface {
	// Name returns the name of the generator.
	Name() string
	// Generate produces text based on the provided prompt and options.
	Generate(ctx context.Context, prompt string, opts GenOptions) (GenOutput, error)
	// EstimateCost calculates the estimated cost of the generation.
	EstimateCost(inTokens, outTokens int) float64
}

// GenOptions configures the generation process.
type GenOptions struct {
	MaxTokens         int
	Temperature       float32
	TopP              float32
	Stop              []string
	SystemInstruction string
	// JSON requests a JSON document conforming to the analysis schema.
	JSON bool
	// Tier picks the model family when the generator supports more than one.
	Tier Tier
	// ThinkingBudget caps reasoning tokens; zero leaves the model default.
	ThinkingBudget int
}

// GenOutput represents the result of a generation.
type GenOutput struct {
	Text       string
	TokensUsed int
	Raw        any
}

// ReferenceLookup maps free text to a knowledge-source citation.
// Implementations backed by a remote registry return a fail-closed result
// (Found false) together with a LookupUnavailable error when the registry can't answer.
type ReferenceLookup interface {
	Lookup(ctx context.Context, query string) (AuthoritativeLookup, error)
}

// ScenarioValidator evaluates one scenario against policy. It must be pure.
type ScenarioValidator interface {
	Validate(scenario FailureScenario) ValidationResult
}

// Cache is the small key/value surface used for caching lookup results.
type Cache interface {
	// GetStruct fetches key into target, returning false when the key is missing.
	GetStruct(ctx context.Context, key string, target any) (bool, error)
	// SetStruct stores value under key with the given expiration.
	SetStruct(ctx context.Context, key string, value any, expiration time.Duration) error
	// Delete removes keys.
	Delete(ctx context.Context, keys []string) (bool, error)
}

// Decision records what the admission gate did with one scenario.
type Decision struct {
	Index      int                 `json:"index"`
	ScenarioID string              `json:"scenarioId"`
	Lookup     AuthoritativeLookup `json:"lookup"`
	LookupErr  string              `json:"lookupError,omitempty"`
	Result     ValidationResult    `json:"result"`
	Vetoed     bool                `json:"vetoed"`
}

// AnalysisRequest is the project description sent to the generator.
type AnalysisRequest struct {
	Title       string           `json:"title"`
	Mission     string           `json:"mission,omitempty"`
	Description string           `json:"description,omitempty"`
	Stack       string           `json:"stack"`
	Mode        AdversarialModel `json:"mode,omitempty"`
	Tier        Tier             `json:"tier,omitempty"`
}

// Report is a screened analysis as stored and served.
type Report struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"createdAt"`
	Owner     string            `json:"owner,omitempty"`
	Request   AnalysisRequest   `json:"request"`
	Generator string            `json:"generator"`
	Analysis  PreMortemAnalysis `json:"analysis"`
	Decisions []Decision        `json:"decisions"`
}

// VetoCount returns how many scenarios the gate vetoed.
func (r Report) VetoCount() int {
	n := 0
	for _, d := range r.Decisions {
		if d.Vetoed {
			n++
		}
	}
	return n
}

// ReportSummary is the listing view of a Report.
type ReportSummary struct {
	ID               string         `json:"id"`
	CreatedAt        time.Time      `json:"createdAt"`
	Title            string         `json:"title"`
	Owner            string         `json:"owner,omitempty"`
	OverallRiskScore float64        `json:"overallRiskScore"`
	DecisionStatus   DecisionStatus `json:"decisionStatus"`
	Scenarios        int            `json:"scenarios"`
	Vetoed           int            `json:"vetoed"`
}

// Summary returns the listing view of r.
func (r Report) Summary() ReportSummary {
	return ReportSummary{
		ID:               r.ID,
		CreatedAt:        r.CreatedAt,
		Title:            r.Request.Title,
		Owner:            r.Owner,
		OverallRiskScore: r.Analysis.OverallRiskScore,
		DecisionStatus:   r.Analysis.ExecutiveMetrics.DecisionStatus,
		Scenarios:        len(r.Analysis.Scenarios),
		Vetoed:           r.VetoCount(),
	}
}

// SortNewestFirst orders summaries by creation time, newest first, then by id.
// Every ReportStore lists in this order.
func SortNewestFirst(r []ReportSummary) {
	sort.Slice(r, func(i, j int) bool {
		if !r[i].CreatedAt.Equal(r[j].CreatedAt) {
			return r[i].CreatedAt.After(r[j].CreatedAt)
		}
		return r[i].ID < r[j].ID
	})
}

// ReportStore persists screened reports.
type ReportStore interface {
	Put(ctx context.Context, r Report) error
	Get(ctx context.Context, id string) (Report, bool, error)
	List(ctx context.Context) ([]ReportSummary, error)
}
