// Package gate screens generated failure scenarios before they reach a client.
//
// Every scenario is annotated with the result of a reference lookup and then
// checked against policy. A scenario that fails policy is not dropped: its
// severity is forced to Critical and its title is prefixed with a veto marker,
// so consumers see exactly which hypotheses were overridden.
package gate

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sharedcode/premortem"
)

// DefaultConcurrency bounds the scenarios screened in parallel.
const DefaultConcurrency = 8

// Gate applies lookup and policy to batches of scenarios. It holds no per-batch
// state and is safe for concurrent use.
type Gate struct {
	lookup      premortem.ReferenceLookup
	validator   premortem.ScenarioValidator
	marker      string
	concurrency int
	logger      *log.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithMarker sets the title prefix of vetoed scenarios.
func WithMarker(marker string) Option {
	return func(g *Gate) {
		if marker != "" {
			g.marker = marker
		}
	}
}

// WithConcurrency sets how many scenarios are screened in parallel.
func WithConcurrency(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// WithLogger sets the logger used for per-scenario decisions.
func WithLogger(l *log.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a gate over lookup and validator.
func New(lookup premortem.ReferenceLookup, validator premortem.ScenarioValidator, opts ...Option) *Gate {
	g := &Gate{
		lookup:      lookup,
		validator:   validator,
		marker:      premortem.DefaultVetoMarker,
		concurrency: DefaultConcurrency,
		logger:      log.Default(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// FromConfig creates a gate using the marker and concurrency of cfg.
func FromConfig(cfg premortem.Config, lookup premortem.ReferenceLookup, validator premortem.ScenarioValidator) *Gate {
	return New(lookup, validator, WithMarker(cfg.Policy.VetoMarker), WithConcurrency(cfg.Gate.Concurrency))
}

// Marker returns the veto marker in use.
func (g *Gate) Marker() string { return g.marker }

// Admit returns the annotated batch, same length and order as scenarios.
// The input is not modified. When every lookup of a non-empty batch failed the
// batch is still returned, together with a LookupUnavailable error joining the failures.
func (g *Gate) Admit(ctx context.Context, scenarios []premortem.FailureScenario) ([]premortem.FailureScenario, error) {
	out, _, err := g.AdmitWithDecisions(ctx, scenarios)
	return out, err
}

// AdmitWithDecisions is Admit that also reports what was decided for each scenario.
func (g *Gate) AdmitWithDecisions(ctx context.Context, scenarios []premortem.FailureScenario) ([]premortem.FailureScenario, []premortem.Decision, error) {
	out := make([]premortem.FailureScenario, len(scenarios))
	decisions := make([]premortem.Decision, len(scenarios))
	lookupErrs := make([]error, len(scenarios))

	var eg errgroup.Group
	eg.SetLimit(g.concurrency)
	for i := range scenarios {
		eg.Go(func() error {
			out[i], decisions[i], lookupErrs[i] = g.admitOne(ctx, i, scenarios[i])
			return nil
		})
	}
	// Workers never return an error.
	_ = eg.Wait()

	failed := 0
	vetoed := 0
	for i := range decisions {
		if lookupErrs[i] != nil {
			failed++
		}
		if decisions[i].Vetoed {
			vetoed++
		}
	}
	g.logger.Info("admitted batch", "scenarios", len(scenarios), "vetoed", vetoed, "lookup_failures", failed)

	if len(scenarios) > 0 && failed == len(scenarios) {
		return out, decisions, premortem.NewError(premortem.LookupUnavailable,
			fmt.Errorf("all %d reference lookups failed: %w", failed, errors.Join(lookupErrs...)), nil)
	}
	return out, decisions, nil
}

func (g *Gate) admitOne(ctx context.Context, index int, src premortem.FailureScenario) (premortem.FailureScenario, premortem.Decision, error) {
	s := src.Clone()
	d := premortem.Decision{Index: index, ScenarioID: s.ID}

	found, lookupErr := g.lookup.Lookup(ctx, s.LookupQuery())
	if lookupErr != nil {
		// Fail closed: whatever came back, the claim was not validated.
		found.Found = false
		d.LookupErr = lookupErr.Error()
		g.logger.Warn("reference lookup failed", "scenario", s.ID, "error", lookupErr)
	}
	s.AuthoritativeLookup = &found
	d.Lookup = found

	d.Result = g.validator.Validate(s)
	if !d.Result.Valid {
		s.Severity = premortem.Critical
		if !s.Vetoed(g.marker) {
			s.Title = g.marker + s.Title
		}
		d.Vetoed = true
		g.logger.Info("scenario vetoed", "scenario", s.ID, "rule", d.Result.RuleID, "reason", d.Result.OverrideReason)
	}
	return s, d, lookupErr
}

// AdmitAnalysis validates analysis and returns a copy whose scenarios went through Admit.
// A document that fails validation is rejected with a GenerationFailure error and no
// scenario is screened.
func (g *Gate) AdmitAnalysis(ctx context.Context, analysis *premortem.PreMortemAnalysis) (*premortem.PreMortemAnalysis, error) {
	a, _, err := g.AdmitAnalysisWithDecisions(ctx, analysis)
	return a, err
}

// AdmitAnalysisWithDecisions is AdmitAnalysis that also returns per-scenario decisions.
// On a LookupUnavailable error the screened copy is still returned.
func (g *Gate) AdmitAnalysisWithDecisions(ctx context.Context, analysis *premortem.PreMortemAnalysis) (*premortem.PreMortemAnalysis, []premortem.Decision, error) {
	if analysis == nil {
		return nil, nil, premortem.NewError(premortem.GenerationFailure, fmt.Errorf("analysis is nil"), nil)
	}
	c := analysis.Clone()
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	admitted, decisions, err := g.AdmitWithDecisions(ctx, c.Scenarios)
	c.Scenarios = admitted
	return &c, decisions, err
}
