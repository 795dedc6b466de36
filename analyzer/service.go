// Package analyzer runs a project description through the generator and the admission gate.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/sharedcode/premortem"
	"github.com/sharedcode/premortem/gate"
)

const (
	analysisInstruction = "Principal SRE simulation logic. Output decision-grade CTO analysis in JSON format."
	briefingInstruction = "Principal SRE tone."

	// BriefingFallback is returned by Explain when the generator produced no text.
	BriefingFallback = "Failed to generate forensic briefing."
)

// Service produces screened analyses. Store may be nil.
type Service struct {
	generator premortem.Generator
	gate      *gate.Gate
	store     premortem.ReportStore
	retries   uint64
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithStore persists every screened report.
func WithStore(s premortem.ReportStore) Option {
	return func(svc *Service) { svc.store = s }
}

// WithRetries sets how many times a transient generator failure is retried.
func WithRetries(n uint64) Option {
	return func(svc *Service) { svc.retries = n }
}

// New creates a service.
func New(g premortem.Generator, gt *gate.Gate, opts ...Option) *Service {
	s := &Service{generator: g, gate: gt, retries: 2, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Store returns the report store, or nil.
func (s *Service) Store() premortem.ReportStore { return s.store }

// Generator returns the upstream generator.
func (s *Service) Generator() premortem.Generator { return s.generator }

// Validate checks the fields the generator cannot work without and fills defaults.
func Validate(req *premortem.AnalysisRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Stack = strings.TrimSpace(req.Stack)
	if req.Title == "" || req.Stack == "" {
		return errors.New("title and stack are required")
	}
	switch req.Mode {
	case "":
		req.Mode = premortem.Standard
	case premortem.Standard, premortem.Adversarial, premortem.SystemicCollapse:
	default:
		return fmt.Errorf("unknown mode %q", req.Mode)
	}
	switch req.Tier {
	case "":
		req.Tier = premortem.TierPro
	case premortem.TierPro, premortem.TierFlash:
	default:
		return fmt.Errorf("unknown tier %q", req.Tier)
	}
	return nil
}

// Prompt formats req for the generator.
func Prompt(req premortem.AnalysisRequest) string {
	return fmt.Sprintf("PROJECT_ID: %s | MISSION: %s | ARCH_SPEC: %s | TECH_STACK: %s | SIM_MODE: %s",
		req.Title, req.Mission, req.Description, req.Stack, req.Mode)
}

// Run generates, decodes and screens an analysis for req.
func (s *Service) Run(ctx context.Context, req premortem.AnalysisRequest) (premortem.Report, error) {
	return s.RunFor(ctx, "", req)
}

// RunFor is Run on behalf of owner, recorded on the report.
// A GenerationFailure means no report was produced. A LookupUnavailable error is
// returned together with the (fully screened, fail-closed) report.
func (s *Service) RunFor(ctx context.Context, owner string, req premortem.AnalysisRequest) (premortem.Report, error) {
	if err := Validate(&req); err != nil {
		return premortem.Report{}, err
	}

	var out premortem.GenOutput
	err := premortem.RetryN(ctx, s.retries, func(ctx context.Context) error {
		var err error
		out, err = s.generator.Generate(ctx, Prompt(req), premortem.GenOptions{
			SystemInstruction: analysisInstruction,
			JSON:              true,
			Tier:              req.Tier,
		})
		return err
	}, nil)
	if err != nil {
		return premortem.Report{}, premortem.NewError(premortem.GenerationFailure, err, req.Title)
	}

	analysis, err := premortem.DecodeAnalysis(out.Text)
	if err != nil {
		log.Warn("generator returned an unusable document", "generator", s.generator.Name(), "error", err)
		return premortem.Report{}, err
	}

	admitted, decisions, gateErr := s.gate.AdmitAnalysisWithDecisions(ctx, &analysis)
	if admitted == nil {
		return premortem.Report{}, gateErr
	}

	r := premortem.Report{
		ID:        premortem.NewID(),
		CreatedAt: s.now().UTC(),
		Owner:     owner,
		Request:   req,
		Generator: s.generator.Name(),
		Analysis:  *admitted,
		Decisions: decisions,
	}
	log.Info("analysis screened", "id", r.ID, "title", req.Title, "tier", req.Tier,
		"scenarios", len(r.Analysis.Scenarios), "vetoed", r.VetoCount(), "tokens", out.TokensUsed)

	if s.store != nil {
		if err := s.store.Put(ctx, r); err != nil {
			return r, fmt.Errorf("failed to store report %s: %w", r.ID, err)
		}
	}
	return r, gateErr
}

// Explain asks the generator for a markdown forensic briefing of scenario.
func (s *Service) Explain(ctx context.Context, scenario premortem.FailureScenario, stack string) (string, error) {
	prompt := fmt.Sprintf(`Perform a Deep Forensic Briefing for the following failure scenario:
TITLE: %s
ROOT CAUSE: %s
SYSTEM STACK: %s
IMPACT: %s
Provide 1. Anatomy 2. Causality 3. Trigger Vectors 4. Prevention roadmap. Markdown format.`,
		scenario.Title, scenario.RootCause, stack, scenario.Impact)

	var out premortem.GenOutput
	err := premortem.RetryN(ctx, s.retries, func(ctx context.Context) error {
		var err error
		out, err = s.generator.Generate(ctx, prompt, premortem.GenOptions{
			SystemInstruction: briefingInstruction,
			Tier:              premortem.TierFlash,
		})
		return err
	}, nil)
	if err != nil {
		return "", premortem.NewError(premortem.GenerationFailure, err, scenario.ID)
	}
	if strings.TrimSpace(out.Text) == "" {
		return BriefingFallback, nil
	}
	return out.Text, nil
}
