package main

import (
	"fmt"
	log "log/slog"

	"github.com/spf13/cobra"

	"github.com/sharedcode/premortem"
	"github.com/sharedcode/premortem/report"
)

var analyzeFlags struct {
	title       string
	stack       string
	mission     string
	description string
	mode        string
	tier        string
	generator   string
	format      string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Generate a pre-mortem analysis and screen it through the admission gate",
	Long: `Sends the project description to the configured generator, decodes the
returned analysis, screens every scenario and stores the report.

Usage:
  premortem analyze --title "Nexus Core" --stack "Go, Postgres, Redis"
  premortem analyze --title Demo --stack Go --generator mock --format text`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.title, "title", "", "Project name (required)")
	f.StringVar(&analyzeFlags.stack, "stack", "", "Technology stack (required)")
	f.StringVar(&analyzeFlags.mission, "mission", "", "What the system is for")
	f.StringVar(&analyzeFlags.description, "description", "", "Architecture description")
	f.StringVar(&analyzeFlags.mode, "mode", string(premortem.Standard), "Standard, Adversarial or Systemic-Collapse")
	f.StringVar(&analyzeFlags.tier, "tier", string(premortem.TierPro), "PRO or FLASH")
	f.StringVar(&analyzeFlags.generator, "generator", "", "Generator name overriding the config (gemini, ollama, mock)")
	f.StringVar(&analyzeFlags.format, "format", "json", "Output format: json or text")
	_ = analyzeCmd.MarkFlagRequired("title")
	_ = analyzeCmd.MarkFlagRequired("stack")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if analyzeFlags.format != "json" && analyzeFlags.format != "text" {
		return fmt.Errorf("unknown format %q, use json or text", analyzeFlags.format)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, _, err := buildService(cmd.Context(), cfg, analyzeFlags.generator)
	if err != nil {
		return err
	}

	r, err := svc.Run(cmd.Context(), premortem.AnalysisRequest{
		Title:       analyzeFlags.title,
		Stack:       analyzeFlags.stack,
		Mission:     analyzeFlags.mission,
		Description: analyzeFlags.description,
		Mode:        premortem.AdversarialModel(analyzeFlags.mode),
		Tier:        premortem.Tier(analyzeFlags.tier),
	})
	if r.ID == "" {
		return err
	}
	if err != nil {
		log.Warn("report produced with errors", "id", r.ID, "error", err)
	}

	if analyzeFlags.format == "text" {
		fmt.Fprint(cmd.OutOrStdout(), report.PlainText(r))
		fmt.Fprintf(cmd.OutOrStdout(), "Share: %s\nDossier: %s\n", report.ShareLink(cfg.Server.BaseURL, r.ID), report.DossierFileName(r.Request.Title))
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), r)
}
