package main

import (
	"encoding/json"
	"fmt"
	"io"
	log "log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sharedcode/premortem"
)

var admitFlags struct {
	strict bool
}

var admitCmd = &cobra.Command{
	Use:   "admit [file|-]",
	Short: "Screen an analysis document or a scenario array through the admission gate",
	Long: `Reads a PreMortemAnalysis JSON document, or a bare JSON array of failure
scenarios, from a file or stdin and prints the gated result with one decision
per scenario.

Usage:
  premortem admit analysis.json
  cat scenarios.json | premortem admit -
  premortem admit --strict analysis.json   # exit non-zero on any veto`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdmit,
}

func init() {
	admitCmd.Flags().BoolVar(&admitFlags.strict, "strict", false, "Exit non-zero when any scenario is vetoed or every lookup failed")
}

type admitOutput struct {
	Analysis    *premortem.PreMortemAnalysis `json:"analysis,omitempty"`
	Scenarios   []premortem.FailureScenario  `json:"scenarios,omitempty"`
	Decisions   []premortem.Decision         `json:"decisions"`
	LookupError string                       `json:"lookupError,omitempty"`
}

func runAdmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	in, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	doc, full, err := premortem.DecodeScenarios(string(in))
	if err != nil {
		return err
	}
	gt, err := buildGate(cfg)
	if err != nil {
		return err
	}

	admitted, decisions, gateErr := gt.AdmitAnalysisWithDecisions(cmd.Context(), &doc)
	if admitted == nil {
		return gateErr
	}
	out := admitOutput{Decisions: decisions}
	if full {
		out.Analysis = admitted
	} else {
		out.Scenarios = admitted.Scenarios
	}
	if gateErr != nil {
		out.LookupError = gateErr.Error()
		log.Warn("every reference lookup failed, scenarios screened fail-closed", "error", gateErr)
	}
	if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}

	vetoed := 0
	for _, d := range decisions {
		if d.Vetoed {
			vetoed++
		}
	}
	if admitFlags.strict && (vetoed > 0 || gateErr != nil) {
		return fmt.Errorf("%d of %d scenarios vetoed", vetoed, len(decisions))
	}
	return nil
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	ba, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return ba, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
