// Package report renders screened analyses for sharing and export.
package report

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/sharedcode/premortem"
)

// PlainText returns the share summary of r: a header with the verdict and scores,
// then one line per scenario. Vetoed scenarios are flagged.
func PlainText(r premortem.Report) string {
	a := r.Analysis
	var sb strings.Builder
	fmt.Fprintf(&sb, "PRE-MORTEM: %s\n", r.Request.Title)
	if r.Request.Stack != "" {
		fmt.Fprintf(&sb, "Stack: %s\n", r.Request.Stack)
	}
	fmt.Fprintf(&sb, "Verdict: %s\n", a.ForensicVerdict)
	fmt.Fprintf(&sb, "Overall risk: %.0f/100 | Confidence: %.0f%% | Decision: %s\n",
		a.OverallRiskScore, confidencePercent(a.SimulationConfidence), decision(a.ExecutiveMetrics.DecisionStatus))
	fmt.Fprintf(&sb, "Scenarios: %d (%d vetoed)\n", len(a.Scenarios), r.VetoCount())
	for i, s := range a.Scenarios {
		flag := ""
		if i < len(r.Decisions) && r.Decisions[i].Vetoed {
			flag = " [VETOED: " + r.Decisions[i].Result.OverrideReason + "]"
		}
		fmt.Fprintf(&sb, "%d. [%s] %s (p=%.2f)%s\n", i+1, s.Severity, s.Title, s.Probability, flag)
	}
	return sb.String()
}

// SimulationConfidence arrives either as a fraction or as a percentage.
func confidencePercent(c float64) float64 {
	if c <= 1 {
		return c * 100
	}
	return c
}

func decision(d premortem.DecisionStatus) string {
	if d == "" {
		return "N/A"
	}
	return string(d)
}

// DossierFileName returns the export file name for title, e.g. "Nexus Core" ->
// "NEXUS_DOSSIER_NEXUS_CORE.pdf".
// Each whitespace run becomes one underscore, leading and trailing runs included.
func DossierFileName(title string) string {
	name := whitespaceRun.ReplaceAllString(strings.ToUpper(title), "_")
	return fmt.Sprintf("NEXUS_DOSSIER_%s.pdf", name)
}

var whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)

// ShareLink returns the REST location of the report with id.
func ShareLink(baseURL, id string) string {
	return fmt.Sprintf("%s/api/v1/analyses/%s", strings.TrimRight(baseURL, "/"), url.PathEscape(id))
}
