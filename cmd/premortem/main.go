// Command premortem runs pre-mortem analyses and screens failure scenarios
// through the response admission gate.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sharedcode/premortem"
)

var rootFlags struct {
	configPath string
	logLevel   string
}

var rootCmd = &cobra.Command{
	Use:   "premortem",
	Short: "Generate and screen pre-mortem failure analyses",
	Long: `premortem asks a model to imagine how a project fails in production, then runs
every generated failure scenario through the admission gate: a reference lookup
followed by policy validation. Scenarios that fail policy are vetoed and forced
to Critical severity before anything is shown or stored.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		premortem.ConfigureLogging()
		if rootFlags.logLevel != "" {
			premortem.SetLogLevel(premortem.ParseLogLevel(rootFlags.logLevel))
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootFlags.configPath, "config", "c", os.Getenv("PREMORTEM_CONFIG"), "Path to premortem.yaml (default: $PREMORTEM_CONFIG)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (default: $PREMORTEM_LOG_LEVEL)")

	rootCmd.AddCommand(admitCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = premortem.Version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
