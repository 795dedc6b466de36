package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sharedcode/premortem"
	"github.com/sharedcode/premortem/generator"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the registered generators",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "premortem %s\ngenerators: %v\n", premortem.Version, generator.Names())
	},
}
