// Package cmd is navcorectl's command tree, ported from the teacher's
// cmd/recast/cmd (detour's own CLI), repointed from "build navmeshes"
// to "exercise the navigation core": write a config, run an in-memory
// demo query, and print occupancy counters.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootCmd is the base command when navcorectl is called with no
// subcommand.
var RootCmd = &cobra.Command{
	Use:   "navcorectl",
	Short: "exercise the navcore navigation core",
	Long: `navcorectl is the command-line companion to navcore:
	- write a default runtime config (YAML),
	- run a small synthetic path-build demo in memory,
	- print graph/registry occupancy counters.`,
}

// Execute adds all child commands and runs the root command. Called
// once from main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
