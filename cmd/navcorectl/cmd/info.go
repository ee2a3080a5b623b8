package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironspire/navcore/navworld"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "print graph/registry occupancy counters",
	Long: `Build an empty world sized per the default config and print its
graph and action-pack registry occupancy, the in-memory equivalent of
reading a navmesh binary's header and reporting its tile/poly counts.`,
	Run: runInfo,
}

func init() {
	RootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	cfg := navworld.DefaultConfig()
	w := navworld.New(cfg)
	stats := w.Graph.Stats()

	fmt.Println("navcore world")
	fmt.Printf("  graph:       nodes=%d/%d links=%d/%d\n",
		stats.NodeCount, cfg.Graph.MaxNodes, stats.LinkCount, cfg.Graph.MaxLinks)
	fmt.Printf("  actionpacks: capacity=%d\n", cfg.ActionPacks.MaxPacks)
	fmt.Printf("  search:      strategy=%s maxVisitedFull=%d maxVisitedTrivial=%d\n",
		cfg.Search.OpenListStrategy, cfg.Search.MaxVisitedFull, cfg.Search.MaxVisitedTrivial)
}
