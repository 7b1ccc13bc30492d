package cmd

import (
	"github.com/newsradar/trendwatch/core"
	"github.com/newsradar/trendwatch/internal/contract"

	"github.com/spf13/cobra"
)

// trendsCmd shows the ranked feed of currently trending topics.
var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show the ranked feed of currently trending topics.",
	Long: `Display trending topics ordered by composite rank score.

Each row carries the topic's display title, lifecycle state and rank score.
Add --detail for window counts and anomaly scores, --explain for the
per-component score breakdown.

Examples:
  # Top trends as a table
  trendwatch trends

  # Only cross-source corroborated bursts
  trendwatch trends --breaking-only

  # Full diagnostic view
  trendwatch trends --detail --explain

  # Export for downstream processing
  trendwatch trends --output json --output-file trends.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTrends(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run trends query", err)
		}
	},
}
