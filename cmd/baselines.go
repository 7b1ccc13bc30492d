package cmd

import (
	"github.com/newsradar/trendwatch/core"
	"github.com/newsradar/trendwatch/internal/contract"

	"github.com/spf13/cobra"
)

// baselinesCmd refreshes hourly baselines from buffered mention history.
var baselinesCmd = &cobra.Command{
	Use:   "baselines",
	Short: "Recompute hourly activity baselines for the top topics.",
	Long: `Rebuild the per-topic hourly baselines that anomaly scoring compares against.

For each high-volume topic the job derives mean and standard deviation from
the trailing week of hourly mention counts. Topics with enough history and low
relative variance are marked stable (evergreen) and excluded from trending
promotion, so perennial subjects do not drown out genuine bursts.

Typically scheduled daily, before the first rescore of the day.

Examples:
  # Refresh baselines
  trendwatch baselines

  # Require two full days of history before marking stable
  trendwatch baselines --min-baseline-hours 48`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBaselines(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run baselines", err)
		}
	},
}
