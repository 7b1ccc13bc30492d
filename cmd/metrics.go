package cmd

import (
	"github.com/newsradar/trendwatch/core"
	"github.com/newsradar/trendwatch/internal/contract"

	"github.com/spf13/cobra"
)

// metricsCmd shows scoring configuration and batch job health.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show active scoring weights and batch job health.",
	Long: `Display the active composite score configuration and per-job health.

Shows:
- The rank score formula with the weights currently in effect
- Last run time, duration and items processed for each batch job
- Failure streaks and circuit breaker state

Use this to verify weight overrides from the config file and to monitor
scheduled ingest/rescore/baselines jobs.

Examples:
  # Human-readable summary
  trendwatch metrics

  # Machine-readable for a monitoring collector
  trendwatch metrics --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run metrics query", err)
		}
	},
}
