package cmd

import (
	"github.com/newsradar/trendwatch/core"
	"github.com/newsradar/trendwatch/internal/contract"

	"github.com/spf13/cobra"
)

// rescoreCmd recomputes scores and lifecycle states for the top-K topics.
var rescoreCmd = &cobra.Command{
	Use:   "rescore",
	Short: "Recompute trend scores and lifecycle states.",
	Long: `Run one scoring pass over the highest-volume topics.

For each topic the pass:
- Clusters near-duplicate phrase variants under one canonical key
- Compares current windows against the learned hourly baseline
- Computes velocity, z-score, Poisson surprise and the composite rank score
- Advances the lifecycle state machine (candidate, trending, breaking, decaying)
- Refreshes per-organization relevance scores for trending topics
- Emits anomaly alerts, throttled per entity

The pass is bounded by --top-k and --time-budget so a flooded ingest cannot
stall the pipeline. Repeated failures open a circuit breaker.

Examples:
  # Score the default top 500 topics
  trendwatch rescore

  # Tighter pass for frequent cron schedules
  trendwatch rescore --top-k 100 --time-budget 30s`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRescore(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run rescore", err)
		}
	},
}
