package cmd

import (
	"github.com/newsradar/trendwatch/core"
	"github.com/newsradar/trendwatch/internal/contract"

	"github.com/spf13/cobra"
)

// ingestCmd loads a batch of mention events into the store.
var ingestCmd = &cobra.Command{
	Use:   "ingest <events-file>",
	Short: "Load a batch of mention events into the trend store.",
	Long: `Load mention events from a JSON file and fold them into the engine state.

Each event carries a raw topic phrase, source metadata and an occurrence time.
Ingestion:
- Normalizes topic phrases into canonical keys
- Skips events already seen (same source and timestamp)
- Recounts per-topic sliding window statistics
- Prunes buffered events older than the retention window

Re-running the same file is safe; duplicates are dropped, not double-counted.

Examples:
  # Ingest a batch file
  trendwatch ingest events.json

  # Pipe events from another tool
  producer --since 1h | trendwatch ingest -

  # Replay a historical batch with a pinned clock
  trendwatch ingest events.json --as-of 2026-08-01T12:00:00Z`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteIngest(rootCtx, cfg, args[0]); err != nil {
			contract.LogFatal("Cannot run ingest", err)
		}
	},
}
