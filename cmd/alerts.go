package cmd

import (
	"fmt"

	"github.com/newsradar/trendwatch/core"
	"github.com/newsradar/trendwatch/internal/contract"

	"github.com/spf13/cobra"
)

// alertsCmd shows recent anomaly alerts.
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show recent anomaly alerts.",
	Long: `Display anomaly alerts emitted by the scoring pass, newest first.

Alerts fire when a topic's z-score clears a severity threshold or its velocity
hits the zero-baseline sentinel. Repeat alerts for the same entity are
suppressed while an unacknowledged alert from the throttle window exists.

Subcommands:
  ack - Acknowledge an alert by ID

Examples:
  # Unacknowledged alerts
  trendwatch alerts

  # Include acknowledged history
  trendwatch alerts --include-acked

  # Acknowledge alert 42
  trendwatch alerts ack 42 --actor oncall`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAlerts(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run alerts query", err)
		}
	},
}

// alertsAckCmd acknowledges an alert by ID.
var alertsAckCmd = &cobra.Command{
	Use:   "ack <alert-id>",
	Short: "Acknowledge an alert by ID.",
	Long: `Mark an alert acknowledged, recording who acknowledged it and when.

Acknowledgement is one-way; acknowledging an already-acknowledged alert is a
no-op and preserves the original actor and timestamp.

Examples:
  # Acknowledge alert 42
  trendwatch alerts ack 42 --actor oncall`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteAlertAck(rootCtx, cfg, args[0]); err != nil {
			contract.LogFatal("Cannot acknowledge alert", err)
		}
		fmt.Printf("Alert %s acknowledged.\n", args[0])
	},
}
