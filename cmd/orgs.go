package cmd

import (
	"github.com/newsradar/trendwatch/core"
	"github.com/newsradar/trendwatch/internal/contract"

	"github.com/spf13/cobra"
)

// orgsCmd shows the relevance-scored trend feed for one organization.
var orgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "Show the relevance-scored trend feed for an organization.",
	Long: `Display trends scored against one organization's watchlist.

Scores combine exact and fuzzy matches against the watchlist's topics,
entities and geographies, with blocked and allowed terms taking precedence.
Rows expire after the configured TTL and are never served stale.

Watchlists live in the config file:

  watchlists:
    - org-id: newsroom-west
      topics: [wildfire, evacuation]
      geographies: [california]

Examples:
  # Feed for one org
  trendwatch orgs --org newsroom-west

  # With match explanations
  trendwatch orgs --org newsroom-west --explain`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteOrgs(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run orgs query", err)
		}
	},
}
