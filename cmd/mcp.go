package cmd

import (
	"github.com/newsradar/trendwatch/internal/mcp"
	"github.com/newsradar/trendwatch/internal/trendstore"

	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Trendwatch MCP server",
	Long:  `Launch an MCP server that allows AI agents to query trends, org feeds, alerts and baselines via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Keep stdio clean for the protocol; all setup output goes to stderr.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, trendstore.Manager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
