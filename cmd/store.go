package cmd

import (
	"fmt"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/internal/trendstore"
	"github.com/newsradar/trendwatch/schema"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize persistence with the loaded config
	if err := trendstore.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeCmd focused on store management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by scoring commands. This avoids detection config
// processing for simple maintenance operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the trend store (persistence backend)",
	Long: `Manage the store that holds all engine-owned state.

The store keeps the bounded mention buffer, window statistics, baselines,
trend events, org scores, alerts and job health records.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics and connection info
  clear   - Remove all engine state
  export  - Export trend events and alerts to parquet files
  migrate - Run schema migrations

Examples:
  # Check store status
  trendwatch store status

  # Reset everything
  trendwatch store clear`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show detailed information about the trend store.

Displays:
- Backend type and connection status
- Row counts per table
- Oldest and newest buffered mention timestamps

Examples:
  # Check store status
  trendwatch store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := trendstore.Manager.TrendStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		trendstore.PrintStoreStatus(status)
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all engine state from the store",
	Long: `Delete all engine-owned state from the configured backend.

Use this when:
- Starting detection from a clean slate
- The store may be corrupted
- Switching between unrelated mention streams

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the engine tables

Examples:
  # Clear SQLite store (default)
  trendwatch store clear

  # Clear MySQL store (set connection string via env variable)
  TRENDWATCH_STORE_BACKEND=mysql TRENDWATCH_STORE_DB_CONNECT="..." trendwatch store clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := trendstore.ClearStore(cfg.StoreBackend, contract.GetStoreDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeExportCmd exports store contents to parquet.
var storeExportCmd = &cobra.Command{
	Use:   "export <output-prefix>",
	Short: "Export trend events and alerts to parquet files",
	Long: `Write the current trend events and alert history to parquet files.

Two files are written:
  <output-prefix>.trend_events.parquet
  <output-prefix>.alerts.parquet

Examples:
  # Export for offline analysis
  trendwatch store export snapshots/today`,
	Args:    cobra.ExactArgs(1),
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := trendstore.ExecuteStoreExport(args[0]); err != nil {
			contract.LogFatal("Failed to export store", err)
		}
	},
}

// storeMigrateCmd runs schema migrations.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run store schema migrations",
	Long: `Apply or roll back schema migrations for the trend store.

By default migrates to the latest version. Use --target-version to pin a
specific version, or 0 to roll everything back.

Examples:
  # Migrate to latest
  trendwatch store migrate

  # Roll back everything
  trendwatch store migrate --target-version 0`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := trendstore.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println("Migrations completed successfully.")
	},
}
