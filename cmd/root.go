package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/internal/trendstore"
	"github.com/newsradar/trendwatch/schema"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "trendwatch",
	Short:              "Detect emerging trends and anomalies in news mention streams.",
	Long:               `Trendwatch scores topic mention streams against learned baselines to surface trending and breaking stories before they peak.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".trendwatch") // Name of config file (without extension)
		viper.SetConfigType("yaml")        // We'll use YAML format
		viper.AddConfigPath(".")           // Look in the current directory
		viper.AddConfigPath("$HOME")       // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("TRENDWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("similarity-threshold", contract.DefaultSimilarityThreshold)
	viper.SetDefault("velocity-sentinel", contract.DefaultVelocitySentinel)
	viper.SetDefault("velocity-cap", contract.DefaultVelocityCap)
	viper.SetDefault("zscore-sentinel", contract.DefaultZScoreSentinel)
	viper.SetDefault("poisson-sentinel", contract.DefaultPoissonSentinel)
	viper.SetDefault("stability-cutoff", contract.DefaultStabilityCutoff)
	viper.SetDefault("min-baseline-hours", contract.DefaultMinBaselineHours)
	viper.SetDefault("trending-velocity", contract.DefaultTrendingVelocity)
	viper.SetDefault("trending-mentions-24h", contract.DefaultTrendingMentions24h)
	viper.SetDefault("trending-mentions-6h", contract.DefaultTrendingMentions6h)
	viper.SetDefault("breaking-mentions-1h", contract.DefaultBreakingMentions1h)
	viper.SetDefault("breaking-spike-ratio", contract.DefaultBreakingSpikeRatio)
	viper.SetDefault("quiet-period", contract.DefaultQuietPeriod)
	viper.SetDefault("retention-period", contract.DefaultRetentionPeriod)
	viper.SetDefault("mention-retention", contract.DefaultMentionRetention)
	viper.SetDefault("score-ttl", contract.DefaultScoreTTL)
	viper.SetDefault("throttle-window", contract.DefaultThrottleWindow)
	viper.SetDefault("top-k", contract.DefaultTopK)
	viper.SetDefault("time-budget", contract.DefaultTimeBudget)
	viper.SetDefault("breaker-threshold", contract.DefaultBreakerThreshold)
	viper.SetDefault("breaker-cooldown", contract.DefaultBreakerCooldown)
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	// This function now populates the global 'cfg' from 'input'.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 4. Initialize persistence layer with validated config
	if err := trendstore.InitStores(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	// Handle config file
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".trendwatch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Load config file if present
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
