// Package cmd defines the command-line interface for trendwatch.
package cmd

import (
	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/schema"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(rescoreCmd)
	rootCmd.AddCommand(baselinesCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(orgsCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the alerts subcommands to the parent alerts command
	alertsCmd.AddCommand(alertsAckCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-trend window counts and anomaly scores")
	rootCmd.PersistentFlags().Bool("explain", false, "Print per-trend component score breakdown")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("as-of", "", "Pin the batch clock to an RFC3339 time (replays, deterministic runs)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().Float64("similarity-threshold", contract.DefaultSimilarityThreshold, "Phrase similarity above which variants merge into one cluster")
	rootCmd.PersistentFlags().Float64("velocity-sentinel", contract.DefaultVelocitySentinel, "Velocity assigned to new activity with a zero baseline")
	rootCmd.PersistentFlags().Float64("velocity-cap", contract.DefaultVelocityCap, "Velocity cap applied inside the composite rank score")
	rootCmd.PersistentFlags().Float64("zscore-sentinel", contract.DefaultZScoreSentinel, "Z-score assigned when baseline variance is zero but activity exists")
	rootCmd.PersistentFlags().Float64("poisson-sentinel", contract.DefaultPoissonSentinel, "Poisson surprise assigned when the baseline mean is zero but activity exists")
	rootCmd.PersistentFlags().Float64("stability-cutoff", contract.DefaultStabilityCutoff, "Relative std dev below which a baseline counts as stable/evergreen")
	rootCmd.PersistentFlags().Int("min-baseline-hours", contract.DefaultMinBaselineHours, "Minimum hourly samples before a baseline can be marked stable")
	rootCmd.PersistentFlags().Float64("trending-velocity", contract.DefaultTrendingVelocity, "Velocity required (with 24h mentions) to promote candidate to trending")
	rootCmd.PersistentFlags().Int("trending-mentions-24h", contract.DefaultTrendingMentions24h, "24h mentions required alongside trending velocity")
	rootCmd.PersistentFlags().Int("trending-mentions-6h", contract.DefaultTrendingMentions6h, "6h mentions that alone promote candidate to trending")
	rootCmd.PersistentFlags().Int("breaking-mentions-1h", contract.DefaultBreakingMentions1h, "1h mentions required for breaking promotion")
	rootCmd.PersistentFlags().Float64("breaking-spike-ratio", contract.DefaultBreakingSpikeRatio, "Spike ratio required for breaking promotion")
	rootCmd.PersistentFlags().String("quiet-period", contract.DefaultQuietPeriod, "Silence before a trend starts decaying")
	rootCmd.PersistentFlags().String("retention-period", contract.DefaultRetentionPeriod, "Silence before a decaying trend goes dormant")
	rootCmd.PersistentFlags().String("mention-retention", contract.DefaultMentionRetention, "How long raw mention events stay in the buffer")
	rootCmd.PersistentFlags().String("score-ttl", contract.DefaultScoreTTL, "Time-to-live for org relevance scores")
	rootCmd.PersistentFlags().String("throttle-window", contract.DefaultThrottleWindow, "Suppression window for repeat alerts on the same entity")
	rootCmd.PersistentFlags().Int("top-k", contract.DefaultTopK, "Number of highest-volume keys each batch job rescoring pass covers")
	rootCmd.PersistentFlags().String("time-budget", contract.DefaultTimeBudget, "Wall-clock budget for one batch job")
	rootCmd.PersistentFlags().Int("breaker-threshold", contract.DefaultBreakerThreshold, "Consecutive job failures before the circuit breaker opens")
	rootCmd.PersistentFlags().String("breaker-cooldown", contract.DefaultBreakerCooldown, "Cooldown before an open circuit breaker allows another attempt")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of trendsCmd to Viper
	trendsCmd.Flags().Bool("breaking-only", false, "Restrict the feed to breaking trends")
	if err := viper.BindPFlags(trendsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding trends flags", err)
	}

	// Bind all flags of orgsCmd to Viper
	orgsCmd.Flags().String("org", "", "Organization identifier whose feed to show")
	if err := viper.BindPFlags(orgsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding orgs flags", err)
	}

	// Bind all flags of alertsCmd to Viper
	alertsCmd.Flags().Bool("include-acked", false, "Include acknowledged alerts in the feed")
	if err := viper.BindPFlags(alertsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding alerts flags", err)
	}

	// Bind all flags of alertsAckCmd to Viper
	alertsAckCmd.Flags().String("actor", "", "Identity recorded on the acknowledgement")
	if err := viper.BindPFlags(alertsAckCmd.Flags()); err != nil {
		contract.LogFatal("Error binding alerts ack flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
