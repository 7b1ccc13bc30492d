package contract

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/newsradar/trendwatch/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 1
	DefaultTopK        = 500

	DefaultSimilarityThreshold = 0.85
	DefaultVelocitySentinel    = 500.0
	DefaultVelocityCap         = 200.0
	DefaultZScoreSentinel      = 10.0
	DefaultPoissonSentinel     = 10.0
	DefaultPoissonMax          = 50.0
	DefaultStabilityCutoff     = 0.4
	DefaultMinBaselineHours    = 24

	DefaultTrendingVelocity    = 50.0
	DefaultTrendingMentions24h = 3
	DefaultTrendingMentions6h  = 5
	DefaultBreakingMentions1h  = 3
	DefaultBreakingSpikeRatio  = 3.0

	DefaultBreakerThreshold = 5
)

// Default durations, expressed as ParseDuration strings so they can be echoed
// back as config defaults.
const (
	DefaultQuietPeriod      = "48h"
	DefaultRetentionPeriod  = "168h" // decaying -> dormant archival window
	DefaultMentionRetention = "168h" // bounded mention buffer, 7 days
	DefaultScoreTTL         = "24h"
	DefaultThrottleWindow   = "4h"
	DefaultTimeBudget       = "2m"
	DefaultBreakerCooldown  = "30m"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DefaultBlocklist holds generic/perennial terms that are never surfaced as
// trends regardless of computed velocity.
var DefaultBlocklist = []string{
	"gaza", "israel", "ukraine", "economy", "inflation", "election",
	"congress", "senate", "white house", "supreme court", "climate change",
}

// DefaultAlertThresholds maps severity tiers to the minimum |z-score| that
// earns them.
func DefaultAlertThresholds() map[schema.Severity]float64 {
	return map[schema.Severity]float64{
		schema.LowSeverity:      2.0,
		schema.MediumSeverity:   3.0,
		schema.HighSeverity:     4.0,
		schema.CriticalSeverity: 6.0,
	}
}

// RankWeightsRaw holds composite-score weight overrides from the YAML config
// file. Pointers distinguish "absent" from an explicit zero.
type RankWeightsRaw struct {
	Spike     *float64 `mapstructure:"spike"`
	Mentions  *float64 `mapstructure:"mentions_1h"`
	Velocity  *float64 `mapstructure:"velocity"`
	Diversity *float64 `mapstructure:"diversity"`
}

// WatchlistRaw is one tenant watchlist entry as read from the config file.
type WatchlistRaw struct {
	OrgID       string   `mapstructure:"org-id"`
	Topics      []string `mapstructure:"topics"`
	Entities    []string `mapstructure:"entities"`
	Geographies []string `mapstructure:"geographies"`
	Blocked     []string `mapstructure:"blocked"`
	Allowed     []string `mapstructure:"allowed"`
}

// ConfigRawInput holds the raw, unvalidated configuration from all sources
// (file, env, flags). Viper unmarshals into this struct; ProcessAndValidate
// turns it into a Config.
type ConfigRawInput struct {
	Limit      int    `mapstructure:"limit"`
	Precision  int    `mapstructure:"precision"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Detail     bool   `mapstructure:"detail"`
	Explain    bool   `mapstructure:"explain"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	AsOf       string `mapstructure:"as-of"`

	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`

	SimilarityThreshold float64 `mapstructure:"similarity-threshold"`
	VelocitySentinel    float64 `mapstructure:"velocity-sentinel"`
	VelocityCap         float64 `mapstructure:"velocity-cap"`
	ZScoreSentinel      float64 `mapstructure:"zscore-sentinel"`
	PoissonSentinel     float64 `mapstructure:"poisson-sentinel"`
	StabilityCutoff     float64 `mapstructure:"stability-cutoff"`
	MinBaselineHours    int     `mapstructure:"min-baseline-hours"`

	TrendingVelocity    float64 `mapstructure:"trending-velocity"`
	TrendingMentions24h int     `mapstructure:"trending-mentions-24h"`
	TrendingMentions6h  int     `mapstructure:"trending-mentions-6h"`
	BreakingMentions1h  int     `mapstructure:"breaking-mentions-1h"`
	BreakingSpikeRatio  float64 `mapstructure:"breaking-spike-ratio"`

	QuietPeriod      string `mapstructure:"quiet-period"`
	RetentionPeriod  string `mapstructure:"retention-period"`
	MentionRetention string `mapstructure:"mention-retention"`
	ScoreTTL         string `mapstructure:"score-ttl"`
	ThrottleWindow   string `mapstructure:"throttle-window"`

	TopK             int    `mapstructure:"top-k"`
	TimeBudget       string `mapstructure:"time-budget"`
	BreakerThreshold int    `mapstructure:"breaker-threshold"`
	BreakerCooldown  string `mapstructure:"breaker-cooldown"`

	Weights    *RankWeightsRaw `mapstructure:"weights"`
	Blocklist  []string        `mapstructure:"blocklist"`
	Watchlists []WatchlistRaw  `mapstructure:"watchlists"`

	Org          string `mapstructure:"org"`
	Actor        string `mapstructure:"actor"`
	IncludeAcked bool   `mapstructure:"include-acked"`
	BreakingOnly bool   `mapstructure:"breaking-only"`
}

// Config holds the final, validated runtime configuration.
type Config struct {
	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Detail      bool
	Explain     bool
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	// BatchTime is the wall-clock reference for the invocation. Normally
	// time.Now(); --as-of pins it for replaying historical batches and for
	// deterministic tests.
	BatchTime time.Time

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	// Detection tunables.
	SimilarityThreshold float64
	VelocitySentinel    float64
	VelocityCap         float64
	ZScoreSentinel      float64
	PoissonSentinel     float64
	PoissonMax          float64
	StabilityCutoff     float64
	MinBaselineHours    int

	// Lifecycle thresholds.
	TrendingVelocity    float64
	TrendingMentions24h int
	TrendingMentions6h  int
	BreakingMentions1h  int
	BreakingSpikeRatio  float64

	QuietPeriod      time.Duration
	RetentionPeriod  time.Duration
	MentionRetention time.Duration
	ScoreTTL         time.Duration
	ThrottleWindow   time.Duration

	// Job bounding.
	TopK             int
	TimeBudget       time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration

	// RankWeights is the final weights map, computed from defaults plus
	// config overrides.
	RankWeights map[schema.RankComponent]float64

	// AlertThresholds maps severity tiers to minimum |z-score|.
	AlertThresholds map[schema.Severity]float64

	Blocklist  []string
	Watchlists []schema.OrgWatchlist

	// Per-command inputs.
	Org          string
	Actor        string
	IncludeAcked bool
	BreakingOnly bool
}

// Clone returns a copy of the config safe for per-request mutation (used by
// the MCP handlers). Maps and slices are copied shallowly but freshly.
func (c *Config) Clone() *Config {
	clone := *c
	clone.RankWeights = make(map[schema.RankComponent]float64, len(c.RankWeights))
	maps.Copy(clone.RankWeights, c.RankWeights)
	clone.AlertThresholds = make(map[schema.Severity]float64, len(c.AlertThresholds))
	maps.Copy(clone.AlertThresholds, c.AlertThresholds)
	clone.Blocklist = append([]string(nil), c.Blocklist...)
	clone.Watchlists = append([]schema.OrgWatchlist(nil), c.Watchlists...)
	return &clone
}

// WatchlistFor returns the watchlist for an org, or nil when the org has none.
func (c *Config) WatchlistFor(orgID string) *schema.OrgWatchlist {
	for i := range c.Watchlists {
		if c.Watchlists[i].OrgID == orgID {
			return &c.Watchlists[i]
		}
	}
	return nil
}

// ValidateDatabaseConnectionString validates a connection string for the
// given backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") && !strings.HasPrefix(connStr, "postgres://") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter or use a postgres:// URL")
		}
	}
	return nil
}

// parseDurationField parses a duration string with a field name for errors.
func parseDurationField(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive (received %s)", name, value)
	}
	return d, nil
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// --- 1. Result limit / precision / output ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format %q. must be text, csv, json or parquet", input.Output)
	}
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Explain = input.Explain
	cfg.Width = input.Width

	useColors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid color setting: %w", err)
	}
	cfg.UseColors = useColors

	// --- 2. Batch clock ---
	cfg.BatchTime = time.Now().UTC()
	if input.AsOf != "" {
		t, err := time.Parse(time.RFC3339, input.AsOf)
		if err != nil {
			return fmt.Errorf("invalid as-of time %q. must be RFC3339: %w", input.AsOf, err)
		}
		cfg.BatchTime = t.UTC()
	}

	// --- 3. Store backend ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidStoreBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend %q. must be sqlite, mysql, postgresql or none", input.StoreBackend)
	}
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, input.StoreDBConnect); err != nil {
		return err
	}
	cfg.StoreDBConnect = input.StoreDBConnect

	// --- 4. Detection tunables ---
	if input.SimilarityThreshold <= 0 || input.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity-threshold must be in (0, 1] (received %v)", input.SimilarityThreshold)
	}
	cfg.SimilarityThreshold = input.SimilarityThreshold

	if input.VelocitySentinel <= 0 {
		return fmt.Errorf("velocity-sentinel must be positive (received %v)", input.VelocitySentinel)
	}
	cfg.VelocitySentinel = input.VelocitySentinel

	if input.VelocityCap <= 0 {
		return fmt.Errorf("velocity-cap must be positive (received %v)", input.VelocityCap)
	}
	cfg.VelocityCap = input.VelocityCap

	if input.ZScoreSentinel <= 0 {
		return fmt.Errorf("zscore-sentinel must be positive (received %v)", input.ZScoreSentinel)
	}
	cfg.ZScoreSentinel = input.ZScoreSentinel

	if input.PoissonSentinel <= 0 {
		return fmt.Errorf("poisson-sentinel must be positive (received %v)", input.PoissonSentinel)
	}
	cfg.PoissonSentinel = input.PoissonSentinel
	cfg.PoissonMax = DefaultPoissonMax

	if input.StabilityCutoff <= 0 || input.StabilityCutoff >= 1 {
		return fmt.Errorf("stability-cutoff must be in (0, 1) (received %v)", input.StabilityCutoff)
	}
	cfg.StabilityCutoff = input.StabilityCutoff

	if input.MinBaselineHours < 1 {
		return fmt.Errorf("min-baseline-hours must be at least 1 (received %d)", input.MinBaselineHours)
	}
	cfg.MinBaselineHours = input.MinBaselineHours

	// --- 5. Lifecycle thresholds ---
	cfg.TrendingVelocity = input.TrendingVelocity
	cfg.TrendingMentions24h = input.TrendingMentions24h
	cfg.TrendingMentions6h = input.TrendingMentions6h
	cfg.BreakingMentions1h = input.BreakingMentions1h
	cfg.BreakingSpikeRatio = input.BreakingSpikeRatio

	// --- 6. Durations ---
	if cfg.QuietPeriod, err = parseDurationField("quiet-period", input.QuietPeriod); err != nil {
		return err
	}
	if cfg.RetentionPeriod, err = parseDurationField("retention-period", input.RetentionPeriod); err != nil {
		return err
	}
	if cfg.MentionRetention, err = parseDurationField("mention-retention", input.MentionRetention); err != nil {
		return err
	}
	if cfg.ScoreTTL, err = parseDurationField("score-ttl", input.ScoreTTL); err != nil {
		return err
	}
	if cfg.ThrottleWindow, err = parseDurationField("throttle-window", input.ThrottleWindow); err != nil {
		return err
	}
	if cfg.TimeBudget, err = parseDurationField("time-budget", input.TimeBudget); err != nil {
		return err
	}
	if cfg.BreakerCooldown, err = parseDurationField("breaker-cooldown", input.BreakerCooldown); err != nil {
		return err
	}

	// --- 7. Job bounding ---
	if input.TopK <= 0 {
		return fmt.Errorf("top-k must be positive (received %d)", input.TopK)
	}
	cfg.TopK = input.TopK

	if input.BreakerThreshold <= 0 {
		return fmt.Errorf("breaker-threshold must be positive (received %d)", input.BreakerThreshold)
	}
	cfg.BreakerThreshold = input.BreakerThreshold

	// --- 8. Rank weights: defaults + overrides ---
	weights := schema.GetDefaultRankWeights()
	if input.Weights != nil {
		if input.Weights.Spike != nil {
			weights[schema.RankSpike] = *input.Weights.Spike
		}
		if input.Weights.Mentions != nil {
			weights[schema.RankMentions] = *input.Weights.Mentions
		}
		if input.Weights.Velocity != nil {
			weights[schema.RankVelocity] = *input.Weights.Velocity
		}
		if input.Weights.Diversity != nil {
			weights[schema.RankDiversity] = *input.Weights.Diversity
		}
	}
	for component, w := range weights {
		if w < 0 {
			return fmt.Errorf("weight for %s cannot be negative (received %v)", component, w)
		}
	}
	cfg.RankWeights = weights

	cfg.AlertThresholds = DefaultAlertThresholds()

	// --- 9. Blocklist and watchlists ---
	cfg.Blocklist = DefaultBlocklist
	for _, term := range input.Blocklist {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			cfg.Blocklist = append(cfg.Blocklist, term)
		}
	}

	cfg.Watchlists = cfg.Watchlists[:0]
	seen := make(map[string]bool)
	for _, raw := range input.Watchlists {
		if raw.OrgID == "" {
			return fmt.Errorf("watchlist entry is missing org-id")
		}
		if seen[raw.OrgID] {
			return fmt.Errorf("duplicate watchlist for org %q", raw.OrgID)
		}
		seen[raw.OrgID] = true
		cfg.Watchlists = append(cfg.Watchlists, schema.OrgWatchlist{
			OrgID:       raw.OrgID,
			Topics:      raw.Topics,
			Entities:    raw.Entities,
			Geographies: raw.Geographies,
			Blocked:     raw.Blocked,
			Allowed:     raw.Allowed,
		})
	}

	// --- 10. Per-command passthroughs ---
	cfg.Org = input.Org
	cfg.Actor = input.Actor
	cfg.IncludeAcked = input.IncludeAcked
	cfg.BreakingOnly = input.BreakingOnly

	return nil
}
