package schema

// Custom string types for type safety.
type (
	// SourceType identifies the connector family a mention came from.
	SourceType string

	// TrendState represents a trend's lifecycle state.
	TrendState string

	// LabelQuality classifies how informative a trend's display label is.
	LabelQuality string

	// AlertType identifies the anomaly family an alert belongs to.
	AlertType string

	// Severity represents an alert's severity tier.
	Severity string

	// PriorityBucket buckets an org relevance score.
	PriorityBucket string

	// RankComponent represents keys used in rank score breakdowns.
	RankComponent string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the trend store.
	DatabaseBackend string
)

// All source types supported.
const (
	NewsSource   SourceType = "news"
	SocialSource SourceType = "social"
	EntitySource SourceType = "entity"
)

// All lifecycle states, in nominal progression order.
const (
	DormantState   TrendState = "dormant"
	CandidateState TrendState = "candidate"
	TrendingState  TrendState = "trending"
	BreakingState  TrendState = "breaking"
	DecayingState  TrendState = "decaying"
)

// All label quality classes.
const (
	EventPhraseLabel LabelQuality = "event_phrase"       // Full event description ("X announces Y")
	EntityOnlyLabel  LabelQuality = "entity_only"        // Bare entity name, needs supporting context
	FallbackLabel    LabelQuality = "fallback_generated" // Neither; machine-assembled label
)

// All alert types emitted by the anomaly emitter.
const (
	MentionSpikeAlert  AlertType = "mention_spike"  // Hourly count far above baseline (z-score)
	VelocitySurgeAlert AlertType = "velocity_surge" // Growth rate past the velocity sentinel
)

// All alert severity tiers, lowest to highest.
const (
	LowSeverity      Severity = "low"
	MediumSeverity   Severity = "medium"
	HighSeverity     Severity = "high"
	CriticalSeverity Severity = "critical"
)

// All org priority buckets.
const (
	HighPriority   PriorityBucket = "high"
	MediumPriority PriorityBucket = "medium"
	LowPriority    PriorityBucket = "low"
)

// Rank components used in the composite score breakdown.
const (
	RankSpike     RankComponent = "spike"       // Clamped short/long window ratio
	RankMentions  RankComponent = "mentions_1h" // Raw 1h mention count
	RankVelocity  RankComponent = "velocity"    // Capped growth percentage vs baseline
	RankDiversity RankComponent = "diversity"   // Cross-source corroboration bonus
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllTrendStates lists every lifecycle state in progression order.
var AllTrendStates = []TrendState{DormantState, CandidateState, TrendingState, BreakingState, DecayingState}

// ValidSourceTypes lists all valid mention source types.
var ValidSourceTypes = map[SourceType]struct{}{
	NewsSource:   {},
	SocialSource: {},
	EntitySource: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidStoreBackends lists all valid store backends.
var ValidStoreBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// AllSeverities lists severity tiers from lowest to highest.
var AllSeverities = []Severity{LowSeverity, MediumSeverity, HighSeverity, CriticalSeverity}

// GetDefaultRankWeights returns the default weight map for the composite rank
// score. The values are empirically tuned deployment defaults, not physical
// constants; each can be overridden through configuration.
func GetDefaultRankWeights() map[RankComponent]float64 {
	return map[RankComponent]float64{
		RankSpike:     2.0,
		RankMentions:  1.5,
		RankVelocity:  0.3,
		RankDiversity: 5.0,
	}
}
