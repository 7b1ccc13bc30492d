// Package schema has configs, models and shared constants for all parts of trendwatch.
package schema

import "time"

// MentionEvent is one observation of a topic being referenced by an external
// source. Events arrive pre-annotated (topic extraction and sentiment are done
// upstream); the engine only consumes them. Events with identical
// (SourceID, OccurredAt, TopicKey) triples are duplicates and must not be
// double counted; one document may legitimately mention several topics at the
// same instant, and those stay distinct events.
type MentionEvent struct {
	SourceType    SourceType `json:"source_type"`              // news, social or entity
	RawTopic      string     `json:"raw_topic"`                // Free-text topic label as extracted upstream
	TopicKey      string     `json:"topic_key,omitempty"`      // Canonical key; derived by the engine at ingest, not supplied upstream
	OccurredAt    time.Time  `json:"occurred_at"`              // When the mention happened at the source
	Sentiment     *float64   `json:"sentiment,omitempty"`      // Annotated sentiment in [-1, 1], nil when unknown
	SourceTier    int        `json:"source_tier"`              // Source authority tier (1 = most authoritative)
	SourceID      string     `json:"source_id"`                // Opaque source document identifier
	IsEventPhrase bool       `json:"is_event_phrase,omitempty"` // Upstream extraction marked the topic as a full event phrase
}

// AuthorityScore maps a source tier to an evidence weight. Tier 1 sources
// carry full weight; lower tiers decay toward a floor.
func (m MentionEvent) AuthorityScore() float64 {
	switch {
	case m.SourceTier <= 1:
		return 1.0
	case m.SourceTier == 2:
		return 0.7
	case m.SourceTier == 3:
		return 0.5
	default:
		return 0.3
	}
}

// WindowStats holds rolling mention counts for one canonical topic key across
// the fixed aggregation windows. Counts reflect exact windowed event membership
// and only decrease by window expiry.
type WindowStats struct {
	Key           string             `json:"key"`            // Canonical topic key
	Mentions1h    int                `json:"mentions_1h"`    // Events in the last hour
	Mentions6h    int                `json:"mentions_6h"`    // Events in the last 6 hours
	Mentions24h   int                `json:"mentions_24h"`   // Events in the last 24 hours
	Mentions7d    int                `json:"mentions_7d"`    // Events in the last 7 days
	LastSeenAt    time.Time          `json:"last_seen_at"`   // Most recent event timestamp
	SentimentAvg  float64            `json:"sentiment_avg"`  // Mean annotated sentiment over 24h (0 when none)
	PositiveCount int                `json:"positive_count"` // 24h events with sentiment > 0.2
	NeutralCount  int                `json:"neutral_count"`  // 24h events with sentiment in [-0.2, 0.2]
	NegativeCount int                `json:"negative_count"` // 24h events with sentiment < -0.2
	SourceTypes   map[SourceType]int `json:"source_types"`   // 24h event counts per source type
	UpdatedAt     time.Time          `json:"updated_at"`     // When this row was last recomputed
}

// SourceTypeCount returns the number of distinct source types with at least
// one event in the 24h window.
func (w WindowStats) SourceTypeCount() int {
	n := 0
	for _, c := range w.SourceTypes {
		if c > 0 {
			n++
		}
	}
	return n
}

// TrendBaseline is the expected hourly mention rate for one canonical key,
// derived daily from trailing hourly history. IsStable marks evergreen topics
// whose rate barely varies and which are therefore never newsworthy.
type TrendBaseline struct {
	Key            string    `json:"key"`              // Canonical topic key
	Bucket         string    `json:"bucket"`           // Calendar day the baseline was computed for (YYYY-MM-DD)
	MeanHourly     float64   `json:"mean_hourly"`      // Arithmetic mean of hourly counts
	StdDevHourly   float64   `json:"std_dev_hourly"`   // Sample standard deviation of hourly counts
	RelativeStdDev float64   `json:"relative_std_dev"` // StdDev / Mean, defined as 0 when mean is 0
	MinHourly      float64   `json:"min_hourly"`       // Lowest hourly count in the history window
	MaxHourly      float64   `json:"max_hourly"`       // Highest hourly count in the history window
	SampleHours    int       `json:"sample_hours"`     // Number of hourly readings behind the baseline
	IsStable       bool      `json:"is_stable"`        // RelativeStdDev < stability cutoff with sufficient history
	ComputedAt     time.Time `json:"computed_at"`
}
