package schema

import "time"

// PhraseCluster groups near-duplicate phrase variants under one canonical
// phrase. A member phrase belongs to exactly one cluster at a time, and
// re-clustering a stable input set reproduces the same assignment.
type PhraseCluster struct {
	CanonicalPhrase     string   `json:"canonical_phrase"`      // Display phrase chosen for the cluster
	CanonicalKey        string   `json:"canonical_key"`         // Canonical topic key of the canonical phrase
	MemberPhrases       []string `json:"member_phrases"`        // All raw phrase variants absorbed by the cluster
	MemberKeys          []string `json:"member_keys"`           // Canonical keys of all members
	SimilarityThreshold float64  `json:"similarity_threshold"`  // Threshold the cluster was built with
	TotalMentions       int      `json:"total_mentions"`        // Evidence volume across all members
	TopAuthorityScore   float64  `json:"top_authority_score"`   // Highest source authority seen in the cluster
}

// TrendEvent is the canonical, externally visible unit of the engine. One row
// exists per canonical topic key once the key has shown statistically
// significant activity; every aggregation pass updates it in place.
type TrendEvent struct {
	ID              int64                     `json:"id"`
	Key             string                    `json:"key"`             // Canonical topic key
	CanonicalLabel  string                    `json:"canonical_label"` // Cluster-chosen display phrase
	DisplayTitle    string                    `json:"display_title"`   // Label plus context for entity-only labels
	LabelQuality    LabelQuality              `json:"label_quality"`
	ContextTerms    []string                  `json:"context_terms,omitempty"`   // Top co-occurring entities (entity-only labels)
	ContextPhrases  []string                  `json:"context_phrases,omitempty"` // Verb-centered phrases from the same evidence
	ContextSummary  string                    `json:"context_summary,omitempty"`
	Velocity        float64                   `json:"velocity"`         // Growth percentage vs baseline rate
	TrueZScore      float64                   `json:"true_z_score"`     // Standardized deviation of the current hourly count
	PoissonSurprise float64                   `json:"poisson_surprise"` // -ln P(X >= current) under the baseline Poisson model
	BurstScore      float64                   `json:"burst_score"`      // Co-occurrence strength supporting the label
	SpikeRatio      float64                   `json:"spike_ratio"`      // Clamped short/long window rate ratio
	RankScore       float64                   `json:"rank_score"`       // Composite ranking score
	RankBreakdown   map[RankComponent]float64 `json:"rank_breakdown,omitempty"`
	ConfidenceScore float64                   `json:"confidence_score"` // 0-100 composite of evidence volume and diversity
	State           TrendState                `json:"state"`
	IsTrending      bool                      `json:"is_trending"`
	IsBreaking      bool                      `json:"is_breaking"`
	IsEvergreen     bool                      `json:"is_evergreen"` // Baseline classified the topic as stable/perennial
	TrendingSince   *time.Time                `json:"trending_since,omitempty"`
	Mentions1h      int                       `json:"mentions_1h"`
	Mentions6h      int                       `json:"mentions_6h"`
	Mentions24h     int                       `json:"mentions_24h"`
	SourceTypeCount int                       `json:"source_type_count"`
	FirstSeenAt     time.Time                 `json:"first_seen_at"`
	LastSeenAt      time.Time                 `json:"last_seen_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}
