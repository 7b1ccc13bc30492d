package schema

import "time"

// OrgWatchlist is one tenant's configured watch terms. Read-only to the
// engine; maintained by an external configuration surface.
type OrgWatchlist struct {
	OrgID       string   `json:"org_id" mapstructure:"org-id"`
	Topics      []string `json:"topics" mapstructure:"topics"`
	Entities    []string `json:"entities" mapstructure:"entities"`
	Geographies []string `json:"geographies" mapstructure:"geographies"`
	Blocked     []string `json:"blocked" mapstructure:"blocked"`   // Trend keys never surfaced to this org
	Allowed     []string `json:"allowed" mapstructure:"allowed"`   // Trend keys always surfaced at high priority
}

// Explanation is the structured, reproducible record of why an org score came
// out the way it did. Downstream consumers and tests rely on its field layout
// being stable.
type Explanation struct {
	MatchedTerms       []string `json:"matched_terms"`       // Watch topics that matched, sorted
	MatchedEntities    []string `json:"matched_entities"`    // Watch entities that matched, sorted
	MatchedGeographies []string `json:"matched_geographies"` // Watch geographies that matched, sorted
	ReasonCodes        []string `json:"reason_codes"`        // Machine-readable codes, sorted (e.g. exact_topic, fuzzy_entity, allowlisted)
}

// OrgTrendScore is the derived per-tenant view of one trend. Always
// recomputable from the TrendEvent and the watchlist; past ExpiresAt it must
// be treated as absent, never served stale.
type OrgTrendScore struct {
	OrgID          string         `json:"org_id"`
	TrendKey       string         `json:"trend_key"`
	RelevanceScore float64        `json:"relevance_score"` // 0-100 match strength against the watchlist
	UrgencyScore   float64        `json:"urgency_score"`   // 0-100 from velocity and recency
	Priority       PriorityBucket `json:"priority"`
	Explanation    Explanation    `json:"explanation"`
	IsBlocked      bool           `json:"is_blocked"`
	ComputedAt     time.Time      `json:"computed_at"`
	ExpiresAt      time.Time      `json:"expires_at"`
}

// Expired reports whether the score is past its TTL at the given time.
func (s OrgTrendScore) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
