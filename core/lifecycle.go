package core

import (
	"strings"
	"time"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/schema"
)

// LifecycleInput is everything the state machine reads for one key.
type LifecycleInput struct {
	PrevState       schema.TrendState // DormantState when the key has no stored trend
	LastSeenAt      time.Time
	Mentions1h      int
	Mentions6h      int
	Mentions24h     int
	SourceTypeCount int
	Velocity        float64
	SpikeRatio      float64
	IsEvergreen     bool // Baseline classified the topic stable
	IsBlocklisted   bool
}

// LifecycleDecision is the state machine's output. TrendingSince handling is
// expressed as intents so the store can apply its conditional write: StampSince
// maps to a set-only-if-null update and ClearSince to the dormant reset.
type LifecycleDecision struct {
	State      schema.TrendState
	IsTrending bool
	IsBreaking bool
	StampSince bool
	ClearSince bool
}

// Advance runs one lifecycle evaluation for a key. Decay is driven purely by
// time since last evidence: past the quiet period a trend decays whatever its
// scores say, and past the retention period it goes dormant and frees its
// trendingSince for the next cycle. While evidence is fresh the trend holds
// its state unless it qualifies upward; demotion below trending only ever
// happens through decay, which gives the feed its hysteresis.
func Advance(cfg *contract.Config, in LifecycleInput) LifecycleDecision {
	sinceLastSeen := cfg.BatchTime.Sub(in.LastSeenAt)

	if sinceLastSeen >= cfg.RetentionPeriod {
		return LifecycleDecision{State: schema.DormantState, ClearSince: true}
	}
	if sinceLastSeen >= cfg.QuietPeriod {
		return LifecycleDecision{State: schema.DecayingState}
	}

	state := in.PrevState
	if state == "" || state == schema.DormantState {
		// First observed mention promotes the key out of dormancy.
		state = schema.CandidateState
	}
	if state == schema.DecayingState {
		// Fresh evidence re-opens the cycle without touching trendingSince;
		// the stamp resets only after a full pass through dormant.
		state = schema.CandidateState
	}

	decision := LifecycleDecision{}

	if state == schema.CandidateState && qualifiesTrending(cfg, in) {
		state = schema.TrendingState
		decision.StampSince = true
	}

	if state == schema.TrendingState || state == schema.BreakingState {
		if qualifiesBreaking(cfg, in) {
			state = schema.BreakingState
		} else if state == schema.BreakingState {
			// The burst subsided but the trend is still alive.
			state = schema.TrendingState
		}
	}

	decision.State = state
	decision.IsTrending = state == schema.TrendingState || state == schema.BreakingState
	decision.IsBreaking = state == schema.BreakingState
	return decision
}

// qualifiesTrending applies the promotion thresholds plus the evergreen and
// blocklist gates. A stable perennial topic or a blocklisted term never
// trends, no matter what velocity it posts.
func qualifiesTrending(cfg *contract.Config, in LifecycleInput) bool {
	if in.IsEvergreen || in.IsBlocklisted {
		return false
	}
	if in.Velocity > cfg.TrendingVelocity && in.Mentions24h >= cfg.TrendingMentions24h {
		return true
	}
	return in.Mentions6h >= cfg.TrendingMentions6h
}

// qualifiesBreaking requires cross-source corroboration on top of a sharp
// short-window burst.
func qualifiesBreaking(cfg *contract.Config, in LifecycleInput) bool {
	return in.SourceTypeCount >= 2 &&
		in.Mentions1h >= cfg.BreakingMentions1h &&
		in.SpikeRatio >= cfg.BreakingSpikeRatio
}

// IsBlocklisted reports whether a canonical key is on the evergreen blocklist.
// Matching is by whole key, case-insensitive.
func IsBlocklisted(blocklist []string, key string) bool {
	for _, term := range blocklist {
		if strings.EqualFold(term, key) {
			return true
		}
	}
	return false
}
