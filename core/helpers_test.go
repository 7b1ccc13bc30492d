package core

import (
	"time"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/schema"
)

// batchTime is the pinned clock used across core tests.
var batchTime = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

// testConfig returns a validated-equivalent config with every tunable at its
// default and the batch clock pinned.
func testConfig() *contract.Config {
	return &contract.Config{
		ResultLimit: contract.DefaultResultLimit,
		Precision:   contract.DefaultPrecision,
		Output:      schema.TextOut,
		BatchTime:   batchTime,

		StoreBackend: schema.NoneBackend,

		SimilarityThreshold: contract.DefaultSimilarityThreshold,
		VelocitySentinel:    contract.DefaultVelocitySentinel,
		VelocityCap:         contract.DefaultVelocityCap,
		ZScoreSentinel:      contract.DefaultZScoreSentinel,
		PoissonSentinel:     contract.DefaultPoissonSentinel,
		PoissonMax:          contract.DefaultPoissonMax,
		StabilityCutoff:     contract.DefaultStabilityCutoff,
		MinBaselineHours:    contract.DefaultMinBaselineHours,

		TrendingVelocity:    contract.DefaultTrendingVelocity,
		TrendingMentions24h: contract.DefaultTrendingMentions24h,
		TrendingMentions6h:  contract.DefaultTrendingMentions6h,
		BreakingMentions1h:  contract.DefaultBreakingMentions1h,
		BreakingSpikeRatio:  contract.DefaultBreakingSpikeRatio,

		QuietPeriod:      48 * time.Hour,
		RetentionPeriod:  168 * time.Hour,
		MentionRetention: 168 * time.Hour,
		ScoreTTL:         24 * time.Hour,
		ThrottleWindow:   4 * time.Hour,

		TopK:             contract.DefaultTopK,
		TimeBudget:       2 * time.Minute,
		BreakerThreshold: contract.DefaultBreakerThreshold,
		BreakerCooldown:  30 * time.Minute,

		RankWeights:     schema.GetDefaultRankWeights(),
		AlertThresholds: contract.DefaultAlertThresholds(),
		Blocklist:       contract.DefaultBlocklist,
	}
}

// mention builds a test event for a topic at an offset before the batch clock.
func mention(topic, sourceID string, sourceType schema.SourceType, ago time.Duration) schema.MentionEvent {
	return schema.MentionEvent{
		SourceType: sourceType,
		RawTopic:   topic,
		OccurredAt: batchTime.Add(-ago),
		SourceTier: 1,
		SourceID:   sourceID,
	}
}
