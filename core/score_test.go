package core

import (
	"testing"
	"time"

	"github.com/newsradar/trendwatch/schema"
	"github.com/stretchr/testify/assert"
)

// TestScoreTrend tests the full score assembly for one key.
func TestScoreTrend(t *testing.T) {
	cfg := testConfig()

	t.Run("activity without history hits the sentinels", func(t *testing.T) {
		ws := schema.WindowStats{
			Key:         "new topic",
			Mentions1h:  6,
			Mentions24h: 24,
			LastSeenAt:  batchTime.Add(-10 * time.Minute),
			SourceTypes: map[schema.SourceType]int{
				schema.NewsSource:   20,
				schema.SocialSource: 4,
			},
		}
		scores := ScoreTrend(cfg, ws, nil, 0.9)

		assert.InDelta(t, cfg.VelocitySentinel, scores.Velocity, 0.001)
		assert.InDelta(t, cfg.ZScoreSentinel, scores.TrueZScore, 0.001)
		assert.InDelta(t, cfg.PoissonSentinel, scores.PoissonSurprise, 0.001)
		assert.InDelta(t, 5.0, scores.SpikeRatio, 0.001) // 6/h against 1/h clamps at the ceiling

		// spike 10 + mentions 9 + capped velocity 60 + diversity 5, fresh so no decay.
		assert.InDelta(t, 84.0, scores.RankScore, 0.001)
		assert.InDelta(t, 60.0, scores.RankBreakdown[schema.RankVelocity], 0.001)
		assert.InDelta(t, 88.0, scores.ConfidenceScore, 0.001)
	})

	t.Run("baselined topic standardizes against its mean", func(t *testing.T) {
		ws := schema.WindowStats{
			Key:         "wildfire",
			Mentions1h:  6,
			Mentions24h: 48,
			LastSeenAt:  batchTime.Add(-10 * time.Minute),
			SourceTypes: map[schema.SourceType]int{schema.NewsSource: 48},
		}
		baseline := &schema.TrendBaseline{Key: "wildfire", MeanHourly: 2.0, StdDevHourly: 1.0}
		scores := ScoreTrend(cfg, ws, baseline, 0.5)

		assert.InDelta(t, 4.0, scores.TrueZScore, 0.001)    // (6-2)/1
		assert.InDelta(t, 200.0, scores.Velocity, 0.001)    // (6-2)/2 * 100
		assert.InDelta(t, 3.0, scores.SpikeRatio, 0.001)    // 6/h against 2/h
		assert.Greater(t, scores.PoissonSurprise, 1.0)      // 6 observed on lambda 2
		assert.Less(t, scores.PoissonSurprise, cfg.PoissonMax)
	})

	t.Run("silence scores nothing anomalous", func(t *testing.T) {
		ws := schema.WindowStats{Key: "ghost", LastSeenAt: batchTime.Add(-48 * time.Hour)}
		scores := ScoreTrend(cfg, ws, nil, 0)

		assert.Zero(t, scores.Velocity)
		assert.Zero(t, scores.TrueZScore)
		assert.Zero(t, scores.PoissonSurprise)
		assert.Zero(t, scores.ConfidenceScore)
	})
}
