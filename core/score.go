package core

import (
	"github.com/newsradar/trendwatch/core/algo"
	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/schema"
)

// TrendScores bundles every derived statistic for one canonical key at one
// batch timestamp.
type TrendScores struct {
	Velocity        float64
	TrueZScore      float64
	PoissonSurprise float64
	SpikeRatio      float64
	RankScore       float64
	RankBreakdown   map[schema.RankComponent]float64
	ConfidenceScore float64
}

// ScoreTrend combines windowed counts and the key's baseline into the full
// score set. All rates are per-hour: the 1h window is the short rate, the 24h
// window averaged per hour is the long rate, and the baseline mean is the
// expected rate. A key with zero activity everywhere scores zero across the
// board; a key with activity but no baseline history hits the configured
// sentinels instead of faulting.
func ScoreTrend(cfg *contract.Config, ws schema.WindowStats, baseline *schema.TrendBaseline, topAuthority float64) TrendScores {
	shortRate := float64(ws.Mentions1h)
	longRate := float64(ws.Mentions24h) / 24.0

	var baselineRate float64
	if baseline != nil {
		baselineRate = baseline.MeanHourly
	}

	anomaly := ComputeAnomalyScores(cfg, ws.Mentions1h, baseline)
	spike := algo.SpikeRatio(shortRate, longRate)
	velocity := algo.Velocity(shortRate, baselineRate, cfg.VelocitySentinel)

	rank, breakdown := algo.ComputeRankScore(algo.RankInput{
		SpikeRatio:      spike,
		Mentions1h:      ws.Mentions1h,
		Velocity:        velocity,
		VelocityCap:     cfg.VelocityCap,
		SourceTypeCount: ws.SourceTypeCount(),
		SinceLastSeen:   cfg.BatchTime.Sub(ws.LastSeenAt),
	}, cfg.RankWeights)

	return TrendScores{
		Velocity:        velocity,
		TrueZScore:      anomaly.TrueZScore,
		PoissonSurprise: anomaly.PoissonSurprise,
		SpikeRatio:      spike,
		RankScore:       rank,
		RankBreakdown:   breakdown,
		ConfidenceScore: algo.ConfidenceScore(ws.Mentions24h, ws.SourceTypeCount(), topAuthority),
	}
}
