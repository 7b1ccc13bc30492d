package core

import (
	"time"

	"github.com/newsradar/trendwatch/core/algo"
	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/schema"
)

// BaselineBucketFormat is the calendar-day key baselines are stored under.
const BaselineBucketFormat = "2006-01-02"

// BuildBaseline derives the daily baseline row for one canonical key from its
// trailing hourly history. Stability requires both low relative variance and
// enough hours of history; a topic seen for only a few hours is never marked
// evergreen no matter how flat its counts look.
func BuildBaseline(cfg *contract.Config, key string, hourly []float64, computedAt time.Time) schema.TrendBaseline {
	stats := algo.ComputeBaseline(hourly)

	stable := stats.Samples >= cfg.MinBaselineHours &&
		stats.Mean > 0 &&
		stats.RelativeStdDev < cfg.StabilityCutoff

	return schema.TrendBaseline{
		Key:            key,
		Bucket:         computedAt.UTC().Format(BaselineBucketFormat),
		MeanHourly:     stats.Mean,
		StdDevHourly:   stats.StdDev,
		RelativeStdDev: stats.RelativeStdDev,
		MinHourly:      stats.Min,
		MaxHourly:      stats.Max,
		SampleHours:    stats.Samples,
		IsStable:       stable,
		ComputedAt:     computedAt,
	}
}

// AnomalyScores bundles the two baseline-relative anomaly statistics.
type AnomalyScores struct {
	TrueZScore      float64
	PoissonSurprise float64
}

// ComputeAnomalyScores standardizes the current hourly count against a
// baseline. A nil baseline behaves like a zero-mean, zero-variance one: any
// activity is maximally anomalous (sentinel values), no activity scores 0.
func ComputeAnomalyScores(cfg *contract.Config, current int, baseline *schema.TrendBaseline) AnomalyScores {
	var mean, stdDev float64
	if baseline != nil {
		mean = baseline.MeanHourly
		stdDev = baseline.StdDevHourly
	}
	return AnomalyScores{
		TrueZScore:      algo.TrueZScore(float64(current), mean, stdDev, cfg.ZScoreSentinel),
		PoissonSurprise: algo.PoissonSurprise(current, mean, cfg.PoissonSentinel, cfg.PoissonMax),
	}
}
