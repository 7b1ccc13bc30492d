package core

import (
	"hash/fnv"
	"math"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/schema"
)

// SeverityForZScore maps an anomaly's |z-score| to the highest severity tier
// whose threshold it clears. The second return is false when even the lowest
// tier is not met.
func SeverityForZScore(thresholds map[schema.Severity]float64, zScore float64) (schema.Severity, bool) {
	absZ := math.Abs(zScore)
	for i := len(schema.AllSeverities) - 1; i >= 0; i-- {
		tier := schema.AllSeverities[i]
		if min, ok := thresholds[tier]; ok && absZ >= min {
			return tier, true
		}
	}
	return "", false
}

// BuildAlertCandidates derives the alert candidates for one key from its
// current scores. A mention spike needs the z-score to clear a severity tier;
// a velocity surge fires when growth hits the sentinel, meaning the topic
// outran its baseline entirely.
func BuildAlertCandidates(cfg *contract.Config, key string, ws schema.WindowStats, baseline *schema.TrendBaseline, scores TrendScores) []schema.AnomalyAlert {
	var baselineRate float64
	if baseline != nil {
		baselineRate = baseline.MeanHourly
	}

	var candidates []schema.AnomalyAlert

	if severity, ok := SeverityForZScore(cfg.AlertThresholds, scores.TrueZScore); ok {
		candidates = append(candidates, schema.AnomalyAlert{
			AlertType:     schema.MentionSpikeAlert,
			EntityKey:     key,
			CurrentValue:  float64(ws.Mentions1h),
			BaselineValue: baselineRate,
			ZScore:        scores.TrueZScore,
			Severity:      severity,
			DetectedAt:    cfg.BatchTime,
		})
	}

	if scores.Velocity >= cfg.VelocitySentinel {
		// A surge is never less than high severity; a z-score can only
		// raise it further.
		severity, ok := SeverityForZScore(cfg.AlertThresholds, scores.TrueZScore)
		if !ok || schema.SeverityRank(severity) < schema.SeverityRank(schema.HighSeverity) {
			severity = schema.HighSeverity
		}
		candidates = append(candidates, schema.AnomalyAlert{
			AlertType:     schema.VelocitySurgeAlert,
			EntityKey:     key,
			CurrentValue:  scores.Velocity,
			BaselineValue: baselineRate,
			ZScore:        scores.TrueZScore,
			Severity:      severity,
			DetectedAt:    cfg.BatchTime,
		})
	}

	return candidates
}

// EmitAlerts persists candidates that survive throttling: a candidate is
// dropped when an unacknowledged alert for the same (type, key) pair already
// exists inside the throttle window. Returns how many alerts were emitted.
func EmitAlerts(store contract.TrendStore, cfg *contract.Config, candidates []schema.AnomalyAlert) (int, error) {
	since := cfg.BatchTime.Add(-cfg.ThrottleWindow)
	emitted := 0
	for _, candidate := range candidates {
		existing, err := store.UnacknowledgedAlert(candidate.AlertType, candidate.EntityKey, since)
		if err != nil {
			return emitted, err
		}
		if existing != nil {
			continue
		}
		candidate.ID = alertID(candidate)
		if _, err := store.InsertAlert(candidate); err != nil {
			return emitted, err
		}
		emitted++
	}
	return emitted, nil
}

// alertID derives a stable identifier from the alert's identity fields so IDs
// stay portable across store backends without relying on autoincrement.
func alertID(a schema.AnomalyAlert) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(string(a.AlertType)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(a.EntityKey))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(a.DetectedAt.UTC().Format("2006-01-02T15:04:05.000000000")))
	return int64(h.Sum64() & math.MaxInt64)
}
