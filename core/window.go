package core

import (
	"sort"
	"time"

	"github.com/newsradar/trendwatch/schema"
)

// Fixed aggregation windows. Each window counts independently; counts are
// never cumulative across windows.
const (
	Window1h  = 1 * time.Hour
	Window6h  = 6 * time.Hour
	Window24h = 24 * time.Hour
	Window7d  = 7 * 24 * time.Hour
)

// Sentiment cutoffs for the positive/neutral/negative rollup.
const (
	sentimentPositive = 0.2
	sentimentNegative = -0.2
)

// AggregateMentions performs a full recount of the mention buffer into
// per-key WindowStats as of now. Events with an empty canonical key are
// dropped, and duplicate (SourceID, OccurredAt, key) triples count once; the
// same document annotated with several topics at one instant contributes to
// each topic. The recount strategy keeps every pass idempotent: re-running on
// the same buffer yields identical stats.
func AggregateMentions(events []schema.MentionEvent, now time.Time) map[string]*schema.WindowStats {
	stats := make(map[string]*schema.WindowStats)
	seen := make(map[string]struct{}, len(events))

	for _, ev := range events {
		key := Normalize(ev.RawTopic)
		if key == "" {
			continue
		}
		if ev.OccurredAt.After(now) || now.Sub(ev.OccurredAt) > Window7d {
			continue
		}

		dedupe := key + "\x00" + ev.SourceID + "\x00" + ev.OccurredAt.UTC().Format(time.RFC3339Nano)
		if _, dup := seen[dedupe]; dup {
			continue
		}
		seen[dedupe] = struct{}{}

		ws, ok := stats[key]
		if !ok {
			ws = &schema.WindowStats{
				Key:         key,
				SourceTypes: make(map[schema.SourceType]int),
				UpdatedAt:   now,
			}
			stats[key] = ws
		}

		age := now.Sub(ev.OccurredAt)
		ws.Mentions7d++
		if age <= Window24h {
			ws.Mentions24h++
			ws.SourceTypes[ev.SourceType]++
			accumulateSentiment(ws, ev.Sentiment)
		}
		if age <= Window6h {
			ws.Mentions6h++
		}
		if age <= Window1h {
			ws.Mentions1h++
		}
		if ev.OccurredAt.After(ws.LastSeenAt) {
			ws.LastSeenAt = ev.OccurredAt
		}
	}

	// Finalize the sentiment average; SentimentAvg held a running sum.
	for _, ws := range stats {
		annotated := ws.PositiveCount + ws.NeutralCount + ws.NegativeCount
		if annotated > 0 {
			ws.SentimentAvg /= float64(annotated)
		}
	}
	return stats
}

// accumulateSentiment folds one annotated sentiment into the 24h rollup.
// Unannotated events contribute to counts but not to the average.
func accumulateSentiment(ws *schema.WindowStats, sentiment *float64) {
	if sentiment == nil {
		return
	}
	s := *sentiment
	ws.SentimentAvg += s
	switch {
	case s > sentimentPositive:
		ws.PositiveCount++
	case s < sentimentNegative:
		ws.NegativeCount++
	default:
		ws.NeutralCount++
	}
}

// HourlyCounts buckets a key's events into per-hour counts over the trailing
// history window ending at now. The slice always has exactly hours entries
// (zero-filled), oldest first, which is what the baseline computation expects.
func HourlyCounts(events []schema.MentionEvent, key string, now time.Time, hours int) []float64 {
	counts := make([]float64, hours)
	start := now.Add(-time.Duration(hours) * time.Hour)
	for _, ev := range events {
		if Normalize(ev.RawTopic) != key {
			continue
		}
		if ev.OccurredAt.Before(start) || ev.OccurredAt.After(now) {
			continue
		}
		idx := int(ev.OccurredAt.Sub(start) / time.Hour)
		if idx >= 0 && idx < hours {
			counts[idx]++
		}
	}
	return counts
}

// TopKeysByVolume returns up to k keys ordered by 24h volume descending, with
// ties broken lexically so the selection is deterministic across runs.
func TopKeysByVolume(stats map[string]*schema.WindowStats, k int) []string {
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := stats[keys[i]], stats[keys[j]]
		if a.Mentions24h != b.Mentions24h {
			return a.Mentions24h > b.Mentions24h
		}
		return keys[i] < keys[j]
	})
	if len(keys) > k {
		keys = keys[:k]
	}
	return keys
}
