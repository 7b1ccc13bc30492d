package trendstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/newsradar/trendwatch/schema"
)

// trendEventCols are the columns written by UpsertTrendEvent, in insert order.
// trending_since is deliberately absent: it only moves through the
// conditional SetTrendingSince/ClearTrendingSince writes so the monotonic
// invariant holds under concurrent job instances.
var trendEventCols = []string{
	"canonical_label", "display_title", "label_quality",
	"context_terms", "context_phrases", "context_summary",
	"velocity", "true_z_score", "poisson_surprise", "burst_score", "spike_ratio",
	"rank_score", "rank_breakdown", "confidence_score",
	"state", "is_trending", "is_breaking", "is_evergreen",
	"mentions_1h", "mentions_6h", "mentions_24h", "source_type_count",
	"first_seen_at", "last_seen_at", "updated_at",
}

// UpsertTrendEvent atomically replaces the trend event row for a key, leaving
// trending_since untouched.
func (ts *TrendStoreImpl) UpsertTrendEvent(ev schema.TrendEvent) error {
	if ts.disabled() {
		return nil
	}

	contextTerms, err := json.Marshal(orEmpty(ev.ContextTerms))
	if err != nil {
		return fmt.Errorf("failed to marshal context terms: %w", err)
	}
	contextPhrases, err := json.Marshal(orEmpty(ev.ContextPhrases))
	if err != nil {
		return fmt.Errorf("failed to marshal context phrases: %w", err)
	}
	breakdown, err := json.Marshal(ev.RankBreakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal rank breakdown: %w", err)
	}

	query := ts.rebind(fmt.Sprintf(`
		INSERT INTO %s (topic_key, %s) VALUES (%s) %s
	`, quoteTableName(trendEventsTable, ts.backend), joinCols(trendEventCols),
		placeholders(1+len(trendEventCols)), ts.upsertSuffix([]string{"topic_key"}, trendEventCols)))

	_, err = ts.db.Exec(query,
		ev.Key, ev.CanonicalLabel, ev.DisplayTitle, string(ev.LabelQuality),
		string(contextTerms), string(contextPhrases), ev.ContextSummary,
		ev.Velocity, ev.TrueZScore, ev.PoissonSurprise, ev.BurstScore, ev.SpikeRatio,
		ev.RankScore, string(breakdown), ev.ConfidenceScore,
		string(ev.State), boolToInt(ev.IsTrending), boolToInt(ev.IsBreaking), boolToInt(ev.IsEvergreen),
		ev.Mentions1h, ev.Mentions6h, ev.Mentions24h, ev.SourceTypeCount,
		nanos(ev.FirstSeenAt), nanos(ev.LastSeenAt), nanos(ev.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert trend event for %s: %w", ev.Key, err)
	}
	return nil
}

// SetTrendingSince stamps the trending timestamp only when it is currently
// null. Losing the race to another writer is fine; the first stamp wins.
func (ts *TrendStoreImpl) SetTrendingSince(key string, t time.Time) error {
	if ts.disabled() {
		return nil
	}

	query := ts.rebind(fmt.Sprintf(
		"UPDATE %s SET trending_since = ? WHERE topic_key = ? AND trending_since IS NULL",
		quoteTableName(trendEventsTable, ts.backend)))
	if _, err := ts.db.Exec(query, nanos(t), key); err != nil {
		return fmt.Errorf("failed to set trending since for %s: %w", key, err)
	}
	return nil
}

// ClearTrendingSince nulls the trending timestamp on the dormant transition.
func (ts *TrendStoreImpl) ClearTrendingSince(key string) error {
	if ts.disabled() {
		return nil
	}

	query := ts.rebind(fmt.Sprintf(
		"UPDATE %s SET trending_since = NULL WHERE topic_key = ?",
		quoteTableName(trendEventsTable, ts.backend)))
	if _, err := ts.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to clear trending since for %s: %w", key, err)
	}
	return nil
}

const trendEventSelect = `
	SELECT topic_key, canonical_label, display_title, label_quality,
	       context_terms, context_phrases, context_summary,
	       velocity, true_z_score, poisson_surprise, burst_score, spike_ratio,
	       rank_score, rank_breakdown, confidence_score,
	       state, is_trending, is_breaking, is_evergreen, trending_since,
	       mentions_1h, mentions_6h, mentions_24h, source_type_count,
	       first_seen_at, last_seen_at, updated_at
	FROM %s`

// GetTrendEvent returns the trend event for a key, or nil when absent.
func (ts *TrendStoreImpl) GetTrendEvent(key string) (*schema.TrendEvent, error) {
	if ts.disabled() {
		return nil, nil
	}

	query := ts.rebind(fmt.Sprintf(trendEventSelect+" WHERE topic_key = ?",
		quoteTableName(trendEventsTable, ts.backend)))

	ev, err := scanTrendEvent(ts.db.QueryRow(query, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trend event for %s: %w", key, err)
	}
	return ev, nil
}

// ListTrendEvents returns up to limit events by rank score descending.
func (ts *TrendStoreImpl) ListTrendEvents(limit int, onlyTrending bool) ([]schema.TrendEvent, error) {
	if ts.disabled() {
		return nil, nil
	}

	where := ""
	if onlyTrending {
		where = " WHERE is_trending = 1"
	}
	query := ts.rebind(fmt.Sprintf(trendEventSelect+where+" ORDER BY rank_score DESC, topic_key LIMIT ?",
		quoteTableName(trendEventsTable, ts.backend)))

	rows, err := ts.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trend events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []schema.TrendEvent
	for rows.Next() {
		ev, err := scanTrendEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trend event: %w", err)
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

func scanTrendEvent(row scanner) (*schema.TrendEvent, error) {
	var ev schema.TrendEvent
	var labelQuality, state, contextTerms, contextPhrases, breakdown string
	var isTrending, isBreaking, isEvergreen int
	var trendingSince sql.NullInt64
	var firstSeen, lastSeen, updated int64

	if err := row.Scan(&ev.Key, &ev.CanonicalLabel, &ev.DisplayTitle, &labelQuality,
		&contextTerms, &contextPhrases, &ev.ContextSummary,
		&ev.Velocity, &ev.TrueZScore, &ev.PoissonSurprise, &ev.BurstScore, &ev.SpikeRatio,
		&ev.RankScore, &breakdown, &ev.ConfidenceScore,
		&state, &isTrending, &isBreaking, &isEvergreen, &trendingSince,
		&ev.Mentions1h, &ev.Mentions6h, &ev.Mentions24h, &ev.SourceTypeCount,
		&firstSeen, &lastSeen, &updated); err != nil {
		return nil, err
	}

	ev.LabelQuality = schema.LabelQuality(labelQuality)
	ev.State = schema.TrendState(state)
	ev.IsTrending = isTrending != 0
	ev.IsBreaking = isBreaking != 0
	ev.IsEvergreen = isEvergreen != 0
	if trendingSince.Valid {
		t := timeFromNanos(trendingSince.Int64)
		ev.TrendingSince = &t
	}
	ev.FirstSeenAt = timeFromNanos(firstSeen)
	ev.LastSeenAt = timeFromNanos(lastSeen)
	ev.UpdatedAt = timeFromNanos(updated)

	if err := json.Unmarshal([]byte(contextTerms), &ev.ContextTerms); err != nil {
		return nil, fmt.Errorf("failed to unmarshal context terms: %w", err)
	}
	if err := json.Unmarshal([]byte(contextPhrases), &ev.ContextPhrases); err != nil {
		return nil, fmt.Errorf("failed to unmarshal context phrases: %w", err)
	}
	ev.RankBreakdown = make(map[schema.RankComponent]float64)
	if err := json.Unmarshal([]byte(breakdown), &ev.RankBreakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rank breakdown: %w", err)
	}
	return &ev, nil
}

// orEmpty keeps JSON payloads as [] instead of null for nil slices.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
