package trendstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/newsradar/trendwatch/schema"
)

// InsertMentions appends a batch of mention events, skipping duplicates on
// the (source_id, occurred_at, topic_key) primary key. Returns how many rows
// were new.
func (ts *TrendStoreImpl) InsertMentions(events []schema.MentionEvent) (int, error) {
	if ts.disabled() {
		return 0, nil
	}

	query := ts.rebind(fmt.Sprintf(`
		%s INTO %s (source_id, occurred_at, topic_key, source_type, raw_topic, sentiment, source_tier, is_event_phrase)
		VALUES (%s) %s
	`, ts.insertIgnorePrefix(), quoteTableName(mentionsTable, ts.backend),
		placeholders(8), ts.insertIgnoreSuffix([]string{"source_id", "occurred_at", "topic_key"})))

	inserted := 0
	for _, ev := range events {
		var sentiment any
		if ev.Sentiment != nil {
			sentiment = *ev.Sentiment
		}
		result, err := ts.db.Exec(query,
			ev.SourceID, nanos(ev.OccurredAt), ev.TopicKey, string(ev.SourceType), ev.RawTopic,
			sentiment, ev.SourceTier, boolToInt(ev.IsEventPhrase))
		if err != nil {
			return inserted, fmt.Errorf("failed to insert mention: %w", err)
		}
		if rows, err := result.RowsAffected(); err == nil && rows > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// MentionsSince returns buffered events that occurred at or after since.
func (ts *TrendStoreImpl) MentionsSince(since time.Time) ([]schema.MentionEvent, error) {
	if ts.disabled() {
		return nil, nil
	}

	query := ts.rebind(fmt.Sprintf(`
		SELECT source_id, occurred_at, topic_key, source_type, raw_topic, sentiment, source_tier, is_event_phrase
		FROM %s WHERE occurred_at >= ? ORDER BY occurred_at
	`, quoteTableName(mentionsTable, ts.backend)))

	rows, err := ts.db.Query(query, nanos(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query mentions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []schema.MentionEvent
	for rows.Next() {
		var ev schema.MentionEvent
		var occurredAt int64
		var sourceType string
		var sentiment sql.NullFloat64
		var isEventPhrase int
		if err := rows.Scan(&ev.SourceID, &occurredAt, &ev.TopicKey, &sourceType, &ev.RawTopic,
			&sentiment, &ev.SourceTier, &isEventPhrase); err != nil {
			return nil, fmt.Errorf("failed to scan mention: %w", err)
		}
		ev.OccurredAt = timeFromNanos(occurredAt)
		ev.SourceType = schema.SourceType(sourceType)
		if sentiment.Valid {
			v := sentiment.Float64
			ev.Sentiment = &v
		}
		ev.IsEventPhrase = isEventPhrase != 0
		events = append(events, ev)
	}
	return events, rows.Err()
}

// PruneMentions deletes buffered events older than before.
func (ts *TrendStoreImpl) PruneMentions(before time.Time) (int, error) {
	if ts.disabled() {
		return 0, nil
	}

	query := ts.rebind(fmt.Sprintf(
		"DELETE FROM %s WHERE occurred_at < ?", quoteTableName(mentionsTable, ts.backend)))
	result, err := ts.db.Exec(query, nanos(before))
	if err != nil {
		return 0, fmt.Errorf("failed to prune mentions: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// UpsertWindowStats atomically replaces the window stats row for a key.
func (ts *TrendStoreImpl) UpsertWindowStats(stats schema.WindowStats) error {
	if ts.disabled() {
		return nil
	}

	sourceTypes, err := json.Marshal(stats.SourceTypes)
	if err != nil {
		return fmt.Errorf("failed to marshal source types: %w", err)
	}

	cols := []string{
		"mentions_1h", "mentions_6h", "mentions_24h", "mentions_7d", "last_seen_at",
		"sentiment_avg", "positive_count", "neutral_count", "negative_count",
		"source_types", "updated_at",
	}
	query := ts.rebind(fmt.Sprintf(`
		INSERT INTO %s (topic_key, %s) VALUES (%s) %s
	`, quoteTableName(windowStatsTable, ts.backend), joinCols(cols), placeholders(12),
		ts.upsertSuffix([]string{"topic_key"}, cols)))

	_, err = ts.db.Exec(query,
		stats.Key, stats.Mentions1h, stats.Mentions6h, stats.Mentions24h, stats.Mentions7d,
		nanos(stats.LastSeenAt), stats.SentimentAvg, stats.PositiveCount, stats.NeutralCount,
		stats.NegativeCount, string(sourceTypes), nanos(stats.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert window stats for %s: %w", stats.Key, err)
	}
	return nil
}

// GetWindowStats returns the stats row for a key, or nil when absent.
func (ts *TrendStoreImpl) GetWindowStats(key string) (*schema.WindowStats, error) {
	if ts.disabled() {
		return nil, nil
	}

	query := ts.rebind(fmt.Sprintf(`
		SELECT topic_key, mentions_1h, mentions_6h, mentions_24h, mentions_7d, last_seen_at,
		       sentiment_avg, positive_count, neutral_count, negative_count, source_types, updated_at
		FROM %s WHERE topic_key = ?
	`, quoteTableName(windowStatsTable, ts.backend)))

	stats, err := scanWindowStats(ts.db.QueryRow(query, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get window stats for %s: %w", key, err)
	}
	return stats, nil
}

// TopWindowStats returns up to limit stats rows by 24h volume descending.
func (ts *TrendStoreImpl) TopWindowStats(limit int) ([]schema.WindowStats, error) {
	if ts.disabled() {
		return nil, nil
	}

	query := ts.rebind(fmt.Sprintf(`
		SELECT topic_key, mentions_1h, mentions_6h, mentions_24h, mentions_7d, last_seen_at,
		       sentiment_avg, positive_count, neutral_count, negative_count, source_types, updated_at
		FROM %s ORDER BY mentions_24h DESC, topic_key LIMIT ?
	`, quoteTableName(windowStatsTable, ts.backend)))

	rows, err := ts.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top window stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.WindowStats
	for rows.Next() {
		stats, err := scanWindowStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan window stats: %w", err)
		}
		results = append(results, *stats)
	}
	return results, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanWindowStats(row scanner) (*schema.WindowStats, error) {
	var stats schema.WindowStats
	var lastSeen, updated int64
	var sourceTypes string
	if err := row.Scan(&stats.Key, &stats.Mentions1h, &stats.Mentions6h, &stats.Mentions24h,
		&stats.Mentions7d, &lastSeen, &stats.SentimentAvg, &stats.PositiveCount,
		&stats.NeutralCount, &stats.NegativeCount, &sourceTypes, &updated); err != nil {
		return nil, err
	}
	stats.LastSeenAt = timeFromNanos(lastSeen)
	stats.UpdatedAt = timeFromNanos(updated)
	stats.SourceTypes = make(map[schema.SourceType]int)
	if err := json.Unmarshal([]byte(sourceTypes), &stats.SourceTypes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal source types: %w", err)
	}
	return &stats, nil
}

// UpsertBaseline replaces the baseline row for a (key, bucket) pair.
func (ts *TrendStoreImpl) UpsertBaseline(b schema.TrendBaseline) error {
	if ts.disabled() {
		return nil
	}

	cols := []string{
		"mean_hourly", "std_dev_hourly", "relative_std_dev", "min_hourly", "max_hourly",
		"sample_hours", "is_stable", "computed_at",
	}
	query := ts.rebind(fmt.Sprintf(`
		INSERT INTO %s (topic_key, bucket, %s) VALUES (%s) %s
	`, quoteTableName(baselinesTable, ts.backend), joinCols(cols), placeholders(10),
		ts.upsertSuffix([]string{"topic_key", "bucket"}, cols)))

	_, err := ts.db.Exec(query,
		b.Key, b.Bucket, b.MeanHourly, b.StdDevHourly, b.RelativeStdDev,
		b.MinHourly, b.MaxHourly, b.SampleHours, boolToInt(b.IsStable), nanos(b.ComputedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert baseline for %s: %w", b.Key, err)
	}
	return nil
}

// GetBaseline returns the most recent baseline for a key, or nil.
func (ts *TrendStoreImpl) GetBaseline(key string) (*schema.TrendBaseline, error) {
	if ts.disabled() {
		return nil, nil
	}

	query := ts.rebind(fmt.Sprintf(`
		SELECT topic_key, bucket, mean_hourly, std_dev_hourly, relative_std_dev,
		       min_hourly, max_hourly, sample_hours, is_stable, computed_at
		FROM %s WHERE topic_key = ? ORDER BY bucket DESC LIMIT 1
	`, quoteTableName(baselinesTable, ts.backend)))

	var b schema.TrendBaseline
	var isStable int
	var computedAt int64
	err := ts.db.QueryRow(query, key).Scan(&b.Key, &b.Bucket, &b.MeanHourly, &b.StdDevHourly,
		&b.RelativeStdDev, &b.MinHourly, &b.MaxHourly, &b.SampleHours, &isStable, &computedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get baseline for %s: %w", key, err)
	}
	b.IsStable = isStable != 0
	b.ComputedAt = timeFromNanos(computedAt)
	return &b, nil
}

// PruneBaselines deletes baseline history computed before the given time.
func (ts *TrendStoreImpl) PruneBaselines(before time.Time) (int, error) {
	if ts.disabled() {
		return 0, nil
	}

	query := ts.rebind(fmt.Sprintf(
		"DELETE FROM %s WHERE computed_at < ?", quoteTableName(baselinesTable, ts.backend)))
	result, err := ts.db.Exec(query, nanos(before))
	if err != nil {
		return 0, fmt.Errorf("failed to prune baselines: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
