package trendstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/newsradar/trendwatch/schema"
)

// UpsertOrgScore replaces the score row for an (org, trend key) pair.
func (ts *TrendStoreImpl) UpsertOrgScore(s schema.OrgTrendScore) error {
	if ts.disabled() {
		return nil
	}

	explanation, err := json.Marshal(s.Explanation)
	if err != nil {
		return fmt.Errorf("failed to marshal explanation: %w", err)
	}

	cols := []string{
		"relevance_score", "urgency_score", "priority", "explanation",
		"is_blocked", "computed_at", "expires_at",
	}
	query := ts.rebind(fmt.Sprintf(`
		INSERT INTO %s (org_id, trend_key, %s) VALUES (%s) %s
	`, quoteTableName(orgScoresTable, ts.backend), joinCols(cols), placeholders(9),
		ts.upsertSuffix([]string{"org_id", "trend_key"}, cols)))

	_, err = ts.db.Exec(query,
		s.OrgID, s.TrendKey, s.RelevanceScore, s.UrgencyScore, string(s.Priority),
		string(explanation), boolToInt(s.IsBlocked), nanos(s.ComputedAt), nanos(s.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to upsert org score for %s/%s: %w", s.OrgID, s.TrendKey, err)
	}
	return nil
}

// ListOrgScores returns non-expired scores for an org ordered by relevance
// descending. Expired rows fail closed: they are filtered in the query and
// never served.
func (ts *TrendStoreImpl) ListOrgScores(orgID string, now time.Time, limit int) ([]schema.OrgTrendScore, error) {
	if ts.disabled() {
		return nil, nil
	}

	query := ts.rebind(fmt.Sprintf(`
		SELECT org_id, trend_key, relevance_score, urgency_score, priority, explanation,
		       is_blocked, computed_at, expires_at
		FROM %s WHERE org_id = ? AND expires_at >= ?
		ORDER BY relevance_score DESC, trend_key LIMIT ?
	`, quoteTableName(orgScoresTable, ts.backend)))

	rows, err := ts.db.Query(query, orgID, nanos(now), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query org scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var scores []schema.OrgTrendScore
	for rows.Next() {
		var s schema.OrgTrendScore
		var priority, explanation string
		var isBlocked int
		var computedAt, expiresAt int64
		if err := rows.Scan(&s.OrgID, &s.TrendKey, &s.RelevanceScore, &s.UrgencyScore,
			&priority, &explanation, &isBlocked, &computedAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan org score: %w", err)
		}
		s.Priority = schema.PriorityBucket(priority)
		s.IsBlocked = isBlocked != 0
		s.ComputedAt = timeFromNanos(computedAt)
		s.ExpiresAt = timeFromNanos(expiresAt)
		if err := json.Unmarshal([]byte(explanation), &s.Explanation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal explanation: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

const alertSelect = `
	SELECT id, alert_type, entity_key, current_value, baseline_value, z_score,
	       severity, is_acknowledged, ack_by, ack_at, detected_at
	FROM %s`

// InsertAlert appends a new alert and returns its ID. IDs are app-assigned by
// the emitter so they stay stable across backends.
func (ts *TrendStoreImpl) InsertAlert(a schema.AnomalyAlert) (int64, error) {
	if ts.disabled() {
		return 0, nil
	}

	query := ts.rebind(fmt.Sprintf(`
		INSERT INTO %s (id, alert_type, entity_key, current_value, baseline_value, z_score,
		                severity, is_acknowledged, ack_by, ack_at, detected_at)
		VALUES (%s)
	`, quoteTableName(alertsTable, ts.backend), placeholders(11)))

	var ackAt any
	if a.AckAt != nil {
		ackAt = nanos(*a.AckAt)
	}
	_, err := ts.db.Exec(query,
		a.ID, string(a.AlertType), a.EntityKey, a.CurrentValue, a.BaselineValue, a.ZScore,
		string(a.Severity), boolToInt(a.IsAcknowledged), a.AckBy, ackAt, nanos(a.DetectedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to insert alert for %s: %w", a.EntityKey, err)
	}
	return a.ID, nil
}

// UnacknowledgedAlert returns the most recent unacknowledged alert for the
// (alertType, entityKey) pair detected at or after since, or nil.
func (ts *TrendStoreImpl) UnacknowledgedAlert(alertType schema.AlertType, entityKey string, since time.Time) (*schema.AnomalyAlert, error) {
	if ts.disabled() {
		return nil, nil
	}

	query := ts.rebind(fmt.Sprintf(
		alertSelect+` WHERE alert_type = ? AND entity_key = ? AND is_acknowledged = 0 AND detected_at >= ?
		ORDER BY detected_at DESC LIMIT 1`,
		quoteTableName(alertsTable, ts.backend)))

	alert, err := scanAlert(ts.db.QueryRow(query, string(alertType), entityKey, nanos(since)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query unacknowledged alert: %w", err)
	}
	return alert, nil
}

// ListAlerts returns up to limit alerts, newest first.
func (ts *TrendStoreImpl) ListAlerts(limit int, includeAcked bool) ([]schema.AnomalyAlert, error) {
	if ts.disabled() {
		return nil, nil
	}

	where := " WHERE is_acknowledged = 0"
	if includeAcked {
		where = ""
	}
	query := ts.rebind(fmt.Sprintf(alertSelect+where+" ORDER BY detected_at DESC, id LIMIT ?",
		quoteTableName(alertsTable, ts.backend)))

	rows, err := ts.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var alerts []schema.AnomalyAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

// AcknowledgeAlert marks an alert acknowledged. The WHERE guard makes
// re-acknowledging a no-op instead of overwriting the original actor.
func (ts *TrendStoreImpl) AcknowledgeAlert(id int64, actor string, at time.Time) error {
	if ts.disabled() {
		return nil
	}

	query := ts.rebind(fmt.Sprintf(
		"UPDATE %s SET is_acknowledged = 1, ack_by = ?, ack_at = ? WHERE id = ? AND is_acknowledged = 0",
		quoteTableName(alertsTable, ts.backend)))
	if _, err := ts.db.Exec(query, actor, nanos(at), id); err != nil {
		return fmt.Errorf("failed to acknowledge alert %d: %w", id, err)
	}
	return nil
}

func scanAlert(row scanner) (*schema.AnomalyAlert, error) {
	var a schema.AnomalyAlert
	var alertType, severity string
	var isAcked int
	var ackAt sql.NullInt64
	var detectedAt int64
	if err := row.Scan(&a.ID, &alertType, &a.EntityKey, &a.CurrentValue, &a.BaselineValue,
		&a.ZScore, &severity, &isAcked, &a.AckBy, &ackAt, &detectedAt); err != nil {
		return nil, err
	}
	a.AlertType = schema.AlertType(alertType)
	a.Severity = schema.Severity(severity)
	a.IsAcknowledged = isAcked != 0
	if ackAt.Valid {
		t := timeFromNanos(ackAt.Int64)
		a.AckAt = &t
	}
	a.DetectedAt = timeFromNanos(detectedAt)
	return &a, nil
}

// GetJobHealth returns the health record for a job, or nil when absent.
func (ts *TrendStoreImpl) GetJobHealth(job string) (*schema.JobHealth, error) {
	if ts.disabled() {
		return nil, nil
	}

	query := ts.rebind(fmt.Sprintf(`
		SELECT job_name, last_run_at, last_duration_ns, items_processed,
		       failure_streak, breaker_open, breaker_opened_at, last_error
		FROM %s WHERE job_name = ?
	`, quoteTableName(jobHealthTable, ts.backend)))

	h, err := scanJobHealth(ts.db.QueryRow(query, job))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job health for %s: %w", job, err)
	}
	return h, nil
}

// UpsertJobHealth replaces the health record for a job.
func (ts *TrendStoreImpl) UpsertJobHealth(h schema.JobHealth) error {
	if ts.disabled() {
		return nil
	}

	cols := []string{
		"last_run_at", "last_duration_ns", "items_processed",
		"failure_streak", "breaker_open", "breaker_opened_at", "last_error",
	}
	query := ts.rebind(fmt.Sprintf(`
		INSERT INTO %s (job_name, %s) VALUES (%s) %s
	`, quoteTableName(jobHealthTable, ts.backend), joinCols(cols), placeholders(8),
		ts.upsertSuffix([]string{"job_name"}, cols)))

	_, err := ts.db.Exec(query,
		h.JobName, nanos(h.LastRunAt), int64(h.LastDuration), h.ItemsProcessed,
		h.FailureStreak, boolToInt(h.BreakerOpen), nanos(h.BreakerOpenedAt), h.LastError)
	if err != nil {
		return fmt.Errorf("failed to upsert job health for %s: %w", h.JobName, err)
	}
	return nil
}

// ListJobHealth returns all job health records ordered by job name.
func (ts *TrendStoreImpl) ListJobHealth() ([]schema.JobHealth, error) {
	if ts.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT job_name, last_run_at, last_duration_ns, items_processed,
		       failure_streak, breaker_open, breaker_opened_at, last_error
		FROM %s ORDER BY job_name
	`, quoteTableName(jobHealthTable, ts.backend))

	rows, err := ts.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query job health: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.JobHealth
	for rows.Next() {
		h, err := scanJobHealth(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job health: %w", err)
		}
		records = append(records, *h)
	}
	return records, rows.Err()
}

func scanJobHealth(row scanner) (*schema.JobHealth, error) {
	var h schema.JobHealth
	var lastRun, durationNs, breakerOpenedAt int64
	var breakerOpen int
	if err := row.Scan(&h.JobName, &lastRun, &durationNs, &h.ItemsProcessed,
		&h.FailureStreak, &breakerOpen, &breakerOpenedAt, &h.LastError); err != nil {
		return nil, err
	}
	h.LastRunAt = timeFromNanos(lastRun)
	h.LastDuration = time.Duration(durationNs)
	h.BreakerOpen = breakerOpen != 0
	h.BreakerOpenedAt = timeFromNanos(breakerOpenedAt)
	return &h, nil
}
