// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/newsradar/trendwatch/schema"
)

// TrendStore defines the persistence operations for all engine-owned state.
// Every mutation is a single-key upsert and must be atomic; no cross-key
// transactions are offered or required. The interface allows the store to be
// mocked for testing.
type TrendStore interface {
	// --- Mention buffer ---

	// InsertMentions appends a batch of mention events to the bounded buffer,
	// skipping events whose (SourceID, OccurredAt, TopicKey) triple is already
	// present. One document may carry several topics at the same instant.
	// Returns the number of newly inserted events.
	InsertMentions(events []schema.MentionEvent) (int, error)

	// MentionsSince returns all buffered events that occurred at or after the
	// given time.
	MentionsSince(since time.Time) ([]schema.MentionEvent, error)

	// PruneMentions deletes buffered events older than the given time and
	// returns how many were removed.
	PruneMentions(before time.Time) (int, error)

	// --- Window stats ---

	// UpsertWindowStats atomically replaces the window stats row for a key.
	UpsertWindowStats(stats schema.WindowStats) error

	// GetWindowStats returns the stats row for a key, or nil when absent.
	GetWindowStats(key string) (*schema.WindowStats, error)

	// TopWindowStats returns up to limit stats rows ordered by 24h volume
	// descending. This is the top-K selection used to bound batch jobs.
	TopWindowStats(limit int) ([]schema.WindowStats, error)

	// --- Baselines ---

	// UpsertBaseline replaces the baseline row for a (key, bucket) pair.
	UpsertBaseline(b schema.TrendBaseline) error

	// GetBaseline returns the most recent baseline for a key, or nil.
	GetBaseline(key string) (*schema.TrendBaseline, error)

	// PruneBaselines deletes baseline history computed before the given time.
	PruneBaselines(before time.Time) (int, error)

	// --- Trend events ---

	// UpsertTrendEvent atomically replaces the trend event row for a key.
	// The TrendingSince column is NOT written by this call; use
	// SetTrendingSince so the monotonic invariant survives concurrent writers.
	UpsertTrendEvent(ev schema.TrendEvent) error

	// SetTrendingSince performs the conditional write: the timestamp is set
	// only when the stored value is currently null.
	SetTrendingSince(key string, ts time.Time) error

	// ClearTrendingSince nulls the timestamp; called only on the transition
	// back to dormant so a fresh trending cycle can stamp a new value.
	ClearTrendingSince(key string) error

	// GetTrendEvent returns the trend event for a key, or nil when absent.
	GetTrendEvent(key string) (*schema.TrendEvent, error)

	// ListTrendEvents returns up to limit trend events ordered by rank score
	// descending, optionally restricted to currently trending ones.
	ListTrendEvents(limit int, onlyTrending bool) ([]schema.TrendEvent, error)

	// --- Org scores ---

	// UpsertOrgScore replaces the score row for an (org, trend key) pair.
	UpsertOrgScore(s schema.OrgTrendScore) error

	// ListOrgScores returns non-expired scores for an org ordered by
	// relevance descending. Expired rows are filtered out, never served.
	ListOrgScores(orgID string, now time.Time, limit int) ([]schema.OrgTrendScore, error)

	// --- Alerts ---

	// InsertAlert appends a new alert and returns its ID.
	InsertAlert(a schema.AnomalyAlert) (int64, error)

	// UnacknowledgedAlert returns the most recent unacknowledged alert for
	// the (alertType, entityKey) pair detected at or after since, or nil.
	UnacknowledgedAlert(alertType schema.AlertType, entityKey string, since time.Time) (*schema.AnomalyAlert, error)

	// ListAlerts returns up to limit alerts, newest first, optionally
	// including acknowledged ones.
	ListAlerts(limit int, includeAcked bool) ([]schema.AnomalyAlert, error)

	// AcknowledgeAlert marks an alert acknowledged with actor and timestamp.
	// Acknowledging an already-acknowledged alert is a no-op.
	AcknowledgeAlert(id int64, actor string, at time.Time) error

	// --- Job health ---

	// GetJobHealth returns the health record for a job, or nil when the job
	// has never run.
	GetJobHealth(job string) (*schema.JobHealth, error)

	// UpsertJobHealth replaces the health record for a job.
	UpsertJobHealth(h schema.JobHealth) error

	// ListJobHealth returns all job health records ordered by job name.
	ListJobHealth() ([]schema.JobHealth, error)

	// --- Lifecycle ---

	// GetStatus returns status information about the store.
	GetStatus() (schema.StoreStatus, error)

	// Clear removes all engine-owned state.
	Clear() error

	// Close closes the underlying connection.
	Close() error
}

// StoreManager hands out the trend store. It exists so command wiring and
// tests can swap the persistence layer without touching the engine.
type StoreManager interface {
	TrendStore() TrendStore
}
