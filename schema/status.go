package schema

import "time"

// StoreStatus describes the health and contents of the trend store.
type StoreStatus struct {
	Backend    string           `json:"backend"`
	Connected  bool             `json:"connected"`
	TableSizes map[string]int64 `json:"table_sizes"` // Row counts per table
	OldestItem time.Time        `json:"oldest_item"` // Oldest buffered mention
	NewestItem time.Time        `json:"newest_item"` // Most recent buffered mention
}

// JobHealth tracks one batch job's recent behavior for the external monitoring
// collaborator and for the circuit breaker.
type JobHealth struct {
	JobName         string        `json:"job_name"`
	LastRunAt       time.Time     `json:"last_run_at"`
	LastDuration    time.Duration `json:"last_duration"`
	ItemsProcessed  int           `json:"items_processed"` // Keys or events handled in the last run
	FailureStreak   int           `json:"failure_streak"`  // Consecutive failures/timeouts
	BreakerOpen     bool          `json:"breaker_open"`
	BreakerOpenedAt time.Time     `json:"breaker_opened_at"`
	LastError       string        `json:"last_error,omitempty"`
}
