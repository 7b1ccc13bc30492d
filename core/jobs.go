package core

import (
	"context"
	"fmt"
	"time"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/schema"
)

// Job names tracked in job health records.
const (
	JobIngest    = "ingest"
	JobRescore   = "rescore"
	JobBaselines = "baselines"
)

// JobResult reports one job invocation's outcome.
type JobResult struct {
	Job      string
	Items    int           // Keys or events handled
	Duration time.Duration // Wall-clock run time
	Skipped  bool          // Circuit breaker held the job back
	Err      error
}

// RunJob executes one batch job under its time budget with circuit-breaker
// protection. While the breaker is open and the cooldown has not elapsed the
// job is skipped outright; once the cooldown passes the job gets one probe
// run, and a success closes the breaker. Failures and budget timeouts feed
// the consecutive-failure streak, and crossing the threshold opens the
// breaker. Health bookkeeping is persisted before returning so the external
// monitor always sees the latest run.
func RunJob(store contract.TrendStore, cfg *contract.Config, job string, fn func(ctx context.Context) (int, error)) JobResult {
	health := loadHealth(store, job)

	if health.BreakerOpen {
		if cfg.BatchTime.Sub(health.BreakerOpenedAt) < cfg.BreakerCooldown {
			return JobResult{Job: job, Skipped: true}
		}
		// Cooldown elapsed; probe run decides whether the breaker closes.
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.TimeBudget)
	defer cancel()

	start := time.Now()
	items, err := fn(ctx)
	if err == nil && ctx.Err() != nil {
		err = fmt.Errorf("job %s exceeded its %s time budget", job, cfg.TimeBudget)
	}
	duration := time.Since(start)

	health.JobName = job
	health.LastRunAt = cfg.BatchTime
	health.LastDuration = duration
	health.ItemsProcessed = items

	if err != nil {
		health.FailureStreak++
		health.LastError = err.Error()
		if health.FailureStreak >= cfg.BreakerThreshold {
			health.BreakerOpen = true
			health.BreakerOpenedAt = cfg.BatchTime
		}
	} else {
		health.FailureStreak = 0
		health.BreakerOpen = false
		health.BreakerOpenedAt = time.Time{}
		health.LastError = ""
	}

	if upsertErr := store.UpsertJobHealth(health); upsertErr != nil && err == nil {
		err = upsertErr
	}

	return JobResult{Job: job, Items: items, Duration: duration, Err: err}
}

// loadHealth returns the stored health record for a job, or a zeroed one for
// a job that has never run. A read failure degrades to the zero record: the
// job still runs, it just cannot honor a breaker it could not read.
func loadHealth(store contract.TrendStore, job string) schema.JobHealth {
	health, err := store.GetJobHealth(job)
	if err != nil || health == nil {
		return schema.JobHealth{JobName: job}
	}
	return *health
}
