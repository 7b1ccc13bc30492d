package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/internal/outwriter"
	"github.com/newsradar/trendwatch/internal/trendstore"
	"github.com/newsradar/trendwatch/schema"
)

// ExecutorFunc defines the function signature for executing different engine modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// ExecuteIngest loads a batch of mention events from a JSON file (or stdin
// when path is "-"), appends them to the mention buffer, recounts window
// stats for the top-K keys and prunes expired events. The whole pass runs as
// one bounded job so repeated ingestion of the same file is idempotent.
func ExecuteIngest(ctx context.Context, cfg *contract.Config, inputPath string) error {
	start := time.Now()
	store := trendstore.Manager.TrendStore()

	events, err := loadMentionEvents(inputPath)
	if err != nil {
		return err
	}

	var inserted, pruned int
	result := RunJob(store, cfg, JobIngest, func(jobCtx context.Context) (int, error) {
		var err error
		if inserted, err = store.InsertMentions(events); err != nil {
			return 0, err
		}
		if err = recountWindowStats(jobCtx, store, cfg); err != nil {
			return inserted, err
		}
		pruned, err = store.PruneMentions(cfg.BatchTime.Add(-cfg.MentionRetention))
		return inserted, err
	})
	if result.Skipped {
		return fmt.Errorf("ingest job skipped: circuit breaker is open")
	}
	if result.Err != nil {
		return result.Err
	}

	duration := time.Since(start)
	return outwriter.PrintIngestSummary(outwriter.IngestSummary{
		Received: len(events),
		Inserted: inserted,
		Pruned:   pruned,
	}, cfg, duration)
}

// ExecuteBaselines recomputes daily baselines for the top-K keys from the
// trailing hourly history and prints the refreshed rows.
func ExecuteBaselines(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	store := trendstore.Manager.TrendStore()

	var refreshed []schema.TrendBaseline
	result := RunJob(store, cfg, JobBaselines, func(jobCtx context.Context) (int, error) {
		events, err := store.MentionsSince(cfg.BatchTime.Add(-Window7d))
		if err != nil {
			return 0, err
		}
		// Bound the pass to the hottest persisted keys; keys outside the
		// top-K keep their previous baseline until a later cycle.
		top, err := store.TopWindowStats(cfg.TopK)
		if err != nil {
			return 0, err
		}
		for _, ws := range top {
			if jobCtx.Err() != nil {
				break
			}
			key := ws.Key
			hourly := HourlyCounts(events, key, cfg.BatchTime, 7*24)
			baseline := BuildBaseline(cfg, key, hourly, cfg.BatchTime)
			if err := store.UpsertBaseline(baseline); err != nil {
				return len(refreshed), err
			}
			refreshed = append(refreshed, baseline)
		}
		if _, err := store.PruneBaselines(cfg.BatchTime.Add(-cfg.RetentionPeriod)); err != nil {
			return len(refreshed), err
		}
		return len(refreshed), nil
	})
	if result.Skipped {
		return fmt.Errorf("baselines job skipped: circuit breaker is open")
	}
	if result.Err != nil {
		return result.Err
	}

	if len(refreshed) > cfg.ResultLimit {
		refreshed = refreshed[:cfg.ResultLimit]
	}
	duration := time.Since(start)
	return outwriter.PrintBaselineResults(refreshed, cfg, duration)
}

// ExecuteRescore runs the full scoring pass: aggregate, cluster, score, run
// the lifecycle machine, refresh org scores and emit alerts, all bounded to
// the top-K keys by recent volume. Keys outside the top-K simply wait for a
// later cycle; stored trends with no fresh evidence are decayed in a second
// pass over the trend table.
func ExecuteRescore(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	store := trendstore.Manager.TrendStore()

	var scored, alertsEmitted int
	result := RunJob(store, cfg, JobRescore, func(jobCtx context.Context) (int, error) {
		events, err := store.MentionsSince(cfg.BatchTime.Add(-Window7d))
		if err != nil {
			return 0, err
		}
		stats := AggregateMentions(events, cfg.BatchTime)
		clusters := ClusterPhrases(collectVariants(events), cfg.SimilarityThreshold)

		for _, key := range TopKeysByVolume(stats, cfg.TopK) {
			if jobCtx.Err() != nil {
				break
			}
			emitted, err := rescoreKey(store, cfg, key, *stats[key], events, clusters)
			if err != nil {
				return scored, err
			}
			scored++
			alertsEmitted += emitted
		}

		if err := decayStaleTrends(jobCtx, store, cfg, stats); err != nil {
			return scored, err
		}
		return scored, nil
	})
	if result.Skipped {
		return fmt.Errorf("rescore job skipped: circuit breaker is open")
	}
	if result.Err != nil {
		return result.Err
	}

	duration := time.Since(start)
	return outwriter.PrintRescoreSummary(outwriter.RescoreSummary{
		KeysScored:    scored,
		AlertsEmitted: alertsEmitted,
	}, cfg, duration)
}

// ExecuteTrends prints the ranked trend feed.
func ExecuteTrends(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	store := trendstore.Manager.TrendStore()

	trends, err := store.ListTrendEvents(cfg.ResultLimit, false)
	if err != nil {
		return err
	}
	if cfg.BreakingOnly {
		filtered := trends[:0]
		for _, t := range trends {
			if t.IsBreaking {
				filtered = append(filtered, t)
			}
		}
		trends = filtered
	}

	duration := time.Since(start)
	return outwriter.PrintTrendResults(trends, cfg, duration)
}

// ExecuteOrgs prints the per-tenant relevance feed. Expired scores are
// filtered by the store, never served stale.
func ExecuteOrgs(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	if cfg.Org == "" {
		return errors.New("--org is required")
	}
	store := trendstore.Manager.TrendStore()

	scores, err := store.ListOrgScores(cfg.Org, cfg.BatchTime, cfg.ResultLimit)
	if err != nil {
		return err
	}

	duration := time.Since(start)
	return outwriter.PrintOrgScoreResults(scores, cfg, duration)
}

// ExecuteAlerts prints the alert feed, newest first.
func ExecuteAlerts(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	store := trendstore.Manager.TrendStore()

	alerts, err := store.ListAlerts(cfg.ResultLimit, cfg.IncludeAcked)
	if err != nil {
		return err
	}

	duration := time.Since(start)
	return outwriter.PrintAlertResults(alerts, cfg, duration)
}

// ExecuteAlertAck acknowledges one alert by ID. Acknowledgment is one-way;
// re-acknowledging is a quiet no-op.
func ExecuteAlertAck(ctx context.Context, cfg *contract.Config, idArg string) error {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid alert id %q: %w", idArg, err)
	}
	if cfg.Actor == "" {
		return errors.New("--actor is required to acknowledge an alert")
	}
	store := trendstore.Manager.TrendStore()
	return store.AcknowledgeAlert(id, cfg.Actor, cfg.BatchTime)
}

// ExecuteMetrics prints the active scoring configuration and per-job health.
func ExecuteMetrics(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	store := trendstore.Manager.TrendStore()

	health, err := store.ListJobHealth()
	if err != nil {
		return err
	}

	duration := time.Since(start)
	return outwriter.PrintMetrics(health, cfg, duration)
}

// rescoreKey runs the per-key pipeline: score, classify, lifecycle, persist,
// org-score and alert. Each key's updates are independent upserts, so a job
// cut short by its budget leaves no partial corruption behind.
func rescoreKey(store contract.TrendStore, cfg *contract.Config, key string, ws schema.WindowStats, events []schema.MentionEvent, clusters []schema.PhraseCluster) (int, error) {
	if err := store.UpsertWindowStats(ws); err != nil {
		return 0, err
	}

	baseline, err := store.GetBaseline(key)
	if err != nil {
		return 0, err
	}

	label, topAuthority := key, 0.0
	cluster := ClusterForKey(clusters, key)
	if cluster != nil {
		label = cluster.CanonicalPhrase
		topAuthority = cluster.TopAuthorityScore
	}

	quality := ClassifyLabel(label, hasEventPhraseEvidence(events, key))
	var trendCtx TrendContext
	if quality == schema.EntityOnlyLabel {
		trendCtx = BuildContext(key, events)
	}

	scores := ScoreTrend(cfg, ws, baseline, topAuthority)

	prev, err := store.GetTrendEvent(key)
	if err != nil {
		return 0, err
	}

	prevState := schema.DormantState
	firstSeen := cfg.BatchTime
	if prev != nil {
		prevState = prev.State
		firstSeen = prev.FirstSeenAt
	}

	evergreen := baseline != nil && baseline.IsStable
	decision := Advance(cfg, LifecycleInput{
		PrevState:       prevState,
		LastSeenAt:      ws.LastSeenAt,
		Mentions1h:      ws.Mentions1h,
		Mentions6h:      ws.Mentions6h,
		Mentions24h:     ws.Mentions24h,
		SourceTypeCount: ws.SourceTypeCount(),
		Velocity:        scores.Velocity,
		SpikeRatio:      scores.SpikeRatio,
		IsEvergreen:     evergreen,
		IsBlocklisted:   IsBlocklisted(cfg.Blocklist, key),
	})

	trend := schema.TrendEvent{
		Key:             key,
		CanonicalLabel:  label,
		DisplayTitle:    DisplayTitle(label, quality, trendCtx),
		LabelQuality:    quality,
		ContextTerms:    trendCtx.Terms,
		ContextPhrases:  trendCtx.Phrases,
		ContextSummary:  trendCtx.Summary,
		Velocity:        scores.Velocity,
		TrueZScore:      scores.TrueZScore,
		PoissonSurprise: scores.PoissonSurprise,
		BurstScore:      trendCtx.BurstScore,
		SpikeRatio:      scores.SpikeRatio,
		RankScore:       scores.RankScore,
		RankBreakdown:   scores.RankBreakdown,
		ConfidenceScore: scores.ConfidenceScore,
		State:           decision.State,
		IsTrending:      decision.IsTrending,
		IsBreaking:      decision.IsBreaking,
		IsEvergreen:     evergreen,
		Mentions1h:      ws.Mentions1h,
		Mentions6h:      ws.Mentions6h,
		Mentions24h:     ws.Mentions24h,
		SourceTypeCount: ws.SourceTypeCount(),
		FirstSeenAt:     firstSeen,
		LastSeenAt:      ws.LastSeenAt,
		UpdatedAt:       cfg.BatchTime,
	}
	if err := store.UpsertTrendEvent(trend); err != nil {
		return 0, err
	}
	if decision.StampSince {
		if err := store.SetTrendingSince(key, cfg.BatchTime); err != nil {
			return 0, err
		}
	}
	if decision.ClearSince {
		if err := store.ClearTrendingSince(key); err != nil {
			return 0, err
		}
	}

	if decision.IsTrending {
		// Reload so org scoring sees the stamped trendingSince.
		stored, err := store.GetTrendEvent(key)
		if err != nil {
			return 0, err
		}
		if stored != nil {
			trend = *stored
		}
		for _, watchlist := range cfg.Watchlists {
			if err := store.UpsertOrgScore(ScoreOrgTrend(cfg, trend, watchlist)); err != nil {
				return 0, err
			}
		}
	}

	return EmitAlerts(store, cfg, BuildAlertCandidates(cfg, key, ws, baseline, scores))
}

// decayStaleTrends walks stored trends whose keys produced no fresh window
// stats this cycle and applies the time-based transitions so quiet topics
// still decay and go dormant.
func decayStaleTrends(ctx context.Context, store contract.TrendStore, cfg *contract.Config, fresh map[string]*schema.WindowStats) error {
	trends, err := store.ListTrendEvents(contract.MaxResultLimit, false)
	if err != nil {
		return err
	}
	for _, trend := range trends {
		if ctx.Err() != nil {
			return nil
		}
		if _, ok := fresh[trend.Key]; ok {
			continue
		}
		decision := Advance(cfg, LifecycleInput{
			PrevState:  trend.State,
			LastSeenAt: trend.LastSeenAt,
		})
		if decision.State == trend.State {
			continue
		}
		trend.State = decision.State
		trend.IsTrending = decision.IsTrending
		trend.IsBreaking = decision.IsBreaking
		trend.UpdatedAt = cfg.BatchTime
		if err := store.UpsertTrendEvent(trend); err != nil {
			return err
		}
		if decision.ClearSince {
			if err := store.ClearTrendingSince(trend.Key); err != nil {
				return err
			}
		}
	}
	return nil
}

// recountWindowStats refreshes the window stats rows for the current top-K
// keys from the buffered events.
func recountWindowStats(ctx context.Context, store contract.TrendStore, cfg *contract.Config) error {
	events, err := store.MentionsSince(cfg.BatchTime.Add(-Window7d))
	if err != nil {
		return err
	}
	stats := AggregateMentions(events, cfg.BatchTime)
	for _, key := range TopKeysByVolume(stats, cfg.TopK) {
		if ctx.Err() != nil {
			return nil
		}
		if err := store.UpsertWindowStats(*stats[key]); err != nil {
			return err
		}
	}
	return nil
}

// collectVariants rolls the raw event buffer up into per-spelling evidence
// for the clustering pass.
func collectVariants(events []schema.MentionEvent) []PhraseVariant {
	byPhrase := make(map[string]*PhraseVariant)
	for _, ev := range events {
		v, ok := byPhrase[ev.RawTopic]
		if !ok {
			v = &PhraseVariant{Phrase: ev.RawTopic}
			byPhrase[ev.RawTopic] = v
		}
		v.Mentions++
		if score := ev.AuthorityScore(); score > v.TopAuthority {
			v.TopAuthority = score
		}
		if ev.IsEventPhrase {
			v.IsEventPhrase = true
		}
	}
	variants := make([]PhraseVariant, 0, len(byPhrase))
	for _, v := range byPhrase {
		variants = append(variants, *v)
	}
	return variants
}

// hasEventPhraseEvidence reports whether any buffered event for the key was
// flagged as a full event phrase by upstream extraction.
func hasEventPhraseEvidence(events []schema.MentionEvent, key string) bool {
	for _, ev := range events {
		if ev.IsEventPhrase && Normalize(ev.RawTopic) == key {
			return true
		}
	}
	return false
}

// loadMentionEvents reads a JSON array of mention events from a file or stdin.
func loadMentionEvents(path string) ([]schema.MentionEvent, error) {
	var reader io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	}

	var events []schema.MentionEvent
	if err := json.NewDecoder(reader).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode mention events: %w", err)
	}
	for i := range events {
		if _, ok := schema.ValidSourceTypes[events[i].SourceType]; !ok {
			return nil, fmt.Errorf("event %d has invalid source type %q", i, events[i].SourceType)
		}
		events[i].TopicKey = Normalize(events[i].RawTopic)
	}
	return events, nil
}
