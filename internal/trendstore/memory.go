package trendstore

import (
	"sort"
	"sync"
	"time"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/schema"
)

// MemStore is an in-memory TrendStore used by tests and by callers that want
// engine semantics without a database. It honors the same contract as the SQL
// store, including the conditional trending-since write.
type MemStore struct {
	mu sync.Mutex

	mentions  map[string]schema.MentionEvent // keyed by sourceID + occurredAt + topicKey
	stats     map[string]schema.WindowStats
	baselines map[string][]schema.TrendBaseline // newest bucket first
	trends    map[string]schema.TrendEvent
	orgScores map[string]map[string]schema.OrgTrendScore // orgID -> trendKey
	alerts    []schema.AnomalyAlert
	jobs      map[string]schema.JobHealth
}

var _ contract.TrendStore = &MemStore{} // Compile-time check

// NewMemStore creates an empty in-memory trend store.
func NewMemStore() *MemStore {
	return &MemStore{
		mentions:  make(map[string]schema.MentionEvent),
		stats:     make(map[string]schema.WindowStats),
		baselines: make(map[string][]schema.TrendBaseline),
		trends:    make(map[string]schema.TrendEvent),
		orgScores: make(map[string]map[string]schema.OrgTrendScore),
		jobs:      make(map[string]schema.JobHealth),
	}
}

func mentionKey(ev schema.MentionEvent) string {
	return ev.SourceID + "\x00" + ev.OccurredAt.UTC().Format(time.RFC3339Nano) + "\x00" + ev.TopicKey
}

// InsertMentions appends events, skipping (SourceID, OccurredAt, TopicKey)
// duplicates.
func (m *MemStore) InsertMentions(events []schema.MentionEvent) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inserted := 0
	for _, ev := range events {
		k := mentionKey(ev)
		if _, ok := m.mentions[k]; ok {
			continue
		}
		m.mentions[k] = ev
		inserted++
	}
	return inserted, nil
}

// MentionsSince returns buffered events at or after since, oldest first.
func (m *MemStore) MentionsSince(since time.Time) ([]schema.MentionEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []schema.MentionEvent
	for _, ev := range m.mentions {
		if !ev.OccurredAt.Before(since) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		if out[i].SourceID != out[j].SourceID {
			return out[i].SourceID < out[j].SourceID
		}
		return out[i].TopicKey < out[j].TopicKey
	})
	return out, nil
}

// PruneMentions deletes events older than before.
func (m *MemStore) PruneMentions(before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pruned := 0
	for k, ev := range m.mentions {
		if ev.OccurredAt.Before(before) {
			delete(m.mentions, k)
			pruned++
		}
	}
	return pruned, nil
}

// UpsertWindowStats replaces the stats row for a key.
func (m *MemStore) UpsertWindowStats(stats schema.WindowStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[stats.Key] = stats
	return nil
}

// GetWindowStats returns the stats row for a key, or nil.
func (m *MemStore) GetWindowStats(key string) (*schema.WindowStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stats, ok := m.stats[key]; ok {
		return &stats, nil
	}
	return nil, nil
}

// TopWindowStats returns up to limit rows by 24h volume descending.
func (m *MemStore) TopWindowStats(limit int) ([]schema.WindowStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]schema.WindowStats, 0, len(m.stats))
	for _, stats := range m.stats {
		out = append(out, stats)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mentions24h != out[j].Mentions24h {
			return out[i].Mentions24h > out[j].Mentions24h
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpsertBaseline replaces the baseline row for a (key, bucket) pair.
func (m *MemStore) UpsertBaseline(b schema.TrendBaseline) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.baselines[b.Key]
	for i := range history {
		if history[i].Bucket == b.Bucket {
			history[i] = b
			return nil
		}
	}
	m.baselines[b.Key] = append(history, b)
	sort.Slice(m.baselines[b.Key], func(i, j int) bool {
		return m.baselines[b.Key][i].Bucket > m.baselines[b.Key][j].Bucket
	})
	return nil
}

// GetBaseline returns the most recent baseline for a key, or nil.
func (m *MemStore) GetBaseline(key string) (*schema.TrendBaseline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.baselines[key]
	if len(history) == 0 {
		return nil, nil
	}
	b := history[0]
	return &b, nil
}

// PruneBaselines deletes baselines computed before the given time.
func (m *MemStore) PruneBaselines(before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pruned := 0
	for key, history := range m.baselines {
		kept := history[:0]
		for _, b := range history {
			if b.ComputedAt.Before(before) {
				pruned++
				continue
			}
			kept = append(kept, b)
		}
		m.baselines[key] = kept
	}
	return pruned, nil
}

// UpsertTrendEvent replaces the trend row for a key, preserving the stored
// TrendingSince.
func (m *MemStore) UpsertTrendEvent(ev schema.TrendEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.trends[ev.Key]; ok {
		ev.TrendingSince = prev.TrendingSince
	} else {
		ev.TrendingSince = nil
	}
	m.trends[ev.Key] = ev
	return nil
}

// SetTrendingSince stamps the timestamp only when currently null.
func (m *MemStore) SetTrendingSince(key string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.trends[key]
	if !ok || ev.TrendingSince != nil {
		return nil
	}
	stamp := t
	ev.TrendingSince = &stamp
	m.trends[key] = ev
	return nil
}

// ClearTrendingSince nulls the timestamp.
func (m *MemStore) ClearTrendingSince(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev, ok := m.trends[key]; ok {
		ev.TrendingSince = nil
		m.trends[key] = ev
	}
	return nil
}

// GetTrendEvent returns the trend row for a key, or nil.
func (m *MemStore) GetTrendEvent(key string) (*schema.TrendEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev, ok := m.trends[key]; ok {
		return &ev, nil
	}
	return nil, nil
}

// ListTrendEvents returns up to limit rows by rank score descending.
func (m *MemStore) ListTrendEvents(limit int, onlyTrending bool) ([]schema.TrendEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]schema.TrendEvent, 0, len(m.trends))
	for _, ev := range m.trends {
		if onlyTrending && !ev.IsTrending {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RankScore != out[j].RankScore {
			return out[i].RankScore > out[j].RankScore
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpsertOrgScore replaces the score row for an (org, trend key) pair.
func (m *MemStore) UpsertOrgScore(s schema.OrgTrendScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byTrend, ok := m.orgScores[s.OrgID]
	if !ok {
		byTrend = make(map[string]schema.OrgTrendScore)
		m.orgScores[s.OrgID] = byTrend
	}
	byTrend[s.TrendKey] = s
	return nil
}

// ListOrgScores returns non-expired scores by relevance descending.
func (m *MemStore) ListOrgScores(orgID string, now time.Time, limit int) ([]schema.OrgTrendScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []schema.OrgTrendScore
	for _, s := range m.orgScores[orgID] {
		if s.Expired(now) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RelevanceScore != out[j].RelevanceScore {
			return out[i].RelevanceScore > out[j].RelevanceScore
		}
		return out[i].TrendKey < out[j].TrendKey
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// InsertAlert appends a new alert.
func (m *MemStore) InsertAlert(a schema.AnomalyAlert) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == 0 {
		a.ID = int64(len(m.alerts) + 1)
	}
	m.alerts = append(m.alerts, a)
	return a.ID, nil
}

// UnacknowledgedAlert returns the newest matching unacked alert, or nil.
func (m *MemStore) UnacknowledgedAlert(alertType schema.AlertType, entityKey string, since time.Time) (*schema.AnomalyAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *schema.AnomalyAlert
	for i := range m.alerts {
		a := m.alerts[i]
		if a.AlertType != alertType || a.EntityKey != entityKey || a.IsAcknowledged {
			continue
		}
		if a.DetectedAt.Before(since) {
			continue
		}
		if found == nil || a.DetectedAt.After(found.DetectedAt) {
			copied := a
			found = &copied
		}
	}
	return found, nil
}

// ListAlerts returns up to limit alerts, newest first.
func (m *MemStore) ListAlerts(limit int, includeAcked bool) ([]schema.AnomalyAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []schema.AnomalyAlert
	for _, a := range m.alerts {
		if !includeAcked && a.IsAcknowledged {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DetectedAt.Equal(out[j].DetectedAt) {
			return out[i].DetectedAt.After(out[j].DetectedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AcknowledgeAlert marks an alert acknowledged; re-acking is a no-op.
func (m *MemStore) AcknowledgeAlert(id int64, actor string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.alerts {
		if m.alerts[i].ID != id || m.alerts[i].IsAcknowledged {
			continue
		}
		m.alerts[i].IsAcknowledged = true
		m.alerts[i].AckBy = actor
		stamp := at
		m.alerts[i].AckAt = &stamp
	}
	return nil
}

// GetJobHealth returns the health record for a job, or nil.
func (m *MemStore) GetJobHealth(job string) (*schema.JobHealth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.jobs[job]; ok {
		return &h, nil
	}
	return nil, nil
}

// UpsertJobHealth replaces the health record for a job.
func (m *MemStore) UpsertJobHealth(h schema.JobHealth) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[h.JobName] = h
	return nil
}

// ListJobHealth returns all records ordered by job name.
func (m *MemStore) ListJobHealth() ([]schema.JobHealth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]schema.JobHealth, 0, len(m.jobs))
	for _, h := range m.jobs {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JobName < out[j].JobName })
	return out, nil
}

// GetStatus returns status information about the store.
func (m *MemStore) GetStatus() (schema.StoreStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := schema.StoreStatus{
		Backend:   "memory",
		Connected: true,
		TableSizes: map[string]int64{
			mentionsTable:    int64(len(m.mentions)),
			windowStatsTable: int64(len(m.stats)),
			trendEventsTable: int64(len(m.trends)),
			alertsTable:      int64(len(m.alerts)),
			jobHealthTable:   int64(len(m.jobs)),
		},
	}
	for _, ev := range m.mentions {
		if status.OldestItem.IsZero() || ev.OccurredAt.Before(status.OldestItem) {
			status.OldestItem = ev.OccurredAt
		}
		if ev.OccurredAt.After(status.NewestItem) {
			status.NewestItem = ev.OccurredAt
		}
	}
	return status, nil
}

// Clear removes all state.
func (m *MemStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mentions = make(map[string]schema.MentionEvent)
	m.stats = make(map[string]schema.WindowStats)
	m.baselines = make(map[string][]schema.TrendBaseline)
	m.trends = make(map[string]schema.TrendEvent)
	m.orgScores = make(map[string]map[string]schema.OrgTrendScore)
	m.alerts = nil
	m.jobs = make(map[string]schema.JobHealth)
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error { return nil }
