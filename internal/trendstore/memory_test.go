package trendstore

import (
	"testing"
	"time"

	"github.com/newsradar/trendwatch/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storeNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func storeMention(sourceID string, ago time.Duration) schema.MentionEvent {
	return schema.MentionEvent{
		SourceType: schema.NewsSource,
		RawTopic:   "wildfire",
		TopicKey:   "wildfire",
		SourceID:   sourceID,
		SourceTier: 1,
		OccurredAt: storeNow.Add(-ago),
	}
}

// TestMemStoreMentions tests the dedupe contract and windowed reads.
func TestMemStoreMentions(t *testing.T) {
	store := NewMemStore()

	inserted, err := store.InsertMentions([]schema.MentionEvent{
		storeMention("doc-1", time.Hour),
		storeMention("doc-2", 2*time.Hour),
		storeMention("doc-1", time.Hour), // same (source, occurred-at) pair
		storeMention("doc-3", 30*time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	t.Run("re-ingesting the same batch inserts nothing", func(t *testing.T) {
		inserted, err := store.InsertMentions([]schema.MentionEvent{storeMention("doc-1", time.Hour)})
		require.NoError(t, err)
		assert.Zero(t, inserted)
	})

	t.Run("same document with a second topic is a new event", func(t *testing.T) {
		multi := NewMemStore()
		first := storeMention("doc-1", time.Hour)
		second := storeMention("doc-1", time.Hour)
		second.RawTopic = "senate hearing"
		second.TopicKey = "senate hearing"
		inserted, err := multi.InsertMentions([]schema.MentionEvent{first, second, second})
		require.NoError(t, err)
		assert.Equal(t, 2, inserted)
	})

	t.Run("since filters and orders oldest first", func(t *testing.T) {
		events, err := store.MentionsSince(storeNow.Add(-24 * time.Hour))
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "doc-2", events[0].SourceID)
		assert.Equal(t, "doc-1", events[1].SourceID)
	})

	t.Run("pruning removes only expired events", func(t *testing.T) {
		pruned, err := store.PruneMentions(storeNow.Add(-24 * time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, pruned)

		events, err := store.MentionsSince(time.Time{})
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})
}

// TestMemStoreTrendingSince tests the conditional stamp semantics.
func TestMemStoreTrendingSince(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.UpsertTrendEvent(schema.TrendEvent{Key: "wildfire", RankScore: 10}))

	t.Run("stamp writes only when null", func(t *testing.T) {
		require.NoError(t, store.SetTrendingSince("wildfire", storeNow))
		require.NoError(t, store.SetTrendingSince("wildfire", storeNow.Add(time.Hour)))

		ev, err := store.GetTrendEvent("wildfire")
		require.NoError(t, err)
		require.NotNil(t, ev.TrendingSince)
		assert.Equal(t, storeNow, *ev.TrendingSince) // first stamp survives
	})

	t.Run("upsert preserves the stored stamp", func(t *testing.T) {
		require.NoError(t, store.UpsertTrendEvent(schema.TrendEvent{Key: "wildfire", RankScore: 20}))

		ev, err := store.GetTrendEvent("wildfire")
		require.NoError(t, err)
		assert.InDelta(t, 20.0, ev.RankScore, 0.001)
		require.NotNil(t, ev.TrendingSince)
		assert.Equal(t, storeNow, *ev.TrendingSince)
	})

	t.Run("clear nulls the stamp so the next stamp takes", func(t *testing.T) {
		require.NoError(t, store.ClearTrendingSince("wildfire"))
		ev, err := store.GetTrendEvent("wildfire")
		require.NoError(t, err)
		assert.Nil(t, ev.TrendingSince)

		later := storeNow.Add(2 * time.Hour)
		require.NoError(t, store.SetTrendingSince("wildfire", later))
		ev, err = store.GetTrendEvent("wildfire")
		require.NoError(t, err)
		require.NotNil(t, ev.TrendingSince)
		assert.Equal(t, later, *ev.TrendingSince)
	})

	t.Run("unknown key is a no-op", func(t *testing.T) {
		require.NoError(t, store.SetTrendingSince("missing", storeNow))
		ev, err := store.GetTrendEvent("missing")
		require.NoError(t, err)
		assert.Nil(t, ev)
	})
}

// TestMemStoreListTrendEvents tests rank ordering and the trending filter.
func TestMemStoreListTrendEvents(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.UpsertTrendEvent(schema.TrendEvent{Key: "alpha", RankScore: 5, IsTrending: true}))
	require.NoError(t, store.UpsertTrendEvent(schema.TrendEvent{Key: "beta", RankScore: 9}))
	require.NoError(t, store.UpsertTrendEvent(schema.TrendEvent{Key: "gamma", RankScore: 7, IsTrending: true}))

	all, err := store.ListTrendEvents(10, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "beta", all[0].Key)
	assert.Equal(t, "gamma", all[1].Key)

	trending, err := store.ListTrendEvents(10, true)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	assert.Equal(t, "gamma", trending[0].Key)

	limited, err := store.ListTrendEvents(1, false)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

// TestMemStoreOrgScores tests TTL filtering on the read path.
func TestMemStoreOrgScores(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.UpsertOrgScore(schema.OrgTrendScore{
		OrgID:          "org-a",
		TrendKey:       "fresh",
		RelevanceScore: 40,
		ExpiresAt:      storeNow.Add(time.Hour),
	}))
	require.NoError(t, store.UpsertOrgScore(schema.OrgTrendScore{
		OrgID:          "org-a",
		TrendKey:       "stale",
		RelevanceScore: 90,
		ExpiresAt:      storeNow.Add(-time.Minute),
	}))

	scores, err := store.ListOrgScores("org-a", storeNow, 10)
	require.NoError(t, err)
	require.Len(t, scores, 1) // expired scores are never served
	assert.Equal(t, "fresh", scores[0].TrendKey)

	none, err := store.ListOrgScores("org-b", storeNow, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

// TestMemStoreAlerts tests the append model and one-way acknowledgment.
func TestMemStoreAlerts(t *testing.T) {
	store := NewMemStore()
	id, err := store.InsertAlert(schema.AnomalyAlert{
		AlertType:  schema.MentionSpikeAlert,
		EntityKey:  "wildfire",
		Severity:   schema.HighSeverity,
		DetectedAt: storeNow.Add(-time.Hour),
	})
	require.NoError(t, err)
	_, err = store.InsertAlert(schema.AnomalyAlert{
		AlertType:  schema.VelocitySurgeAlert,
		EntityKey:  "wildfire",
		Severity:   schema.MediumSeverity,
		DetectedAt: storeNow,
	})
	require.NoError(t, err)

	t.Run("list is newest first", func(t *testing.T) {
		alerts, err := store.ListAlerts(10, true)
		require.NoError(t, err)
		require.Len(t, alerts, 2)
		assert.Equal(t, schema.VelocitySurgeAlert, alerts[0].AlertType)
	})

	t.Run("acknowledgment is one-way", func(t *testing.T) {
		require.NoError(t, store.AcknowledgeAlert(id, "oncall", storeNow))
		require.NoError(t, store.AcknowledgeAlert(id, "someone-else", storeNow.Add(time.Hour)))

		alerts, err := store.ListAlerts(10, true)
		require.NoError(t, err)
		var acked *schema.AnomalyAlert
		for i := range alerts {
			if alerts[i].ID == id {
				acked = &alerts[i]
			}
		}
		require.NotNil(t, acked)
		assert.True(t, acked.IsAcknowledged)
		assert.Equal(t, "oncall", acked.AckBy) // the first ack sticks
		require.NotNil(t, acked.AckAt)
		assert.Equal(t, storeNow, *acked.AckAt)
	})

	t.Run("acked alerts drop out of the default listing", func(t *testing.T) {
		alerts, err := store.ListAlerts(10, false)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.False(t, alerts[0].IsAcknowledged)
	})

	t.Run("throttle lookup ignores acked alerts", func(t *testing.T) {
		found, err := store.UnacknowledgedAlert(schema.MentionSpikeAlert, "wildfire", storeNow.Add(-4*time.Hour))
		require.NoError(t, err)
		assert.Nil(t, found)

		found, err = store.UnacknowledgedAlert(schema.VelocitySurgeAlert, "wildfire", storeNow.Add(-4*time.Hour))
		require.NoError(t, err)
		assert.NotNil(t, found)
	})
}

// TestMemStoreWindowStats tests upsert-read round trips and volume ordering.
func TestMemStoreWindowStats(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.UpsertWindowStats(schema.WindowStats{Key: "alpha", Mentions24h: 5}))
	require.NoError(t, store.UpsertWindowStats(schema.WindowStats{Key: "beta", Mentions24h: 9}))
	require.NoError(t, store.UpsertWindowStats(schema.WindowStats{Key: "gamma", Mentions24h: 9}))

	stats, err := store.GetWindowStats("alpha")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 5, stats.Mentions24h)

	missing, err := store.GetWindowStats("missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	top, err := store.TopWindowStats(2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "beta", top[0].Key) // key breaks the volume tie
	assert.Equal(t, "gamma", top[1].Key)
}

// TestMemStoreBaselines tests bucket history and retention pruning.
func TestMemStoreBaselines(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.UpsertBaseline(schema.TrendBaseline{
		Key: "economy", Bucket: "2026-08-19", MeanHourly: 9, ComputedAt: storeNow.Add(-24 * time.Hour),
	}))
	require.NoError(t, store.UpsertBaseline(schema.TrendBaseline{
		Key: "economy", Bucket: "2026-08-20", MeanHourly: 10, ComputedAt: storeNow,
	}))

	t.Run("read returns the newest bucket", func(t *testing.T) {
		b, err := store.GetBaseline("economy")
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, "2026-08-20", b.Bucket)
	})

	t.Run("same bucket upserts in place", func(t *testing.T) {
		require.NoError(t, store.UpsertBaseline(schema.TrendBaseline{
			Key: "economy", Bucket: "2026-08-20", MeanHourly: 12, ComputedAt: storeNow,
		}))
		b, err := store.GetBaseline("economy")
		require.NoError(t, err)
		assert.InDelta(t, 12.0, b.MeanHourly, 0.001)
	})

	t.Run("pruning drops old computations", func(t *testing.T) {
		pruned, err := store.PruneBaselines(storeNow.Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, pruned)

		b, err := store.GetBaseline("economy")
		require.NoError(t, err)
		assert.Equal(t, "2026-08-20", b.Bucket)
	})
}

// TestMemStoreStatus tests the status rollup.
func TestMemStoreStatus(t *testing.T) {
	store := NewMemStore()
	_, err := store.InsertMentions([]schema.MentionEvent{
		storeMention("doc-1", time.Hour),
		storeMention("doc-2", 5*time.Hour),
	})
	require.NoError(t, err)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "memory", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, int64(2), status.TableSizes[mentionsTable])
	assert.Equal(t, storeNow.Add(-5*time.Hour), status.OldestItem)
	assert.Equal(t, storeNow.Add(-time.Hour), status.NewestItem)

	require.NoError(t, store.Clear())
	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Zero(t, status.TableSizes[mentionsTable])
}
