package core

import (
	"testing"
	"time"

	"github.com/newsradar/trendwatch/internal/trendstore"
	"github.com/newsradar/trendwatch/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSeverityForZScore tests tier selection across the default thresholds.
func TestSeverityForZScore(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		zScore   float64
		expected schema.Severity
		ok       bool
	}{
		{name: "below the lowest tier", zScore: 1.5, ok: false},
		{name: "low tier", zScore: 2.5, expected: schema.LowSeverity, ok: true},
		{name: "medium tier", zScore: 3.5, expected: schema.MediumSeverity, ok: true},
		{name: "high tier", zScore: 4.2, expected: schema.HighSeverity, ok: true},
		{name: "critical tier", zScore: 7.0, expected: schema.CriticalSeverity, ok: true},
		{name: "exact boundary clears the tier", zScore: 3.0, expected: schema.MediumSeverity, ok: true},
		{name: "negative z uses the magnitude", zScore: -5.0, expected: schema.HighSeverity, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			severity, ok := SeverityForZScore(cfg.AlertThresholds, tt.zScore)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, severity)
			}
		})
	}
}

// TestBuildAlertCandidates tests candidate derivation for one key.
func TestBuildAlertCandidates(t *testing.T) {
	cfg := testConfig()
	ws := schema.WindowStats{Key: "wildfire", Mentions1h: 8, Mentions24h: 20}
	baseline := &schema.TrendBaseline{Key: "wildfire", MeanHourly: 1.5}

	t.Run("z-score past a tier yields a mention spike", func(t *testing.T) {
		scores := TrendScores{TrueZScore: 4.5, Velocity: 50.0}
		candidates := BuildAlertCandidates(cfg, "wildfire", ws, baseline, scores)

		require.Len(t, candidates, 1)
		a := candidates[0]
		assert.Equal(t, schema.MentionSpikeAlert, a.AlertType)
		assert.Equal(t, "wildfire", a.EntityKey)
		assert.InDelta(t, 8.0, a.CurrentValue, 0.001)
		assert.InDelta(t, 1.5, a.BaselineValue, 0.001)
		assert.Equal(t, schema.HighSeverity, a.Severity)
		assert.Equal(t, batchTime, a.DetectedAt)
	})

	t.Run("velocity at the sentinel yields a surge", func(t *testing.T) {
		scores := TrendScores{TrueZScore: 1.0, Velocity: cfg.VelocitySentinel}
		candidates := BuildAlertCandidates(cfg, "wildfire", ws, baseline, scores)

		require.Len(t, candidates, 1)
		a := candidates[0]
		assert.Equal(t, schema.VelocitySurgeAlert, a.AlertType)
		assert.InDelta(t, cfg.VelocitySentinel, a.CurrentValue, 0.001)
		// The z-score clears no tier, so the surge defaults to high.
		assert.Equal(t, schema.HighSeverity, a.Severity)
	})

	t.Run("weak z-score never lowers a surge below high", func(t *testing.T) {
		scores := TrendScores{TrueZScore: 2.5, Velocity: cfg.VelocitySentinel}
		candidates := BuildAlertCandidates(cfg, "wildfire", ws, baseline, scores)

		require.Len(t, candidates, 2)
		assert.Equal(t, schema.LowSeverity, candidates[0].Severity)
		assert.Equal(t, schema.HighSeverity, candidates[1].Severity)
	})

	t.Run("spike and surge can coexist", func(t *testing.T) {
		scores := TrendScores{TrueZScore: 6.5, Velocity: cfg.VelocitySentinel}
		candidates := BuildAlertCandidates(cfg, "wildfire", ws, baseline, scores)

		require.Len(t, candidates, 2)
		assert.Equal(t, schema.MentionSpikeAlert, candidates[0].AlertType)
		assert.Equal(t, schema.VelocitySurgeAlert, candidates[1].AlertType)
		assert.Equal(t, schema.CriticalSeverity, candidates[1].Severity)
	})

	t.Run("quiet key yields nothing", func(t *testing.T) {
		scores := TrendScores{TrueZScore: 0.5, Velocity: 10.0}
		assert.Empty(t, BuildAlertCandidates(cfg, "wildfire", ws, baseline, scores))
	})

	t.Run("missing baseline reports a zero expectation", func(t *testing.T) {
		scores := TrendScores{TrueZScore: cfg.ZScoreSentinel, Velocity: 0}
		candidates := BuildAlertCandidates(cfg, "wildfire", ws, nil, scores)

		require.Len(t, candidates, 1)
		assert.Zero(t, candidates[0].BaselineValue)
	})
}

// TestEmitAlerts tests throttling against the unacknowledged-alert window.
func TestEmitAlerts(t *testing.T) {
	cfg := testConfig()
	spike := schema.AnomalyAlert{
		AlertType:    schema.MentionSpikeAlert,
		EntityKey:    "wildfire",
		CurrentValue: 8,
		ZScore:       4.5,
		Severity:     schema.HighSeverity,
		DetectedAt:   batchTime,
	}

	t.Run("first emission persists with a stable id", func(t *testing.T) {
		store := trendstore.NewMemStore()
		emitted, err := EmitAlerts(store, cfg, []schema.AnomalyAlert{spike})
		require.NoError(t, err)
		assert.Equal(t, 1, emitted)

		alerts, err := store.ListAlerts(10, true)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Positive(t, alerts[0].ID)

		// The identity-derived id is reproducible across stores.
		other := trendstore.NewMemStore()
		_, err = EmitAlerts(other, cfg, []schema.AnomalyAlert{spike})
		require.NoError(t, err)
		otherAlerts, err := other.ListAlerts(10, true)
		require.NoError(t, err)
		require.Len(t, otherAlerts, 1)
		assert.Equal(t, alerts[0].ID, otherAlerts[0].ID)
	})

	t.Run("unacked alert inside the window throttles", func(t *testing.T) {
		store := trendstore.NewMemStore()
		_, err := EmitAlerts(store, cfg, []schema.AnomalyAlert{spike})
		require.NoError(t, err)

		emitted, err := EmitAlerts(store, cfg, []schema.AnomalyAlert{spike})
		require.NoError(t, err)
		assert.Zero(t, emitted)
	})

	t.Run("acknowledged alert does not throttle", func(t *testing.T) {
		store := trendstore.NewMemStore()
		_, err := EmitAlerts(store, cfg, []schema.AnomalyAlert{spike})
		require.NoError(t, err)

		alerts, err := store.ListAlerts(10, true)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		require.NoError(t, store.AcknowledgeAlert(alerts[0].ID, "oncall", batchTime))

		emitted, err := EmitAlerts(store, cfg, []schema.AnomalyAlert{spike})
		require.NoError(t, err)
		assert.Equal(t, 1, emitted)
	})

	t.Run("alert older than the window does not throttle", func(t *testing.T) {
		store := trendstore.NewMemStore()
		stale := spike
		stale.DetectedAt = batchTime.Add(-5 * time.Hour) // past the 4h window
		_, err := store.InsertAlert(stale)
		require.NoError(t, err)

		emitted, err := EmitAlerts(store, cfg, []schema.AnomalyAlert{spike})
		require.NoError(t, err)
		assert.Equal(t, 1, emitted)
	})

	t.Run("throttling is per type and key", func(t *testing.T) {
		store := trendstore.NewMemStore()
		_, err := EmitAlerts(store, cfg, []schema.AnomalyAlert{spike})
		require.NoError(t, err)

		surge := spike
		surge.AlertType = schema.VelocitySurgeAlert
		otherKey := spike
		otherKey.EntityKey = "senate hearing"

		emitted, err := EmitAlerts(store, cfg, []schema.AnomalyAlert{surge, otherKey})
		require.NoError(t, err)
		assert.Equal(t, 2, emitted)
	})
}
