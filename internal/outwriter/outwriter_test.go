package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testOutputConfig returns a minimal config for output tests.
func testOutputConfig() *contract.Config {
	return &contract.Config{
		ResultLimit:  contract.DefaultResultLimit,
		Precision:    contract.DefaultPrecision,
		Output:       schema.TextOut,
		StoreBackend: schema.NoneBackend,
	}
}

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{
			name:      "precision 1",
			precision: 1,
			value:     3.14159,
			expected:  "3.1",
		},
		{
			name:      "precision 2",
			precision: 2,
			value:     3.14159,
			expected:  "3.14",
		},
		{
			name:      "negative value",
			precision: 2,
			value:     -42.567,
			expected:  "-42.57",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, intFmt := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			assert.Equal(t, "%d", intFmt)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		expected string
	}{
		{
			name: "simple object",
			data: map[string]any{
				"key":   "wildfire",
				"score": 42,
			},
			expected: `{
  "key": "wildfire",
  "score": 42
}
`,
		},
		{
			name: "array",
			data: []string{"a", "b", "c"},
			expected: `[
  "a",
  "b",
  "c"
]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeJSON(&buf, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteJSONError(t *testing.T) {
	// Test with a value that can't be marshaled to JSON
	invalidData := make(chan int)
	var buf bytes.Buffer
	err := writeJSON(&buf, invalidData)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"key", "score"}, func(w *csv.Writer) error {
		return w.Write([]string{"wildfire, evacuations", "42"})
	})
	require.NoError(t, err)
	assert.Equal(t, "key,score\n\"wildfire, evacuations\",42\n", buf.String())
}

func TestWriteWithFileStdout(t *testing.T) {
	// Empty path means stdout
	called := false
	err := writeWithFile("", func(w io.Writer) error {
		called = true
		_, err := w.Write([]byte("test"))
		return err
	}, "Test message")

	require.NoError(t, err)
	assert.True(t, called, "Writer function should have been called")
}

func TestWriteWithFileActualFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test.txt")

	err := writeWithFile(tmpFile, func(w io.Writer) error {
		_, err := w.Write([]byte("test content"))
		return err
	}, "Test message")
	require.NoError(t, err)

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "test content", string(content))
}

func TestWriteWithFileError(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test.txt")

	err := writeWithFile(tmpFile, func(io.Writer) error {
		return assert.AnError
	}, "Test message")

	require.Error(t, err)
	assert.Equal(t, assert.AnError, err)
}

func TestWriteTrendCSV(t *testing.T) {
	fmtFloat, intFmt := createFormatters(2)
	cfg := testOutputConfig()
	trends := []schema.TrendEvent{
		{
			Key:             "wildfire evacuation",
			DisplayTitle:    "Wildfire Evacuation",
			LabelQuality:    schema.EventPhraseLabel,
			State:           schema.BreakingState,
			RankScore:       84.25,
			Velocity:        120.5,
			Mentions1h:      6,
			Mentions24h:     24,
			SourceTypeCount: 2,
		},
	}

	var buf bytes.Buffer
	err := writeTrendCSV(&buf, trends, cfg, fmtFloat, intFmt)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2) // header + 1 row

	assert.Contains(t, lines[0], "rank_score")
	assert.Contains(t, lines[0], "trending_since")
	assert.Contains(t, lines[1], "wildfire evacuation")
	assert.Contains(t, lines[1], "84.25")
	assert.Contains(t, lines[1], "breaking")
}

func TestWriteAlertCSV(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	alerts := []schema.AnomalyAlert{
		{
			ID:           101,
			AlertType:    schema.MentionSpikeAlert,
			EntityKey:    "wildfire evacuation",
			CurrentValue: 8,
			ZScore:       4.5,
			Severity:     schema.HighSeverity,
		},
	}

	var buf bytes.Buffer
	err := writeAlertCSV(&buf, alerts, fmtFloat)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "alert_type")
	assert.Contains(t, lines[1], "mention_spike")
	assert.Contains(t, lines[1], "4.50")
	assert.Contains(t, lines[1], "high")
}

func TestWriteOrgScoreCSV(t *testing.T) {
	fmtFloat, _ := createFormatters(1)
	scores := []schema.OrgTrendScore{
		{
			OrgID:          "org-a",
			TrendKey:       "wildfire evacuation",
			RelevanceScore: 55,
			UrgencyScore:   80,
			Priority:       schema.MediumPriority,
			Explanation: schema.Explanation{
				MatchedTerms:       []string{"wildfire"},
				MatchedGeographies: []string{"california"},
				ReasonCodes:        []string{"exact_geo", "exact_topic"},
			},
		},
	}

	var buf bytes.Buffer
	err := writeOrgScoreCSV(&buf, scores, fmtFloat)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "reason_codes")
	assert.Contains(t, lines[1], "org-a")
	assert.Contains(t, lines[1], "exact_geo;exact_topic")
	assert.Contains(t, lines[1], "55.0")
}

func TestWriteBaselineCSV(t *testing.T) {
	fmtFloat, intFmt := createFormatters(2)
	baselines := []schema.TrendBaseline{
		{
			Key:            "economy",
			Bucket:         "2026-08-20",
			MeanHourly:     10.5,
			StdDevHourly:   0.5,
			RelativeStdDev: 0.05,
			SampleHours:    48,
			IsStable:       true,
		},
	}

	var buf bytes.Buffer
	err := writeBaselineCSV(&buf, baselines, fmtFloat, intFmt)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "relative_std_dev")
	assert.Contains(t, lines[1], "economy")
	assert.Contains(t, lines[1], "2026-08-20")
	assert.Contains(t, lines[1], "10.50")
	assert.Contains(t, lines[1], "true")
}

func TestWriteMetricsCSV(t *testing.T) {
	renderModel := &metricsRenderModel{
		Jobs: []schema.JobHealth{
			{JobName: "rescore", ItemsProcessed: 120, FailureStreak: 0},
		},
	}

	var buf bytes.Buffer
	err := writeMetricsCSV(&buf, renderModel)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "failure_streak")
	assert.Contains(t, lines[1], "rescore")
	assert.Contains(t, lines[1], "120")
}

func TestWriteMetricsJSON(t *testing.T) {
	renderModel := &metricsRenderModel{
		Formula: "2.00*spike+1.50*mentions_1h",
		Weights: schema.GetDefaultRankWeights(),
		Jobs:    []schema.JobHealth{{JobName: "ingest"}},
	}

	var buf bytes.Buffer
	err := writeJSON(&buf, renderModel)
	require.NoError(t, err)

	var result map[string]any
	err = json.Unmarshal(buf.Bytes(), &result)
	require.NoError(t, err)
	assert.Equal(t, "2.00*spike+1.50*mentions_1h", result["formula"])
	assert.Contains(t, result, "jobs")
}

func TestFormatWeights(t *testing.T) {
	tests := []struct {
		name     string
		weights  map[schema.RankComponent]float64
		expected string
	}{
		{
			name:     "default weights in display order",
			weights:  schema.GetDefaultRankWeights(),
			expected: "2.00*spike+1.50*mentions_1h+0.30*velocity+5.00*diversity",
		},
		{
			name: "zero weight ignored",
			weights: map[schema.RankComponent]float64{
				schema.RankSpike:    1.0,
				schema.RankVelocity: 0.0,
			},
			expected: "1.00*spike",
		},
		{
			name:     "empty weights",
			weights:  map[schema.RankComponent]float64{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatWeights(tt.weights))
		})
	}
}

func TestFormatRankBreakdown(t *testing.T) {
	fmtFloat, _ := createFormatters(1)

	t.Run("components sorted for stable output", func(t *testing.T) {
		breakdown := map[schema.RankComponent]float64{
			schema.RankVelocity: 30.0,
			schema.RankSpike:    4.0,
			schema.RankMentions: 6.0,
		}
		result := formatRankBreakdown(breakdown, fmtFloat)
		assert.Equal(t, "mentions_1h=6.0 spike=4.0 velocity=30.0", result)
	})

	t.Run("empty breakdown", func(t *testing.T) {
		assert.Empty(t, formatRankBreakdown(nil, fmtFloat))
	})
}

func TestGetMaxTableLabelWidth(t *testing.T) {
	cfg := testOutputConfig()
	cfg.Width = 120

	base := getMaxTableLabelWidth(cfg)
	assert.GreaterOrEqual(t, base, 15)
	assert.LessOrEqual(t, base, 70)

	// Extra columns shrink the label budget.
	cfg.Detail = true
	cfg.Explain = true
	detailed := getMaxTableLabelWidth(cfg)
	assert.LessOrEqual(t, detailed, base)

	// A narrow terminal bottoms out at the minimum.
	cfg.Width = 40
	assert.Equal(t, 15, getMaxTableLabelWidth(cfg))
}
