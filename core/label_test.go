package core

import (
	"testing"
	"time"

	"github.com/newsradar/trendwatch/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassifyLabel tests the label quality rules.
func TestClassifyLabel(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		flagged  bool
		expected schema.LabelQuality
	}{
		{
			name:     "upstream flag wins outright",
			label:    "tariffs",
			flagged:  true,
			expected: schema.EventPhraseLabel,
		},
		{
			name:     "long phrase with action verb",
			label:    "Senate blocks funding bill",
			expected: schema.EventPhraseLabel,
		},
		{
			name:     "past tense verb counts",
			label:    "governor vetoed housing measure",
			expected: schema.EventPhraseLabel,
		},
		{
			name:     "single word is entity only",
			label:    "Tesla",
			expected: schema.EntityOnlyLabel,
		},
		{
			name:     "two words are entity only",
			label:    "Federal Reserve",
			expected: schema.EntityOnlyLabel,
		},
		{
			name:     "long phrase without verb falls back",
			label:    "housing policy reform debate",
			expected: schema.FallbackLabel,
		},
		{
			name:     "verb in short phrase does not promote",
			label:    "blocks bill",
			expected: schema.EntityOnlyLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyLabel(tt.label, tt.flagged))
		})
	}
}

// TestBuildContext tests co-occurrence context assembly for weak labels.
func TestBuildContext(t *testing.T) {
	doc := func(id, topic string, eventPhrase bool) schema.MentionEvent {
		ev := mention(topic, id, schema.NewsSource, time.Hour)
		ev.IsEventPhrase = eventPhrase
		return ev
	}

	t.Run("terms ranked by co-occurrence", func(t *testing.T) {
		events := []schema.MentionEvent{
			doc("d1", "Tesla", false),
			doc("d2", "Tesla", false),
			doc("d3", "Tesla", false),
			doc("d1", "Elon Musk", false),
			doc("d2", "Elon Musk", false),
			doc("d1", "Tesla recalls cybertruck", true),
			doc("d3", "stock market", false),
		}
		ctx := BuildContext("tesla", events)

		require.NotEmpty(t, ctx.Terms)
		assert.Equal(t, "Elon Musk", ctx.Terms[0])
		assert.Contains(t, ctx.Phrases, "Tesla recalls cybertruck")
		assert.InDelta(t, 2.0/3.0, ctx.BurstScore, 0.001)
		assert.Contains(t, ctx.Summary, "tesla trending alongside")
	})

	t.Run("no evidence yields empty context", func(t *testing.T) {
		ctx := BuildContext("ghost topic", nil)
		assert.Empty(t, ctx.Terms)
		assert.Empty(t, ctx.Summary)
		assert.Zero(t, ctx.BurstScore)
	})

	t.Run("topics in unrelated documents do not leak in", func(t *testing.T) {
		events := []schema.MentionEvent{
			doc("d1", "Tesla", false),
			doc("d9", "unrelated topic", false),
		}
		ctx := BuildContext("tesla", events)
		assert.Empty(t, ctx.Terms)
	})
}

// TestDisplayTitle tests title composition for weak labels.
func TestDisplayTitle(t *testing.T) {
	ctx := TrendContext{Terms: []string{"Elon Musk"}}

	assert.Equal(t, "Tesla (Elon Musk)", DisplayTitle("Tesla", schema.EntityOnlyLabel, ctx))
	assert.Equal(t, "Tesla", DisplayTitle("Tesla", schema.EntityOnlyLabel, TrendContext{}))
	assert.Equal(t, "Senate blocks funding bill", DisplayTitle("Senate blocks funding bill", schema.EventPhraseLabel, ctx))
}
