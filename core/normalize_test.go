package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalize tests topic canonicalization.
func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		rawTopic string
		expected string
	}{
		{
			name:     "lowercases and trims",
			rawTopic: "  Trump Tariffs  ",
			expected: "trump tariffs",
		},
		{
			name:     "strips leading article",
			rawTopic: "The Federal Reserve",
			expected: "federal reserve",
		},
		{
			name:     "strips generic suffix",
			rawTopic: "Republican Party",
			expected: "republican",
		},
		{
			name:     "strips article and suffix together",
			rawTopic: "The Biden Administration",
			expected: "biden",
		},
		{
			name:     "collapses internal whitespace",
			rawTopic: "supreme   court \t ruling",
			expected: "supreme court ruling",
		},
		{
			name:     "article alone survives",
			rawTopic: "The",
			expected: "the",
		},
		{
			name:     "stacked articles and suffixes reduce fully",
			rawTopic: "The The Party Party",
			expected: "party",
		},
		{
			name:     "mixed stacked affixes",
			rawTopic: "An The Government Government",
			expected: "government",
		},
		{
			name:     "all strippable tokens keep the last one",
			rawTopic: "the a an party",
			expected: "party",
		},
		{
			name:     "suffix alone survives",
			rawTopic: "Government",
			expected: "government",
		},
		{
			name:     "empty input",
			rawTopic: "",
			expected: "",
		},
		{
			name:     "whitespace only",
			rawTopic: "   \t\n ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.rawTopic))
		})
	}
}

// TestNormalizeIdempotent tests that applying normalization twice changes nothing.
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"The Republican Party",
		"A Grand Jury",
		"  MIXED Case   Input ",
		"party",
		"an administration",
		"the the party party",
		"an the government government",
		"a a a",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

// FuzzNormalize checks totality and idempotency over arbitrary input.
func FuzzNormalize(f *testing.F) {
	f.Add("The Republican Party")
	f.Add("The The Party Party")
	f.Add("an the government government")
	f.Add("  weird \t spacing ")
	f.Add("Ünïcödé Tòpic")
	f.Add("")

	f.Fuzz(func(t *testing.T, rawTopic string) {
		once := Normalize(rawTopic)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize is not idempotent: %q -> %q -> %q", rawTopic, once, twice)
		}
	})
}
