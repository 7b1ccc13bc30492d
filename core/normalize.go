// Package core has the engine logic for aggregation, scoring and trend detection.
package core

import "strings"

// leadingArticles are stripped from the front of a topic before comparison.
var leadingArticles = map[string]struct{}{
	"the": {},
	"a":   {},
	"an":  {},
}

// genericSuffixes are stripped from the end of a topic; "Republican Party"
// and "Republican" should aggregate under the same key.
var genericSuffixes = map[string]struct{}{
	"party":          {},
	"administration": {},
	"government":     {},
}

// Normalize canonicalizes a raw topic string into a comparable key:
// lowercased, trimmed, leading articles stripped, trailing generic suffixes
// stripped, internal whitespace collapsed. Stripping runs to a fixed point so
// stacked affixes ("the the party party") reduce fully in one call, which
// keeps the function idempotent: Normalize(Normalize(s)) == Normalize(s) for
// all s. Empty and whitespace-only input yields the empty key, which every
// downstream component discards.
func Normalize(rawTopic string) string {
	tokens := strings.Fields(strings.ToLower(rawTopic))
	if len(tokens) == 0 {
		return ""
	}

	for len(tokens) > 1 {
		if _, ok := leadingArticles[tokens[0]]; !ok {
			break
		}
		tokens = tokens[1:]
	}

	for len(tokens) > 1 {
		if _, ok := genericSuffixes[tokens[len(tokens)-1]]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}

	return strings.Join(tokens, " ")
}
