package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/newsradar/trendwatch/schema"
)

// actionVerbs is the curated verb-pattern dictionary. A phrase of three or
// more words containing one of these reads as a full event description
// ("Senate blocks funding bill") rather than a bare entity name.
var actionVerbs = map[string]struct{}{
	"announces": {}, "announced": {},
	"blocks": {}, "blocked": {},
	"bans": {}, "banned": {},
	"signs": {}, "signed": {},
	"vetoes": {}, "vetoed": {},
	"passes": {}, "passed": {},
	"resigns": {}, "resigned": {},
	"launches": {}, "launched": {},
	"approves": {}, "approved": {},
	"rejects": {}, "rejected": {},
	"sues": {}, "sued": {},
	"wins": {}, "won": {},
	"loses": {}, "lost": {},
	"fires": {}, "fired": {},
	"cancels": {}, "canceled": {},
	"warns": {}, "warned": {},
	"threatens": {}, "threatened": {},
	"unveils": {}, "unveiled": {},
	"declares": {}, "declared": {},
	"strikes": {}, "struck": {},
}

// Context builder bounds.
const (
	maxContextTerms   = 5
	minContextTerms   = 3
	maxContextPhrases = 3
)

// ClassifyLabel decides how informative a display label is. The upstream
// extraction flag wins outright; otherwise a long phrase with an action verb
// is an event phrase, a one-or-two-word label is entity-only, and everything
// else is a fallback.
func ClassifyLabel(label string, flaggedEventPhrase bool) schema.LabelQuality {
	if flaggedEventPhrase {
		return schema.EventPhraseLabel
	}
	tokens := strings.Fields(strings.ToLower(label))
	if len(tokens) >= 3 && containsActionVerb(tokens) {
		return schema.EventPhraseLabel
	}
	if len(tokens) <= 2 {
		return schema.EntityOnlyLabel
	}
	return schema.FallbackLabel
}

func containsActionVerb(tokens []string) bool {
	for _, tok := range tokens {
		if _, ok := actionVerbs[strings.Trim(tok, ".,;:!?\"'")]; ok {
			return true
		}
	}
	return false
}

// TrendContext is the supporting evidence attached to weak entity-only labels.
type TrendContext struct {
	Terms      []string // Top co-occurring entities, 3-5 when available
	Phrases    []string // Verb-centered phrases from the same evidence, up to 3
	Summary    string   // One-line human-readable digest
	BurstScore float64  // Co-occurrence strength in [0, 1]
}

// BuildContext assembles context for an entity-only trend from the mention
// evidence. Two topics co-occur when the same source document mentions both;
// the burst score is the share of the trend's documents that its strongest
// co-occurring topic also appears in. Event-phrase candidates for the phrase
// list are picked from co-occurring topics whose own label classifies as an
// event phrase.
func BuildContext(key string, events []schema.MentionEvent) TrendContext {
	// Documents that evidence this trend.
	docs := make(map[string]struct{})
	for _, ev := range events {
		if Normalize(ev.RawTopic) == key {
			docs[ev.SourceID] = struct{}{}
		}
	}
	if len(docs) == 0 {
		return TrendContext{}
	}

	// Co-occurrence counts per other topic, plus the raw phrase that backs
	// each co-occurring key so output stays human-readable.
	cooc := make(map[string]int)
	display := make(map[string]string)
	eventPhrase := make(map[string]bool)
	for _, ev := range events {
		other := Normalize(ev.RawTopic)
		if other == "" || other == key {
			continue
		}
		if _, ok := docs[ev.SourceID]; !ok {
			continue
		}
		cooc[other]++
		if cur, ok := display[other]; !ok || len(ev.RawTopic) > len(cur) {
			display[other] = ev.RawTopic
		}
		if ev.IsEventPhrase || ClassifyLabel(ev.RawTopic, ev.IsEventPhrase) == schema.EventPhraseLabel {
			eventPhrase[other] = true
		}
	}
	if len(cooc) == 0 {
		return TrendContext{}
	}

	ranked := make([]string, 0, len(cooc))
	for k := range cooc {
		ranked = append(ranked, k)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if cooc[ranked[i]] != cooc[ranked[j]] {
			return cooc[ranked[i]] > cooc[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	ctx := TrendContext{}
	for _, k := range ranked {
		if len(ctx.Terms) < maxContextTerms {
			ctx.Terms = append(ctx.Terms, display[k])
		}
		if eventPhrase[k] && len(ctx.Phrases) < maxContextPhrases {
			ctx.Phrases = append(ctx.Phrases, display[k])
		}
	}

	ctx.BurstScore = float64(cooc[ranked[0]]) / float64(len(docs))
	if ctx.BurstScore > 1.0 {
		ctx.BurstScore = 1.0
	}
	ctx.Summary = buildContextSummary(key, ctx.Terms)
	return ctx
}

// buildContextSummary renders the one-line digest shown next to entity-only
// labels.
func buildContextSummary(key string, terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	shown := terms
	if len(shown) > minContextTerms {
		shown = shown[:minContextTerms]
	}
	return fmt.Sprintf("%s trending alongside %s", key, strings.Join(shown, ", "))
}

// DisplayTitle composes the externally shown title. Entity-only labels get
// their strongest context term appended so a bare name still reads as news.
func DisplayTitle(label string, quality schema.LabelQuality, ctx TrendContext) string {
	if quality == schema.EntityOnlyLabel && len(ctx.Terms) > 0 {
		return fmt.Sprintf("%s (%s)", label, ctx.Terms[0])
	}
	return label
}
