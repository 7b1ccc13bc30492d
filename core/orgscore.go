package core

import (
	"math"
	"sort"
	"strings"

	"github.com/newsradar/trendwatch/core/algo"
	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/schema"
)

// Relevance points per match family. Multiple matched terms in one family
// accumulate, and the total is capped at 100.
const (
	pointsExactTopic  = 40.0
	pointsFuzzyTopic  = 25.0
	pointsExactEntity = 30.0
	pointsFuzzyEntity = 20.0
	pointsExactGeo    = 15.0
)

// Priority bucket cutoffs on the relevance score.
const (
	highPriorityCutoff   = 70.0
	mediumPriorityCutoff = 40.0
)

// Reason codes recorded in score explanations.
const (
	ReasonExactTopic  = "exact_topic"
	ReasonFuzzyTopic  = "fuzzy_topic"
	ReasonExactEntity = "exact_entity"
	ReasonFuzzyEntity = "fuzzy_entity"
	ReasonExactGeo    = "exact_geo"
	ReasonBlocked     = "blocked"
	ReasonAllowlisted = "allowlisted"
)

// ScoreOrgTrend scores one trend against one tenant watchlist. The result is
// fully determined by its inputs: watch terms are walked in sorted order,
// matched lists and reason codes come out sorted and deduplicated, so scoring
// the same (trend, watchlist) pair twice is byte-identical. Blocked keys
// override everything; allowlisted keys pin high priority regardless of the
// computed relevance.
func ScoreOrgTrend(cfg *contract.Config, trend schema.TrendEvent, watchlist schema.OrgWatchlist) schema.OrgTrendScore {
	score := schema.OrgTrendScore{
		OrgID:      watchlist.OrgID,
		TrendKey:   trend.Key,
		ComputedAt: cfg.BatchTime,
		ExpiresAt:  cfg.BatchTime.Add(cfg.ScoreTTL),
	}

	if keyListed(watchlist.Blocked, trend.Key) {
		score.IsBlocked = true
		score.Priority = schema.LowPriority
		score.Explanation = sortedExplanation(nil, nil, nil, []string{ReasonBlocked})
		return score
	}

	// The match surface is the trend's own key plus the supporting context
	// the label builder attached.
	surface := matchSurface(trend)

	var relevance float64
	var matchedTerms, matchedEntities, matchedGeos, reasons []string

	for _, topic := range sortedLower(watchlist.Topics) {
		switch matchTerm(topic, surface, cfg.SimilarityThreshold) {
		case matchExact:
			relevance += pointsExactTopic
			matchedTerms = append(matchedTerms, topic)
			reasons = append(reasons, ReasonExactTopic)
		case matchFuzzy:
			relevance += pointsFuzzyTopic
			matchedTerms = append(matchedTerms, topic)
			reasons = append(reasons, ReasonFuzzyTopic)
		}
	}
	for _, entity := range sortedLower(watchlist.Entities) {
		switch matchTerm(entity, surface, cfg.SimilarityThreshold) {
		case matchExact:
			relevance += pointsExactEntity
			matchedEntities = append(matchedEntities, entity)
			reasons = append(reasons, ReasonExactEntity)
		case matchFuzzy:
			relevance += pointsFuzzyEntity
			matchedEntities = append(matchedEntities, entity)
			reasons = append(reasons, ReasonFuzzyEntity)
		}
	}
	for _, geo := range sortedLower(watchlist.Geographies) {
		if matchTerm(geo, surface, cfg.SimilarityThreshold) == matchExact {
			relevance += pointsExactGeo
			matchedGeos = append(matchedGeos, geo)
			reasons = append(reasons, ReasonExactGeo)
		}
	}

	score.RelevanceScore = math.Min(relevance, 100.0)
	score.UrgencyScore = urgencyScore(cfg, trend)

	switch {
	case score.RelevanceScore >= highPriorityCutoff:
		score.Priority = schema.HighPriority
	case score.RelevanceScore >= mediumPriorityCutoff:
		score.Priority = schema.MediumPriority
	default:
		score.Priority = schema.LowPriority
	}

	if keyListed(watchlist.Allowed, trend.Key) {
		score.Priority = schema.HighPriority
		reasons = append(reasons, ReasonAllowlisted)
	}

	score.Explanation = sortedExplanation(matchedTerms, matchedEntities, matchedGeos, reasons)
	return score
}

// urgencyScore blends capped velocity with recency decay into a 0-100 value.
func urgencyScore(cfg *contract.Config, trend schema.TrendEvent) float64 {
	vel := math.Min(math.Max(trend.Velocity, 0), cfg.VelocityCap) / cfg.VelocityCap
	recency := algo.RecencyDecay(cfg.BatchTime.Sub(trend.LastSeenAt))
	return (0.6*vel + 0.4*recency) * 100.0
}

type matchKind int

const (
	matchNone matchKind = iota
	matchFuzzy
	matchExact
)

// matchTerm checks one watch term against the trend's match surface: exact
// when the normalized term equals or is contained in a surface string, fuzzy
// when phrase similarity clears the clustering threshold.
func matchTerm(term string, surface []string, threshold float64) matchKind {
	norm := Normalize(term)
	if norm == "" {
		return matchNone
	}
	for _, s := range surface {
		if s == norm || strings.Contains(s, norm) {
			return matchExact
		}
	}
	for _, s := range surface {
		if algo.PhraseSimilarity(norm, s) >= threshold {
			return matchFuzzy
		}
	}
	return matchNone
}

func matchSurface(trend schema.TrendEvent) []string {
	surface := []string{trend.Key}
	if label := Normalize(trend.CanonicalLabel); label != "" && label != trend.Key {
		surface = append(surface, label)
	}
	for _, term := range trend.ContextTerms {
		if norm := Normalize(term); norm != "" {
			surface = append(surface, norm)
		}
	}
	return surface
}

func keyListed(list []string, key string) bool {
	for _, entry := range list {
		if Normalize(entry) == key {
			return true
		}
	}
	return false
}

func sortedLower(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// sortedExplanation normalizes an explanation into its canonical byte layout:
// every list sorted, reason codes deduplicated, empty lists kept non-nil so
// JSON output is stable.
func sortedExplanation(terms, entities, geos, reasons []string) schema.Explanation {
	dedup := make(map[string]struct{}, len(reasons))
	uniq := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if _, ok := dedup[r]; !ok {
			dedup[r] = struct{}{}
			uniq = append(uniq, r)
		}
	}
	expl := schema.Explanation{
		MatchedTerms:       append([]string{}, terms...),
		MatchedEntities:    append([]string{}, entities...),
		MatchedGeographies: append([]string{}, geos...),
		ReasonCodes:        uniq,
	}
	sort.Strings(expl.MatchedTerms)
	sort.Strings(expl.MatchedEntities)
	sort.Strings(expl.MatchedGeographies)
	sort.Strings(expl.ReasonCodes)
	return expl
}
