package core

import (
	"sort"

	"github.com/newsradar/trendwatch/core/algo"
	"github.com/newsradar/trendwatch/schema"
)

// PhraseVariant is one observed phrase spelling with its accumulated evidence.
type PhraseVariant struct {
	Phrase        string  // Raw phrase as extracted upstream
	Mentions      int     // Total mention volume behind this spelling
	TopAuthority  float64 // Highest source authority seen for this spelling
	IsEventPhrase bool    // Upstream marked this spelling a full event phrase
}

// evidenceWeight is the merge-policy ordering key: volume scaled by the best
// source authority backing the phrase.
func (v PhraseVariant) evidenceWeight() float64 {
	authority := v.TopAuthority
	if authority <= 0 {
		authority = 0.3
	}
	return float64(v.Mentions) * authority
}

// ClusterPhrases groups near-duplicate phrase variants into clusters using
// greedy assignment against each cluster's canonical key. The input is sorted
// deterministically first (evidence weight descending, longer phrase first,
// then lexical), so clustering the same variant set in any caller order
// converges to identical membership and canonical labels. Variants whose
// normalized key is empty are dropped.
func ClusterPhrases(variants []PhraseVariant, threshold float64) []schema.PhraseCluster {
	ordered := make([]PhraseVariant, 0, len(variants))
	for _, v := range variants {
		if Normalize(v.Phrase) != "" {
			ordered = append(ordered, v)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		wi, wj := ordered[i].evidenceWeight(), ordered[j].evidenceWeight()
		if wi != wj {
			return wi > wj
		}
		// Ties go to the longer phrase, assumed more specific.
		if len(ordered[i].Phrase) != len(ordered[j].Phrase) {
			return len(ordered[i].Phrase) > len(ordered[j].Phrase)
		}
		return ordered[i].Phrase < ordered[j].Phrase
	})

	var clusters []schema.PhraseCluster
	for _, v := range ordered {
		key := Normalize(v.Phrase)
		idx := -1
		best := 0.0
		for i := range clusters {
			sim := algo.PhraseSimilarity(key, clusters[i].CanonicalKey)
			if sim >= threshold && sim > best {
				best = sim
				idx = i
			}
		}

		if idx < 0 {
			// The first variant to open a cluster carries the highest evidence
			// weight of its members, so it is the canonical phrase.
			clusters = append(clusters, schema.PhraseCluster{
				CanonicalPhrase:     v.Phrase,
				CanonicalKey:        key,
				MemberPhrases:       []string{v.Phrase},
				MemberKeys:          []string{key},
				SimilarityThreshold: threshold,
				TotalMentions:       v.Mentions,
				TopAuthorityScore:   v.TopAuthority,
			})
			continue
		}

		c := &clusters[idx]
		c.TotalMentions += v.Mentions
		if v.TopAuthority > c.TopAuthorityScore {
			c.TopAuthorityScore = v.TopAuthority
		}
		if !containsString(c.MemberPhrases, v.Phrase) {
			c.MemberPhrases = append(c.MemberPhrases, v.Phrase)
		}
		if !containsString(c.MemberKeys, key) {
			c.MemberKeys = append(c.MemberKeys, key)
		}
	}

	// Member lists are sorted so two runs over the same input are
	// byte-identical, not just set-equal.
	for i := range clusters {
		sort.Strings(clusters[i].MemberPhrases)
		sort.Strings(clusters[i].MemberKeys)
	}
	return clusters
}

// ClusterForKey returns the cluster containing the given canonical key, or nil.
func ClusterForKey(clusters []schema.PhraseCluster, key string) *schema.PhraseCluster {
	for i := range clusters {
		if containsString(clusters[i].MemberKeys, key) {
			return &clusters[i]
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
