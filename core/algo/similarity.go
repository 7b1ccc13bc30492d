package algo

import "strings"

// NormalizedLevenshtein returns 1 - editDistance/maxLen, so identical strings
// score 1.0 and fully dissimilar strings approach 0. Two empty strings are
// identical by definition.
func NormalizedLevenshtein(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(maxLen)
}

// levenshtein computes edit distance with a rolling single-row buffer.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur := prev[0]
		prev[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			next := min(prev[j]+1, prev[j-1]+1, cur+cost)
			cur = prev[j]
			prev[j] = next
		}
	}
	return prev[len(b)]
}

// TokenSetOverlap returns the Jaccard similarity of the whitespace token sets
// of a and b. Order and repetition do not matter.
func TokenSetOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	inter := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

// PhraseSimilarity blends character-level and token-level similarity, taking
// the stronger signal. Token overlap catches reordered variants ("election
// fraud claims" vs "claims of election fraud") that edit distance punishes.
func PhraseSimilarity(a, b string) float64 {
	lev := NormalizedLevenshtein(a, b)
	jac := TokenSetOverlap(a, b)
	return max(lev, jac)
}
