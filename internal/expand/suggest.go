package expand

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// closestName picks the candidate nearest to target: a case-folded
// subsequence match first, then the smallest edit distance, bounded by two
// edits or a third of the target's length, whichever is larger.
func closestName(target string, candidates []string) (string, bool) {
	if len(candidates) == 0 || target == "" {
		return "", false
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target, true
	}

	limit := max(2, len(target)/3)
	best, bestDist := "", limit+1
	for _, c := range candidates {
		d := fuzzy.LevenshteinDistance(target, c)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}
