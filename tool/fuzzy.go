package tool

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultCutoff is the minimum similarity for a fuzzy tool-name match.
const DefaultCutoff = 0.6

// Similarity scores two strings in [0, 1] as 2*M/T, where M is the number of
// characters in matching blocks and T the combined length.
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

// CloseMatches returns up to n candidates scoring at least cutoff against
// name, best first. Equal scores are ordered by descending name.
func CloseMatches(name string, candidates []string, n int, cutoff float64) []string {
	if n <= 0 {
		return nil
	}

	type scored struct {
		name  string
		score float64
	}
	var hits []scored
	for _, c := range candidates {
		if s := Similarity(c, name); s >= cutoff {
			hits = append(hits, scored{name: c, score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].name > hits[j].name
	})

	if len(hits) > n {
		hits = hits[:n]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

// ClosestName returns the single best candidate for name, if any scores at
// least cutoff.
func ClosestName(name string, candidates []string, cutoff float64) (string, bool) {
	best := CloseMatches(name, candidates, 1, cutoff)
	if len(best) == 0 {
		return "", false
	}
	return best[0], true
}

func chars(s string) []string {
	rs := []rune(s)
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}
