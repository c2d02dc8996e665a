package match

import (
	"sort"
)

// DefaultThreshold is the minimum score a candidate needs to be suggested.
const DefaultThreshold = 0.5

// Candidate is a scored name.
type Candidate struct {
	Name  string
	Score float64
}

// Rank scores every candidate against name and returns those at or above
// threshold, best first. Ties keep the order of candidates.
func Rank(name string, candidates []string, threshold float64) []Candidate {
	ranked := make([]Candidate, 0, len(candidates))

	for _, c := range candidates {
		score := Score(name, c)
		if score >= threshold {
			ranked = append(ranked, Candidate{Name: c, Score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

// Suggest returns at most n candidate names close to name.
func Suggest(name string, candidates []string, n int) []string {
	ranked := Rank(name, candidates, DefaultThreshold)
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	out := make([]string, len(ranked))
	for i, c := range ranked {
		out[i] = c.Name
	}

	return out
}
