// Package match ranks supplier search candidates against the user's query
// with a normalized string-similarity score.  Adapters use it to bound the
// expensive detail-fetch stage to the most relevant items.
package match

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultCutoff is the similarity score below which candidates are discarded
// when no cutoff is configured.  It is a tunable bound, not load-bearing
// behaviour.
const DefaultCutoff = 0.4

// Candidate pairs an arbitrary payload with the display name it is scored on.
type Candidate[T any] struct {
	Name  string
	Value T
	Score float64
}

// Score returns a similarity score in [0, 1] between a and b: 1 for equal
// strings (after case folding and whitespace trimming), scaled down by
// levenshtein distance relative to the longer string.  Substring containment
// is floored at 0.8 so that "sodium chloride" scores highly against
// "Sodium Chloride 500g ACS Reagent" despite the length difference.
func Score(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	longer := len([]rune(a))
	if l := len([]rune(b)); l > longer {
		longer = l
	}
	dist := levenshtein.ComputeDistance(a, b)
	score := 1 - float64(dist)/float64(longer)

	if strings.Contains(b, a) || strings.Contains(a, b) {
		if score < 0.8 {
			score = 0.8
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Filter scores each candidate's Name against query, discards candidates
// scoring below cutoff, and returns the survivors sorted by descending
// score.  Ties keep their original order (stable sort).  The returned
// candidates carry their scores.
func Filter[T any](query string, candidates []Candidate[T], cutoff float64) []Candidate[T] {
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}
	kept := make([]Candidate[T], 0, len(candidates))
	for _, c := range candidates {
		c.Score = Score(query, c.Name)
		if c.Score >= cutoff {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	return kept
}
