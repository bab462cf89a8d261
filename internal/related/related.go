// Package related ranks notes by keyword overlap.
package related

import (
	"sort"
	"strings"

	"github.com/notely/notely/internal/core"
)

// DefaultLimit is how many related notes a note page shows
const DefaultLimit = 3

// Keywords returns the set of lowercase alphanumeric tokens longer than two
// characters. Any run of characters outside [a-z0-9] separates tokens.
func Keywords(text string) map[string]struct{} {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if len(tok) > 2 {
			set[tok] = struct{}{}
		}
	}
	return set
}

// Similarity is the Jaccard index of the keyword sets of a and b.
// It returns 0 when neither text has a keyword.
func Similarity(a, b string) float64 {
	A, B := Keywords(a), Keywords(b)

	inter := 0
	for k := range A {
		if _, ok := B[k]; ok {
			inter++
		}
	}
	union := len(A) + len(B) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Scored is a candidate note with its similarity to the current note
type Scored struct {
	Note  core.Note `json:"note"`
	Score float64   `json:"score"`
}

// Rank scores every candidate against current and returns the top limit,
// highest first. The current note itself is skipped. Equal scores keep
// candidate order.
func Rank(current core.Note, candidates []core.Note, limit int) []Scored {
	if limit <= 0 {
		limit = DefaultLimit
	}

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == current.ID {
			continue
		}
		scored = append(scored, Scored{Note: c, Score: Similarity(current.Content, c.Content)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
