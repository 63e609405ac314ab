package match

import (
	"cmp"
	"slices"

	"github.com/nhle/deadline-harvester/internal/model"
)

// minPrefixTitle is the rune length a title must exceed before its
// first half is compared.
const minPrefixTitle = 10

// DuplicatePair is two stored deadlines that look alike. First has the
// lower id.
type DuplicatePair struct {
	First  model.Deadline `json:"first"`
	Second model.Deadline `json:"second"`
}

// FindDuplicatePairs reports pairs in the same category whose display
// titles are equal, or whose titles are both longer than ten runes and
// share the same first half. Pairs are ordered by category, then title.
func FindDuplicatePairs(records []model.Deadline) []DuplicatePair {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b model.Deadline) int {
		return cmp.Compare(a.ID, b.ID)
	})

	var pairs []DuplicatePair
	for i, a := range sorted {
		for _, b := range sorted[i+1:] {
			if a.Category != b.Category {
				continue
			}
			if a.Title == b.Title || halfPrefixMatch(a.Title, b.Title) {
				pairs = append(pairs, DuplicatePair{First: a, Second: b})
			}
		}
	}

	slices.SortStableFunc(pairs, func(x, y DuplicatePair) int {
		return cmp.Or(
			cmp.Compare(x.First.Category, y.First.Category),
			cmp.Compare(x.First.Title, y.First.Title),
		)
	})
	return pairs
}

func halfPrefixMatch(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) <= minPrefixTitle || len(rb) <= minPrefixTitle {
		return false
	}
	return string(ra[:len(ra)/2]) == string(rb[:len(rb)/2])
}
