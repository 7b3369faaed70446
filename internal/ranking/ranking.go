// Package ranking chooses which recording of a show to play.
//
// Sources are ordered by three keys, each consulted only when the previous
// ones tie:
//
//	soundboard first > higher weighted rating > more reviews
//
// Remaining ties keep input order, so the first of several equal sources wins.
package ranking

import (
	"sort"

	"github.com/rewired-gh/deadredux/internal/models"
)

// Better reports whether a strictly outranks b.
func Better(a, b *models.Source) bool {
	if a.IsSoundboard != b.IsSoundboard {
		return a.IsSoundboard
	}
	if a.AvgRatingWeighted != b.AvgRatingWeighted {
		return a.AvgRatingWeighted > b.AvgRatingWeighted
	}
	return a.NumReviews > b.NumReviews
}

// Sort returns a copy of sources ordered best first. Equal sources keep their
// relative input order.
func Sort(sources []models.Source) []models.Source {
	sorted := make([]models.Source, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Better(&sorted[i], &sorted[j])
	})
	return sorted
}

// PickBest returns the best source, or nil when sources is empty.
// The returned pointer aliases the input slice.
func PickBest(sources []models.Source) *models.Source {
	if len(sources) == 0 {
		return nil
	}
	best := &sources[0]
	for i := 1; i < len(sources); i++ {
		if Better(&sources[i], best) {
			best = &sources[i]
		}
	}
	return best
}
