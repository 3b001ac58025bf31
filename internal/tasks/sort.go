package tasks

import (
	"slices"

	"github.com/desertthunder/camsort/internal/camelot"
	"github.com/desertthunder/camsort/internal/models"
)

// SortHarmonic orders tracks around the Camelot wheel.
//
// Resolved tracks come first, by wheel position and then tempo. Unresolved tracks
// follow in their original order. The input slice is not modified.
func SortHarmonic(tracks []models.Track) []models.Track {
	order := harmonicOrder(tracks)
	out := make([]models.Track, len(order))
	for n, i := range order {
		out[n] = tracks[i]
	}
	return out
}

// harmonicOrder returns the sorted permutation of indexes into tracks.
func harmonicOrder(tracks []models.Track) []int {
	resolved := make([]int, 0, len(tracks))
	var unresolved []int
	for i, t := range tracks {
		if t.Resolved() {
			resolved = append(resolved, i)
		} else {
			unresolved = append(unresolved, i)
		}
	}

	slices.SortStableFunc(resolved, func(a, b int) int {
		return compareHarmonic(tracks[a], tracks[b])
	})
	return append(resolved, unresolved...)
}

// compareHarmonic orders by weight, then tempo. NaN tempos compare equal to everything.
func compareHarmonic(a, b models.Track) int {
	wa, wb := camelot.TrackWeight(a), camelot.TrackWeight(b)
	switch {
	case wa < wb:
		return -1
	case wa > wb:
		return 1
	case a.Tempo < b.Tempo:
		return -1
	case a.Tempo > b.Tempo:
		return 1
	default:
		return 0
	}
}
