package reference

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/shared"
)

// DefaultSuggestThreshold is the minimum Jaro-Winkler similarity for a suggestion.
const DefaultSuggestThreshold = 0.85

// Suggestion is the closest reference entry to a track the matcher could not place.
type Suggestion struct {
	Entry      models.ReferenceEntry
	Similarity float64
}

// Suggest compares "artist title" strings with Jaro-Winkler and returns the most
// similar entry at or above threshold. Suggestions are advisory and never
// enrich a track.
func (s *Store) Suggest(track models.Track, threshold float64) (*Suggestion, bool) {
	query := shared.Normalize(track.Artist + " " + track.Name)
	if query == "" {
		return nil, false
	}

	jw := metrics.NewJaroWinkler()
	var best *Suggestion
	for _, e := range s.entries {
		candidate := shared.Normalize(e.Artist + " " + e.Name)
		score := strutil.Similarity(query, candidate, jw)
		if score < threshold {
			continue
		}
		if best == nil || score > best.Similarity {
			best = &Suggestion{Entry: e, Similarity: score}
		}
	}
	return best, best != nil
}
