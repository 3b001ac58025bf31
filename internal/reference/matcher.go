package reference

import (
	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/shared"
)

const (
	ScoreArtistExact   = 100
	ScoreArtistPartial = 80
	ScoreDurationClose = 50
	ScoreDurationFar   = -50
	ScoreTitleExact    = 20

	// DurationToleranceMS is the exclusive bound for a "close" duration.
	DurationToleranceMS = 5000
)

// Score rates entry e against track. ok is false when the artists do not match at all.
//
// Only the candidate's duration gates the comparison. A track with an unknown
// (zero) duration is still compared and lands on the far side of the tolerance.
func Score(track models.Track, e models.ReferenceEntry) (score int, ok bool) {
	trackArtist := shared.Normalize(track.Artist)
	entryArtist := shared.Normalize(e.Artist)

	switch {
	case trackArtist == entryArtist:
		score += ScoreArtistExact
	case trackArtist != "" && entryArtist != "" && shared.MutuallyContains(trackArtist, entryArtist):
		score += ScoreArtistPartial
	default:
		return 0, false
	}

	if e.HasDuration() {
		delta := int64(track.DurationMS) - int64(e.DurationMS)
		if delta < 0 {
			delta = -delta
		}
		if delta < DurationToleranceMS {
			score += ScoreDurationClose
		} else {
			score += ScoreDurationFar
		}
	}

	if shared.Normalize(track.Name) == shared.Normalize(e.Name) {
		score += ScoreTitleExact
	}
	return score, true
}

// ScoreAll returns every candidate that passes the artist gate, in input order.
func ScoreAll(track models.Track, candidates []models.ReferenceEntry) []models.MatchCandidate {
	var scored []models.MatchCandidate
	for _, e := range candidates {
		if score, ok := Score(track, e); ok {
			scored = append(scored, models.MatchCandidate{Entry: e, Score: score})
		}
	}
	return scored
}

// FindBestMatch returns the candidate with the strictly highest score.
// Ties keep the earliest candidate.
func FindBestMatch(track models.Track, candidates []models.ReferenceEntry) (*models.MatchCandidate, bool) {
	var best *models.MatchCandidate
	for _, c := range ScoreAll(track, candidates) {
		if best == nil || c.Score > best.Score {
			best = &c
		}
	}
	return best, best != nil
}

// FuzzyCandidates filters entries to those whose normalized title and artist
// each contain, or are contained by, the track's.
func FuzzyCandidates(track models.Track, entries []models.ReferenceEntry) []models.ReferenceEntry {
	title := shared.Normalize(track.Name)
	artist := shared.Normalize(track.Artist)
	if title == "" || artist == "" {
		return nil
	}

	var out []models.ReferenceEntry
	for _, e := range entries {
		name, by := shared.Normalize(e.Name), shared.Normalize(e.Artist)
		if name == "" || by == "" {
			continue
		}
		if shared.MutuallyContains(title, name) && shared.MutuallyContains(artist, by) {
			out = append(out, e)
		}
	}
	return out
}

// Strategy names the pass that produced a match.
type Strategy string

const (
	StrategyDirect Strategy = "direct"
	StrategyFuzzy  Strategy = "fuzzy"
)

// Match runs the direct title lookup and falls back to the fuzzy scan.
func (s *Store) Match(track models.Track) (*models.MatchCandidate, Strategy, bool) {
	if m, ok := FindBestMatch(track, s.byTitle[shared.Normalize(track.Name)]); ok {
		return m, StrategyDirect, true
	}
	if m, ok := FindBestMatch(track, FuzzyCandidates(track, s.entries)); ok {
		return m, StrategyFuzzy, true
	}
	return nil, "", false
}
