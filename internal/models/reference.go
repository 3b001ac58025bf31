package models

// ReferenceEntry is one record of the local reference dataset.
//
// DurationMS is zero when the dataset does not carry a duration.
type ReferenceEntry struct {
	Name       string  `json:"name"`
	Artist     string  `json:"artist"`
	BPM        float64 `json:"bpm"`
	KeyCamelot string  `json:"key_camelot"`
	DurationMS uint    `json:"duration_ms,omitempty"`
	Album      string  `json:"album,omitempty"`
}

// HasDuration reports whether the entry carries a known duration.
func (e ReferenceEntry) HasDuration() bool {
	return e.DurationMS > 0
}

// MatchCandidate is a reference entry scored during a single match.
type MatchCandidate struct {
	Entry ReferenceEntry
	Score int
}
