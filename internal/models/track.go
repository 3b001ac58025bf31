package models

import (
	"errors"
	"fmt"
	"strings"
)

// Unresolved is the pitch class of a track whose key is not known.
const Unresolved = -1

// ErrAlreadyEnriched is returned when a track's enrichment state is set twice.
var ErrAlreadyEnriched = errors.New("track already enriched")

// Mode is the tonality of a key. Values follow the provider convention (0 minor, 1 major).
type Mode int

const (
	Minor Mode = iota
	Major
)

func (m Mode) String() string {
	if m == Major {
		return "major"
	}
	return "minor"
}

// MarshalText implements [encoding.TextMarshaler].
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (m *Mode) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "major":
		*m = Major
	case "minor":
		*m = Minor
	default:
		return fmt.Errorf("unknown mode %q", b)
	}
	return nil
}

// Source records where a track's key and tempo came from.
type Source string

const (
	SourceNone   Source = ""
	SourceLocal  Source = "local"
	SourceCache  Source = "cache"
	SourceLookup Source = "lookup"
)

// Track is a playlist entry together with its enrichment state.
//
// Tracks are created unresolved during ingestion and enriched at most once.
type Track struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album,omitempty"`
	DurationMS uint    `json:"duration_ms"`
	Key        int     `json:"key"`
	Mode       Mode    `json:"mode"`
	Tempo      float64 `json:"tempo"`
	Source     Source  `json:"source,omitempty"`
}

// NewTrack creates an unresolved track.
func NewTrack(id, name, artist string, durationMS uint) Track {
	return Track{
		ID:         id,
		Name:       name,
		Artist:     artist,
		DurationMS: durationMS,
		Key:        Unresolved,
		Mode:       Major,
	}
}

// Resolved reports whether both a key and a positive tempo are known.
func (t Track) Resolved() bool {
	return t.Key >= 0 && t.Tempo > 0
}

// Enrich records the key, mode and tempo found by src.
func (t *Track) Enrich(pitchClass int, mode Mode, tempo float64, src Source) error {
	if t.Source != SourceNone {
		return fmt.Errorf("%w: %s", ErrAlreadyEnriched, t.ID)
	}
	if pitchClass < 0 || pitchClass > 11 {
		return fmt.Errorf("pitch class %d out of range", pitchClass)
	}
	t.Key = pitchClass
	t.Mode = mode
	t.Tempo = tempo
	t.Source = src
	return nil
}

// String returns "Artist - Name".
func (t Track) String() string {
	return t.Artist + " - " + t.Name
}

// Playlist represents a playlist from the provider.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}
