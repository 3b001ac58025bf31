package models

import (
	"fmt"
	"strings"
	"time"
)

// LookupResult is a successful answer from the external lookup service.
//
// KeyText is kept raw (free text or Camelot-like) and parsed by the caller.
type LookupResult struct {
	Title   string  `json:"title"`
	Artist  string  `json:"artist"`
	Tempo   float64 `json:"tempo"`
	KeyText string  `json:"key_of"`
}

// PersistedLookup is a cached lookup. Negative results are cached with found=false.
//
// title and artist are what was asked for. matchedTitle and matchedArtist are
// what the service answered with, and are empty for misses.
type PersistedLookup struct {
	id            string
	sequence      int
	key           string
	title         string
	artist        string
	matchedTitle  string
	matchedArtist string
	found         bool
	tempo         float64
	keyText       string
	createdAt     time.Time
	updatedAt     time.Time
}

// NewPersistedLookup builds a cache row for key. A nil result records a miss.
func NewPersistedLookup(key, title, artist string, result *LookupResult) *PersistedLookup {
	now := time.Now()
	p := &PersistedLookup{
		key:       key,
		title:     title,
		artist:    artist,
		createdAt: now,
		updatedAt: now,
	}
	if result != nil {
		p.found = true
		p.matchedTitle = result.Title
		p.matchedArtist = result.Artist
		p.tempo = result.Tempo
		p.keyText = result.KeyText
	}
	return p
}

// RestorePersistedLookup rebuilds a row read from storage.
func RestorePersistedLookup(id string, sequence int, key, title, artist, matchedTitle, matchedArtist string, found bool, tempo float64, keyText string, createdAt, updatedAt time.Time) *PersistedLookup {
	return &PersistedLookup{
		id: id, sequence: sequence, key: key, title: title, artist: artist,
		matchedTitle: matchedTitle, matchedArtist: matchedArtist,
		found: found, tempo: tempo, keyText: keyText,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

func (p *PersistedLookup) ID() string            { return p.id }
func (p *PersistedLookup) Sequence() int         { return p.sequence }
func (p *PersistedLookup) Key() string           { return p.key }
func (p *PersistedLookup) Title() string         { return p.title }
func (p *PersistedLookup) Artist() string        { return p.artist }
func (p *PersistedLookup) MatchedTitle() string  { return p.matchedTitle }
func (p *PersistedLookup) MatchedArtist() string { return p.matchedArtist }
func (p *PersistedLookup) Found() bool           { return p.found }
func (p *PersistedLookup) Tempo() float64        { return p.tempo }
func (p *PersistedLookup) KeyText() string       { return p.keyText }
func (p *PersistedLookup) CreatedAt() time.Time  { return p.createdAt }
func (p *PersistedLookup) UpdatedAt() time.Time  { return p.updatedAt }

func (p *PersistedLookup) SetID(id string)          { p.id = id }
func (p *PersistedLookup) SetSequence(seq int)      { p.sequence = seq }
func (p *PersistedLookup) SetUpdatedAt(t time.Time) { p.updatedAt = t }

// Result converts a positive cache row back into a [LookupResult]. It returns nil for cached misses.
// Rows cached before the matched columns existed fall back to the query text.
func (p *PersistedLookup) Result() *LookupResult {
	if !p.found {
		return nil
	}
	title, artist := p.matchedTitle, p.matchedArtist
	if title == "" && artist == "" {
		title, artist = p.title, p.artist
	}
	return &LookupResult{Title: title, Artist: artist, Tempo: p.tempo, KeyText: p.keyText}
}

// Validate checks required fields.
func (p *PersistedLookup) Validate() error {
	if p.id == "" {
		return fmt.Errorf("lookup id is required")
	}
	if strings.TrimSpace(p.key) == "" {
		return fmt.Errorf("lookup key is required")
	}
	if p.found && p.tempo <= 0 {
		return fmt.Errorf("cached lookup %s has non-positive tempo", p.key)
	}
	return nil
}
