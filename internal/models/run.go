package models

import (
	"fmt"
	"time"
)

// SortRun records the outcome of one sort invocation.
type SortRun struct {
	id         string
	sequence   int
	playlistID string
	total      int
	resolved   int
	fromLocal  int
	fromLookup int
	dryRun     bool
	createdAt  time.Time
	updatedAt  time.Time
}

// RunStats are the counters stored on a [SortRun].
type RunStats struct {
	Total      int `json:"total"`
	Resolved   int `json:"resolved"`
	FromLocal  int `json:"from_local"`
	FromLookup int `json:"from_lookup"`
}

// NewSortRun creates a run for playlistID.
func NewSortRun(playlistID string, stats RunStats, dryRun bool) *SortRun {
	now := time.Now()
	return &SortRun{
		playlistID: playlistID,
		total:      stats.Total,
		resolved:   stats.Resolved,
		fromLocal:  stats.FromLocal,
		fromLookup: stats.FromLookup,
		dryRun:     dryRun,
		createdAt:  now,
		updatedAt:  now,
	}
}

// RestoreSortRun rebuilds a run read from storage.
func RestoreSortRun(id string, sequence int, playlistID string, stats RunStats, dryRun bool, createdAt, updatedAt time.Time) *SortRun {
	r := NewSortRun(playlistID, stats, dryRun)
	r.id, r.sequence, r.createdAt, r.updatedAt = id, sequence, createdAt, updatedAt
	return r
}

func (r *SortRun) ID() string           { return r.id }
func (r *SortRun) Sequence() int        { return r.sequence }
func (r *SortRun) PlaylistID() string   { return r.playlistID }
func (r *SortRun) Stats() RunStats      { return RunStats{r.total, r.resolved, r.fromLocal, r.fromLookup} }
func (r *SortRun) DryRun() bool         { return r.dryRun }
func (r *SortRun) CreatedAt() time.Time { return r.createdAt }
func (r *SortRun) UpdatedAt() time.Time { return r.updatedAt }

func (r *SortRun) SetID(id string)     { r.id = id }
func (r *SortRun) SetSequence(seq int) { r.sequence = seq }

// Validate checks required fields and counter consistency.
func (r *SortRun) Validate() error {
	if r.id == "" {
		return fmt.Errorf("run id is required")
	}
	if r.playlistID == "" {
		return fmt.Errorf("playlist id is required")
	}
	if r.resolved > r.total || r.fromLocal+r.fromLookup > r.resolved {
		return fmt.Errorf("inconsistent run counters: %+v", r.Stats())
	}
	return nil
}
