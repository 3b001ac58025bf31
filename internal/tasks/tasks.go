package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/reference"
	"github.com/desertthunder/camsort/internal/services"
	"github.com/desertthunder/camsort/internal/shared"
)

// PlanEntry is one track in a [SortPlan].
type PlanEntry struct {
	Position   int                   // 1-based position after sorting
	Previous   int                   // 1-based position before sorting
	Track      models.Track          // Enriched track
	Suggestion *reference.Suggestion // Closest reference entry, unresolved tracks only
}

// Moved reports whether the track changes position.
func (e PlanEntry) Moved() bool { return e.Position != e.Previous }

// SortPlan is the proposed order for a playlist.
type SortPlan struct {
	Playlist models.Playlist
	Entries  []PlanEntry
	Stats    models.RunStats
	Misses   []Miss
	Skipped  int // items the provider holds but could not return, such as local files
}

// TrackIDs returns track IDs in the planned order.
func (p *SortPlan) TrackIDs() []string {
	ids := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		ids[i] = e.Track.ID
	}
	return ids
}

// Tracks returns tracks in the planned order.
func (p *SortPlan) Tracks() []models.Track {
	tracks := make([]models.Track, len(p.Entries))
	for i, e := range p.Entries {
		tracks[i] = e.Track
	}
	return tracks
}

// Moved counts tracks whose position changes.
func (p *SortPlan) Moved() int {
	n := 0
	for _, e := range p.Entries {
		if e.Moved() {
			n++
		}
	}
	return n
}

// Writable reports whether applying the plan would keep every playlist item.
func (p *SortPlan) Writable() bool {
	return p.Skipped == 0
}

// SortEngine defines the harmonic sort operations on a playlist.
type SortEngine interface {
	// Plan fetches and enriches the playlist, then sorts it without writing.
	Plan(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*SortPlan, error)

	// Apply writes a plan's order back to the provider.
	Apply(ctx context.Context, plan *SortPlan, progress chan<- ProgressUpdate) error

	// Run plans and, unless dryRun is set, applies the plan.
	Run(ctx context.Context, playlistID string, dryRun bool, progress chan<- ProgressUpdate) (*SortPlan, error)
}

// RunRecorder persists sort run summaries, e.g. repositories.SortRunRepository.
type RunRecorder interface {
	Create(run *models.SortRun) error
}

// PlaylistEngine implements SortEngine.
type PlaylistEngine struct {
	playlists services.PlaylistService
	enricher  *Enricher
	store     *reference.Store
	threshold float64
	runs      RunRecorder
	logger    *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided services.
func NewPlaylistEngine(playlists services.PlaylistService, enricher *Enricher, logger *log.Logger) *PlaylistEngine {
	return &PlaylistEngine{
		playlists: playlists,
		enricher:  enricher,
		logger:    logger,
	}
}

// WithSuggestions attaches the closest reference entry to each unresolved track in a plan.
func (e *PlaylistEngine) WithSuggestions(store *reference.Store, threshold float64) *PlaylistEngine {
	e.store = store
	e.threshold = threshold
	return e
}

// WithRunRecorder enables run recording. Recording failures are logged, not returned.
func (e *PlaylistEngine) WithRunRecorder(r RunRecorder) *PlaylistEngine {
	e.runs = r
	return e
}

// Plan implements [SortEngine].
func (e *PlaylistEngine) Plan(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*SortPlan, error) {
	if e.playlists == nil {
		return nil, fmt.Errorf("%w: playlist service not initialized", shared.ErrServiceUnavailable)
	}
	if e.enricher == nil {
		return nil, fmt.Errorf("%w: enricher not initialized", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, fetchPlaylistUpdate(1, 2, playlistID))
	pl, err := e.playlists.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, fetchPlaylistUpdate(2, 2, playlistID))
	tracks, err := e.playlists.Tracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	sendProgress(progress, foundPlaylistUpdate(2, 2, pl, len(tracks)))

	enriched := e.enricher.Enrich(ctx, tracks, progress)

	sendProgress(progress, sortUpdate(enriched.Stats.Resolved, enriched.Stats.Total))
	plan := &SortPlan{
		Playlist: *pl,
		Entries:  make([]PlanEntry, 0, len(tracks)),
		Stats:    enriched.Stats,
		Misses:   enriched.Misses,
	}
	if pl.TrackCount > len(tracks) {
		plan.Skipped = pl.TrackCount - len(tracks)
	}

	for n, i := range harmonicOrder(enriched.Tracks) {
		entry := PlanEntry{Position: n + 1, Previous: i + 1, Track: enriched.Tracks[i]}
		if e.store != nil && !entry.Track.Resolved() {
			if s, ok := e.store.Suggest(entry.Track, e.threshold); ok {
				entry.Suggestion = s
			}
		}
		plan.Entries = append(plan.Entries, entry)
	}
	return plan, nil
}

// Apply implements [SortEngine].
//
// A plan whose playlist holds items the provider could not return is refused,
// since replacing the contents would drop them.
func (e *PlaylistEngine) Apply(ctx context.Context, plan *SortPlan, progress chan<- ProgressUpdate) error {
	if plan == nil {
		return fmt.Errorf("%w: nil plan", shared.ErrInvalidInput)
	}
	if !plan.Writable() {
		return fmt.Errorf("%w: %s has %d items that cannot be reordered", shared.ErrWriteBack, plan.Playlist.Name, plan.Skipped)
	}
	if len(plan.Entries) == 0 {
		e.logger.Info("playlist is empty, nothing to write", "playlist", plan.Playlist.Name)
		return nil
	}
	if plan.Moved() == 0 {
		e.logger.Info("playlist already in harmonic order", "playlist", plan.Playlist.Name)
		return nil
	}

	sendProgress(progress, writeBackUpdate(1, 1, plan.Playlist))
	if err := e.playlists.Reorder(ctx, plan.Playlist.ID, plan.TrackIDs()); err != nil {
		if errors.Is(err, shared.ErrWriteBack) {
			return err
		}
		return fmt.Errorf("%w: %w", shared.ErrWriteBack, err)
	}
	sendProgress(progress, writeBackDoneUpdate(1, 1, plan.Playlist))
	return nil
}

// Run implements [SortEngine].
func (e *PlaylistEngine) Run(ctx context.Context, playlistID string, dryRun bool, progress chan<- ProgressUpdate) (*SortPlan, error) {
	plan, err := e.Plan(ctx, playlistID, progress)
	if err != nil {
		return nil, err
	}

	if !dryRun {
		if err := e.Apply(ctx, plan, progress); err != nil {
			return plan, err
		}
	}
	e.record(plan, dryRun, progress)
	return plan, nil
}

func (e *PlaylistEngine) record(plan *SortPlan, dryRun bool, progress chan<- ProgressUpdate) {
	if e.runs == nil {
		return
	}
	run := models.NewSortRun(plan.Playlist.ID, plan.Stats, dryRun)
	if err := e.runs.Create(run); err != nil {
		e.logger.Warn("failed to record sort run", "playlist", plan.Playlist.ID, "err", err)
		return
	}
	sendProgress(progress, recordRunUpdate(run))
}
