package tasks

import (
	"fmt"

	"github.com/desertthunder/camsort/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylist Phase = iota
	Enrich
	Sort
	WriteBack
	RecordRun
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case Enrich:
		return "enrich"
	case Sort:
		return "sort"
	case WriteBack:
		return "write_back"
	case RecordRun:
		return "record_run"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchPlaylistUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching playlist %s...", id),
	}
}

func foundPlaylistUpdate(step, total int, pl *models.Playlist, fetched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", pl.Name, fetched),
		Data:    pl,
	}
}

func enrichStageUpdate(step, total int, stage string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enrich,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Resolving keys via %s...", stage),
	}
}

func enrichTrackUpdate(step, total int, stage string, tr models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enrich,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%s] %s", stage, tr),
		Data:    tr,
	}
}

func sortUpdate(resolved, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Sort,
		Step:    resolved,
		Total:   total,
		Message: fmt.Sprintf("Sorting %d of %d tracks by key and tempo...", resolved, total),
	}
}

func writeBackUpdate(step, total int, pl models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteBack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Writing new order to %s...", pl.Name),
	}
}

func writeBackDoneUpdate(step, total int, pl models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteBack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Playlist reordered: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func recordRunUpdate(run *models.SortRun) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordRun,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Recorded run %s", run.ID()),
		Data:    run,
	}
}
