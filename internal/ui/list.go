package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/camsort/internal/formatter"
	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/tasks"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = entryItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.playlist.TrackCount)
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}

// entryItem wraps [tasks.PlanEntry] to implement [list.Item].
type entryItem struct {
	entry tasks.PlanEntry
}

func (i entryItem) FilterValue() string { return i.entry.Track.String() }
func (i entryItem) Title() string {
	return fmt.Sprintf("%3d. %s %s  %s", i.entry.Position, styles.Key(i.entry.Track), formatter.BPM(i.entry.Track.Tempo), i.entry.Track)
}
func (i entryItem) Description() string {
	t := i.entry.Track
	if !t.Resolved() {
		desc := "unresolved"
		if s := i.entry.Suggestion; s != nil {
			desc = fmt.Sprintf("%s • did you mean %s - %s (%s)?", desc, s.Entry.Artist, s.Entry.Name, s.Entry.KeyCamelot)
		}
		return desc
	}

	desc := fmt.Sprintf("%s • %s", formatter.KeyName(t), t.Source)
	if i.entry.Moved() {
		desc = fmt.Sprintf("%s • was #%d", desc, i.entry.Previous)
	}
	return desc
}
