package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgPlanReady
	MsgProgressUpdate
	MsgApplyComplete
)

type playlistsPayload struct {
	playlists []models.Playlist
	err       error
}

type planPayload struct {
	plan *tasks.SortPlan
	err  error
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsPayload{playlists, err}}
}

// planReadyMsg is the constructor for [MsgPlanReady]
func planReadyMsg(plan *tasks.SortPlan, err error) Msg {
	return Msg{kind: MsgPlanReady, data: planPayload{plan, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// applyCompleteMsg is the constructor for [MsgApplyComplete]
func applyCompleteMsg(err error) Msg {
	return Msg{kind: MsgApplyComplete, data: err}
}
