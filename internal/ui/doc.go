// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through a single harmonic sort:
//  1. [PlaylistListView] : Browse and select a playlist
//  2. [PlanningView] : Watch tracks being fetched and resolved
//  3. [PreviewView] : Review the harmonic order, colored by Camelot key
//  4. [ConfirmView] : Confirm the write-back
//  5. [ApplyView] : Wait for the provider to reorder the playlist
//  6. [ResultView] : Display the outcome and any tracks without a key
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Engine work runs inside commands. Progress flows back through a channel that is drained one update per message.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
