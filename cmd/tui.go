package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/camsort/internal/shared"
	"github.com/desertthunder/camsort/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/camsort-tui.log"

// TUI launches the interactive terminal UI for harmonic sorting.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	if err := os.MkdirAll(filepath.Dir(tuiLogPath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(tuiLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()

	fileLogger := shared.NewLogger(f)
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	playlists, err := r.playlistService(ctx)
	if err != nil {
		return err
	}
	engine, err := r.newEngine(ctx, 0)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, playlists, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return model.Err()
}
