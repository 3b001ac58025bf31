package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/camsort/internal/formatter"
	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/repositories"
	"github.com/desertthunder/camsort/internal/services"
	"github.com/desertthunder/camsort/internal/tasks"
	"github.com/urfave/cli/v3"
)

// suggestionThreshold is the minimum Jaro-Winkler similarity for a "did you mean" hint.
const suggestionThreshold = 0.85

// Sort plans a harmonic order for a playlist and writes it back unless --dry-run is set.
//
// The plan goes to stdout (or --output). Progress and the summary go to the logger, so
// machine-readable formats stay clean.
func (r *Runner) Sort(ctx context.Context, cmd *cli.Command) error {
	id, err := services.ParsePlaylistID(cmd.String("id"))
	if err != nil {
		return err
	}

	format := formatter.FormatText
	if r.colorize {
		format = formatter.FormatTable
	}
	if f := cmd.String("format"); f != "" {
		if format, err = formatter.ParseFormat(f); err != nil {
			return err
		}
	}

	engine, err := r.newEngine(ctx, cmd.Int("concurrency"))
	if err != nil {
		return err
	}

	dryRun := cmd.Bool("dry-run")
	r.logger.Info("starting sort", "playlist", id, "dry_run", dryRun)

	progressCh, done := r.reportProgress()
	plan, err := engine.Run(ctx, id, dryRun, progressCh)
	close(progressCh)
	<-done

	if plan != nil {
		if werr := r.writePlan(plan, format, cmd.String("output")); werr != nil {
			return werr
		}
	}
	if err != nil {
		return err
	}

	r.logger.Info("sort complete",
		"playlist", plan.Playlist.Name,
		"resolved", fmt.Sprintf("%d/%d", plan.Stats.Resolved, plan.Stats.Total),
		"local", plan.Stats.FromLocal,
		"lookup", plan.Stats.FromLookup,
		"moved", plan.Moved(),
	)
	switch {
	case dryRun:
		r.logger.Info("dry run, playlist not modified")
	case !plan.Writable():
		r.logger.Warn("playlist holds items that cannot be reordered", "skipped", plan.Skipped)
	}
	return nil
}

// reportProgress logs engine updates until the returned channel is closed.
// Per-track updates go to debug since the enricher already logs each outcome.
func (r *Runner) reportProgress() (chan tasks.ProgressUpdate, <-chan struct{}) {
	progressCh := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if update.Phase == tasks.Enrich && update.Data != nil {
				r.logger.Debug(update.Message, "step", update.Step, "total", update.Total)
				continue
			}
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()
	return progressCh, done
}

func (r *Runner) writePlan(plan *tasks.SortPlan, format formatter.Format, path string) error {
	if path != "" {
		written, err := formatter.WriteExport(plan, format, path)
		if err != nil {
			return err
		}
		r.logger.Info("plan written", "path", written, "format", format)
		return nil
	}

	data, err := formatter.Export(plan, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

type runJSON struct {
	ID         string          `json:"id"`
	PlaylistID string          `json:"playlist_id"`
	Stats      models.RunStats `json:"stats"`
	DryRun     bool            `json:"dry_run"`
	CreatedAt  time.Time       `json:"created_at"`
}

// History lists recorded sort runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	runs, err := repositories.NewSortRunRepository(db).List(map[string]any{
		"playlist_id": cmd.String("id"),
		"limit":       cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]runJSON, 0, len(runs))
		for _, run := range runs {
			out = append(out, runJSON{run.ID(), run.PlaylistID(), run.Stats(), run.DryRun(), run.CreatedAt()})
		}
		return r.writeJSON(out, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No sort runs recorded.\n")
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		stats := run.Stats()
		dry := ""
		if run.DryRun() {
			dry = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(run.Sequence()),
			run.PlaylistID(),
			fmt.Sprintf("%d/%d", stats.Resolved, stats.Total),
			strconv.Itoa(stats.FromLocal),
			strconv.Itoa(stats.FromLookup),
			dry,
			run.CreatedAt().Local().Format(time.DateTime),
		})
	}
	return r.writePlain("%s\n", formatter.RenderTable(
		[]string{"#", "Playlist", "Resolved", "Local", "Lookup", "Dry Run", "When"},
		rows,
		[]formatter.Alignment{formatter.AlignRight, formatter.AlignLeft, formatter.AlignRight, formatter.AlignRight, formatter.AlignRight},
	))
}
