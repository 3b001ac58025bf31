package main

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/desertthunder/camsort/internal/camelot"
	"github.com/desertthunder/camsort/internal/formatter"
	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/reference"
	"github.com/desertthunder/camsort/internal/shared"
	"github.com/urfave/cli/v3"
)

// ReferenceStats prints entry counts and the spread of entries over the wheel.
func (r *Runner) ReferenceStats(ctx context.Context, cmd *cli.Command) error {
	store, err := r.referenceStore()
	if err != nil {
		return err
	}

	counts := map[string]int{}
	invalid := 0
	for _, e := range store.Entries() {
		code, err := camelot.ParseCode(e.KeyCamelot)
		if err != nil {
			invalid++
			continue
		}
		counts[code.String()]++
	}

	r.writePlainHeader("Reference dataset")
	r.writePlain("Path:    %s\n", r.config.Reference.Path)
	r.writePlain("Entries: %d\n", store.Len())
	r.writePlain("Titles:  %d\n", store.Titles())
	if invalid > 0 {
		r.writePlain("Invalid keys: %d\n", invalid)
	}
	if store.Len() == 0 {
		return nil
	}

	rows := [][]string{}
	for _, code := range camelot.Codes() {
		if n := counts[code.String()]; n > 0 {
			k, _ := code.Key()
			rows = append(rows, []string{code.String(), k.String(), strconv.Itoa(n)})
		}
	}
	return r.writePlain("\n%s\n", formatter.RenderTable(
		[]string{"Camelot", "Key", "Count"},
		rows,
		[]formatter.Alignment{formatter.AlignLeft, formatter.AlignLeft, formatter.AlignRight},
	))
}

// ReferenceMatch scores the dataset's candidates for a title/artist pair and
// reports which one the matcher would pick.
func (r *Runner) ReferenceMatch(ctx context.Context, cmd *cli.Command) error {
	store, err := r.referenceStore()
	if err != nil {
		return err
	}

	duration := cmd.Int("duration")
	if duration < 0 {
		return fmt.Errorf("%w: duration must not be negative", shared.ErrInvalidArgument)
	}
	track := models.NewTrack("", cmd.String("title"), cmd.String("artist"), uint(duration))

	candidates := store.Lookup(track.Name)
	if len(candidates) == 0 {
		candidates = reference.FuzzyCandidates(track, store.Entries())
	}
	scored := reference.ScoreAll(track, candidates)

	if len(scored) > 0 {
		rows := make([][]string, 0, len(scored))
		for _, c := range scored {
			rows = append(rows, []string{
				c.Entry.Artist + " - " + c.Entry.Name,
				c.Entry.KeyCamelot,
				formatter.BPM(c.Entry.BPM),
				shared.FormatDuration(c.Entry.DurationMS),
				strconv.Itoa(c.Score),
			})
		}
		r.writePlain("%s\n", formatter.RenderTable(
			[]string{"Candidate", "Camelot", "BPM", "Duration", "Score"},
			rows,
			[]formatter.Alignment{formatter.AlignLeft, formatter.AlignLeft, formatter.AlignRight, formatter.AlignRight, formatter.AlignRight},
		))
	}

	best, strategy, ok := store.Match(track)
	if ok {
		return r.writePlain("✓ Match (%s): %s - %s  %s  %s bpm  score %d\n",
			strategy, best.Entry.Artist, best.Entry.Name, best.Entry.KeyCamelot, formatter.BPM(best.Entry.BPM), best.Score)
	}

	r.writePlain("✗ No match for %s\n", track.String())
	if s, ok := store.Suggest(track, suggestionThreshold); ok {
		r.writePlain("  Did you mean %s - %s (%s)? similarity %.2f\n", s.Entry.Artist, s.Entry.Name, s.Entry.KeyCamelot, s.Similarity)
	}
	return nil
}

// ReferenceImport builds dataset entries from audio file tags and writes them to disk.
//
// With --merge, existing entries are kept and imported entries replace those
// with the same normalized title and artist.
func (r *Runner) ReferenceImport(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	path := cmd.String("output")
	if path == "" {
		path = r.config.Reference.Path
	}
	if path == "" {
		return fmt.Errorf("%w: --output or [reference] path", shared.ErrMissingArgument)
	}

	r.logger.Info("importing reference entries", "dir", dir)
	report, err := reference.ImportDir(dir, r.logger)
	if err != nil {
		return err
	}

	entries := report.Entries
	if cmd.Bool("merge") {
		existing, err := reference.Load(path)
		if err != nil {
			return err
		}
		entries = mergeEntries(existing.Entries(), report.Entries)
	}

	if err := reference.Save(path, entries); err != nil {
		return err
	}

	r.logger.Info("import complete", "scanned", report.Scanned, "imported", len(report.Entries), "skipped", report.Skipped)
	return r.writePlain("✓ Wrote %d entries to %s (%d scanned, %d skipped)\n", len(entries), path, report.Scanned, report.Skipped)
}

// mergeEntries keeps base order, replacing entries that incoming also carries,
// then appends the rest of incoming sorted by artist and title.
func mergeEntries(base, incoming []models.ReferenceEntry) []models.ReferenceEntry {
	byKey := make(map[string]models.ReferenceEntry, len(incoming))
	for _, e := range incoming {
		byKey[shared.NormalizeTrackKey(e.Name, e.Artist)] = e
	}

	out := make([]models.ReferenceEntry, 0, len(base)+len(incoming))
	for _, e := range base {
		key := shared.NormalizeTrackKey(e.Name, e.Artist)
		if replacement, ok := byKey[key]; ok {
			out = append(out, replacement)
			delete(byKey, key)
			continue
		}
		out = append(out, e)
	}

	added := make([]models.ReferenceEntry, 0, len(byKey))
	for _, e := range byKey {
		added = append(added, e)
	}
	slices.SortFunc(added, func(a, b models.ReferenceEntry) int {
		return cmp.Or(cmp.Compare(a.Artist, b.Artist), cmp.Compare(a.Name, b.Name))
	})
	return append(out, added...)
}
