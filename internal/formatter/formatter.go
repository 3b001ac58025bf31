// package formatter renders sort plans and listings as CSV, Markdown, JSON, plain text or tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/camsort/internal/camelot"
	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/shared"
	"github.com/desertthunder/camsort/internal/tasks"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Format names an output format for plans.
type Format string

const (
	FormatTable    Format = "table"
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatTable, FormatText, FormatCSV, FormatMarkdown, FormatJSON}

// ParseFormat accepts a format name or common alias such as "md" or "txt".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatText, FormatTable:
		return "txt"
	default:
		return string(f)
	}
}

// Export renders plan in format f.
func Export(plan *tasks.SortPlan, f Format) ([]byte, error) {
	switch f {
	case FormatTable:
		return []byte(ExportToTable(plan) + "\n"), nil
	case FormatText:
		return ExportToText(plan)
	case FormatCSV:
		return ExportToCSV(plan)
	case FormatMarkdown:
		return ExportToMarkdown(plan)
	case FormatJSON:
		return ExportToJSON(plan)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// KeyName returns the key of a track as text, or "-" when unresolved.
func KeyName(t models.Track) string {
	if t.Key < 0 {
		return "-"
	}
	return camelot.Key{PitchClass: t.Key, Mode: t.Mode}.String()
}

// BPM formats a tempo with one decimal, or "-" when unresolved.
func BPM(tempo float64) string {
	if !(tempo > 0) {
		return "-"
	}
	return strconv.FormatFloat(tempo, 'f', 1, 64)
}

func sourceName(t models.Track) string {
	if t.Source == models.SourceNone {
		return "-"
	}
	return string(t.Source)
}

// ExportToCSV converts a plan to CSV with columns: Position, Previous, Camelot, Key, BPM, Source, Title, Artist, Album, Duration, ID
func ExportToCSV(plan *tasks.SortPlan) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Previous", "Camelot", "Key", "BPM", "Source", "Title", "Artist", "Album", "Duration", "ID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range plan.Entries {
		t := e.Track
		record := []string{
			strconv.Itoa(e.Position),
			strconv.Itoa(e.Previous),
			camelot.Label(t),
			KeyName(t),
			BPM(t.Tempo),
			sourceName(t),
			t.Name,
			t.Artist,
			t.Album,
			shared.FormatDuration(t.DurationMS),
			t.ID,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a plan to a Markdown document with a summary and a track table.
func ExportToMarkdown(plan *tasks.SortPlan) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", plan.Playlist.Name))
	if plan.Playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", plan.Playlist.Description))
	}

	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", plan.Stats.Total))
	buf.WriteString(fmt.Sprintf("**Resolved**: %d (%d local, %d lookup)\n", plan.Stats.Resolved, plan.Stats.FromLocal, plan.Stats.FromLookup))
	buf.WriteString(fmt.Sprintf("**Moved**: %d\n", plan.Moved()))
	if plan.Skipped > 0 {
		buf.WriteString(fmt.Sprintf("**Skipped**: %d (playlist cannot be written back)\n", plan.Skipped))
	}

	buf.WriteString("\n## Order\n\n")
	buf.WriteString("| # | Was | Camelot | BPM | Track |\n")
	buf.WriteString("|---|-----|---------|-----|-------|\n")
	for _, e := range plan.Entries {
		buf.WriteString(fmt.Sprintf("| %d | %d | %s | %s | %s |\n",
			e.Position, e.Previous, camelot.Label(e.Track), BPM(e.Track.Tempo), escapeCell(e.Track.String())))
	}

	if suggestions := withSuggestions(plan); len(suggestions) > 0 {
		buf.WriteString("\n## Suggestions\n\n")
		for _, e := range suggestions {
			s := e.Suggestion
			buf.WriteString(fmt.Sprintf("- %s: did you mean %s - %s (%s, %.2f)?\n",
				e.Track, s.Entry.Artist, s.Entry.Name, s.Entry.KeyCamelot, s.Similarity))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a plan to plain text format
func ExportToText(plan *tasks.SortPlan) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", plan.Playlist.Name))
	buf.WriteString(fmt.Sprintf("Tracks: %d (resolved %d, moved %d)\n\n", plan.Stats.Total, plan.Stats.Resolved, plan.Moved()))

	for _, e := range plan.Entries {
		buf.WriteString(fmt.Sprintf("%d. [%s %s] %s\n", e.Position, camelot.Label(e.Track), BPM(e.Track.Tempo), e.Track))
		if e.Suggestion != nil {
			buf.WriteString(fmt.Sprintf("   did you mean: %s - %s (%s)\n", e.Suggestion.Entry.Artist, e.Suggestion.Entry.Name, e.Suggestion.Entry.KeyCamelot))
		}
	}

	return buf.Bytes(), nil
}

type planJSON struct {
	Playlist models.Playlist `json:"playlist"`
	Stats    models.RunStats `json:"stats"`
	Moved    int             `json:"moved"`
	Skipped  int             `json:"skipped,omitempty"`
	Tracks   []entryJSON     `json:"tracks"`
}

type entryJSON struct {
	Position   int                    `json:"position"`
	Previous   int                    `json:"previous"`
	Camelot    string                 `json:"camelot"`
	Track      models.Track           `json:"track"`
	Suggestion *models.ReferenceEntry `json:"suggestion,omitempty"`
}

// ExportToJSON converts a plan to indented JSON.
func ExportToJSON(plan *tasks.SortPlan) ([]byte, error) {
	out := planJSON{
		Playlist: plan.Playlist,
		Stats:    plan.Stats,
		Moved:    plan.Moved(),
		Skipped:  plan.Skipped,
		Tracks:   make([]entryJSON, 0, len(plan.Entries)),
	}
	for _, e := range plan.Entries {
		entry := entryJSON{Position: e.Position, Previous: e.Previous, Camelot: camelot.Label(e.Track), Track: e.Track}
		if e.Suggestion != nil {
			entry.Suggestion = &e.Suggestion.Entry
		}
		out.Tracks = append(out.Tracks, entry)
	}
	return shared.MarshalJSON(out, true)
}

// ExportToTable renders a plan as a rounded table.
func ExportToTable(plan *tasks.SortPlan) string {
	headers := []string{"#", "Was", "Camelot", "Key", "BPM", "Source", "Track"}
	rows := make([][]string, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Position),
			strconv.Itoa(e.Previous),
			camelot.Label(e.Track),
			KeyName(e.Track),
			BPM(e.Track.Tempo),
			sourceName(e.Track),
			e.Track.String(),
		})
	}
	return RenderTable(headers, rows, []Alignment{AlignRight, AlignRight, AlignRight, AlignLeft, AlignRight})
}

// Alignment is a column alignment for [RenderTable].
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// RenderTable renders rows under headers. Short rows are padded and missing alignments default to left.
func RenderTable(headers []string, rows [][]string, aligns []Alignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// WriteExport writes plan to path in format f.
//
// Defaults to {playlist.ID}_plan.{ext} as the filename.
func WriteExport(plan *tasks.SortPlan, f Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_plan.%s", plan.Playlist.ID, f.Ext())
	}

	data, err := Export(plan, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}

func withSuggestions(plan *tasks.SortPlan) []tasks.PlanEntry {
	var out []tasks.PlanEntry
	for _, e := range plan.Entries {
		if e.Suggestion != nil {
			out = append(out, e)
		}
	}
	return out
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
