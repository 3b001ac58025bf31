package reference

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/camsort/internal/camelot"
	"github.com/desertthunder/camsort/internal/models"
	"github.com/dhowden/tag"
)

var audioExtensions = map[string]bool{
	".mp3": true, ".m4a": true, ".mp4": true, ".flac": true, ".ogg": true,
}

// commentKeyRegex finds a Camelot code in comments written by DJ tools, e.g. "8A - Energy 6".
var commentKeyRegex = regexp.MustCompile(`\b(1[0-2]|[1-9])([ABab])\b`)

// ImportReport summarizes a directory import.
type ImportReport struct {
	Entries []models.ReferenceEntry
	Scanned int
	Skipped int
}

// ImportDir walks dir and builds reference entries from audio file tags.
//
// Files without a title, artist, positive BPM or recognizable key are skipped.
func ImportDir(dir string, logger *log.Logger) (*ImportReport, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open import directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	report := &ImportReport{}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !audioExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		report.Scanned++
		entry, err := readEntry(path)
		if err != nil {
			report.Skipped++
			logger.Debug("skipping file", "path", path, "error", err)
			return nil
		}
		report.Entries = append(report.Entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk import directory: %w", err)
	}
	return report, nil
}

func readEntry(path string) (models.ReferenceEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.ReferenceEntry{}, err
	}
	defer func() { _ = f.Close() }()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return models.ReferenceEntry{}, fmt.Errorf("failed to read tags: %w", err)
	}
	return entryFromMetadata(m)
}

func entryFromMetadata(m tag.Metadata) (models.ReferenceEntry, error) {
	e := models.ReferenceEntry{
		Name:   strings.TrimSpace(m.Title()),
		Artist: strings.TrimSpace(m.Artist()),
		Album:  strings.TrimSpace(m.Album()),
	}
	if e.Name == "" || e.Artist == "" {
		return e, fmt.Errorf("missing title or artist")
	}

	raw := upperKeys(m.Raw())
	e.BPM = rawBPM(raw)
	if e.BPM <= 0 {
		return e, fmt.Errorf("missing bpm")
	}

	code, ok := rawKey(raw, m.Comment())
	if !ok {
		return e, fmt.Errorf("missing key")
	}
	e.KeyCamelot = code.String()
	return e, nil
}

func upperKeys(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[strings.ToUpper(k)] = v
	}
	return out
}

func rawBPM(raw map[string]any) float64 {
	for _, k := range []string{"TBPM", "BPM", "TMPO", "TEMPO"} {
		switch v := raw[k].(type) {
		case string:
			if bpm, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && bpm > 0 {
				return bpm
			}
		case int:
			if v > 0 {
				return float64(v)
			}
		case float64:
			if v > 0 {
				return v
			}
		}
	}
	return 0
}

// rawKey reads the initial-key tag, accepting Camelot or free-text values,
// then falls back to a Camelot code embedded in the comment.
func rawKey(raw map[string]any, comment string) (camelot.Code, bool) {
	for _, k := range []string{"TKEY", "INITIALKEY", "KEY"} {
		s, ok := raw[k].(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		if key, err := camelot.Parse(s); err == nil {
			if code, ok := key.Code(); ok {
				return code, true
			}
		}
	}

	if m := commentKeyRegex.FindStringSubmatch(comment); m != nil {
		if code, err := camelot.ParseCode(m[1] + m[2]); err == nil {
			return code, true
		}
	}
	return camelot.Code{}, false
}
