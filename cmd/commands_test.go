package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/reference"
	"github.com/desertthunder/camsort/internal/repositories"
	"github.com/desertthunder/camsort/internal/shared"
	tu "github.com/desertthunder/camsort/internal/testing"
	"github.com/urfave/cli/v3"
)

type harness struct {
	runner  *Runner
	output  *bytes.Buffer
	spotify *tu.MockPlaylistService
	lookup  *tu.MockLookupService
}

func newHarness(t *testing.T, withLookup bool) *harness {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "camsort.db")

	spotify := tu.NewMockPlaylistService()
	spotify.AddPlaylist(models.Playlist{ID: "pl1", Name: "Evening"},
		models.NewTrack("b", "Bravo", "Artist", 200000),
		models.NewTrack("u", "Unknown", "Nobody", 180000),
		models.NewTrack("a", "Alpha", "Artist", 240000),
	)

	h := &harness{output: &bytes.Buffer{}, spotify: spotify}
	opts := RunnerOpts{
		Config:     config,
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Spotify:    spotify,
		Store: reference.NewStore([]models.ReferenceEntry{
			{Name: "Alpha", Artist: "Artist", BPM: 120, KeyCamelot: "1A", DurationMS: 240000},
			{Name: "Bravo", Artist: "Artist", BPM: 98, KeyCamelot: "2B"},
		}),
		Logger: shared.NewLogger(&bytes.Buffer{}),
		Output: h.output,
	}
	if withLookup {
		h.lookup = tu.NewMockLookupService()
		opts.Lookup = h.lookup
	}
	h.runner = NewRunner(opts)

	t.Cleanup(func() { h.runner.After(context.Background(), nil) })
	return h
}

// run executes args against a root command without the config-loading hooks.
func (h *harness) run(args ...string) error {
	app := &cli.Command{Name: "camsort", Commands: h.runner.register()}
	return app.Run(context.Background(), append([]string{"camsort"}, args...))
}

func TestSortCommand(t *testing.T) {
	t.Run("dry run prints the plan without writing", func(t *testing.T) {
		h := newHarness(t, false)
		if err := h.run("sort", "--id", "pl1", "--dry-run"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := h.output.String()
		for _, want := range []string{"Playlist: Evening", "1. [1A 120.0] Artist - Alpha", "2. [2B 98.0] Artist - Bravo", "3. [- -] Nobody - Unknown"} {
			if !strings.Contains(out, want) {
				t.Errorf("plan missing %q, got:\n%s", want, out)
			}
		}
		if len(h.spotify.Written) != 0 {
			t.Errorf("expected no write-back, got %v", h.spotify.Written)
		}
	})

	t.Run("writes the harmonic order back", func(t *testing.T) {
		h := newHarness(t, false)
		if err := h.run("sort", "--id", "spotify:playlist:pl1", "--format", "json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if got := h.spotify.Written["pl1"]; !slices.Equal(got, []string{"a", "b", "u"}) {
			t.Errorf("expected written order [a b u], got %v", got)
		}
		var plan struct {
			Moved int `json:"moved"`
		}
		if err := json.Unmarshal(h.output.Bytes(), &plan); err != nil {
			t.Fatalf("expected JSON plan, got %v:\n%s", err, h.output.String())
		}
		if plan.Moved != 3 {
			t.Errorf("expected 3 moved, got %d", plan.Moved)
		}
	})

	t.Run("resolves through the lookup service", func(t *testing.T) {
		h := newHarness(t, true)
		h.runner.config.Lookup.Cache = true
		h.lookup.Results["Unknown"] = &models.LookupResult{Title: "Unknown", Artist: "Nobody", Tempo: 110, KeyText: "E minor"}

		if err := h.run("sort", "--id", "pl1", "-n"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), "[9A 110.0] Nobody - Unknown") {
			t.Errorf("expected looked-up track in plan, got:\n%s", h.output.String())
		}
		if h.lookup.CallCount() != 1 {
			t.Errorf("expected one lookup, got %d", h.lookup.CallCount())
		}
	})

	t.Run("rejects a malformed playlist id", func(t *testing.T) {
		h := newHarness(t, false)
		err := h.run("sort", "--id", "not a playlist!")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("rejects an unknown format", func(t *testing.T) {
		h := newHarness(t, false)
		if err := h.run("sort", "--id", "pl1", "--format", "xml"); err == nil {
			t.Error("expected format error")
		}
	})
}

func TestHistoryCommand(t *testing.T) {
	h := newHarness(t, false)
	if err := h.run("sort", "--id", "pl1", "--dry-run"); err != nil {
		t.Fatalf("sort failed: %v", err)
	}
	h.output.Reset()

	if err := h.run("history"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	out := h.output.String()
	if !strings.Contains(out, "pl1") || !strings.Contains(out, "2/3") || !strings.Contains(out, "yes") {
		t.Errorf("unexpected history table:\n%s", out)
	}

	h.output.Reset()
	if err := h.run("history", "--id", "other"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(h.output.String(), "No sort runs recorded") {
		t.Errorf("expected empty history, got:\n%s", h.output.String())
	}
}

func TestKeyCommand(t *testing.T) {
	t.Run("converts both notations", func(t *testing.T) {
		h := newHarness(t, false)
		if err := h.run("key", "8a", "C major"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := h.output.String()
		for _, want := range []string{"A minor", "8A", "C major", "8B"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("json output", func(t *testing.T) {
		h := newHarness(t, false)
		if err := h.run("key", "--json", "F# minor"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var keys []keyJSON
		if err := json.Unmarshal(h.output.Bytes(), &keys); err != nil {
			t.Fatalf("expected JSON, got %v", err)
		}
		if len(keys) != 1 || keys[0].Camelot != "11A" || keys[0].PitchClass != 6 {
			t.Errorf("unexpected keys %+v", keys)
		}
	})

	t.Run("reports unparseable input after the rest", func(t *testing.T) {
		h := newHarness(t, false)
		err := h.run("key", "8A", "H#")
		if !errors.Is(err, shared.ErrUnrecognizedKeyString) {
			t.Errorf("expected ErrUnrecognizedKeyString, got %v", err)
		}
		if !strings.Contains(h.output.String(), "A minor") {
			t.Errorf("expected valid input to still be printed, got:\n%s", h.output.String())
		}
	})

	t.Run("requires an argument", func(t *testing.T) {
		h := newHarness(t, false)
		if err := h.run("key"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestReferenceCommands(t *testing.T) {
	t.Run("stats", func(t *testing.T) {
		h := newHarness(t, false)
		if err := h.run("reference", "stats"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := h.output.String()
		if !strings.Contains(out, "Entries: 2") || !strings.Contains(out, "Ab minor") {
			t.Errorf("unexpected stats:\n%s", out)
		}
	})

	t.Run("match", func(t *testing.T) {
		h := newHarness(t, false)
		if err := h.run("reference", "match", "--title", "alpha", "--artist", "Artist", "--duration", "241000"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := h.output.String()
		if !strings.Contains(out, "Match (direct): Artist - Alpha") || !strings.Contains(out, "score 170") {
			t.Errorf("unexpected match output:\n%s", out)
		}
	})

	t.Run("no match suggests the closest entry", func(t *testing.T) {
		h := newHarness(t, false)
		if err := h.run("ref", "match", "--title", "Alpah", "--artist", "Artist"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := h.output.String()
		if !strings.Contains(out, "No match for Artist - Alpah") || !strings.Contains(out, "Did you mean Artist - Alpha (1A)?") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("import requires an output path", func(t *testing.T) {
		h := newHarness(t, false)
		h.runner.config.Reference.Path = ""
		err := h.run("reference", "import", "--dir", t.TempDir())
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("import of an empty directory writes an empty dataset", func(t *testing.T) {
		h := newHarness(t, false)
		path := filepath.Join(t.TempDir(), "reference.json")
		if err := h.run("reference", "import", "--dir", t.TempDir(), "-o", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, path)

		store, err := reference.Load(path)
		if err != nil {
			t.Fatalf("failed to load written dataset: %v", err)
		}
		if store.Len() != 0 {
			t.Errorf("expected no entries, got %d", store.Len())
		}
	})
}

func TestMergeEntries(t *testing.T) {
	base := []models.ReferenceEntry{
		{Name: "Alpha", Artist: "Artist", BPM: 120, KeyCamelot: "1A"},
		{Name: "Bravo", Artist: "Artist", BPM: 98, KeyCamelot: "2B"},
	}
	incoming := []models.ReferenceEntry{
		{Name: "Zulu", Artist: "Band", BPM: 130, KeyCamelot: "5A"},
		{Name: "  bravo ", Artist: "ARTIST", BPM: 99, KeyCamelot: "3B"},
		{Name: "Echo", Artist: "Band", BPM: 124, KeyCamelot: "6B"},
	}

	merged := mergeEntries(base, incoming)
	var names []string
	for _, e := range merged {
		names = append(names, e.Name)
	}
	if want := []string{"Alpha", "  bravo ", "Echo", "Zulu"}; !slices.Equal(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}
	if merged[1].KeyCamelot != "3B" {
		t.Errorf("expected imported entry to replace the existing one, got %+v", merged[1])
	}
}

func TestLookupCommand(t *testing.T) {
	t.Run("prints the parsed key", func(t *testing.T) {
		h := newHarness(t, true)
		h.lookup.Results["Alpha"] = &models.LookupResult{Title: "Alpha", Artist: "Artist", Tempo: 120, KeyText: "Am"}

		if err := h.run("lookup", "--title", "Alpha", "--artist", "Artist"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := h.output.String()
		if !strings.Contains(out, "120.0 bpm") || !strings.Contains(out, "A minor (8A)") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("json output", func(t *testing.T) {
		h := newHarness(t, true)
		h.lookup.Results["Alpha"] = &models.LookupResult{Title: "Alpha", Artist: "Artist", Tempo: 120, KeyText: "Am"}

		if err := h.run("lookup", "--title", "Alpha", "--artist", "Artist", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var got lookupJSON
		if err := json.Unmarshal(h.output.Bytes(), &got); err != nil {
			t.Fatalf("expected JSON, got %v", err)
		}
		if got.Camelot != "8A" || got.KeyText != "Am" {
			t.Errorf("unexpected result %+v", got)
		}
	})

	t.Run("unrecognized key is shown raw", func(t *testing.T) {
		h := newHarness(t, true)
		h.lookup.Results["Alpha"] = &models.LookupResult{Title: "Alpha", Artist: "Artist", Tempo: 120, KeyText: "??"}

		if err := h.run("lookup", "--title", "Alpha", "--artist", "Artist"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), "?? (unrecognized)") {
			t.Errorf("unexpected output:\n%s", h.output.String())
		}
	})

	t.Run("no result", func(t *testing.T) {
		h := newHarness(t, true)
		err := h.run("lookup", "--title", "Missing", "--artist", "Nobody")
		if !errors.Is(err, shared.ErrNoResultFound) {
			t.Errorf("expected ErrNoResultFound, got %v", err)
		}
	})

	t.Run("without an api key", func(t *testing.T) {
		h := newHarness(t, false)
		err := h.run("lookup", "--title", "Alpha", "--artist", "Artist")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestCacheCommands(t *testing.T) {
	h := newHarness(t, false)
	db, err := h.runner.database()
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	repo := repositories.NewLookupCacheRepository(db)
	for _, l := range []*models.PersistedLookup{
		models.NewPersistedLookup(shared.NormalizeTrackKey("Alpha", "Artist"), "Alpha", "Artist",
			&models.LookupResult{Title: "Alpha", Artist: "Artist", Tempo: 120, KeyText: "Am"}),
		models.NewPersistedLookup(shared.NormalizeTrackKey("Gone", "Nobody"), "Gone", "Nobody", nil),
		models.NewPersistedLookup(shared.NormalizeTrackKey("Lost", "Nobody"), "Lost", "Nobody", nil),
	} {
		if err := repo.Create(l); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}
	}

	if err := h.run("cache", "stats"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	out := h.output.String()
	if !strings.Contains(out, "Found:    1") || !strings.Contains(out, "Missing:  2") {
		t.Errorf("unexpected stats:\n%s", out)
	}

	h.output.Reset()
	if err := h.run("cache", "clear"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(h.output.String(), "Removed 3 cached lookups") {
		t.Errorf("unexpected clear output:\n%s", h.output.String())
	}

	rows, err := repo.List(map[string]any{})
	if err != nil {
		t.Fatalf("failed to list cache: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected empty cache, got %d rows", len(rows))
	}
}

func TestSetupCommands(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		h := newHarness(t, false)
		if err := h.run("setup", "config"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, h.runner.configPath)

		if err := h.run("setup", "config"); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("database", func(t *testing.T) {
		h := newHarness(t, false)
		if err := h.run("setup", "database"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, h.runner.config.Database.Path)
	})
}
