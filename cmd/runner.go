package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/camsort/internal/reference"
	"github.com/desertthunder/camsort/internal/repositories"
	"github.com/desertthunder/camsort/internal/services"
	"github.com/desertthunder/camsort/internal/shared"
	"github.com/desertthunder/camsort/internal/tasks"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Collaborators left nil are built from the loaded configuration the first time a command needs them.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    services.PlaylistService
	lookup     services.LookupService
	store      *reference.Store
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
	colorize   bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    services.PlaylistService
	Lookup     services.LookupService
	Store      *reference.Store
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		lookup:     opts.Lookup,
		store:      opts.Store,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
		colorize:   shouldColorize(opts.Output),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		sortCommand, historyCommand, spotifyCommand, keyCommand, referenceCommand, lookupCommand, cacheCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// shouldColorize reports whether w is an interactive terminal.
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Before loads the configuration file and .env overrides, then applies the log level.
//
// A missing config file falls back to the embedded defaults.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	shared.LoadEnv(r.config, cmd.String("env"))

	level := r.config.Log.Level
	if l := cmd.String("log-level"); l != "" {
		level = l
	}
	if err := shared.SetLogLevel(r.logger, level); err != nil {
		return ctx, err
	}
	return ctx, nil
}

// After persists a refreshed Spotify token and closes the database.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	r.persistToken()
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.logger.Warn("failed to close database", "error", err)
		}
		r.db = nil
	}
	return nil
}

// SetLogger swaps the logger used by commands and services built afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// playlistService returns the Spotify service, authenticating with the stored token.
func (r *Runner) playlistService(ctx context.Context) (services.PlaylistService, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}

	svc, err := services.NewSpotifyService(r.config.Credentials.Spotify.Map(), r.logger)
	if err != nil {
		return nil, err
	}
	if err := svc.Authenticate(ctx, r.config.Credentials.Spotify.Token()); err != nil {
		return nil, fmt.Errorf("%w (run 'camsort spotify auth' first)", err)
	}
	r.spotify = svc
	return svc, nil
}

// lookupService returns the GetSongBPM client, or nil when lookups are disabled or no API key is set.
func (r *Runner) lookupService() (services.LookupService, error) {
	if r.lookup != nil {
		return r.lookup, nil
	}

	cfg := r.config.Lookup
	if !cfg.Enabled || r.config.Credentials.GetSongBPM.APIKey == "" {
		return nil, nil
	}

	svc, err := services.NewGetSongBPMService(services.GetSongBPMOpts{
		APIKey:        r.config.Credentials.GetSongBPM.APIKey,
		BaseURL:       r.config.Credentials.GetSongBPM.BaseURL,
		RatePerSecond: cfg.RatePerSecond,
		Timeout:       cfg.Timeout(),
		MaxRetries:    cfg.MaxRetries,
		Logger:        r.logger,
	})
	if err != nil {
		return nil, err
	}
	r.lookup = svc
	return svc, nil
}

// referenceStore loads the local reference dataset once.
func (r *Runner) referenceStore() (*reference.Store, error) {
	if r.store != nil {
		return r.store, nil
	}

	store, err := reference.Load(r.config.Reference.Path)
	if err != nil {
		return nil, err
	}
	if store.Len() == 0 {
		r.logger.Warn("reference dataset is empty", "path", r.config.Reference.Path)
	}
	r.store = store
	return store, nil
}

// database opens the SQLite database and runs pending migrations.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

// newEngine wires the local resolver, the optional cached lookup resolver and run recording.
//
// A database failure only disables caching and run history.
func (r *Runner) newEngine(ctx context.Context, concurrency int) (*tasks.PlaylistEngine, error) {
	playlists, err := r.playlistService(ctx)
	if err != nil {
		return nil, err
	}
	store, err := r.referenceStore()
	if err != nil {
		return nil, err
	}

	chain := tasks.ChainResolver{tasks.NewLocalResolver(store)}

	db, dbErr := r.database()
	if dbErr != nil {
		r.logger.Warn("database unavailable, lookups will not be cached", "error", dbErr)
	}

	lookup, err := r.lookupService()
	if err != nil {
		return nil, err
	}
	if lookup != nil {
		resolver := tasks.NewLookupResolver(lookup, r.logger)
		if db != nil && r.config.Lookup.Cache {
			resolver = resolver.WithCache(repositories.NewLookupCacheAdapter(repositories.NewLookupCacheRepository(db)))
		}
		chain = append(chain, resolver)
	} else {
		r.logger.Info("external lookup disabled, resolving from the reference dataset only")
	}

	if concurrency <= 0 {
		concurrency = r.config.Lookup.Concurrency
	}
	engine := tasks.NewPlaylistEngine(playlists, tasks.NewEnricher(chain, concurrency, r.logger), r.logger).
		WithSuggestions(store, suggestionThreshold)
	if db != nil {
		engine = engine.WithRunRecorder(repositories.NewSortRunRepository(db))
	}
	return engine, nil
}

// saveTokens stores token in the config and writes it to the config path, when one is set.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrMissingConfig)
	}
	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// persistToken saves the Spotify token when the client refreshed it during the command.
func (r *Runner) persistToken() {
	svc, ok := r.spotify.(*services.SpotifyService)
	if !ok {
		return
	}
	token, err := svc.Token()
	if err != nil || token.AccessToken == r.config.Credentials.Spotify.AccessToken {
		return
	}
	if _, statErr := os.Stat(r.configPath); statErr != nil {
		return
	}
	if err := r.saveTokens(token); err != nil {
		r.logger.Warn("failed to persist refreshed token", "error", err)
		return
	}
	r.logger.Debug("refreshed token saved", "path", r.configPath)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
