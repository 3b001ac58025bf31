// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// sortCommand plans and writes a harmonic order
func sortCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sort",
		Usage: "Sort a playlist by Camelot key and tempo",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Playlist ID, spotify:playlist URI or open.spotify.com URL",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Print the planned order without writing it back",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Plan output format (table, text, csv, markdown, json)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the plan to a file instead of stdout",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Concurrent external lookups; overrides [lookup] concurrency",
			},
		},
		Action: r.Sort,
	}
}

// historyCommand lists recorded sort runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded sort runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "id",
				Usage: "Only show runs for this playlist",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify playlist operations",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Spotify using OAuth2",
				Action: r.SpotifyAuth,
			},
			{
				Name:  "playlists",
				Usage: "List Spotify playlists",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to return",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SpotifyPlaylists,
			},
		},
	}
}

// keyCommand converts between key notations
func keyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "key",
		Usage:     "Convert Camelot codes or key names and show their sort weight",
		ArgsUsage: "<code-or-key>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Key,
	}
}

// referenceCommand handles the local reference dataset
func referenceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "reference",
		Aliases: []string{"ref"},
		Usage:   "Inspect and build the local reference dataset",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show entry and title counts",
				Action: r.ReferenceStats,
			},
			{
				Name:  "match",
				Usage: "Score reference candidates for a track",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Track title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "artist",
						Usage:    "Track artist",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "duration",
						Usage: "Track duration in milliseconds",
					},
				},
				Action: r.ReferenceMatch,
			},
			{
				Name:  "import",
				Usage: "Build a dataset from audio file tags",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "dir",
						Usage:    "Directory to scan",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Dataset path; defaults to [reference] path",
					},
					&cli.BoolFlag{
						Name:  "merge",
						Usage: "Keep entries already in the dataset",
					},
				},
				Action: r.ReferenceImport,
			},
		},
	}
}

// lookupCommand queries the external lookup service directly
func lookupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "lookup",
		Usage: "Look up tempo and key with GetSongBPM",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "title",
				Usage:    "Track title",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "artist",
				Usage:    "Track artist",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Lookup,
	}
}

// cacheCommand handles the lookup cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear cached lookups",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cached hits and misses",
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached lookup",
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write config.toml from the default template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive sorting.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for harmonic sorting",
		Action:  r.TUI,
	}
}
