package main

import (
	"context"

	"github.com/desertthunder/camsort/internal/repositories"
	"github.com/urfave/cli/v3"
)

// CacheStats reports how many cached lookups hold a result and how many record a miss.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	repo := repositories.NewLookupCacheRepository(db)

	hits, err := repo.List(map[string]any{"found": true})
	if err != nil {
		return err
	}
	misses, err := repo.List(map[string]any{"found": false})
	if err != nil {
		return err
	}

	r.writePlainHeader("Lookup cache")
	r.writePlain("Database: %s\n", r.config.Database.Path)
	r.writePlain("Found:    %d\n", len(hits))
	r.writePlain("Missing:  %d\n", len(misses))
	return nil
}

// CacheClear deletes every cached lookup.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	n, err := repositories.NewLookupCacheRepository(db).Clear()
	if err != nil {
		return err
	}
	r.logger.Info("lookup cache cleared", "rows", n)
	return r.writePlain("✓ Removed %d cached lookups\n", n)
}
