package services

import (
	"context"

	"github.com/desertthunder/camsort/internal/models"
)

// PageSize bounds both playlist reads and write-back batches.
const PageSize = 100

// PlaylistService reads and reorders playlists on a provider.
type PlaylistService interface {
	// Playlists lists the playlists owned or followed by the authenticated user.
	Playlists(ctx context.Context) ([]models.Playlist, error)

	// Playlist returns playlist metadata. TrackCount includes items that [Tracks] skips.
	Playlist(ctx context.Context, id string) (*models.Playlist, error)

	// Tracks returns every track in playlist order, unresolved.
	Tracks(ctx context.Context, id string) ([]models.Track, error)

	// Reorder replaces the playlist contents with trackIDs in the given order.
	Reorder(ctx context.Context, id string, trackIDs []string) error

	// Name returns the provider name
	Name() string
}

// LookupService resolves a tempo and raw key string for a title/artist pair.
type LookupService interface {
	Lookup(ctx context.Context, title, artist string) (*models.LookupResult, error)
}
