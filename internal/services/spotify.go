// Spotify implementation of [PlaylistService]
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const defaultRedirectURI = "http://127.0.0.1:3000/callback"

// spotifyAPI is the subset of [spotify.Client] used by [SpotifyService].
type spotifyAPI interface {
	CurrentUsersPlaylists(ctx context.Context, opts ...spotify.RequestOption) (*spotify.SimplePlaylistPage, error)
	GetPlaylist(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.FullPlaylist, error)
	GetPlaylistItems(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.PlaylistItemPage, error)
	ReplacePlaylistTracks(ctx context.Context, playlistID spotify.ID, trackIDs ...spotify.ID) error
	AddTracksToPlaylist(ctx context.Context, playlistID spotify.ID, trackIDs ...spotify.ID) (string, error)
}

// SpotifyService implements [PlaylistService] for the Spotify Web API.
type SpotifyService struct {
	auth   *spotifyauth.Authenticator
	client spotifyAPI
	token  *oauth2.Token
	logger *log.Logger
}

// NewSpotifyService creates a Spotify service from client credentials.
//
// Expects "client_id" and "client_secret". "redirect_uri" defaults to the local callback listener.
func NewSpotifyService(credentials map[string]string, logger *log.Logger) (*SpotifyService, error) {
	clientID := credentials["client_id"]
	if clientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}

	clientSecret := credentials["client_secret"]
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := credentials["redirect_uri"]
	if redirectURI == "" {
		redirectURI = defaultRedirectURI
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(clientID),
		spotifyauth.WithClientSecret(clientSecret),
		spotifyauth.WithRedirectURL(redirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopePlaylistReadCollaborative,
			spotifyauth.ScopePlaylistModifyPublic,
			spotifyauth.ScopePlaylistModifyPrivate,
		),
	)

	return &SpotifyService{auth: auth, logger: logger}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.auth.AuthURL(state)
}

// Exchange trades an authorization code for a token and authenticates the service with it.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.auth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	if err := s.Authenticate(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Authenticate builds an API client from a stored token.
// Expired tokens are refreshed transparently when a refresh token is present.
func (s *SpotifyService) Authenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: no access token", shared.ErrNotAuthenticated)
	}
	s.token = token
	s.client = spotify.New(s.auth.Client(ctx, token))
	return nil
}

// Token returns the current token, which may have been refreshed since [SpotifyService.Authenticate].
func (s *SpotifyService) Token() (*oauth2.Token, error) {
	if c, ok := s.client.(*spotify.Client); ok {
		return c.Token()
	}
	if s.token == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return s.token, nil
}

func (s *SpotifyService) api() (spotifyAPI, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return s.client, nil
}

// Playlists retrieves all playlists for the authenticated user.
func (s *SpotifyService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}

	var playlists []models.Playlist
	limit, offset := 50, 0
	for {
		page, err := api.CurrentUsersPlaylists(ctx, spotify.Limit(limit), spotify.Offset(offset))
		if err != nil {
			return nil, wrapSpotifyError(err, "list playlists")
		}

		for _, p := range page.Playlists {
			playlists = append(playlists, models.Playlist{
				ID:          string(p.ID),
				Name:        p.Name,
				Description: p.Description,
				TrackCount:  int(p.Tracks.Total),
				Public:      p.IsPublic,
			})
		}

		if page.Next == "" || len(page.Playlists) == 0 {
			break
		}
		offset += len(page.Playlists)
	}
	return playlists, nil
}

// Playlist retrieves playlist metadata by ID.
func (s *SpotifyService) Playlist(ctx context.Context, id string) (*models.Playlist, error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}

	p, err := api.GetPlaylist(ctx, spotify.ID(id))
	if err != nil {
		return nil, wrapSpotifyError(err, "get playlist "+id)
	}

	return &models.Playlist{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		TrackCount:  int(p.Tracks.Total),
		Public:      p.IsPublic,
	}, nil
}

// Tracks fetches every playlist item in pages of [PageSize].
//
// Local files and podcast episodes cannot be written back by ID, so they are
// skipped and logged. Callers compare against [models.Playlist.TrackCount]
// before reordering.
func (s *SpotifyService) Tracks(ctx context.Context, id string) ([]models.Track, error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}

	var tracks []models.Track
	skipped, offset := 0, 0
	for {
		page, err := api.GetPlaylistItems(ctx, spotify.ID(id), spotify.Limit(PageSize), spotify.Offset(offset))
		if err != nil {
			return nil, wrapSpotifyError(err, "get playlist items "+id)
		}

		for _, item := range page.Items {
			ft := item.Track.Track
			if item.IsLocal || ft == nil || ft.ID == "" {
				skipped++
				continue
			}
			tracks = append(tracks, convertTrack(ft))
		}

		if page.Next == "" || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	if skipped > 0 && s.logger != nil {
		s.logger.Warn("skipped playlist items without a track ID", "playlist", id, "count", skipped)
	}
	return tracks, nil
}

func convertTrack(ft *spotify.FullTrack) models.Track {
	var artist string
	if len(ft.Artists) > 0 {
		artist = ft.Artists[0].Name
	}
	t := models.NewTrack(string(ft.ID), ft.Name, artist, uint(max(int(ft.Duration), 0)))
	t.Album = ft.Album.Name
	return t
}

// Reorder replaces the playlist with the first [PageSize] IDs, then appends each following chunk.
func (s *SpotifyService) Reorder(ctx context.Context, id string, trackIDs []string) error {
	api, err := s.api()
	if err != nil {
		return err
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, tid := range trackIDs {
		ids[i] = spotify.ID(tid)
	}

	first := ids[:min(PageSize, len(ids))]
	if err := api.ReplacePlaylistTracks(ctx, spotify.ID(id), first...); err != nil {
		return fmt.Errorf("%w: replace %s: %v", shared.ErrWriteBack, id, err)
	}

	for start := PageSize; start < len(ids); start += PageSize {
		chunk := ids[start:min(start+PageSize, len(ids))]
		if _, err := api.AddTracksToPlaylist(ctx, spotify.ID(id), chunk...); err != nil {
			return fmt.Errorf("%w: append %d-%d to %s: %v", shared.ErrWriteBack, start, start+len(chunk), id, err)
		}
	}
	return nil
}

func wrapSpotifyError(err error, op string) error {
	var se spotify.Error
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, op)
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s: %s", shared.ErrNotAuthenticated, op, se.Message)
		}
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, op, err)
}
