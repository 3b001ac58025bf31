package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/camsort/internal/formatter"
	"github.com/desertthunder/camsort/internal/server"
	"github.com/desertthunder/camsort/internal/services"
	"github.com/desertthunder/camsort/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// authTimeout bounds how long the callback listener waits for the browser.
const authTimeout = 2 * time.Minute

// SpotifyAuth performs OAuth2 authentication flow for Spotify.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s or the environment", shared.ErrMissingCredentials, r.configPath)
	}

	spotifyService, err := services.NewSpotifyService(creds.Map(), r.logger)
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	token, err := r.doOAuth(ctx, spotifyService)
	if err != nil {
		return err
	}

	if r.configPath == "" {
		r.configPath = "config.toml"
	}
	if err := r.saveTokens(token); err != nil {
		return err
	}
	r.spotify = spotifyService

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	r.writePlain("You can now use: camsort spotify playlists\n")

	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local callback server.
func (r *Runner) doOAuth(ctx context.Context, svc *services.SpotifyService) (*oauth2.Token, error) {
	state := shared.GenerateID()

	addr, path, err := server.CallbackAddr(r.config.Credentials.Spotify.RedirectURI)
	if err != nil {
		return nil, err
	}
	if cfg := r.config.Server; cfg.Host != "" && cfg.Port > 0 {
		if listen := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port); listen != addr {
			r.logger.Warn("server address differs from redirect_uri, using redirect_uri", "server", listen, "redirect", addr)
		}
	}

	handler := server.NewOAuthHandler(svc, path, state)
	srv, err := server.NewCallbackServer(addr, handler, r.logger)
	if err != nil {
		return nil, err
	}

	authURL := svc.GetAuthURL(state)
	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", authTimeout)

	waitCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	token, err := srv.Wait(waitCtx)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	return token, nil
}

// SpotifyPlaylists lists Spotify playlists with optional limit.
func (r *Runner) SpotifyPlaylists(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	svc, err := r.playlistService(ctx)
	if err != nil {
		return err
	}

	r.logger.Infof("listing spotify playlists with limit %v", limit)

	playlists, err := svc.Playlists(ctx)
	if err != nil {
		return err
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	if r.colorize {
		rows := make([][]string, 0, len(playlists))
		for _, p := range playlists {
			rows = append(rows, []string{p.Name, strconv.Itoa(p.TrackCount), p.ID})
		}
		return r.writePlain("%s\n", formatter.RenderTable([]string{"Name", "Tracks", "ID"}, rows,
			[]formatter.Alignment{formatter.AlignLeft, formatter.AlignRight}))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		if p.Public {
			r.writePlain("   Visibility: Public\n")
		} else {
			r.writePlain("   Visibility: Private\n")
		}
		r.writePlain("\n")
	}

	return nil
}
