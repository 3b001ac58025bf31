package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/camsort/internal/camelot"
	"github.com/desertthunder/camsort/internal/formatter"
	"github.com/desertthunder/camsort/internal/shared"
	"github.com/urfave/cli/v3"
)

type lookupJSON struct {
	Title   string  `json:"title"`
	Artist  string  `json:"artist"`
	Tempo   float64 `json:"tempo"`
	KeyText string  `json:"key_of"`
	Camelot string  `json:"camelot,omitempty"`
}

// Lookup queries the external service for one track, bypassing the cache.
func (r *Runner) Lookup(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.lookupService()
	if err != nil {
		return err
	}
	if svc == nil {
		return fmt.Errorf("%w: set [credentials.getsongbpm] api_key and enable [lookup]", shared.ErrMissingCredentials)
	}

	title, artist := cmd.String("title"), cmd.String("artist")
	r.logger.Debug("looking up track", "title", title, "artist", artist)

	result, err := svc.Lookup(ctx, title, artist)
	if err != nil {
		return err
	}

	out := lookupJSON{Title: result.Title, Artist: result.Artist, Tempo: result.Tempo, KeyText: result.KeyText}
	k, keyErr := camelot.Parse(result.KeyText)
	if keyErr == nil {
		if code, ok := k.Code(); ok {
			out.Camelot = code.String()
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, true)
	}

	r.writePlain("%s - %s\n", out.Artist, out.Title)
	r.writePlain("  Tempo: %s bpm\n", formatter.BPM(out.Tempo))
	if keyErr != nil {
		r.logger.Warn("lookup returned an unrecognized key", "key", result.KeyText, "error", keyErr)
		return r.writePlain("  Key:   %s (unrecognized)\n", result.KeyText)
	}
	return r.writePlain("  Key:   %s (%s)\n", k.String(), out.Camelot)
}
