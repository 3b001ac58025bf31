package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/desertthunder/camsort/internal/shared"
)

var bareIDRegex = regexp.MustCompile(`^[0-9A-Za-z]+$`)

// ParsePlaylistID accepts a bare ID, a spotify:playlist:ID URI or an
// open.spotify.com playlist URL and returns the bare ID.
func ParsePlaylistID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("%w: empty playlist identifier", shared.ErrInvalidArgument)
	}

	if rest, ok := strings.CutPrefix(s, "spotify:playlist:"); ok {
		return validID(rest, input)
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", shared.ErrInvalidArgument, input, err)
		}
		if u.Host != "open.spotify.com" && u.Host != "play.spotify.com" {
			return "", fmt.Errorf("%w: %q is not a Spotify URL", shared.ErrInvalidArgument, input)
		}

		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := 0; i < len(parts)-1; i++ {
			if parts[i] == "playlist" {
				return validID(parts[i+1], input)
			}
		}
		return "", fmt.Errorf("%w: %q is not a playlist URL", shared.ErrInvalidArgument, input)
	}

	return validID(s, input)
}

func validID(id, input string) (string, error) {
	if !bareIDRegex.MatchString(id) {
		return "", fmt.Errorf("%w: invalid playlist identifier %q", shared.ErrInvalidArgument, input)
	}
	return id, nil
}
