// GetSongBPM implementation of [LookupService]
package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	simplejson "github.com/bitly/go-simplejson"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/camsort/internal/camelot"
	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultGetSongBPMURL = "https://api.getsong.co"
	defaultLookupTimeout = 10 * time.Second
)

// GetSongBPMOpts configures a [GetSongBPMService].
type GetSongBPMOpts struct {
	APIKey        string
	BaseURL       string
	RatePerSecond float64 // <= 0 disables rate limiting
	Timeout       time.Duration
	MaxRetries    int
	BaseBackoff   time.Duration
	Client        *http.Client
	Logger        *log.Logger
}

// GetSongBPMService implements [LookupService] against the GetSongBPM search API.
type GetSongBPMService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	retry      retryPolicy
	logger     *log.Logger
}

// NewGetSongBPMService creates a lookup client. An API key is required.
func NewGetSongBPMService(opts GetSongBPMOpts) (*GetSongBPMService, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: getsongbpm api_key", shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultGetSongBPMURL
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultLookupTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}

	return &GetSongBPMService{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.Client,
		timeout:    opts.Timeout,
		retry:      retryPolicy{maxRetries: opts.MaxRetries, baseBackoff: opts.BaseBackoff, limiter: limiter, logger: opts.Logger},
		logger:     opts.Logger,
	}, nil
}

// searchURL builds the search request for a title/artist pair.
func (g *GetSongBPMService) searchURL(title, artist string) string {
	q := url.Values{}
	q.Set("api_key", g.apiKey)
	q.Set("type", "both")
	q.Set("lookup", fmt.Sprintf("song:%s artist:%s", title, artist))
	q.Set("limit", "1")
	return g.baseURL + "/search/?" + q.Encode()
}

// Lookup queries the search endpoint and returns the first result.
//
// Timeouts, transport failures and non-2xx statuses are [shared.ErrLookupUnavailable].
func (g *GetSongBPMService) Lookup(ctx context.Context, title, artist string) (*models.LookupResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.searchURL(title, artist), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrLookupUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.retry.do(g.httpClient, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLookupUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrLookupUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrLookupUnavailable, err)
	}
	return ParseSearchPayload(body)
}

// PayloadError is a [shared.ErrMalformedLookupPayload] that carries the raw body for diagnostics.
type PayloadError struct {
	Reason  string
	Payload string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%v: %s", shared.ErrMalformedLookupPayload, e.Reason)
}

func (e *PayloadError) Unwrap() error {
	return shared.ErrMalformedLookupPayload
}

func malformed(body []byte, format string, args ...any) error {
	return &PayloadError{Reason: fmt.Sprintf(format, args...), Payload: string(body)}
}

// ParseSearchPayload decodes a search response.
//
// "search" is either a list of results, of which the first is used, or an
// object carrying "error". Each result needs a positive "tempo" (number or
// numeric string) and a "key_of" readable as Camelot or free text.
func ParseSearchPayload(body []byte) (*models.LookupResult, error) {
	js, err := simplejson.NewJson(body)
	if err != nil {
		return nil, malformed(body, "invalid JSON: %v", err)
	}

	search, ok := js.CheckGet("search")
	if !ok {
		return nil, malformed(body, "missing search field")
	}

	if _, err := search.Array(); err != nil {
		if msg, ok := search.CheckGet("error"); ok {
			return nil, fmt.Errorf("%w: %s", shared.ErrNoResultFound, msg.MustString("error"))
		}
		return nil, malformed(body, "search is neither a list nor an error object")
	}

	results, _ := search.Array()
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: empty search", shared.ErrNoResultFound)
	}

	first := search.GetIndex(0)
	tempo, err := parseTempo(first.Get("tempo"))
	if err != nil {
		return nil, malformed(body, "tempo: %v", err)
	}

	keyText := strings.TrimSpace(first.Get("key_of").MustString())
	if keyText == "" {
		return nil, malformed(body, "missing key_of")
	}
	if _, err := camelot.Parse(keyText); err != nil {
		return nil, malformed(body, "key_of: %v", err)
	}

	return &models.LookupResult{
		Title:   first.Get("title").MustString(),
		Artist:  first.Get("artist").Get("name").MustString(),
		Tempo:   tempo,
		KeyText: keyText,
	}, nil
}

func parseTempo(v *simplejson.Json) (float64, error) {
	tempo, err := v.Float64()
	if err != nil {
		s, serr := v.String()
		if serr != nil {
			return 0, fmt.Errorf("not a number")
		}
		tempo, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("unparsable %q", s)
		}
	}
	if math.IsNaN(tempo) || math.IsInf(tempo, 0) || tempo <= 0 {
		return 0, fmt.Errorf("non-positive or non-finite %v", tempo)
	}
	return tempo, nil
}
