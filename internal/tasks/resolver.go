package tasks

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/camsort/internal/camelot"
	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/reference"
	"github.com/desertthunder/camsort/internal/services"
	"github.com/desertthunder/camsort/internal/shared"
)

// Resolution is a key and tempo found for one track.
type Resolution struct {
	Key    camelot.Key
	Tempo  float64
	Source models.Source
	Detail string // matched entry or lookup title, for logs
}

// Resolver finds the key and tempo of a single track.
//
// A miss is an error. Implementations must not modify the track.
type Resolver interface {
	Resolve(ctx context.Context, track models.Track) (*Resolution, error)

	// Name identifies the resolver in logs and progress updates.
	Name() string
}

// LookupCacher is an optional persistence layer for external lookups.
//
// A hit with a nil result is a cached miss.
type LookupCacher interface {
	CachedLookup(title, artist string) (*models.LookupResult, bool, error)
	CacheLookup(title, artist string, result *models.LookupResult) error
}

// LocalResolver resolves tracks against the reference dataset.
type LocalResolver struct {
	store *reference.Store
}

func NewLocalResolver(store *reference.Store) *LocalResolver {
	return &LocalResolver{store: store}
}

func (r *LocalResolver) Name() string { return "local" }

// Resolve tries the direct title bucket, then the fuzzy scan, and converts the winner's Camelot key.
func (r *LocalResolver) Resolve(ctx context.Context, track models.Track) (*Resolution, error) {
	m, strategy, ok := r.store.Match(track)
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoReferenceMatch, track)
	}

	key, err := camelot.ToInternal(m.Entry.KeyCamelot)
	if err != nil {
		return nil, fmt.Errorf("reference entry %q by %q: %w", m.Entry.Name, m.Entry.Artist, err)
	}
	if !validTempo(m.Entry.BPM) {
		return nil, fmt.Errorf("%w: entry %q by %q has bpm %v", shared.ErrNoReferenceMatch, m.Entry.Name, m.Entry.Artist, m.Entry.BPM)
	}

	return &Resolution{
		Key:    key,
		Tempo:  m.Entry.BPM,
		Source: models.SourceLocal,
		Detail: fmt.Sprintf("%s - %s (%s, score %d)", m.Entry.Artist, m.Entry.Name, strategy, m.Score),
	}, nil
}

// LookupResolver resolves tracks through an external [services.LookupService].
type LookupResolver struct {
	svc    services.LookupService
	cache  LookupCacher
	logger *log.Logger
}

func NewLookupResolver(svc services.LookupService, logger *log.Logger) *LookupResolver {
	return &LookupResolver{svc: svc, logger: logger}
}

// WithCache enables lookup caching.
func (r *LookupResolver) WithCache(cache LookupCacher) *LookupResolver {
	r.cache = cache
	return r
}

func (r *LookupResolver) Name() string { return "lookup" }

// Resolve consults the cache when configured, then the service.
//
// Results and explicit "no result" answers are cached. Unavailable and malformed
// responses are not, so the next run asks again.
func (r *LookupResolver) Resolve(ctx context.Context, track models.Track) (*Resolution, error) {
	if r.cache != nil {
		res, hit, err := r.cache.CachedLookup(track.Name, track.Artist)
		switch {
		case err != nil:
			r.logger.Warn("lookup cache read failed", "track", track.String(), "err", err)
		case hit && res == nil:
			return nil, fmt.Errorf("%w: cached miss for %s", shared.ErrNoResultFound, track)
		case hit:
			return fromLookup(res, models.SourceCache)
		}
	}

	res, err := r.svc.Lookup(ctx, track.Name, track.Artist)
	if err != nil {
		if errors.Is(err, shared.ErrNoResultFound) {
			r.store(track, nil)
		}
		return nil, err
	}

	resolution, err := fromLookup(res, models.SourceLookup)
	if err != nil {
		return nil, err
	}
	r.store(track, res)
	return resolution, nil
}

func (r *LookupResolver) store(track models.Track, res *models.LookupResult) {
	if r.cache == nil {
		return
	}
	if err := r.cache.CacheLookup(track.Name, track.Artist, res); err != nil {
		r.logger.Warn("lookup cache write failed", "track", track.String(), "err", err)
	}
}

// fromLookup converts a lookup result. Its key is tried as Camelot first, then as free text.
func fromLookup(res *models.LookupResult, src models.Source) (*Resolution, error) {
	if !validTempo(res.Tempo) {
		return nil, fmt.Errorf("%w: tempo %v for %q", shared.ErrMalformedLookupPayload, res.Tempo, res.Title)
	}
	key, err := camelot.Parse(res.KeyText)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrMalformedLookupPayload, err)
	}
	return &Resolution{
		Key:    key,
		Tempo:  res.Tempo,
		Source: src,
		Detail: fmt.Sprintf("%s - %s (%s)", res.Artist, res.Title, res.KeyText),
	}, nil
}

func validTempo(bpm float64) bool {
	return bpm > 0 && !math.IsInf(bpm, 0)
}

// ChainResolver tries each resolver in order and returns the first resolution.
type ChainResolver []Resolver

func (c ChainResolver) Name() string { return "chain" }

// Resolve returns every stage's error, joined, when all of them miss.
func (c ChainResolver) Resolve(ctx context.Context, track models.Track) (*Resolution, error) {
	var errs []error
	for _, r := range c {
		res, err := r.Resolve(ctx, track)
		if err == nil {
			return res, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no resolvers configured", shared.ErrServiceUnavailable)
	}
	return nil, errors.Join(errs...)
}
