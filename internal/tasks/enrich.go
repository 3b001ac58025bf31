package tasks

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/services"
	"github.com/desertthunder/camsort/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Miss is a track that no resolver could place.
type Miss struct {
	Index int
	Track models.Track
	Err   error // joined errors from every stage
}

// EnrichResult holds enriched copies of the input tracks in their original order.
type EnrichResult struct {
	Tracks []models.Track
	Stats  models.RunStats
	Misses []Miss
}

// Enricher runs a [ChainResolver] over a playlist.
//
// Stages run one after another and each only sees tracks the earlier stages missed.
// The first stage runs inline. Later stages run up to Concurrency resolutions at once.
// Results are merged by index, so logs and enrichment happen in playlist order.
type Enricher struct {
	chain       ChainResolver
	concurrency int
	logger      *log.Logger
}

// NewEnricher creates an Enricher. concurrency below 1 is treated as 1.
func NewEnricher(chain ChainResolver, concurrency int, logger *log.Logger) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{chain: chain, concurrency: concurrency, logger: logger}
}

type outcome struct {
	res *Resolution
	err error
}

// Enrich resolves every track at most once. Failures never abort the run.
func (e *Enricher) Enrich(ctx context.Context, tracks []models.Track, progress chan<- ProgressUpdate) *EnrichResult {
	out := slices.Clone(tracks)
	failures := make([][]error, len(out))

	pending := make([]int, 0, len(out))
	for i := range out {
		pending = append(pending, i)
	}

	result := &EnrichResult{Tracks: out}
	for stage, r := range e.chain {
		if len(pending) == 0 {
			break
		}
		sendProgress(progress, enrichStageUpdate(stage+1, len(e.chain), r.Name()))

		var outcomes []outcome
		if stage == 0 {
			outcomes = e.runInline(ctx, r, out, pending, progress)
		} else {
			outcomes = e.runConcurrent(ctx, r, out, pending, progress)
		}

		next := pending[:0]
		for n, i := range pending {
			o := outcomes[n]
			if o.err != nil {
				e.logFailure(r, out[i], o.err)
				failures[i] = append(failures[i], o.err)
				next = append(next, i)
				continue
			}
			if err := out[i].Enrich(o.res.Key.PitchClass, o.res.Key.Mode, o.res.Tempo, o.res.Source); err != nil {
				e.logger.Error("could not apply resolution", "track", out[i].String(), "err", err)
				failures[i] = append(failures[i], err)
				next = append(next, i)
				continue
			}
			e.logSuccess(out[i], o.res)
			result.Stats.Resolved++
			if o.res.Source == models.SourceLocal {
				result.Stats.FromLocal++
			} else {
				result.Stats.FromLookup++
			}
		}
		pending = next
	}

	for _, i := range pending {
		err := errors.Join(failures[i]...)
		e.logger.Warn("[✗ MISS] "+out[i].String(), "err", err)
		result.Misses = append(result.Misses, Miss{Index: i, Track: out[i], Err: err})
	}
	result.Stats.Total = len(out)
	return result
}

func (e *Enricher) runInline(ctx context.Context, r Resolver, tracks []models.Track, pending []int, progress chan<- ProgressUpdate) []outcome {
	outcomes := make([]outcome, len(pending))
	for n, i := range pending {
		sendProgress(progress, enrichTrackUpdate(n+1, len(pending), r.Name(), tracks[i]))
		res, err := r.Resolve(ctx, tracks[i])
		outcomes[n] = outcome{res: res, err: err}
	}
	return outcomes
}

// runConcurrent never returns early: each goroutine records its own outcome and reports no error to the group.
func (e *Enricher) runConcurrent(ctx context.Context, r Resolver, tracks []models.Track, pending []int, progress chan<- ProgressUpdate) []outcome {
	outcomes := make([]outcome, len(pending))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for n, i := range pending {
		track := tracks[i]
		g.Go(func() error {
			res, err := r.Resolve(gctx, track)
			outcomes[n] = outcome{res: res, err: err}
			sendProgress(progress, enrichTrackUpdate(int(done.Add(1)), len(pending), r.Name(), track))
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (e *Enricher) logSuccess(t models.Track, res *Resolution) {
	var tag string
	switch res.Source {
	case models.SourceLocal:
		tag = "[✓ LOCAL] "
	case models.SourceCache:
		tag = "[✓ CACHE] "
	default:
		tag = "[✓ LOOKUP] "
	}
	e.logger.Info(tag+t.String(), "key", res.Key.String(), "bpm", res.Tempo, "via", res.Detail)
}

// logFailure picks a level by error kind. Expected misses stay at debug.
func (e *Enricher) logFailure(r Resolver, t models.Track, err error) {
	var payloadErr *services.PayloadError
	switch {
	case errors.As(err, &payloadErr):
		e.logger.Warn("malformed lookup payload", "track", t.String(), "reason", payloadErr.Reason, "payload", payloadErr.Payload)
	case errors.Is(err, shared.ErrNoReferenceMatch), errors.Is(err, shared.ErrNoResultFound):
		e.logger.Debug("no match", "resolver", r.Name(), "track", t.String(), "err", err)
	default:
		e.logger.Warn("resolution failed", "resolver", r.Name(), "track", t.String(), "err", err)
	}
}
