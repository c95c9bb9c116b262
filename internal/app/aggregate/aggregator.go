// Package aggregate walks a playlist and sums the durations of its items.
package aggregate

import (
	"context"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/osa030/playtime/internal/domain/playlist"
	"github.com/osa030/playtime/internal/domain/video"
)

// Catalog defines the catalog operations needed by the aggregator.
type Catalog interface {
	FetchItemPage(ctx context.Context, id playlist.ID, pageToken string) (playlist.Page, error)
	FetchItemDuration(ctx context.Context, videoID string) video.Resolution
	FetchItemDurations(ctx context.Context, videoIDs []string) []video.Resolution
}

// Options tunes duration resolution. Zero values mean sequential, one item per lookup.
type Options struct {
	Concurrency int // parallel lookups within one page
	BatchSize   int // videos per lookup
}

// Aggregator sums item durations over a range of playlist positions.
type Aggregator struct {
	catalog     Catalog
	concurrency int
	batchSize   int
}

// New creates a new aggregator.
func New(catalog Catalog, opts Options) *Aggregator {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	batchSize := opts.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	return &Aggregator{
		catalog:     catalog,
		concurrency: concurrency,
		batchSize:   batchSize,
	}
}

// Aggregate walks the playlist page by page and sums the durations of the
// items whose 1-based position falls within rng.
//
// A failed page fetch ends the walk and the total so far is returned with
// Partial set; it is not reported as an error. The only error returned is
// the context's, together with the partial result.
func (a *Aggregator) Aggregate(ctx context.Context, id playlist.ID, rng playlist.Range) (*playlist.Result, error) {
	result := &playlist.Result{}
	position := 0
	pageToken := ""

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return markPartial(result, err), err
		}

		p, err := a.catalog.FetchItemPage(ctx, id, pageToken)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return markPartial(result, ctxErr), ctxErr
			}
			zlog.Error().Err(err).Str("playlist_id", string(id)).Int("page", page).
				Int64("partial_total", result.TotalSeconds).
				Msg("failed to fetch playlist items, returning partial total")
			markPartial(result, err)
			break
		}

		var pending []string
		for _, item := range p.Items {
			if rng.Bounded() && position >= rng.End {
				break
			}
			position++
			if !rng.Contains(position) {
				continue
			}
			pending = append(pending, item.VideoID)
		}
		result.Visited = position

		zlog.Debug().Str("playlist_id", string(id)).Int("page", page).
			Int("items", len(p.Items)).Int("in_range", len(pending)).Msg("fetched playlist page")

		for _, res := range a.resolve(ctx, pending) {
			result.Add(res)
		}

		pageToken = p.NextPageToken
		if pageToken == "" || (rng.Bounded() && position >= rng.End) {
			break
		}
	}

	zlog.Info().Str("playlist_id", string(id)).Int64("total_seconds", result.TotalSeconds).
		Int("resolved", result.Resolved).Int("degraded", len(result.Degraded)).
		Bool("partial", result.Partial).Msg("aggregation finished")

	return result, nil
}

// resolve looks up durations for ids, keeping input order in the result.
func (a *Aggregator) resolve(ctx context.Context, ids []string) []video.Resolution {
	if len(ids) == 0 {
		return nil
	}

	results := make([]video.Resolution, len(ids))
	lookup := func(offset int, chunk []string) {
		if a.batchSize == 1 {
			results[offset] = a.catalog.FetchItemDuration(ctx, chunk[0])
			return
		}
		copy(results[offset:], a.catalog.FetchItemDurations(ctx, chunk))
	}

	if a.concurrency == 1 {
		for i := 0; i < len(ids); i += a.batchSize {
			lookup(i, ids[i:min(i+a.batchSize, len(ids))])
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i := 0; i < len(ids); i += a.batchSize {
		offset, chunk := i, ids[i:min(i+a.batchSize, len(ids))]
		g.Go(func() error {
			lookup(offset, chunk)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func markPartial(result *playlist.Result, err error) *playlist.Result {
	result.Partial = true
	result.PartialReason = err.Error()
	return result
}
