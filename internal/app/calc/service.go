package calc

import (
	"context"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/osa030/playtime/internal/app/stats"
	"github.com/osa030/playtime/internal/domain/playlist"
	"github.com/osa030/playtime/internal/infra/config"
)

// MetadataSource fetches descriptive playlist information.
type MetadataSource interface {
	FetchPlaylistMetadata(ctx context.Context, id playlist.ID) (*playlist.Metadata, error)
}

// Aggregator sums item durations over a range.
type Aggregator interface {
	Aggregate(ctx context.Context, id playlist.ID, rng playlist.Range) (*playlist.Result, error)
}

// Outcome is the complete result of one calculation.
type Outcome struct {
	Request        Request
	PlaylistID     playlist.ID
	Metadata       *playlist.Metadata
	Result         *playlist.Result
	Statistics     stats.Statistics
	AverageSeconds float64
}

// Service runs calculations.
type Service struct {
	metadata   MetadataSource
	aggregator Aggregator

	timeout  time.Duration
	minSpeed float64
	maxSpeed float64

	group singleflight.Group
	slots chan struct{}
}

// NewService creates a new calculation service.
func NewService(cfg *config.Config, metadata MetadataSource, aggregator Aggregator) *Service {
	return &Service{
		metadata:   metadata,
		aggregator: aggregator,
		timeout:    cfg.CalculationTimeout(),
		minSpeed:   cfg.Playback.MinSpeed,
		maxSpeed:   cfg.Playback.MaxSpeed,
		slots:      make(chan struct{}, cfg.Calculation.MaxInFlight),
	}
}

// Calculate validates req, fetches the playlist metadata, aggregates the
// selected range and derives statistics.
//
// Identical requests in flight at the same time share one calculation.
// The shared calculation is bounded by the configured timeout and keeps
// running when one of its callers goes away.
func (s *Service) Calculate(ctx context.Context, req Request) (*Outcome, error) {
	p, err := req.parse(s.minSpeed, s.maxSpeed)
	if err != nil {
		return nil, err
	}

	key := string(p.id) + "|" + strconv.Itoa(p.rng.Start) + "|" + strconv.Itoa(p.rng.End) +
		"|" + strconv.FormatFloat(p.speed, 'g', -1, 64)

	ch := s.group.DoChan(key, func() (any, error) {
		select {
		case s.slots <- struct{}{}:
			defer func() { <-s.slots }()
		default:
			return nil, errors.Mark(errors.Newf("%d calculations already running", cap(s.slots)), ErrBusy)
		}

		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.run(runCtx, p)
	})

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "calculation abandoned")
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			zlog.Debug().Str("playlist_id", string(p.id)).Msg("shared in-flight calculation")
		}
		outcome := *r.Val.(*Outcome)
		outcome.Request = req
		return &outcome, nil
	}
}

func (s *Service) run(ctx context.Context, p parsed) (*Outcome, error) {
	started := time.Now()

	meta, err := s.metadata.FetchPlaylistMetadata(ctx, p.id)
	if err != nil {
		return nil, classify(errors.Wrapf(err, "failed to fetch playlist %s", p.id))
	}

	result, err := s.aggregator.Aggregate(ctx, p.id, p.rng)
	if err != nil {
		return nil, classify(errors.Wrapf(err, "failed to aggregate playlist %s", p.id))
	}

	outcome := &Outcome{
		PlaylistID:     p.id,
		Metadata:       meta,
		Result:         result,
		Statistics:     stats.Derive(result.TotalSeconds, p.speed),
		AverageSeconds: stats.Average(result.TotalSeconds, meta.ItemCount),
	}

	zlog.Info().
		Str("playlist_id", string(p.id)).
		Int("start", p.rng.Start).
		Int("end", p.rng.End).
		Float64("speed", p.speed).
		Int64("total_seconds", result.TotalSeconds).
		Bool("partial", result.Partial).
		Dur("elapsed", time.Since(started)).
		Msg("calculation completed")

	return outcome, nil
}
