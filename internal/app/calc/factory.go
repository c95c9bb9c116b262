package calc

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playtime/internal/app/aggregate"
	"github.com/osa030/playtime/internal/infra/config"
	"github.com/osa030/playtime/internal/infra/youtube"
)

// NewServiceFromConfig creates a service backed by the YouTube catalog.
func NewServiceFromConfig(ctx context.Context, cfg *config.Config) (*Service, error) {
	client, err := youtube.New(ctx, youtube.Config{
		BaseURL:           cfg.Catalog.BaseURL,
		APIKey:            cfg.Catalog.APIKey,
		AccessToken:       cfg.Catalog.AccessToken,
		PageSize:          cfg.Catalog.PageSize,
		Timeout:           cfg.CatalogTimeout(),
		MaxRetries:        cfg.Catalog.MaxRetries,
		RetryDelay:        time.Duration(cfg.Catalog.RetryDelayMs) * time.Millisecond,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		BreakerFailures:   cfg.Catalog.BreakerFailures,
		BreakerTimeout:    time.Duration(cfg.Catalog.BreakerTimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create YouTube client")
	}

	aggregator := aggregate.New(client, aggregate.Options{
		Concurrency: cfg.Aggregation.Concurrency,
		BatchSize:   cfg.Aggregation.BatchSize,
	})

	zlog.Debug().Msgf("calculation service: concurrency=%d batch_size=%d max_in_flight=%d timeout=%s",
		cfg.Aggregation.Concurrency, cfg.Aggregation.BatchSize, cfg.Calculation.MaxInFlight, cfg.CalculationTimeout())

	return NewService(cfg, client, aggregator), nil
}
