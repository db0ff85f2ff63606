package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/observability"
	"steem-curation-lab/internal/storage"
)

// Fetcher retrieves the OHLCV candle for one closed UTC day.
type Fetcher interface {
	Fetch(ctx context.Context, day time.Time) (*domain.PriceTick, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, day time.Time) (*domain.PriceTick, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, day time.Time) (*domain.PriceTick, error) {
	return f(ctx, day)
}

// Filler backfills price dates referenced by rewards but absent from
// price_history. A day is only fetched once the following UTC day has
// begun, so the candle is closed.
type Filler struct {
	prices             storage.PriceStore
	authorRewards      storage.AuthorRewardStore
	curatorRewards     storage.CuratorRewardStore
	beneficiaryRewards storage.BeneficiaryRewardStore
	fetcher            Fetcher

	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// FillerOptions contains the dependencies of a Filler.
type FillerOptions struct {
	PriceStore             storage.PriceStore
	AuthorRewardStore      storage.AuthorRewardStore
	CuratorRewardStore     storage.CuratorRewardStore
	BeneficiaryRewardStore storage.BeneficiaryRewardStore
	Fetcher                Fetcher

	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewFiller creates a missing-date filler.
func NewFiller(opts FillerOptions) *Filler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Filler{
		prices:             opts.PriceStore,
		authorRewards:      opts.AuthorRewardStore,
		curatorRewards:     opts.CuratorRewardStore,
		beneficiaryRewards: opts.BeneficiaryRewardStore,
		fetcher:            opts.Fetcher,
		logger:             logger,
		metrics:            opts.Metrics,
		now:                now,
	}
}

// Run fills every closed reward date missing a tick. A fetch failure
// logs and moves on; the date stays missing and the next run retries.
// Returns the number of dates filled.
func (f *Filler) Run(ctx context.Context) (int, error) {
	missing, err := f.missingDates(ctx)
	if err != nil {
		return 0, err
	}

	today := domain.Day(f.now())
	filled := 0
	for _, day := range missing {
		if !day.Before(today) {
			// The candle is still open.
			continue
		}
		tick, err := f.fetcher.Fetch(ctx, day)
		if err != nil {
			if ctx.Err() != nil {
				return filled, ctx.Err()
			}
			f.logger.Warn("price fetch failed",
				zap.String("date", day.Format("2006-01-02")),
				zap.Error(err),
			)
			continue
		}
		if err := f.prices.Upsert(ctx, tick); err != nil {
			return filled, fmt.Errorf("upsert tick %s: %w", day.Format("2006-01-02"), err)
		}
		filled++
		if f.metrics != nil {
			f.metrics.PriceDatesBackfilled.Inc()
		}
	}
	return filled, nil
}

// missingDates collects the distinct reward days with no price tick,
// ordered ASC.
func (f *Filler) missingDates(ctx context.Context) ([]time.Time, error) {
	seen := make(map[time.Time]bool)
	var missing []time.Time

	collect := func(dates []time.Time) error {
		for _, d := range dates {
			day := domain.Day(d)
			if seen[day] {
				continue
			}
			seen[day] = true

			_, err := f.prices.GetByDate(ctx, day)
			if errors.Is(err, storage.ErrNotFound) {
				missing = append(missing, day)
				continue
			}
			if err != nil {
				return fmt.Errorf("check tick %s: %w", day.Format("2006-01-02"), err)
			}
		}
		return nil
	}

	dates, err := f.authorRewards.RewardDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("author reward dates: %w", err)
	}
	if err := collect(dates); err != nil {
		return nil, err
	}

	dates, err = f.curatorRewards.RewardDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("curator reward dates: %w", err)
	}
	if err := collect(dates); err != nil {
		return nil, err
	}

	dates, err = f.beneficiaryRewards.RewardDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("beneficiary reward dates: %w", err)
	}
	if err := collect(dates); err != nil {
		return nil, err
	}

	return missing, nil
}
