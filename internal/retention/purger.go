// Package retention removes posts past the engine's lookback horizon.
package retention

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"steem-curation-lab/internal/observability"
	"steem-curation-lab/internal/storage"
)

// DefaultLookbackDays keeps posts for the longest window (90 days)
// plus the full payout cycle history the reporting queries reach back
// into.
const DefaultLookbackDays = 409

// Purger deletes posts older than the lookback cutoff.
type Purger struct {
	posts        storage.PostStore
	lookbackDays int

	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// Options configures a Purger.
type Options struct {
	// LookbackDays is the retention horizon. Zero means
	// DefaultLookbackDays.
	LookbackDays int

	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewPurger creates a retention purger.
func NewPurger(posts storage.PostStore, opts Options) *Purger {
	lookback := opts.LookbackDays
	if lookback <= 0 {
		lookback = DefaultLookbackDays
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Purger{
		posts:        posts,
		lookbackDays: lookback,
		logger:       logger,
		metrics:      opts.Metrics,
		now:          now,
	}
}

// Run deletes posts created before the cutoff and returns the number
// removed.
func (p *Purger) Run(ctx context.Context) (int64, error) {
	cutoff := p.now().UTC().AddDate(0, 0, -p.lookbackDays)
	purged, err := p.posts.PurgeCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge posts before %s: %w", cutoff.Format("2006-01-02"), err)
	}
	if purged > 0 {
		p.logger.Info("purged aged posts",
			zap.Int64("count", purged),
			zap.String("cutoff", cutoff.Format("2006-01-02")),
		)
	}
	if p.metrics != nil {
		p.metrics.PostsPurged.Add(float64(purged))
	}
	return purged, nil
}
