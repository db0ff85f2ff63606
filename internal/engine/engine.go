// Package engine coordinates the derived-data cascade.
//
// The cascade is push-driven: ingestion nudges the engine after each
// applied batch, nudges coalesce while a pass is running, and one pass
// executes the stages in dependency order. Every stage is idempotent,
// so an extra pass is always harmless.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"steem-curation-lab/internal/efficiency"
	"steem-curation-lab/internal/history"
	"steem-curation-lab/internal/observability"
	"steem-curation-lab/internal/percentile"
	"steem-curation-lab/internal/storage"
	"steem-curation-lab/internal/valuation"
)

// Engine runs the derived-data stages over shared storage.
type Engine struct {
	finalizer      *percentile.Finalizer
	valuation      *valuation.Engine
	efficiency     *efficiency.Calculator
	curatorHistory *history.CuratorAggregator

	pendingPercentiles storage.PendingPercentileStore
	pendingVotes       storage.PendingVoteHistoryStore

	logger  *zap.Logger
	metrics *observability.Metrics

	nudge chan struct{}
}

// Options contains the stages and stores an Engine coordinates.
type Options struct {
	Finalizer      *percentile.Finalizer
	Valuation      *valuation.Engine
	Efficiency     *efficiency.Calculator
	CuratorHistory *history.CuratorAggregator

	PendingPercentileStore storage.PendingPercentileStore
	PendingVoteStore       storage.PendingVoteHistoryStore

	Logger  *zap.Logger // defaults to zap.NewNop()
	Metrics *observability.Metrics
}

// New creates an engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		finalizer:          opts.Finalizer,
		valuation:          opts.Valuation,
		efficiency:         opts.Efficiency,
		curatorHistory:     opts.CuratorHistory,
		pendingPercentiles: opts.PendingPercentileStore,
		pendingVotes:       opts.PendingVoteStore,
		logger:             logger,
		metrics:            opts.Metrics,
		nudge:              make(chan struct{}, 1),
	}
}

// Nudge schedules a cascade pass. Nudges arriving while a pass is
// already pending coalesce into one.
func (e *Engine) Nudge() {
	select {
	case e.nudge <- struct{}{}:
	default:
	}
}

// Run processes nudges until the context is cancelled. A failed pass is
// logged and waits for the next nudge; stage idempotence makes the
// retry safe.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.nudge:
			if _, err := e.RunOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				e.logger.Error("cascade pass failed", zap.Error(err))
			}
		}
	}
}

// RunResult aggregates what one cascade pass accomplished.
type RunResult struct {
	DaysFinalized     int
	PostsFinalized    int
	AuthorValued      int
	CuratorValued     int
	BeneficiaryValued int
	ValuationSkips    int
	Scored            int
	Dropped           int
	PairsDrained      int
	SnapshotsWritten  int
}

// RewardsValued returns the number of rewards valued across all kinds.
func (r *RunResult) RewardsValued() int {
	return r.AuthorValued + r.CuratorValued + r.BeneficiaryValued
}

// RunOnce executes one full cascade pass: percentile finalization
// first (it writes the post values valuation reads), then valuation,
// efficiency, and the curator-side history drain. Valuation and the
// drain loop until their work queues stop yielding progress.
func (e *Engine) RunOnce(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	if err := e.runStage(ctx, "percentile", func(ctx context.Context) error {
		r, err := e.finalizer.Run(ctx)
		if r != nil {
			result.DaysFinalized += r.DaysFinalized
			result.PostsFinalized += r.PostsFinalized
		}
		return err
	}); err != nil {
		return result, err
	}

	if err := e.runStage(ctx, "valuation", func(ctx context.Context) error {
		for {
			r, err := e.valuation.Run(ctx)
			if r != nil {
				result.AuthorValued += r.AuthorValued
				result.CuratorValued += r.CuratorValued
				result.BeneficiaryValued += r.BeneficiaryValued
				result.ValuationSkips = r.Skipped
			}
			if err != nil || r == nil || r.Total() == 0 {
				return err
			}
		}
	}); err != nil {
		return result, err
	}

	if err := e.runStage(ctx, "efficiency", func(ctx context.Context) error {
		for {
			r, err := e.efficiency.Run(ctx)
			if r != nil {
				result.Scored += r.Scored
				result.Dropped += r.Dropped
			}
			if err != nil || r == nil || r.Scored+r.Dropped == 0 {
				return err
			}
		}
	}); err != nil {
		return result, err
	}

	if err := e.runStage(ctx, "history", func(ctx context.Context) error {
		for {
			r, err := e.curatorHistory.Run(ctx)
			if r != nil {
				result.PairsDrained += r.PairsProcessed
				result.SnapshotsWritten += r.SnapshotsWritten
			}
			if err != nil || r == nil || r.PairsProcessed == 0 {
				return err
			}
		}
	}); err != nil {
		return result, err
	}

	e.observe(ctx, result)
	e.logger.Info("cascade pass complete",
		zap.Int("days_finalized", result.DaysFinalized),
		zap.Int("posts_finalized", result.PostsFinalized),
		zap.Int("rewards_valued", result.RewardsValued()),
		zap.Int("efficiencies_scored", result.Scored),
		zap.Int("pairs_drained", result.PairsDrained),
		zap.Int("snapshots_written", result.SnapshotsWritten),
	)
	return result, nil
}

func (e *Engine) runStage(ctx context.Context, stage string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	if e.metrics != nil {
		e.metrics.RecordStageRun(stage, time.Since(start).Seconds(), err)
	}
	if err != nil {
		return fmt.Errorf("%s stage: %w", stage, err)
	}
	return nil
}

// observe refreshes queue depth gauges and stage counters.
func (e *Engine) observe(ctx context.Context, result *RunResult) {
	if e.metrics == nil {
		return
	}

	e.metrics.DaysFinalized.Add(float64(result.DaysFinalized))
	e.metrics.RewardsValued.WithLabelValues("author").Add(float64(result.AuthorValued))
	e.metrics.RewardsValued.WithLabelValues("curator").Add(float64(result.CuratorValued))
	e.metrics.RewardsValued.WithLabelValues("beneficiary").Add(float64(result.BeneficiaryValued))
	e.metrics.PostsFinalized.Add(float64(result.PostsFinalized))
	e.metrics.EfficienciesScored.Add(float64(result.Scored))
	e.metrics.EfficienciesDropped.Add(float64(result.Dropped))
	e.metrics.HistoryPairsDrained.Add(float64(result.PairsDrained))
	e.metrics.SnapshotsWritten.WithLabelValues("curator").Add(float64(result.SnapshotsWritten))
	e.metrics.ValuationSkips.Add(float64(result.ValuationSkips))
	e.metrics.LastSuccessfulCascade.SetToCurrentTime()

	if depth, err := e.pendingPercentiles.Count(ctx); err == nil {
		e.metrics.PendingPercentileDepth.Set(float64(depth))
	}
	if depth, err := e.pendingVotes.Count(ctx); err == nil {
		e.metrics.PendingVoteDepth.Set(float64(depth))
	}
}
