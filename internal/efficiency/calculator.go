// Package efficiency scores curator rewards by return on influence.
//
// A vote's influence share is its rshares over the post's positive
// rshares total; its reward share is its vests over the post's curator
// vests total. Efficiency is reward share divided by influence share,
// scaled x10000 and rounded, so 10000 means the curator earned exactly
// in proportion to the influence spent.
package efficiency

import (
	"context"
	"errors"
	"fmt"
	"math"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// DefaultBatchSize bounds how many candidates one pass loads.
const DefaultBatchSize = 500

// Calculator fills efficiency scores on curator rewards.
type Calculator struct {
	votes    storage.VoteStore
	curators storage.CuratorRewardStore

	batchSize int
}

// Options configures a Calculator.
type Options struct {
	// BatchSize caps candidates loaded per pass. Zero means
	// DefaultBatchSize.
	BatchSize int
}

// NewCalculator creates an efficiency calculator.
func NewCalculator(votes storage.VoteStore, curators storage.CuratorRewardStore, opts Options) *Calculator {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Calculator{votes: votes, curators: curators, batchSize: batch}
}

// Result reports what one Run pass accomplished.
type Result struct {
	Scored  int
	Dropped int
}

// Run scores every unscored, undropped curator reward. Structurally
// invalid candidates (no matching vote at or before the reward's vote
// time, or non-positive rshares) are dropped permanently and never
// retried. Re-running changes nothing: SetEfficiency is guarded by a
// null check and dropped rewards stop being candidates.
func (c *Calculator) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	candidates, err := c.curators.ListEfficiencyCandidates(ctx, c.batchSize)
	if err != nil {
		return nil, fmt.Errorf("list efficiency candidates: %w", err)
	}

	for _, r := range candidates {
		score, ok, err := c.score(ctx, r)
		if err != nil {
			return result, fmt.Errorf("score reward %s/%s by %s: %w", r.Author, r.Permlink, r.Curator, err)
		}
		if !ok {
			if err := c.curators.MarkEfficiencyDropped(ctx, r.Author, r.Permlink, r.Curator, r.RewardTime); err != nil {
				return result, fmt.Errorf("drop reward %s/%s by %s: %w", r.Author, r.Permlink, r.Curator, err)
			}
			result.Dropped++
			continue
		}
		changed, err := c.curators.SetEfficiency(ctx, r.Author, r.Permlink, r.Curator, r.RewardTime, score)
		if err != nil {
			return result, fmt.Errorf("set efficiency %s/%s by %s: %w", r.Author, r.Permlink, r.Curator, err)
		}
		if changed {
			result.Scored++
		}
	}
	return result, nil
}

// score computes one reward's efficiency. ok is false when the reward
// is structurally invalid and must be dropped.
func (c *Calculator) score(ctx context.Context, r *domain.CuratorReward) (int64, bool, error) {
	vote, err := c.votes.LatestBefore(ctx, r.Author, r.Permlink, r.Curator, r.VoteTime)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("match vote: %w", err)
	}
	if vote.Rshares <= 0 {
		return 0, false, nil
	}

	totalRshares, err := c.votes.SumPositiveRshares(ctx, r.Author, r.Permlink)
	if err != nil {
		return 0, false, fmt.Errorf("sum post rshares: %w", err)
	}
	totalVests, err := c.curators.SumVestsByPost(ctx, r.Author, r.Permlink)
	if err != nil {
		return 0, false, fmt.Errorf("sum post curator vests: %w", err)
	}
	if totalRshares <= 0 || totalVests <= 0 {
		return 0, false, nil
	}

	rewardShare := float64(r.Vests) / float64(totalVests)
	influenceShare := float64(vote.Rshares) / float64(totalRshares)
	return int64(math.Round(rewardShare / influenceShare * 10000)), true, nil
}
