// Package valuation converts raw vesting payouts into USD and STEEM
// amounts once all inputs exist.
//
// A reward of v vests on a post whose curator payouts sum to S vests is
// worth v/(2*S) of the post's finalized total value: curators earn half
// the reward pool, so doubling the curator share sum recovers the full
// share denominator.
package valuation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// DefaultBatchSize bounds how many unvalued rewards one pass loads per kind.
const DefaultBatchSize = 500

// Engine values author, curator, and beneficiary rewards.
type Engine struct {
	posts         storage.PostStore
	prices        storage.PriceStore
	authors       storage.AuthorRewardStore
	curators      storage.CuratorRewardStore
	beneficiaries storage.BeneficiaryRewardStore

	batchSize int
}

// Options configures an Engine.
type Options struct {
	// BatchSize caps rewards loaded per kind per pass. Zero means
	// DefaultBatchSize.
	BatchSize int
}

// NewEngine creates a valuation engine over the given stores.
func NewEngine(
	posts storage.PostStore,
	prices storage.PriceStore,
	authors storage.AuthorRewardStore,
	curators storage.CuratorRewardStore,
	beneficiaries storage.BeneficiaryRewardStore,
	opts Options,
) *Engine {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Engine{
		posts:         posts,
		prices:        prices,
		authors:       authors,
		curators:      curators,
		beneficiaries: beneficiaries,
		batchSize:     batch,
	}
}

// Result reports what one Run pass accomplished.
type Result struct {
	AuthorValued      int
	CuratorValued     int
	BeneficiaryValued int
	Skipped           int
}

// Total returns the number of rewards valued across all kinds.
func (r *Result) Total() int {
	return r.AuthorValued + r.CuratorValued + r.BeneficiaryValued
}

// Run values every unvalued reward whose inputs are ready. Rewards with
// a missing input (unfinalized post, zero share denominator, absent
// price tick) are skipped and retried on a later pass; nothing is ever
// marked failed. Re-running changes nothing: SetValue is guarded by a
// null check.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	if err := e.runAuthors(ctx, result); err != nil {
		return result, err
	}
	if err := e.runCurators(ctx, result); err != nil {
		return result, err
	}
	if err := e.runBeneficiaries(ctx, result); err != nil {
		return result, err
	}
	return result, nil
}

func (e *Engine) runAuthors(ctx context.Context, result *Result) error {
	rewards, err := e.authors.ListUnvalued(ctx, e.batchSize)
	if err != nil {
		return fmt.Errorf("list unvalued author rewards: %w", err)
	}
	for _, r := range rewards {
		value, steemValue, ok, err := e.value(ctx, r.Author, r.Permlink, r.RewardTime, r.Vests)
		if err != nil {
			return fmt.Errorf("value author reward %s/%s: %w", r.Author, r.Permlink, err)
		}
		if !ok {
			result.Skipped++
			continue
		}
		changed, err := e.authors.SetValue(ctx, r.Author, r.Permlink, r.RewardTime, value, steemValue)
		if err != nil {
			return fmt.Errorf("set author reward value %s/%s: %w", r.Author, r.Permlink, err)
		}
		if changed {
			result.AuthorValued++
		}
	}
	return nil
}

func (e *Engine) runCurators(ctx context.Context, result *Result) error {
	rewards, err := e.curators.ListUnvalued(ctx, e.batchSize)
	if err != nil {
		return fmt.Errorf("list unvalued curator rewards: %w", err)
	}
	for _, r := range rewards {
		value, steemValue, ok, err := e.value(ctx, r.Author, r.Permlink, r.RewardTime, r.Vests)
		if err != nil {
			return fmt.Errorf("value curator reward %s/%s by %s: %w", r.Author, r.Permlink, r.Curator, err)
		}
		if !ok {
			result.Skipped++
			continue
		}
		changed, err := e.curators.SetValue(ctx, r.Author, r.Permlink, r.Curator, r.RewardTime, value, steemValue)
		if err != nil {
			return fmt.Errorf("set curator reward value %s/%s by %s: %w", r.Author, r.Permlink, r.Curator, err)
		}
		if changed {
			result.CuratorValued++
		}
	}
	return nil
}

func (e *Engine) runBeneficiaries(ctx context.Context, result *Result) error {
	rewards, err := e.beneficiaries.ListUnvalued(ctx, e.batchSize)
	if err != nil {
		return fmt.Errorf("list unvalued beneficiary rewards: %w", err)
	}
	for _, r := range rewards {
		value, steemValue, ok, err := e.value(ctx, r.Author, r.Permlink, r.RewardTime, r.Vests)
		if err != nil {
			return fmt.Errorf("value beneficiary reward %s/%s to %s: %w", r.Author, r.Permlink, r.Beneficiary, err)
		}
		if !ok {
			result.Skipped++
			continue
		}
		changed, err := e.beneficiaries.SetValue(ctx, r.Author, r.Permlink, r.Beneficiary, r.RewardTime, value, steemValue)
		if err != nil {
			return fmt.Errorf("set beneficiary reward value %s/%s to %s: %w", r.Author, r.Permlink, r.Beneficiary, err)
		}
		if changed {
			result.BeneficiaryValued++
		}
	}
	return nil
}

// value resolves one reward's USD and STEEM amounts. ok is false when
// any input is still missing; such rewards stay unvalued.
func (e *Engine) value(ctx context.Context, author, permlink string, rewardTime time.Time, vests int64) (value, steemValue float64, ok bool, err error) {
	post, err := e.posts.Get(ctx, author, permlink)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, 0, false, nil
		}
		return 0, 0, false, fmt.Errorf("load post: %w", err)
	}
	if post.TotalValue == nil {
		return 0, 0, false, nil
	}

	curatorVests, err := e.curators.SumVestsByPost(ctx, author, permlink)
	if err != nil {
		return 0, 0, false, fmt.Errorf("sum curator vests: %w", err)
	}
	totalShares := domain.CurationShareScale * curatorVests
	if totalShares <= 0 {
		return 0, 0, false, nil
	}

	tick, err := e.prices.GetByDate(ctx, rewardTime)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, 0, false, nil
		}
		return 0, 0, false, fmt.Errorf("load price tick: %w", err)
	}
	if tick.Close <= 0 {
		return 0, 0, false, nil
	}

	value = float64(vests) / float64(totalShares) * *post.TotalValue
	steemValue = value / tick.Close
	return value, steemValue, true, nil
}
