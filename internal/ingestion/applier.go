package ingestion

import (
	"context"
	"errors"
	"fmt"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/history"
	"steem-curation-lab/internal/storage"
)

// Applier writes event batches into storage and opens the derived-work
// queues. Duplicate events are absorbed by the storage layer; applying
// the same batch twice leaves every table unchanged.
type Applier struct {
	accounts           storage.AccountStore
	prices             storage.PriceStore
	posts              storage.PostStore
	votes              storage.VoteStore
	authorRewards      storage.AuthorRewardStore
	curatorRewards     storage.CuratorRewardStore
	beneficiaryRewards storage.BeneficiaryRewardStore
	beneficiaries      storage.BeneficiaryStore
	comments           storage.CommentStore
	resteems           storage.ResteemStore
	pendingPercentiles storage.PendingPercentileStore
	pendingVotes       storage.PendingVoteHistoryStore

	authorHistory *history.AuthorAggregator
}

// ApplierOptions contains the stores an Applier writes to.
type ApplierOptions struct {
	AccountStore           storage.AccountStore
	PriceStore             storage.PriceStore
	PostStore              storage.PostStore
	VoteStore              storage.VoteStore
	AuthorRewardStore      storage.AuthorRewardStore
	CuratorRewardStore     storage.CuratorRewardStore
	BeneficiaryRewardStore storage.BeneficiaryRewardStore
	BeneficiaryStore       storage.BeneficiaryStore
	CommentStore           storage.CommentStore
	ResteemStore           storage.ResteemStore
	PendingPercentileStore storage.PendingPercentileStore
	PendingVoteStore       storage.PendingVoteHistoryStore

	// AuthorHistory, when set, snapshots the author's track record as
	// each new post is applied.
	AuthorHistory *history.AuthorAggregator
}

// NewApplier creates an event batch applier.
func NewApplier(opts ApplierOptions) *Applier {
	return &Applier{
		accounts:           opts.AccountStore,
		prices:             opts.PriceStore,
		posts:              opts.PostStore,
		votes:              opts.VoteStore,
		authorRewards:      opts.AuthorRewardStore,
		curatorRewards:     opts.CuratorRewardStore,
		beneficiaryRewards: opts.BeneficiaryRewardStore,
		beneficiaries:      opts.BeneficiaryStore,
		comments:           opts.CommentStore,
		resteems:           opts.ResteemStore,
		pendingPercentiles: opts.PendingPercentileStore,
		pendingVotes:       opts.PendingVoteStore,
		authorHistory:      opts.AuthorHistory,
	}
}

// ApplyResult reports what applying one batch accomplished.
type ApplyResult struct {
	Applied    int // events newly written
	Duplicates int // events the storage layer already held
	Rejected   int // events failing validation, dropped
	Deferred   int // events waiting on an existence join, retry on redelivery
}

// Apply writes one batch. Reference data first, then facts, then queue
// entries, so existence joins inside the same batch resolve. A payout
// or vote whose post has not arrived yet is deferred: nothing is
// written and the event is expected to be redelivered.
func (a *Applier) Apply(ctx context.Context, batch *Batch) (*ApplyResult, error) {
	result := &ApplyResult{}

	for _, account := range batch.Accounts {
		if account.PublicKey != "" {
			if err := ValidatePublicKey(account.PublicKey); err != nil {
				result.Rejected++
				continue
			}
		}
		if err := a.accounts.Upsert(ctx, account); err != nil {
			return result, fmt.Errorf("upsert account %s: %w", account.Name, err)
		}
		result.Applied++
	}

	for _, tick := range batch.PriceTicks {
		if err := a.prices.Upsert(ctx, tick); err != nil {
			return result, fmt.Errorf("upsert price tick %s: %w", tick.Date.Format("2006-01-02"), err)
		}
		result.Applied++
	}

	for _, post := range batch.Posts {
		if err := a.applyPost(ctx, post, result); err != nil {
			return result, err
		}
	}

	for _, vote := range batch.Votes {
		if err := a.applyVote(ctx, vote, result); err != nil {
			return result, err
		}
	}

	for _, r := range batch.AuthorRewards {
		if err := a.insert(a.authorRewards.Insert(ctx, r), result); err != nil {
			return result, fmt.Errorf("insert author reward %s/%s: %w", r.Author, r.Permlink, err)
		}
	}
	for _, r := range batch.CuratorRewards {
		if err := a.insert(a.curatorRewards.Insert(ctx, r), result); err != nil {
			return result, fmt.Errorf("insert curator reward %s/%s by %s: %w", r.Author, r.Permlink, r.Curator, err)
		}
	}
	for _, r := range batch.BeneficiaryRewards {
		if err := a.insert(a.beneficiaryRewards.Insert(ctx, r), result); err != nil {
			return result, fmt.Errorf("insert beneficiary reward %s/%s to %s: %w", r.Author, r.Permlink, r.Beneficiary, err)
		}
	}
	for _, b := range batch.Beneficiaries {
		if err := a.insert(a.beneficiaries.Insert(ctx, b), result); err != nil {
			return result, fmt.Errorf("insert beneficiary %s/%s -> %s: %w", b.Author, b.Permlink, b.Beneficiary, err)
		}
	}
	for _, c := range batch.Comments {
		if err := a.insert(a.comments.Insert(ctx, c), result); err != nil {
			return result, fmt.Errorf("insert comment %s/%s: %w", c.Commenter, c.Permlink, err)
		}
	}
	for _, r := range batch.Resteems {
		if err := a.insert(a.resteems.Insert(ctx, r), result); err != nil {
			return result, fmt.Errorf("insert resteem %s/%s by %s: %w", r.Author, r.Permlink, r.ResteemedBy, err)
		}
	}

	for _, p := range batch.Payouts {
		if err := a.applyPayout(ctx, p, result); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (a *Applier) applyPost(ctx context.Context, post *domain.Post, result *ApplyResult) error {
	err := a.posts.Insert(ctx, post)
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		result.Duplicates++
		return nil
	case err != nil:
		return fmt.Errorf("insert post %s/%s: %w", post.Author, post.Permlink, err)
	}
	result.Applied++

	// A new post is the anchor for the author's track-record snapshot.
	if a.authorHistory != nil {
		if _, err := a.authorHistory.ComputeForPost(ctx, post.Author, post.Permlink, post.Created); err != nil {
			return fmt.Errorf("snapshot author history for %s/%s: %w", post.Author, post.Permlink, err)
		}
	}
	return nil
}

// applyVote stores the vote and opens the curator-side history pair.
// The pair needs the post's creation time, so a vote arriving before
// its post is deferred entirely.
func (a *Applier) applyVote(ctx context.Context, vote *domain.Vote, result *ApplyResult) error {
	post, err := a.posts.Get(ctx, vote.Author, vote.Permlink)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			result.Deferred++
			return nil
		}
		return fmt.Errorf("load post for vote %s/%s: %w", vote.Author, vote.Permlink, err)
	}

	err = a.votes.Insert(ctx, vote)
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		result.Duplicates++
	case err != nil:
		return fmt.Errorf("insert vote %s/%s by %s: %w", vote.Author, vote.Permlink, vote.Voter, err)
	default:
		result.Applied++
	}

	// Enqueue even for a redelivered vote: the pair may have been
	// written and lost in an earlier crash. Enqueue absorbs duplicates.
	pair := &domain.PendingVoteHistory{
		Author:   vote.Author,
		Permlink: vote.Permlink,
		Voter:    vote.Voter,
		Created:  post.Created,
	}
	if err := a.pendingVotes.Enqueue(ctx, pair); err != nil {
		return fmt.Errorf("enqueue history pair %s/%s by %s: %w", vote.Author, vote.Permlink, vote.Voter, err)
	}
	return nil
}

// applyPayout opens the post's pending-percentile entry. The entry
// carries the post's creation time, so a payout arriving before its
// post is deferred.
func (a *Applier) applyPayout(ctx context.Context, payout *Payout, result *ApplyResult) error {
	post, err := a.posts.Get(ctx, payout.Author, payout.Permlink)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			result.Deferred++
			return nil
		}
		return fmt.Errorf("load post for payout %s/%s: %w", payout.Author, payout.Permlink, err)
	}
	if post.Percentile != nil {
		// Already finalized; a late redelivery changes nothing.
		result.Duplicates++
		return nil
	}

	entry := &domain.PendingPercentile{
		Author:     payout.Author,
		Permlink:   payout.Permlink,
		TotalValue: payout.TotalValue,
		Created:    post.Created,
	}
	if err := a.pendingPercentiles.Enqueue(ctx, entry); err != nil {
		return fmt.Errorf("enqueue percentile entry %s/%s: %w", payout.Author, payout.Permlink, err)
	}
	result.Applied++
	return nil
}

// insert folds a storage insert into the result, absorbing duplicates.
func (a *Applier) insert(err error, result *ApplyResult) error {
	if errors.Is(err, storage.ErrDuplicateKey) {
		result.Duplicates++
		return nil
	}
	if err != nil {
		return err
	}
	result.Applied++
	return nil
}
