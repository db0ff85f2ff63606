package storage

import (
	"context"
	"time"

	"steem-curation-lab/internal/domain"
)

// AccountStore provides access to accounts reference storage.
type AccountStore interface {
	// Upsert inserts or refreshes an account record.
	Upsert(ctx context.Context, a *domain.Account) error

	// GetByName retrieves an account. Returns ErrNotFound if not exists.
	GetByName(ctx context.Context, name string) (*domain.Account, error)
}

// PriceStore provides access to daily price_history storage.
type PriceStore interface {
	// Upsert inserts or replaces the tick for its date.
	Upsert(ctx context.Context, tick *domain.PriceTick) error

	// GetByDate retrieves the tick for a UTC calendar day.
	// Returns ErrNotFound if not exists.
	GetByDate(ctx context.Context, day time.Time) (*domain.PriceTick, error)

	// GetAll retrieves all ticks ordered by date ASC.
	GetAll(ctx context.Context) ([]*domain.PriceTick, error)
}

// PostStore provides access to posts storage.
type PostStore interface {
	// Insert adds a new post. Returns ErrDuplicateKey if (author, permlink) exists.
	Insert(ctx context.Context, p *domain.Post) error

	// Get retrieves a post by its natural key. Returns ErrNotFound if not exists.
	Get(ctx context.Context, author, permlink string) (*domain.Post, error)

	// ListByCreatedDay retrieves all posts created on a UTC calendar day.
	ListByCreatedDay(ctx context.Context, day time.Time) ([]*domain.Post, error)

	// ListByAuthorCreatedRange retrieves an author's posts with
	// Created in [from, to), ordered by Created ASC.
	ListByAuthorCreatedRange(ctx context.Context, author string, from, to time.Time) ([]*domain.Post, error)

	// Finalize writes total value and percentile onto a post, only if
	// the percentile is still null. Returns true if the row changed.
	Finalize(ctx context.Context, author, permlink string, totalValue float64, percentile int) (bool, error)

	// ListFinalizedSince retrieves finalized posts created at or after
	// the cutoff, ordered by Created ASC. Feeds the analytics mirror.
	ListFinalizedSince(ctx context.Context, since time.Time) ([]*domain.Post, error)

	// PurgeCreatedBefore deletes posts older than the cutoff and
	// returns the number of rows removed.
	PurgeCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// VoteStore provides access to votes storage.
type VoteStore interface {
	// Insert adds a new vote. Returns ErrDuplicateKey if
	// (author, permlink, voter, time) exists.
	Insert(ctx context.Context, v *domain.Vote) error

	// LatestBefore retrieves the vote by (author, permlink, voter)
	// with the latest Time at or before t. Returns ErrNotFound if no
	// such vote exists.
	LatestBefore(ctx context.Context, author, permlink, voter string, t time.Time) (*domain.Vote, error)

	// SumPositiveRshares returns the sum of positive rshares across
	// all votes on a post: the post's total effective influence.
	SumPositiveRshares(ctx context.Context, author, permlink string) (int64, error)
}

// AuthorRewardStore provides access to author_rewards storage.
type AuthorRewardStore interface {
	// Insert adds a new reward. Returns ErrDuplicateKey if
	// (author, permlink, reward_time) exists.
	Insert(ctx context.Context, r *domain.AuthorReward) error

	// ListUnvalued retrieves up to limit rewards with null value.
	ListUnvalued(ctx context.Context, limit int) ([]*domain.AuthorReward, error)

	// SetValue fills the derived value fields, only if value is still
	// null. Returns true if the row changed.
	SetValue(ctx context.Context, author, permlink string, rewardTime time.Time, value, steemValue float64) (bool, error)

	// GetByPost retrieves all author rewards for a post.
	GetByPost(ctx context.Context, author, permlink string) ([]*domain.AuthorReward, error)

	// RewardDates returns the distinct UTC days rewards landed on.
	RewardDates(ctx context.Context) ([]time.Time, error)
}

// CuratorRewardStore provides access to curator_rewards storage.
type CuratorRewardStore interface {
	// Insert adds a new reward. Returns ErrDuplicateKey if
	// (author, permlink, curator, reward_time) exists.
	Insert(ctx context.Context, r *domain.CuratorReward) error

	// ListUnvalued retrieves up to limit rewards with null value.
	ListUnvalued(ctx context.Context, limit int) ([]*domain.CuratorReward, error)

	// SetValue fills the derived value fields, only if value is still
	// null. Returns true if the row changed.
	SetValue(ctx context.Context, author, permlink, curator string, rewardTime time.Time, value, steemValue float64) (bool, error)

	// SumVestsByPost returns the sum of curator-reward vests for a post.
	SumVestsByPost(ctx context.Context, author, permlink string) (int64, error)

	// GetByPost retrieves all curator rewards for a post.
	GetByPost(ctx context.Context, author, permlink string) ([]*domain.CuratorReward, error)

	// ListEfficiencyCandidates retrieves up to limit rewards with null
	// efficiency that have not been dropped.
	ListEfficiencyCandidates(ctx context.Context, limit int) ([]*domain.CuratorReward, error)

	// SetEfficiency fills the efficiency score, only if it is still
	// null. Returns true if the row changed.
	SetEfficiency(ctx context.Context, author, permlink, curator string, rewardTime time.Time, efficiency int64) (bool, error)

	// MarkEfficiencyDropped permanently excludes a structurally
	// invalid reward from efficiency computation.
	MarkEfficiencyDropped(ctx context.Context, author, permlink, curator string, rewardTime time.Time) error

	// ListEfficienciesByCurator retrieves the non-null efficiency
	// scores of a curator's rewards with RewardTime in [from, to).
	ListEfficienciesByCurator(ctx context.Context, curator string, from, to time.Time) ([]int64, error)

	// RewardDates returns the distinct UTC days rewards landed on.
	RewardDates(ctx context.Context) ([]time.Time, error)
}

// BeneficiaryRewardStore provides access to beneficiary_rewards storage.
type BeneficiaryRewardStore interface {
	// Insert adds a new reward. Returns ErrDuplicateKey if
	// (author, permlink, beneficiary, reward_time) exists.
	Insert(ctx context.Context, r *domain.BeneficiaryReward) error

	// ListUnvalued retrieves up to limit rewards with null value.
	ListUnvalued(ctx context.Context, limit int) ([]*domain.BeneficiaryReward, error)

	// SetValue fills the derived value fields, only if value is still
	// null. Returns true if the row changed.
	SetValue(ctx context.Context, author, permlink, beneficiary string, rewardTime time.Time, value, steemValue float64) (bool, error)

	// GetByPost retrieves all beneficiary rewards for a post.
	GetByPost(ctx context.Context, author, permlink string) ([]*domain.BeneficiaryReward, error)

	// RewardDates returns the distinct UTC days rewards landed on.
	RewardDates(ctx context.Context) ([]time.Time, error)
}

// BeneficiaryStore provides access to declared beneficiary splits.
type BeneficiaryStore interface {
	// Insert adds a declaration. Returns ErrDuplicateKey if
	// (author, permlink, beneficiary) exists.
	Insert(ctx context.Context, b *domain.Beneficiary) error

	// GetByPost retrieves all declarations for a post.
	GetByPost(ctx context.Context, author, permlink string) ([]*domain.Beneficiary, error)
}

// PendingPercentileStore provides access to the percentile work queue.
type PendingPercentileStore interface {
	// Enqueue adds an entry unless the post already has one open.
	Enqueue(ctx context.Context, p *domain.PendingPercentile) error

	// MaxDay returns the latest UTC creation day present in the queue.
	// ok is false when the queue is empty.
	MaxDay(ctx context.Context) (day time.Time, ok bool, err error)

	// ListDaysBefore returns the distinct UTC creation days strictly
	// before the watermark day, ordered ASC.
	ListDaysBefore(ctx context.Context, watermark time.Time) ([]time.Time, error)

	// ListByDay retrieves all entries whose post was created on a day.
	ListByDay(ctx context.Context, day time.Time) ([]*domain.PendingPercentile, error)

	// DeleteByDay removes all entries for a day after finalization.
	DeleteByDay(ctx context.Context, day time.Time) error

	// Count returns the number of queued entries.
	Count(ctx context.Context) (int, error)
}

// PendingVoteHistoryStore provides access to the curator-history work queue.
type PendingVoteHistoryStore interface {
	// Enqueue adds a (post, voter) pair; duplicate pairs are ignored.
	Enqueue(ctx context.Context, p *domain.PendingVoteHistory) error

	// List retrieves up to limit queued pairs.
	List(ctx context.Context, limit int) ([]*domain.PendingVoteHistory, error)

	// Delete removes a pair once all window sizes have been attempted.
	Delete(ctx context.Context, author, permlink, voter string) error

	// Count returns the number of queued pairs.
	Count(ctx context.Context) (int, error)
}

// AuthorHistoryStore provides access to author_histories snapshots.
type AuthorHistoryStore interface {
	// Insert adds a snapshot row. Returns ErrDuplicateKey if
	// (author, post_author, permlink, window_days) exists.
	Insert(ctx context.Context, h *domain.AuthorHistory) error

	// Exists reports whether a snapshot row is already materialized.
	Exists(ctx context.Context, author, postAuthor, permlink string, windowDays int) (bool, error)

	// Get retrieves a snapshot. Returns ErrNotFound if not exists.
	Get(ctx context.Context, author, postAuthor, permlink string, windowDays int) (*domain.AuthorHistory, error)

	// GetAll retrieves all snapshots.
	GetAll(ctx context.Context) ([]*domain.AuthorHistory, error)
}

// CuratorHistoryStore provides access to curator_histories snapshots.
type CuratorHistoryStore interface {
	// Insert adds a snapshot row. Returns ErrDuplicateKey if
	// (voter, post_author, permlink, window_days) exists.
	Insert(ctx context.Context, h *domain.CuratorHistory) error

	// Exists reports whether a snapshot row is already materialized.
	Exists(ctx context.Context, voter, postAuthor, permlink string, windowDays int) (bool, error)

	// Get retrieves a snapshot. Returns ErrNotFound if not exists.
	Get(ctx context.Context, voter, postAuthor, permlink string, windowDays int) (*domain.CuratorHistory, error)

	// GetAll retrieves all snapshots.
	GetAll(ctx context.Context) ([]*domain.CuratorHistory, error)
}

// CommentStore provides access to comments storage.
type CommentStore interface {
	// Insert adds a comment. Returns ErrDuplicateKey if
	// (commenter, permlink) exists.
	Insert(ctx context.Context, c *domain.Comment) error

	// ListByRoot retrieves all comments under a root post.
	ListByRoot(ctx context.Context, rootAuthor, rootPermlink string) ([]*domain.Comment, error)
}

// ResteemStore provides access to resteems storage.
type ResteemStore interface {
	// Insert adds a resteem. Returns ErrDuplicateKey if
	// (author, permlink, resteemed_by) exists.
	Insert(ctx context.Context, r *domain.Resteem) error

	// ListByPost retrieves all resteems of a post.
	ListByPost(ctx context.Context, author, permlink string) ([]*domain.Resteem, error)
}
