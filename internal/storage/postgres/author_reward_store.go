package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// AuthorRewardStore implements storage.AuthorRewardStore using PostgreSQL.
type AuthorRewardStore struct {
	pool *Pool
}

// NewAuthorRewardStore creates a new AuthorRewardStore.
func NewAuthorRewardStore(pool *Pool) *AuthorRewardStore {
	return &AuthorRewardStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AuthorRewardStore = (*AuthorRewardStore)(nil)

// Insert adds a new reward.
func (s *AuthorRewardStore) Insert(ctx context.Context, r *domain.AuthorReward) error {
	query := `
		INSERT INTO author_rewards (author, permlink, reward_time, vests, value, steem_value)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		r.Author, r.Permlink, r.RewardTime, r.Vests, r.Value, r.SteemValue)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert author reward: %w", err)
	}
	return nil
}

// ListUnvalued retrieves up to limit rewards with null value.
func (s *AuthorRewardStore) ListUnvalued(ctx context.Context, limit int) ([]*domain.AuthorReward, error) {
	query := `
		SELECT author, permlink, reward_time, vests, value, steem_value
		FROM author_rewards
		WHERE value IS NULL
		ORDER BY reward_time ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list unvalued author rewards: %w", err)
	}
	defer rows.Close()

	return collectAuthorRewards(rows)
}

// SetValue fills the derived value fields, only if value is still null.
func (s *AuthorRewardStore) SetValue(ctx context.Context, author, permlink string, rewardTime time.Time, value, steemValue float64) (bool, error) {
	query := `
		UPDATE author_rewards
		SET value = $4, steem_value = $5
		WHERE author = $1 AND permlink = $2 AND reward_time = $3 AND value IS NULL
	`

	tag, err := s.pool.Exec(ctx, query, author, permlink, rewardTime, value, steemValue)
	if err != nil {
		return false, fmt.Errorf("set author reward value: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByPost retrieves all author rewards for a post.
func (s *AuthorRewardStore) GetByPost(ctx context.Context, author, permlink string) ([]*domain.AuthorReward, error) {
	query := `
		SELECT author, permlink, reward_time, vests, value, steem_value
		FROM author_rewards
		WHERE author = $1 AND permlink = $2
		ORDER BY reward_time ASC
	`

	rows, err := s.pool.Query(ctx, query, author, permlink)
	if err != nil {
		return nil, fmt.Errorf("get author rewards by post: %w", err)
	}
	defer rows.Close()

	return collectAuthorRewards(rows)
}

// RewardDates returns the distinct UTC days rewards landed on.
func (s *AuthorRewardStore) RewardDates(ctx context.Context) ([]time.Time, error) {
	query := `
		SELECT DISTINCT date_trunc('day', reward_time AT TIME ZONE 'UTC') AT TIME ZONE 'UTC' AS day
		FROM author_rewards
		ORDER BY day ASC
	`
	return collectDays(ctx, s.pool, query)
}

func collectAuthorRewards(rows pgx.Rows) ([]*domain.AuthorReward, error) {
	var rewards []*domain.AuthorReward
	for rows.Next() {
		var r domain.AuthorReward
		err := rows.Scan(&r.Author, &r.Permlink, &r.RewardTime, &r.Vests, &r.Value, &r.SteemValue)
		if err != nil {
			return nil, fmt.Errorf("scan author reward row: %w", err)
		}
		r.RewardTime = r.RewardTime.UTC()
		rewards = append(rewards, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate author reward rows: %w", err)
	}
	return rewards, nil
}

// collectDays runs a single-column day query shared by the reward and
// queue stores.
func collectDays(ctx context.Context, pool *Pool, query string, args ...any) ([]time.Time, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reward dates: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan reward date row: %w", err)
		}
		days = append(days, domain.Day(day))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reward date rows: %w", err)
	}
	return days, nil
}
