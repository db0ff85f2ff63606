package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// BeneficiaryRewardStore implements storage.BeneficiaryRewardStore
// using PostgreSQL.
type BeneficiaryRewardStore struct {
	pool *Pool
}

// NewBeneficiaryRewardStore creates a new BeneficiaryRewardStore.
func NewBeneficiaryRewardStore(pool *Pool) *BeneficiaryRewardStore {
	return &BeneficiaryRewardStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BeneficiaryRewardStore = (*BeneficiaryRewardStore)(nil)

// Insert adds a new reward.
func (s *BeneficiaryRewardStore) Insert(ctx context.Context, r *domain.BeneficiaryReward) error {
	query := `
		INSERT INTO beneficiary_rewards (author, permlink, beneficiary, reward_time, vests, value, steem_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		r.Author, r.Permlink, r.Beneficiary, r.RewardTime, r.Vests, r.Value, r.SteemValue)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert beneficiary reward: %w", err)
	}
	return nil
}

// ListUnvalued retrieves up to limit rewards with null value.
func (s *BeneficiaryRewardStore) ListUnvalued(ctx context.Context, limit int) ([]*domain.BeneficiaryReward, error) {
	query := `
		SELECT author, permlink, beneficiary, reward_time, vests, value, steem_value
		FROM beneficiary_rewards
		WHERE value IS NULL
		ORDER BY reward_time ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list unvalued beneficiary rewards: %w", err)
	}
	defer rows.Close()

	return collectBeneficiaryRewards(rows)
}

// SetValue fills the derived value fields, only if value is still null.
func (s *BeneficiaryRewardStore) SetValue(ctx context.Context, author, permlink, beneficiary string, rewardTime time.Time, value, steemValue float64) (bool, error) {
	query := `
		UPDATE beneficiary_rewards
		SET value = $5, steem_value = $6
		WHERE author = $1 AND permlink = $2 AND beneficiary = $3 AND reward_time = $4
			AND value IS NULL
	`

	tag, err := s.pool.Exec(ctx, query, author, permlink, beneficiary, rewardTime, value, steemValue)
	if err != nil {
		return false, fmt.Errorf("set beneficiary reward value: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByPost retrieves all beneficiary rewards for a post.
func (s *BeneficiaryRewardStore) GetByPost(ctx context.Context, author, permlink string) ([]*domain.BeneficiaryReward, error) {
	query := `
		SELECT author, permlink, beneficiary, reward_time, vests, value, steem_value
		FROM beneficiary_rewards
		WHERE author = $1 AND permlink = $2
		ORDER BY reward_time ASC, beneficiary ASC
	`

	rows, err := s.pool.Query(ctx, query, author, permlink)
	if err != nil {
		return nil, fmt.Errorf("get beneficiary rewards by post: %w", err)
	}
	defer rows.Close()

	return collectBeneficiaryRewards(rows)
}

// RewardDates returns the distinct UTC days rewards landed on.
func (s *BeneficiaryRewardStore) RewardDates(ctx context.Context) ([]time.Time, error) {
	query := `
		SELECT DISTINCT date_trunc('day', reward_time AT TIME ZONE 'UTC') AT TIME ZONE 'UTC' AS day
		FROM beneficiary_rewards
		ORDER BY day ASC
	`
	return collectDays(ctx, s.pool, query)
}

func collectBeneficiaryRewards(rows pgx.Rows) ([]*domain.BeneficiaryReward, error) {
	var rewards []*domain.BeneficiaryReward
	for rows.Next() {
		var r domain.BeneficiaryReward
		err := rows.Scan(&r.Author, &r.Permlink, &r.Beneficiary, &r.RewardTime, &r.Vests, &r.Value, &r.SteemValue)
		if err != nil {
			return nil, fmt.Errorf("scan beneficiary reward row: %w", err)
		}
		r.RewardTime = r.RewardTime.UTC()
		rewards = append(rewards, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate beneficiary reward rows: %w", err)
	}
	return rewards, nil
}
