package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// CuratorRewardStore implements storage.CuratorRewardStore using PostgreSQL.
type CuratorRewardStore struct {
	pool *Pool
}

// NewCuratorRewardStore creates a new CuratorRewardStore.
func NewCuratorRewardStore(pool *Pool) *CuratorRewardStore {
	return &CuratorRewardStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CuratorRewardStore = (*CuratorRewardStore)(nil)

const curatorRewardColumns = `author, permlink, curator, reward_time, vote_time, vests,
		value, steem_value, efficiency, efficiency_dropped`

// Insert adds a new reward.
func (s *CuratorRewardStore) Insert(ctx context.Context, r *domain.CuratorReward) error {
	query := `
		INSERT INTO curator_rewards (` + curatorRewardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		r.Author, r.Permlink, r.Curator, r.RewardTime, r.VoteTime, r.Vests,
		r.Value, r.SteemValue, r.Efficiency, r.EfficiencyDropped)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert curator reward: %w", err)
	}
	return nil
}

// ListUnvalued retrieves up to limit rewards with null value.
func (s *CuratorRewardStore) ListUnvalued(ctx context.Context, limit int) ([]*domain.CuratorReward, error) {
	query := `
		SELECT ` + curatorRewardColumns + `
		FROM curator_rewards
		WHERE value IS NULL
		ORDER BY reward_time ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list unvalued curator rewards: %w", err)
	}
	defer rows.Close()

	return collectCuratorRewards(rows)
}

// SetValue fills the derived value fields, only if value is still null.
func (s *CuratorRewardStore) SetValue(ctx context.Context, author, permlink, curator string, rewardTime time.Time, value, steemValue float64) (bool, error) {
	query := `
		UPDATE curator_rewards
		SET value = $5, steem_value = $6
		WHERE author = $1 AND permlink = $2 AND curator = $3 AND reward_time = $4
			AND value IS NULL
	`

	tag, err := s.pool.Exec(ctx, query, author, permlink, curator, rewardTime, value, steemValue)
	if err != nil {
		return false, fmt.Errorf("set curator reward value: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SumVestsByPost returns the sum of curator-reward vests for a post.
func (s *CuratorRewardStore) SumVestsByPost(ctx context.Context, author, permlink string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(vests), 0)
		FROM curator_rewards
		WHERE author = $1 AND permlink = $2
	`

	var sum int64
	if err := s.pool.QueryRow(ctx, query, author, permlink).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum curator vests by post: %w", err)
	}
	return sum, nil
}

// GetByPost retrieves all curator rewards for a post.
func (s *CuratorRewardStore) GetByPost(ctx context.Context, author, permlink string) ([]*domain.CuratorReward, error) {
	query := `
		SELECT ` + curatorRewardColumns + `
		FROM curator_rewards
		WHERE author = $1 AND permlink = $2
		ORDER BY reward_time ASC, curator ASC
	`

	rows, err := s.pool.Query(ctx, query, author, permlink)
	if err != nil {
		return nil, fmt.Errorf("get curator rewards by post: %w", err)
	}
	defer rows.Close()

	return collectCuratorRewards(rows)
}

// ListEfficiencyCandidates retrieves up to limit rewards with null
// efficiency that have not been dropped.
func (s *CuratorRewardStore) ListEfficiencyCandidates(ctx context.Context, limit int) ([]*domain.CuratorReward, error) {
	query := `
		SELECT ` + curatorRewardColumns + `
		FROM curator_rewards
		WHERE efficiency IS NULL AND NOT efficiency_dropped
		ORDER BY reward_time ASC, curator ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list efficiency candidates: %w", err)
	}
	defer rows.Close()

	return collectCuratorRewards(rows)
}

// SetEfficiency fills the efficiency score, only if it is still null
// and the reward has not been dropped.
func (s *CuratorRewardStore) SetEfficiency(ctx context.Context, author, permlink, curator string, rewardTime time.Time, efficiency int64) (bool, error) {
	query := `
		UPDATE curator_rewards
		SET efficiency = $5
		WHERE author = $1 AND permlink = $2 AND curator = $3 AND reward_time = $4
			AND efficiency IS NULL AND NOT efficiency_dropped
	`

	tag, err := s.pool.Exec(ctx, query, author, permlink, curator, rewardTime, efficiency)
	if err != nil {
		return false, fmt.Errorf("set curator reward efficiency: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkEfficiencyDropped permanently excludes a reward from efficiency
// computation.
func (s *CuratorRewardStore) MarkEfficiencyDropped(ctx context.Context, author, permlink, curator string, rewardTime time.Time) error {
	query := `
		UPDATE curator_rewards
		SET efficiency_dropped = TRUE
		WHERE author = $1 AND permlink = $2 AND curator = $3 AND reward_time = $4
	`

	_, err := s.pool.Exec(ctx, query, author, permlink, curator, rewardTime)
	if err != nil {
		return fmt.Errorf("mark curator reward dropped: %w", err)
	}
	return nil
}

// ListEfficienciesByCurator retrieves the non-null efficiency scores of
// a curator's rewards with RewardTime in [from, to).
func (s *CuratorRewardStore) ListEfficienciesByCurator(ctx context.Context, curator string, from, to time.Time) ([]int64, error) {
	query := `
		SELECT efficiency
		FROM curator_rewards
		WHERE curator = $1 AND efficiency IS NOT NULL
			AND reward_time >= $2 AND reward_time < $3
		ORDER BY reward_time ASC
	`

	rows, err := s.pool.Query(ctx, query, curator, from, to)
	if err != nil {
		return nil, fmt.Errorf("list efficiencies by curator: %w", err)
	}
	defer rows.Close()

	var scores []int64
	for rows.Next() {
		var e int64
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scan efficiency row: %w", err)
		}
		scores = append(scores, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate efficiency rows: %w", err)
	}
	return scores, nil
}

// RewardDates returns the distinct UTC days rewards landed on.
func (s *CuratorRewardStore) RewardDates(ctx context.Context) ([]time.Time, error) {
	query := `
		SELECT DISTINCT date_trunc('day', reward_time AT TIME ZONE 'UTC') AT TIME ZONE 'UTC' AS day
		FROM curator_rewards
		ORDER BY day ASC
	`
	return collectDays(ctx, s.pool, query)
}

func collectCuratorRewards(rows pgx.Rows) ([]*domain.CuratorReward, error) {
	var rewards []*domain.CuratorReward
	for rows.Next() {
		var r domain.CuratorReward
		err := rows.Scan(&r.Author, &r.Permlink, &r.Curator, &r.RewardTime, &r.VoteTime, &r.Vests,
			&r.Value, &r.SteemValue, &r.Efficiency, &r.EfficiencyDropped)
		if err != nil {
			return nil, fmt.Errorf("scan curator reward row: %w", err)
		}
		r.RewardTime = r.RewardTime.UTC()
		r.VoteTime = r.VoteTime.UTC()
		rewards = append(rewards, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate curator reward rows: %w", err)
	}
	return rewards, nil
}
