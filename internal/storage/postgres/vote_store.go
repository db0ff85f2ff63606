package postgres

import (
	"context"
	"fmt"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// VoteStore implements storage.VoteStore using PostgreSQL.
type VoteStore struct {
	pool *Pool
}

// NewVoteStore creates a new VoteStore.
func NewVoteStore(pool *Pool) *VoteStore {
	return &VoteStore{pool: pool}
}

// Compile-time interface check.
var _ storage.VoteStore = (*VoteStore)(nil)

// Insert adds a new vote.
func (s *VoteStore) Insert(ctx context.Context, v *domain.Vote) error {
	query := `
		INSERT INTO votes (author, permlink, voter, time, weight, rshares)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query, v.Author, v.Permlink, v.Voter, v.Time, v.Weight, v.Rshares)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

// LatestBefore retrieves the voter's latest vote on a post at or before t.
func (s *VoteStore) LatestBefore(ctx context.Context, author, permlink, voter string, t time.Time) (*domain.Vote, error) {
	query := `
		SELECT author, permlink, voter, time, weight, rshares
		FROM votes
		WHERE author = $1 AND permlink = $2 AND voter = $3 AND time <= $4
		ORDER BY time DESC
		LIMIT 1
	`

	var v domain.Vote
	err := s.pool.QueryRow(ctx, query, author, permlink, voter, t).Scan(
		&v.Author, &v.Permlink, &v.Voter, &v.Time, &v.Weight, &v.Rshares)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest vote before: %w", err)
	}
	v.Time = v.Time.UTC()
	return &v, nil
}

// SumPositiveRshares returns the post's total effective influence.
func (s *VoteStore) SumPositiveRshares(ctx context.Context, author, permlink string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(rshares), 0)
		FROM votes
		WHERE author = $1 AND permlink = $2 AND rshares > 0
	`

	var sum int64
	if err := s.pool.QueryRow(ctx, query, author, permlink).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum positive rshares: %w", err)
	}
	return sum, nil
}
