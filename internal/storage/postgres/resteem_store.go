package postgres

import (
	"context"
	"fmt"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// ResteemStore implements storage.ResteemStore using PostgreSQL.
type ResteemStore struct {
	pool *Pool
}

// NewResteemStore creates a new ResteemStore.
func NewResteemStore(pool *Pool) *ResteemStore {
	return &ResteemStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ResteemStore = (*ResteemStore)(nil)

// Insert adds a resteem.
func (s *ResteemStore) Insert(ctx context.Context, r *domain.Resteem) error {
	query := `
		INSERT INTO resteems (author, permlink, resteemed_by, time, followers)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query, r.Author, r.Permlink, r.ResteemedBy, r.Time, r.Followers)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert resteem: %w", err)
	}
	return nil
}

// ListByPost retrieves all resteems of a post.
func (s *ResteemStore) ListByPost(ctx context.Context, author, permlink string) ([]*domain.Resteem, error) {
	query := `
		SELECT author, permlink, resteemed_by, time, followers
		FROM resteems
		WHERE author = $1 AND permlink = $2
		ORDER BY time ASC
	`

	rows, err := s.pool.Query(ctx, query, author, permlink)
	if err != nil {
		return nil, fmt.Errorf("list resteems by post: %w", err)
	}
	defer rows.Close()

	var resteems []*domain.Resteem
	for rows.Next() {
		var r domain.Resteem
		if err := rows.Scan(&r.Author, &r.Permlink, &r.ResteemedBy, &r.Time, &r.Followers); err != nil {
			return nil, fmt.Errorf("scan resteem row: %w", err)
		}
		r.Time = r.Time.UTC()
		resteems = append(resteems, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resteem rows: %w", err)
	}
	return resteems, nil
}
