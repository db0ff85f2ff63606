package postgres

import (
	"context"
	"fmt"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// PendingVoteHistoryStore implements storage.PendingVoteHistoryStore
// using PostgreSQL.
type PendingVoteHistoryStore struct {
	pool *Pool
}

// NewPendingVoteHistoryStore creates a new PendingVoteHistoryStore.
func NewPendingVoteHistoryStore(pool *Pool) *PendingVoteHistoryStore {
	return &PendingVoteHistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PendingVoteHistoryStore = (*PendingVoteHistoryStore)(nil)

// Enqueue adds a (post, voter) pair; duplicate pairs are ignored.
func (s *PendingVoteHistoryStore) Enqueue(ctx context.Context, p *domain.PendingVoteHistory) error {
	query := `
		INSERT INTO pending_vote_histories (author, permlink, voter, created)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (author, permlink, voter) DO NOTHING
	`

	_, err := s.pool.Exec(ctx, query, p.Author, p.Permlink, p.Voter, p.Created)
	if err != nil {
		return fmt.Errorf("enqueue pending vote history: %w", err)
	}
	return nil
}

// List retrieves up to limit queued pairs.
func (s *PendingVoteHistoryStore) List(ctx context.Context, limit int) ([]*domain.PendingVoteHistory, error) {
	query := `
		SELECT author, permlink, voter, created
		FROM pending_vote_histories
		ORDER BY created ASC, author ASC, permlink ASC, voter ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending vote histories: %w", err)
	}
	defer rows.Close()

	var pairs []*domain.PendingVoteHistory
	for rows.Next() {
		var p domain.PendingVoteHistory
		if err := rows.Scan(&p.Author, &p.Permlink, &p.Voter, &p.Created); err != nil {
			return nil, fmt.Errorf("scan pending vote history row: %w", err)
		}
		p.Created = p.Created.UTC()
		pairs = append(pairs, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending vote history rows: %w", err)
	}
	return pairs, nil
}

// Delete removes a pair once all window sizes have been attempted.
func (s *PendingVoteHistoryStore) Delete(ctx context.Context, author, permlink, voter string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM pending_vote_histories WHERE author = $1 AND permlink = $2 AND voter = $3`,
		author, permlink, voter)
	if err != nil {
		return fmt.Errorf("delete pending vote history: %w", err)
	}
	return nil
}

// Count returns the number of queued pairs.
func (s *PendingVoteHistoryStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pending_vote_histories`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending vote histories: %w", err)
	}
	return count, nil
}
