package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// CuratorHistoryStore implements storage.CuratorHistoryStore using PostgreSQL.
type CuratorHistoryStore struct {
	pool *Pool
}

// NewCuratorHistoryStore creates a new CuratorHistoryStore.
func NewCuratorHistoryStore(pool *Pool) *CuratorHistoryStore {
	return &CuratorHistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CuratorHistoryStore = (*CuratorHistoryStore)(nil)

// Insert adds a snapshot row.
func (s *CuratorHistoryStore) Insert(ctx context.Context, h *domain.CuratorHistory) error {
	query := `
		INSERT INTO curator_histories (voter, post_author, permlink, window_days,
			count, min, max, avg, median)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		h.Voter, h.PostAuthor, h.Permlink, h.WindowDays,
		h.Count, h.Min, h.Max, h.Avg, h.Median)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert curator history: %w", err)
	}
	return nil
}

// Exists reports whether a snapshot row is already materialized.
func (s *CuratorHistoryStore) Exists(ctx context.Context, voter, postAuthor, permlink string, windowDays int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM curator_histories
			WHERE voter = $1 AND post_author = $2 AND permlink = $3 AND window_days = $4
		)
	`

	var exists bool
	err := s.pool.QueryRow(ctx, query, voter, postAuthor, permlink, windowDays).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check curator history exists: %w", err)
	}
	return exists, nil
}

// Get retrieves a snapshot.
func (s *CuratorHistoryStore) Get(ctx context.Context, voter, postAuthor, permlink string, windowDays int) (*domain.CuratorHistory, error) {
	query := `
		SELECT voter, post_author, permlink, window_days, count, min, max, avg, median
		FROM curator_histories
		WHERE voter = $1 AND post_author = $2 AND permlink = $3 AND window_days = $4
	`

	row := s.pool.QueryRow(ctx, query, voter, postAuthor, permlink, windowDays)
	h, err := scanCuratorHistory(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get curator history: %w", err)
	}
	return h, nil
}

// GetAll retrieves all snapshots.
func (s *CuratorHistoryStore) GetAll(ctx context.Context) ([]*domain.CuratorHistory, error) {
	query := `
		SELECT voter, post_author, permlink, window_days, count, min, max, avg, median
		FROM curator_histories
		ORDER BY voter ASC, permlink ASC, window_days ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all curator histories: %w", err)
	}
	defer rows.Close()

	var histories []*domain.CuratorHistory
	for rows.Next() {
		h, err := scanCuratorHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan curator history row: %w", err)
		}
		histories = append(histories, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate curator history rows: %w", err)
	}
	return histories, nil
}

func scanCuratorHistory(row pgx.Row) (*domain.CuratorHistory, error) {
	var h domain.CuratorHistory
	err := row.Scan(&h.Voter, &h.PostAuthor, &h.Permlink, &h.WindowDays,
		&h.Count, &h.Min, &h.Max, &h.Avg, &h.Median)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
