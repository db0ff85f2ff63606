package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// AuthorHistoryStore implements storage.AuthorHistoryStore using PostgreSQL.
type AuthorHistoryStore struct {
	pool *Pool
}

// NewAuthorHistoryStore creates a new AuthorHistoryStore.
func NewAuthorHistoryStore(pool *Pool) *AuthorHistoryStore {
	return &AuthorHistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AuthorHistoryStore = (*AuthorHistoryStore)(nil)

// Insert adds a snapshot row.
func (s *AuthorHistoryStore) Insert(ctx context.Context, h *domain.AuthorHistory) error {
	query := `
		INSERT INTO author_histories (author, post_author, permlink, window_days,
			count, min, max, avg, median)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		h.Author, h.PostAuthor, h.Permlink, h.WindowDays,
		h.Count, h.Min, h.Max, h.Avg, h.Median)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert author history: %w", err)
	}
	return nil
}

// Exists reports whether a snapshot row is already materialized.
func (s *AuthorHistoryStore) Exists(ctx context.Context, author, postAuthor, permlink string, windowDays int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM author_histories
			WHERE author = $1 AND post_author = $2 AND permlink = $3 AND window_days = $4
		)
	`

	var exists bool
	err := s.pool.QueryRow(ctx, query, author, postAuthor, permlink, windowDays).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check author history exists: %w", err)
	}
	return exists, nil
}

// Get retrieves a snapshot.
func (s *AuthorHistoryStore) Get(ctx context.Context, author, postAuthor, permlink string, windowDays int) (*domain.AuthorHistory, error) {
	query := `
		SELECT author, post_author, permlink, window_days, count, min, max, avg, median
		FROM author_histories
		WHERE author = $1 AND post_author = $2 AND permlink = $3 AND window_days = $4
	`

	row := s.pool.QueryRow(ctx, query, author, postAuthor, permlink, windowDays)
	h, err := scanAuthorHistory(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get author history: %w", err)
	}
	return h, nil
}

// GetAll retrieves all snapshots.
func (s *AuthorHistoryStore) GetAll(ctx context.Context) ([]*domain.AuthorHistory, error) {
	query := `
		SELECT author, post_author, permlink, window_days, count, min, max, avg, median
		FROM author_histories
		ORDER BY author ASC, permlink ASC, window_days ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all author histories: %w", err)
	}
	defer rows.Close()

	var histories []*domain.AuthorHistory
	for rows.Next() {
		h, err := scanAuthorHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan author history row: %w", err)
		}
		histories = append(histories, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate author history rows: %w", err)
	}
	return histories, nil
}

func scanAuthorHistory(row pgx.Row) (*domain.AuthorHistory, error) {
	var h domain.AuthorHistory
	err := row.Scan(&h.Author, &h.PostAuthor, &h.Permlink, &h.WindowDays,
		&h.Count, &h.Min, &h.Max, &h.Avg, &h.Median)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
