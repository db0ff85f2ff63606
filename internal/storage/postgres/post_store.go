package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// PostStore implements storage.PostStore using PostgreSQL.
type PostStore struct {
	pool *Pool
}

// NewPostStore creates a new PostStore.
func NewPostStore(pool *Pool) *PostStore {
	return &PostStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PostStore = (*PostStore)(nil)

// Insert adds a new post.
func (s *PostStore) Insert(ctx context.Context, p *domain.Post) error {
	query := `
		INSERT INTO posts (author, permlink, created, category, total_value, percentile)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		p.Author, p.Permlink, p.Created, p.Category, p.TotalValue, p.Percentile)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// Get retrieves a post by its natural key.
func (s *PostStore) Get(ctx context.Context, author, permlink string) (*domain.Post, error) {
	query := `
		SELECT author, permlink, created, category, total_value, percentile
		FROM posts
		WHERE author = $1 AND permlink = $2
	`

	row := s.pool.QueryRow(ctx, query, author, permlink)
	p, err := scanPost(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// ListByCreatedDay retrieves all posts created on a UTC calendar day.
func (s *PostStore) ListByCreatedDay(ctx context.Context, day time.Time) ([]*domain.Post, error) {
	query := `
		SELECT author, permlink, created, category, total_value, percentile
		FROM posts
		WHERE created >= $1 AND created < $2
		ORDER BY created ASC
	`

	start := domain.Day(day)
	rows, err := s.pool.Query(ctx, query, start, start.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("list posts by created day: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

// ListByAuthorCreatedRange retrieves an author's posts created in [from, to).
func (s *PostStore) ListByAuthorCreatedRange(ctx context.Context, author string, from, to time.Time) ([]*domain.Post, error) {
	query := `
		SELECT author, permlink, created, category, total_value, percentile
		FROM posts
		WHERE author = $1 AND created >= $2 AND created < $3
		ORDER BY created ASC
	`

	rows, err := s.pool.Query(ctx, query, author, from, to)
	if err != nil {
		return nil, fmt.Errorf("list posts by author created range: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

// Finalize writes total value and percentile onto a post, only if the
// percentile is still null.
func (s *PostStore) Finalize(ctx context.Context, author, permlink string, totalValue float64, percentile int) (bool, error) {
	query := `
		UPDATE posts
		SET total_value = $3, percentile = $4
		WHERE author = $1 AND permlink = $2 AND percentile IS NULL
	`

	tag, err := s.pool.Exec(ctx, query, author, permlink, totalValue, percentile)
	if err != nil {
		return false, fmt.Errorf("finalize post: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE author = $1 AND permlink = $2)`,
		author, permlink).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return false, storage.ErrNotFound
	}
	return false, nil
}

// ListFinalizedSince retrieves finalized posts created at or after the
// cutoff, ordered by Created ASC.
func (s *PostStore) ListFinalizedSince(ctx context.Context, since time.Time) ([]*domain.Post, error) {
	query := `
		SELECT author, permlink, created, category, total_value, percentile
		FROM posts
		WHERE percentile IS NOT NULL AND created >= $1
		ORDER BY created ASC
	`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list finalized posts since: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

// PurgeCreatedBefore deletes posts older than the cutoff.
func (s *PostStore) PurgeCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE created < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge posts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.Author, &p.Permlink, &p.Created, &p.Category, &p.TotalValue, &p.Percentile)
	if err != nil {
		return nil, err
	}
	p.Created = p.Created.UTC()
	return &p, nil
}

func collectPosts(rows pgx.Rows) ([]*domain.Post, error) {
	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post rows: %w", err)
	}
	return posts, nil
}
