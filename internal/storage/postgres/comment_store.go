package postgres

import (
	"context"
	"fmt"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// CommentStore implements storage.CommentStore using PostgreSQL.
type CommentStore struct {
	pool *Pool
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(pool *Pool) *CommentStore {
	return &CommentStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CommentStore = (*CommentStore)(nil)

// Insert adds a comment.
func (s *CommentStore) Insert(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO comments (commenter, permlink, parent_author, parent_permlink,
			root_author, root_permlink, time, reputation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		c.Commenter, c.Permlink, c.ParentAuthor, c.ParentPermlink,
		c.RootAuthor, c.RootPermlink, c.Time, c.Reputation)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// ListByRoot retrieves all comments under a root post.
func (s *CommentStore) ListByRoot(ctx context.Context, rootAuthor, rootPermlink string) ([]*domain.Comment, error) {
	query := `
		SELECT commenter, permlink, parent_author, parent_permlink,
			root_author, root_permlink, time, reputation
		FROM comments
		WHERE root_author = $1 AND root_permlink = $2
		ORDER BY time ASC
	`

	rows, err := s.pool.Query(ctx, query, rootAuthor, rootPermlink)
	if err != nil {
		return nil, fmt.Errorf("list comments by root: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		var c domain.Comment
		err := rows.Scan(&c.Commenter, &c.Permlink, &c.ParentAuthor, &c.ParentPermlink,
			&c.RootAuthor, &c.RootPermlink, &c.Time, &c.Reputation)
		if err != nil {
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		c.Time = c.Time.UTC()
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment rows: %w", err)
	}
	return comments, nil
}
