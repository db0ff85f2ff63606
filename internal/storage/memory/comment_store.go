package memory

import (
	"context"
	"sort"
	"sync"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// CommentStore is an in-memory implementation of storage.CommentStore.
type CommentStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Comment // keyed by (commenter, permlink)
}

// NewCommentStore creates a new in-memory comment store.
func NewCommentStore() *CommentStore {
	return &CommentStore{data: make(map[string]*domain.Comment)}
}

// Insert adds a comment. Returns ErrDuplicateKey if (commenter, permlink) exists.
func (s *CommentStore) Insert(_ context.Context, c *domain.Comment) error {
	if c == nil || c.Commenter == "" || c.Permlink == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := postKey(c.Commenter, c.Permlink)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	commentCopy := *c
	s.data[key] = &commentCopy
	return nil
}

// ListByRoot retrieves all comments under a root post, ordered by time ASC.
func (s *CommentStore) ListByRoot(_ context.Context, rootAuthor, rootPermlink string) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Comment
	for _, c := range s.data {
		if c.RootAuthor == rootAuthor && c.RootPermlink == rootPermlink {
			commentCopy := *c
			result = append(result, &commentCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Time.Before(result[j].Time)
	})
	return result, nil
}

var _ storage.CommentStore = (*CommentStore)(nil)
