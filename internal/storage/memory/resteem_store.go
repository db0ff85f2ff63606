package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// ResteemStore is an in-memory implementation of storage.ResteemStore.
type ResteemStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Resteem // keyed by (author, permlink, resteemed_by)
}

// NewResteemStore creates a new in-memory resteem store.
func NewResteemStore() *ResteemStore {
	return &ResteemStore{data: make(map[string]*domain.Resteem)}
}

func resteemKey(author, permlink, resteemedBy string) string {
	return fmt.Sprintf("%s|%s|%s", author, permlink, resteemedBy)
}

// Insert adds a resteem. Returns ErrDuplicateKey if the identity exists.
func (s *ResteemStore) Insert(_ context.Context, r *domain.Resteem) error {
	if r == nil || r.Author == "" || r.Permlink == "" || r.ResteemedBy == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := resteemKey(r.Author, r.Permlink, r.ResteemedBy)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	resteemCopy := *r
	s.data[key] = &resteemCopy
	return nil
}

// ListByPost retrieves all resteems of a post, ordered by time ASC.
func (s *ResteemStore) ListByPost(_ context.Context, author, permlink string) ([]*domain.Resteem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Resteem
	for _, r := range s.data {
		if r.Author == author && r.Permlink == permlink {
			resteemCopy := *r
			result = append(result, &resteemCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Time.Before(result[j].Time)
	})
	return result, nil
}

var _ storage.ResteemStore = (*ResteemStore)(nil)
