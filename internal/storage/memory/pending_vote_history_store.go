package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// PendingVoteHistoryStore is an in-memory implementation of
// storage.PendingVoteHistoryStore.
type PendingVoteHistoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PendingVoteHistory // keyed by (author, permlink, voter)
}

// NewPendingVoteHistoryStore creates a new in-memory curator-history queue.
func NewPendingVoteHistoryStore() *PendingVoteHistoryStore {
	return &PendingVoteHistoryStore{data: make(map[string]*domain.PendingVoteHistory)}
}

func pendingVoteKey(author, permlink, voter string) string {
	return fmt.Sprintf("%s|%s|%s", author, permlink, voter)
}

// Enqueue adds a (post, voter) pair; duplicate pairs are ignored.
func (s *PendingVoteHistoryStore) Enqueue(_ context.Context, p *domain.PendingVoteHistory) error {
	if p == nil || p.Author == "" || p.Permlink == "" || p.Voter == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pendingVoteKey(p.Author, p.Permlink, p.Voter)
	if _, exists := s.data[key]; exists {
		return nil
	}

	entryCopy := *p
	s.data[key] = &entryCopy
	return nil
}

// List retrieves up to limit queued pairs.
func (s *PendingVoteHistoryStore) List(_ context.Context, limit int) ([]*domain.PendingVoteHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PendingVoteHistory
	for _, p := range s.data {
		entryCopy := *p
		result = append(result, &entryCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Created.Equal(result[j].Created) {
			return result[i].Created.Before(result[j].Created)
		}
		return pendingVoteKey(result[i].Author, result[i].Permlink, result[i].Voter) <
			pendingVoteKey(result[j].Author, result[j].Permlink, result[j].Voter)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Delete removes a pair once all window sizes have been attempted.
func (s *PendingVoteHistoryStore) Delete(_ context.Context, author, permlink, voter string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, pendingVoteKey(author, permlink, voter))
	return nil
}

// Count returns the number of queued pairs.
func (s *PendingVoteHistoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

var _ storage.PendingVoteHistoryStore = (*PendingVoteHistoryStore)(nil)
