package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// CuratorHistoryStore is an in-memory implementation of storage.CuratorHistoryStore.
type CuratorHistoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CuratorHistory // keyed by (voter, post_author, permlink, window_days)
}

// NewCuratorHistoryStore creates a new in-memory curator history store.
func NewCuratorHistoryStore() *CuratorHistoryStore {
	return &CuratorHistoryStore{data: make(map[string]*domain.CuratorHistory)}
}

func curatorHistoryKey(voter, postAuthor, permlink string, windowDays int) string {
	return fmt.Sprintf("%s|%s|%s|%d", voter, postAuthor, permlink, windowDays)
}

// Insert adds a snapshot row. Returns ErrDuplicateKey if the identity exists.
func (s *CuratorHistoryStore) Insert(_ context.Context, h *domain.CuratorHistory) error {
	if h == nil || h.Voter == "" || h.Permlink == "" || h.WindowDays <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := curatorHistoryKey(h.Voter, h.PostAuthor, h.Permlink, h.WindowDays)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	histCopy := *h
	s.data[key] = &histCopy
	return nil
}

// Exists reports whether a snapshot row is already materialized.
// The check runs against the full natural key.
func (s *CuratorHistoryStore) Exists(_ context.Context, voter, postAuthor, permlink string, windowDays int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data[curatorHistoryKey(voter, postAuthor, permlink, windowDays)]
	return ok, nil
}

// Get retrieves a snapshot. Returns ErrNotFound if not exists.
func (s *CuratorHistoryStore) Get(_ context.Context, voter, postAuthor, permlink string, windowDays int) (*domain.CuratorHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[curatorHistoryKey(voter, postAuthor, permlink, windowDays)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	histCopy := *h
	return &histCopy, nil
}

// GetAll retrieves all snapshots.
func (s *CuratorHistoryStore) GetAll(_ context.Context) ([]*domain.CuratorHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CuratorHistory
	for _, h := range s.data {
		histCopy := *h
		result = append(result, &histCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		ki := curatorHistoryKey(result[i].Voter, result[i].PostAuthor, result[i].Permlink, result[i].WindowDays)
		kj := curatorHistoryKey(result[j].Voter, result[j].PostAuthor, result[j].Permlink, result[j].WindowDays)
		return ki < kj
	})
	return result, nil
}

var _ storage.CuratorHistoryStore = (*CuratorHistoryStore)(nil)
