package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// AuthorHistoryStore is an in-memory implementation of storage.AuthorHistoryStore.
type AuthorHistoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AuthorHistory // keyed by (author, post_author, permlink, window_days)
}

// NewAuthorHistoryStore creates a new in-memory author history store.
func NewAuthorHistoryStore() *AuthorHistoryStore {
	return &AuthorHistoryStore{data: make(map[string]*domain.AuthorHistory)}
}

func authorHistoryKey(author, postAuthor, permlink string, windowDays int) string {
	return fmt.Sprintf("%s|%s|%s|%d", author, postAuthor, permlink, windowDays)
}

// Insert adds a snapshot row. Returns ErrDuplicateKey if the identity exists.
func (s *AuthorHistoryStore) Insert(_ context.Context, h *domain.AuthorHistory) error {
	if h == nil || h.Author == "" || h.Permlink == "" || h.WindowDays <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := authorHistoryKey(h.Author, h.PostAuthor, h.Permlink, h.WindowDays)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	histCopy := *h
	s.data[key] = &histCopy
	return nil
}

// Exists reports whether a snapshot row is already materialized.
func (s *AuthorHistoryStore) Exists(_ context.Context, author, postAuthor, permlink string, windowDays int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data[authorHistoryKey(author, postAuthor, permlink, windowDays)]
	return ok, nil
}

// Get retrieves a snapshot. Returns ErrNotFound if not exists.
func (s *AuthorHistoryStore) Get(_ context.Context, author, postAuthor, permlink string, windowDays int) (*domain.AuthorHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[authorHistoryKey(author, postAuthor, permlink, windowDays)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	histCopy := *h
	return &histCopy, nil
}

// GetAll retrieves all snapshots.
func (s *AuthorHistoryStore) GetAll(_ context.Context) ([]*domain.AuthorHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AuthorHistory
	for _, h := range s.data {
		histCopy := *h
		result = append(result, &histCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		ki := authorHistoryKey(result[i].Author, result[i].PostAuthor, result[i].Permlink, result[i].WindowDays)
		kj := authorHistoryKey(result[j].Author, result[j].PostAuthor, result[j].Permlink, result[j].WindowDays)
		return ki < kj
	})
	return result, nil
}

var _ storage.AuthorHistoryStore = (*AuthorHistoryStore)(nil)
