package memory

import (
	"context"
	"sync"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// AccountStore is an in-memory implementation of storage.AccountStore.
type AccountStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Account
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{data: make(map[string]*domain.Account)}
}

// Upsert inserts or refreshes an account record.
func (s *AccountStore) Upsert(_ context.Context, a *domain.Account) error {
	if a == nil || a.Name == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accountCopy := *a
	s.data[a.Name] = &accountCopy
	return nil
}

// GetByName retrieves an account. Returns ErrNotFound if not exists.
func (s *AccountStore) GetByName(_ context.Context, name string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.data[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	accountCopy := *a
	return &accountCopy, nil
}

var _ storage.AccountStore = (*AccountStore)(nil)
