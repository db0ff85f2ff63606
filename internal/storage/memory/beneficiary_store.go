package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// BeneficiaryStore is an in-memory implementation of storage.BeneficiaryStore.
type BeneficiaryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Beneficiary // keyed by (author, permlink, beneficiary)
}

// NewBeneficiaryStore creates a new in-memory beneficiary store.
func NewBeneficiaryStore() *BeneficiaryStore {
	return &BeneficiaryStore{data: make(map[string]*domain.Beneficiary)}
}

func beneficiaryKey(author, permlink, beneficiary string) string {
	return fmt.Sprintf("%s|%s|%s", author, permlink, beneficiary)
}

// Insert adds a declaration. Returns ErrDuplicateKey if the identity exists.
func (s *BeneficiaryStore) Insert(_ context.Context, b *domain.Beneficiary) error {
	if b == nil || b.Author == "" || b.Permlink == "" || b.Beneficiary == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := beneficiaryKey(b.Author, b.Permlink, b.Beneficiary)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	benCopy := *b
	s.data[key] = &benCopy
	return nil
}

// GetByPost retrieves all declarations for a post.
func (s *BeneficiaryStore) GetByPost(_ context.Context, author, permlink string) ([]*domain.Beneficiary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Beneficiary
	for _, b := range s.data {
		if b.Author == author && b.Permlink == permlink {
			benCopy := *b
			result = append(result, &benCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Beneficiary < result[j].Beneficiary
	})
	return result, nil
}

var _ storage.BeneficiaryStore = (*BeneficiaryStore)(nil)
