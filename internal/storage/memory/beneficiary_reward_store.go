package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// BeneficiaryRewardStore is an in-memory implementation of
// storage.BeneficiaryRewardStore.
type BeneficiaryRewardStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BeneficiaryReward // keyed by (author, permlink, beneficiary, reward_time)
}

// NewBeneficiaryRewardStore creates a new in-memory beneficiary reward store.
func NewBeneficiaryRewardStore() *BeneficiaryRewardStore {
	return &BeneficiaryRewardStore{data: make(map[string]*domain.BeneficiaryReward)}
}

func beneficiaryRewardKey(author, permlink, beneficiary string, t time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%d", author, permlink, beneficiary, t.UnixNano())
}

// Insert adds a new reward. Returns ErrDuplicateKey if the identity exists.
func (s *BeneficiaryRewardStore) Insert(_ context.Context, r *domain.BeneficiaryReward) error {
	if r == nil || r.Author == "" || r.Permlink == "" || r.Beneficiary == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := beneficiaryRewardKey(r.Author, r.Permlink, r.Beneficiary, r.RewardTime)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	rewardCopy := *r
	s.data[key] = &rewardCopy
	return nil
}

// ListUnvalued retrieves up to limit rewards with null value.
func (s *BeneficiaryRewardStore) ListUnvalued(_ context.Context, limit int) ([]*domain.BeneficiaryReward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BeneficiaryReward
	for _, r := range s.data {
		if r.Value == nil {
			rewardCopy := *r
			result = append(result, &rewardCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].RewardTime.Before(result[j].RewardTime)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// SetValue fills the derived value fields, only if value is still null.
func (s *BeneficiaryRewardStore) SetValue(_ context.Context, author, permlink, beneficiary string, rewardTime time.Time, value, steemValue float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data[beneficiaryRewardKey(author, permlink, beneficiary, rewardTime)]
	if !ok {
		return false, storage.ErrNotFound
	}
	if r.Value != nil {
		return false, nil
	}

	v, sv := value, steemValue
	r.Value = &v
	r.SteemValue = &sv
	return true, nil
}

// GetByPost retrieves all beneficiary rewards for a post.
func (s *BeneficiaryRewardStore) GetByPost(_ context.Context, author, permlink string) ([]*domain.BeneficiaryReward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BeneficiaryReward
	for _, r := range s.data {
		if r.Author == author && r.Permlink == permlink {
			rewardCopy := *r
			result = append(result, &rewardCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].RewardTime.Equal(result[j].RewardTime) {
			return result[i].RewardTime.Before(result[j].RewardTime)
		}
		return result[i].Beneficiary < result[j].Beneficiary
	})
	return result, nil
}

// RewardDates returns the distinct UTC days rewards landed on.
func (s *BeneficiaryRewardStore) RewardDates(_ context.Context) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return distinctDays(func(yield func(time.Time)) {
		for _, r := range s.data {
			yield(r.RewardTime)
		}
	}), nil
}

var _ storage.BeneficiaryRewardStore = (*BeneficiaryRewardStore)(nil)
