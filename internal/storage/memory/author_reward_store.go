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

// AuthorRewardStore is an in-memory implementation of storage.AuthorRewardStore.
type AuthorRewardStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AuthorReward // keyed by (author, permlink, reward_time)
}

// NewAuthorRewardStore creates a new in-memory author reward store.
func NewAuthorRewardStore() *AuthorRewardStore {
	return &AuthorRewardStore{data: make(map[string]*domain.AuthorReward)}
}

func authorRewardKey(author, permlink string, t time.Time) string {
	return fmt.Sprintf("%s|%s|%d", author, permlink, t.UnixNano())
}

// Insert adds a new reward. Returns ErrDuplicateKey if the identity exists.
func (s *AuthorRewardStore) Insert(_ context.Context, r *domain.AuthorReward) error {
	if r == nil || r.Author == "" || r.Permlink == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := authorRewardKey(r.Author, r.Permlink, r.RewardTime)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	rewardCopy := *r
	s.data[key] = &rewardCopy
	return nil
}

// ListUnvalued retrieves up to limit rewards with null value.
func (s *AuthorRewardStore) ListUnvalued(_ context.Context, limit int) ([]*domain.AuthorReward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AuthorReward
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
func (s *AuthorRewardStore) SetValue(_ context.Context, author, permlink string, rewardTime time.Time, value, steemValue float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data[authorRewardKey(author, permlink, rewardTime)]
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

// GetByPost retrieves all author rewards for a post.
func (s *AuthorRewardStore) GetByPost(_ context.Context, author, permlink string) ([]*domain.AuthorReward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AuthorReward
	for _, r := range s.data {
		if r.Author == author && r.Permlink == permlink {
			rewardCopy := *r
			result = append(result, &rewardCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].RewardTime.Before(result[j].RewardTime)
	})
	return result, nil
}

// RewardDates returns the distinct UTC days rewards landed on.
func (s *AuthorRewardStore) RewardDates(_ context.Context) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return distinctDays(func(yield func(time.Time)) {
		for _, r := range s.data {
			yield(r.RewardTime)
		}
	}), nil
}

// distinctDays collects distinct UTC calendar days, ordered ASC.
func distinctDays(iterate func(yield func(time.Time))) []time.Time {
	seen := make(map[string]time.Time)
	iterate(func(t time.Time) {
		day := domain.Day(t)
		seen[day.Format("2006-01-02")] = day
	})

	result := make([]time.Time, 0, len(seen))
	for _, day := range seen {
		result = append(result, day)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Before(result[j]) })
	return result
}

var _ storage.AuthorRewardStore = (*AuthorRewardStore)(nil)
