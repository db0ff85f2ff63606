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

// CuratorRewardStore is an in-memory implementation of storage.CuratorRewardStore.
type CuratorRewardStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CuratorReward // keyed by (author, permlink, curator, reward_time)
}

// NewCuratorRewardStore creates a new in-memory curator reward store.
func NewCuratorRewardStore() *CuratorRewardStore {
	return &CuratorRewardStore{data: make(map[string]*domain.CuratorReward)}
}

func curatorRewardKey(author, permlink, curator string, t time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%d", author, permlink, curator, t.UnixNano())
}

// Insert adds a new reward. Returns ErrDuplicateKey if the identity exists.
func (s *CuratorRewardStore) Insert(_ context.Context, r *domain.CuratorReward) error {
	if r == nil || r.Author == "" || r.Permlink == "" || r.Curator == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := curatorRewardKey(r.Author, r.Permlink, r.Curator, r.RewardTime)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	rewardCopy := *r
	s.data[key] = &rewardCopy
	return nil
}

// ListUnvalued retrieves up to limit rewards with null value.
func (s *CuratorRewardStore) ListUnvalued(_ context.Context, limit int) ([]*domain.CuratorReward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CuratorReward
	for _, r := range s.data {
		if r.Value == nil {
			rewardCopy := *r
			result = append(result, &rewardCopy)
		}
	}

	sortCuratorRewards(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// SetValue fills the derived value fields, only if value is still null.
func (s *CuratorRewardStore) SetValue(_ context.Context, author, permlink, curator string, rewardTime time.Time, value, steemValue float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data[curatorRewardKey(author, permlink, curator, rewardTime)]
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

// SumVestsByPost returns the sum of curator-reward vests for a post.
func (s *CuratorRewardStore) SumVestsByPost(_ context.Context, author, permlink string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for _, r := range s.data {
		if r.Author == author && r.Permlink == permlink {
			sum += r.Vests
		}
	}
	return sum, nil
}

// GetByPost retrieves all curator rewards for a post.
func (s *CuratorRewardStore) GetByPost(_ context.Context, author, permlink string) ([]*domain.CuratorReward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CuratorReward
	for _, r := range s.data {
		if r.Author == author && r.Permlink == permlink {
			rewardCopy := *r
			result = append(result, &rewardCopy)
		}
	}

	sortCuratorRewards(result)
	return result, nil
}

// ListEfficiencyCandidates retrieves up to limit rewards with null
// efficiency that have not been dropped.
func (s *CuratorRewardStore) ListEfficiencyCandidates(_ context.Context, limit int) ([]*domain.CuratorReward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CuratorReward
	for _, r := range s.data {
		if r.Efficiency == nil && !r.EfficiencyDropped {
			rewardCopy := *r
			result = append(result, &rewardCopy)
		}
	}

	sortCuratorRewards(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// SetEfficiency fills the efficiency score, only if it is still null.
func (s *CuratorRewardStore) SetEfficiency(_ context.Context, author, permlink, curator string, rewardTime time.Time, efficiency int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data[curatorRewardKey(author, permlink, curator, rewardTime)]
	if !ok {
		return false, storage.ErrNotFound
	}
	if r.Efficiency != nil || r.EfficiencyDropped {
		return false, nil
	}

	e := efficiency
	r.Efficiency = &e
	return true, nil
}

// MarkEfficiencyDropped permanently excludes a reward from efficiency
// computation.
func (s *CuratorRewardStore) MarkEfficiencyDropped(_ context.Context, author, permlink, curator string, rewardTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data[curatorRewardKey(author, permlink, curator, rewardTime)]
	if !ok {
		return storage.ErrNotFound
	}
	r.EfficiencyDropped = true
	return nil
}

// ListEfficienciesByCurator retrieves the non-null efficiency scores of
// a curator's rewards with RewardTime in [from, to).
func (s *CuratorRewardStore) ListEfficienciesByCurator(_ context.Context, curator string, from, to time.Time) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		t   time.Time
		eff int64
	}
	var entries []entry
	for _, r := range s.data {
		if r.Curator != curator || r.Efficiency == nil {
			continue
		}
		if r.RewardTime.Before(from) || !r.RewardTime.Before(to) {
			continue
		}
		entries = append(entries, entry{t: r.RewardTime, eff: *r.Efficiency})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].t.Before(entries[j].t) })

	result := make([]int64, len(entries))
	for i, e := range entries {
		result[i] = e.eff
	}
	return result, nil
}

// RewardDates returns the distinct UTC days rewards landed on.
func (s *CuratorRewardStore) RewardDates(_ context.Context) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return distinctDays(func(yield func(time.Time)) {
		for _, r := range s.data {
			yield(r.RewardTime)
		}
	}), nil
}

func sortCuratorRewards(rewards []*domain.CuratorReward) {
	sort.Slice(rewards, func(i, j int) bool {
		if !rewards[i].RewardTime.Equal(rewards[j].RewardTime) {
			return rewards[i].RewardTime.Before(rewards[j].RewardTime)
		}
		return rewards[i].Curator < rewards[j].Curator
	})
}

var _ storage.CuratorRewardStore = (*CuratorRewardStore)(nil)
