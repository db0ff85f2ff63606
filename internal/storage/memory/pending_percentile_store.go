package memory

import (
	"context"
	"sync"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// PendingPercentileStore is an in-memory implementation of
// storage.PendingPercentileStore.
type PendingPercentileStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PendingPercentile // keyed by (author, permlink)
}

// NewPendingPercentileStore creates a new in-memory percentile queue.
func NewPendingPercentileStore() *PendingPercentileStore {
	return &PendingPercentileStore{data: make(map[string]*domain.PendingPercentile)}
}

// Enqueue adds an entry unless the post already has one open.
func (s *PendingPercentileStore) Enqueue(_ context.Context, p *domain.PendingPercentile) error {
	if p == nil || p.Author == "" || p.Permlink == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := postKey(p.Author, p.Permlink)
	if _, exists := s.data[key]; exists {
		return nil
	}

	entryCopy := *p
	s.data[key] = &entryCopy
	return nil
}

// MaxDay returns the latest UTC creation day present in the queue.
func (s *PendingPercentileStore) MaxDay(_ context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var max time.Time
	found := false
	for _, p := range s.data {
		day := domain.Day(p.Created)
		if !found || day.After(max) {
			max = day
			found = true
		}
	}
	return max, found, nil
}

// ListDaysBefore returns the distinct creation days strictly before the
// watermark day, ordered ASC.
func (s *PendingPercentileStore) ListDaysBefore(_ context.Context, watermark time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := domain.Day(watermark)
	return distinctDays(func(yield func(time.Time)) {
		for _, p := range s.data {
			if domain.Day(p.Created).Before(cutoff) {
				yield(p.Created)
			}
		}
	}), nil
}

// ListByDay retrieves all entries whose post was created on a day.
func (s *PendingPercentileStore) ListByDay(_ context.Context, day time.Time) ([]*domain.PendingPercentile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target := domain.Day(day)

	var result []*domain.PendingPercentile
	for _, p := range s.data {
		if domain.Day(p.Created).Equal(target) {
			entryCopy := *p
			result = append(result, &entryCopy)
		}
	}
	return result, nil
}

// DeleteByDay removes all entries for a day after finalization.
func (s *PendingPercentileStore) DeleteByDay(_ context.Context, day time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := domain.Day(day)
	for key, p := range s.data {
		if domain.Day(p.Created).Equal(target) {
			delete(s.data, key)
		}
	}
	return nil
}

// Count returns the number of queued entries.
func (s *PendingPercentileStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

var _ storage.PendingPercentileStore = (*PendingPercentileStore)(nil)
