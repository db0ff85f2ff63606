package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// PriceStore is an in-memory implementation of storage.PriceStore.
type PriceStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceTick // keyed by UTC day
}

// NewPriceStore creates a new in-memory price store.
func NewPriceStore() *PriceStore {
	return &PriceStore{data: make(map[string]*domain.PriceTick)}
}

func dayKey(t time.Time) string {
	return domain.Day(t).Format("2006-01-02")
}

// Upsert inserts or replaces the tick for its date.
func (s *PriceStore) Upsert(_ context.Context, tick *domain.PriceTick) error {
	if tick == nil || tick.Date.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tickCopy := *tick
	tickCopy.Date = domain.Day(tick.Date)
	s.data[dayKey(tick.Date)] = &tickCopy
	return nil
}

// GetByDate retrieves the tick for a UTC calendar day.
func (s *PriceStore) GetByDate(_ context.Context, day time.Time) (*domain.PriceTick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tick, ok := s.data[dayKey(day)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	tickCopy := *tick
	return &tickCopy, nil
}

// GetAll retrieves all ticks ordered by date ASC.
func (s *PriceStore) GetAll(_ context.Context) ([]*domain.PriceTick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceTick
	for _, tick := range s.data {
		tickCopy := *tick
		result = append(result, &tickCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

var _ storage.PriceStore = (*PriceStore)(nil)
