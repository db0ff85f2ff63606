package postgres

import (
	"context"
	"fmt"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// PriceStore implements storage.PriceStore using PostgreSQL.
type PriceStore struct {
	pool *Pool
}

// NewPriceStore creates a new PriceStore.
func NewPriceStore(pool *Pool) *PriceStore {
	return &PriceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceStore = (*PriceStore)(nil)

// Upsert inserts or replaces the tick for its date.
func (s *PriceStore) Upsert(ctx context.Context, tick *domain.PriceTick) error {
	query := `
		INSERT INTO price_history (date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`

	_, err := s.pool.Exec(ctx, query,
		domain.Day(tick.Date), tick.Open, tick.High, tick.Low, tick.Close, tick.Volume)
	if err != nil {
		return fmt.Errorf("upsert price tick: %w", err)
	}
	return nil
}

// GetByDate retrieves the tick for a UTC calendar day.
func (s *PriceStore) GetByDate(ctx context.Context, day time.Time) (*domain.PriceTick, error) {
	query := `
		SELECT date, open, high, low, close, volume
		FROM price_history
		WHERE date = $1
	`

	var tick domain.PriceTick
	err := s.pool.QueryRow(ctx, query, domain.Day(day)).Scan(
		&tick.Date, &tick.Open, &tick.High, &tick.Low, &tick.Close, &tick.Volume)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get price tick by date: %w", err)
	}
	tick.Date = tick.Date.UTC()
	return &tick, nil
}

// GetAll retrieves all ticks ordered by date ASC.
func (s *PriceStore) GetAll(ctx context.Context) ([]*domain.PriceTick, error) {
	query := `
		SELECT date, open, high, low, close, volume
		FROM price_history
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all price ticks: %w", err)
	}
	defer rows.Close()

	var ticks []*domain.PriceTick
	for rows.Next() {
		var tick domain.PriceTick
		if err := rows.Scan(&tick.Date, &tick.Open, &tick.High, &tick.Low, &tick.Close, &tick.Volume); err != nil {
			return nil, fmt.Errorf("scan price tick row: %w", err)
		}
		tick.Date = tick.Date.UTC()
		ticks = append(ticks, &tick)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price tick rows: %w", err)
	}
	return ticks, nil
}
