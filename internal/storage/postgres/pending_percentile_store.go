package postgres

import (
	"context"
	"fmt"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// PendingPercentileStore implements storage.PendingPercentileStore
// using PostgreSQL.
type PendingPercentileStore struct {
	pool *Pool
}

// NewPendingPercentileStore creates a new PendingPercentileStore.
func NewPendingPercentileStore(pool *Pool) *PendingPercentileStore {
	return &PendingPercentileStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PendingPercentileStore = (*PendingPercentileStore)(nil)

// Enqueue adds an entry unless the post already has one open.
func (s *PendingPercentileStore) Enqueue(ctx context.Context, p *domain.PendingPercentile) error {
	query := `
		INSERT INTO pending_percentiles (author, permlink, total_value, created)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (author, permlink) DO NOTHING
	`

	_, err := s.pool.Exec(ctx, query, p.Author, p.Permlink, p.TotalValue, p.Created)
	if err != nil {
		return fmt.Errorf("enqueue pending percentile: %w", err)
	}
	return nil
}

// MaxDay returns the latest UTC creation day present in the queue.
func (s *PendingPercentileStore) MaxDay(ctx context.Context) (time.Time, bool, error) {
	query := `SELECT MAX(created) FROM pending_percentiles`

	var max *time.Time
	if err := s.pool.QueryRow(ctx, query).Scan(&max); err != nil {
		return time.Time{}, false, fmt.Errorf("get pending percentile max day: %w", err)
	}
	if max == nil {
		return time.Time{}, false, nil
	}
	return domain.Day(*max), true, nil
}

// ListDaysBefore returns the distinct UTC creation days strictly before
// the watermark day, ordered ASC.
func (s *PendingPercentileStore) ListDaysBefore(ctx context.Context, watermark time.Time) ([]time.Time, error) {
	query := `
		SELECT DISTINCT date_trunc('day', created AT TIME ZONE 'UTC') AT TIME ZONE 'UTC' AS day
		FROM pending_percentiles
		WHERE created < $1
		ORDER BY day ASC
	`
	return collectDays(ctx, s.pool, query, domain.Day(watermark))
}

// ListByDay retrieves all entries whose post was created on a day.
func (s *PendingPercentileStore) ListByDay(ctx context.Context, day time.Time) ([]*domain.PendingPercentile, error) {
	query := `
		SELECT author, permlink, total_value, created
		FROM pending_percentiles
		WHERE created >= $1 AND created < $2
		ORDER BY created ASC
	`

	start := domain.Day(day)
	rows, err := s.pool.Query(ctx, query, start, start.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("list pending percentiles by day: %w", err)
	}
	defer rows.Close()

	var entries []*domain.PendingPercentile
	for rows.Next() {
		var p domain.PendingPercentile
		if err := rows.Scan(&p.Author, &p.Permlink, &p.TotalValue, &p.Created); err != nil {
			return nil, fmt.Errorf("scan pending percentile row: %w", err)
		}
		p.Created = p.Created.UTC()
		entries = append(entries, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending percentile rows: %w", err)
	}
	return entries, nil
}

// DeleteByDay removes all entries for a day after finalization.
func (s *PendingPercentileStore) DeleteByDay(ctx context.Context, day time.Time) error {
	start := domain.Day(day)
	_, err := s.pool.Exec(ctx,
		`DELETE FROM pending_percentiles WHERE created >= $1 AND created < $2`,
		start, start.Add(24*time.Hour))
	if err != nil {
		return fmt.Errorf("delete pending percentiles by day: %w", err)
	}
	return nil
}

// Count returns the number of queued entries.
func (s *PendingPercentileStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pending_percentiles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending percentiles: %w", err)
	}
	return count, nil
}
