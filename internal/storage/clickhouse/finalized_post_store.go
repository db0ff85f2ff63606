package clickhouse

import (
	"context"
	"fmt"
	"time"

	"steem-curation-lab/internal/domain"
)

// FinalizedPostStore mirrors finalized posts into ClickHouse. The
// backing table is a ReplacingMergeTree keyed on (author, permlink),
// so re-exporting the same rows is harmless.
type FinalizedPostStore struct {
	conn *Conn
}

// NewFinalizedPostStore creates a new FinalizedPostStore.
func NewFinalizedPostStore(conn *Conn) *FinalizedPostStore {
	return &FinalizedPostStore{conn: conn}
}

// InsertBulk mirrors a batch of finalized posts. Posts that are not
// finalized yet are skipped.
func (s *FinalizedPostStore) InsertBulk(ctx context.Context, posts []*domain.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO finalized_posts (author, permlink, created, category, total_value, percentile)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare batch: %w", err)
	}

	inserted := 0
	for _, p := range posts {
		if p.TotalValue == nil || p.Percentile == nil {
			continue
		}
		err = batch.Append(p.Author, p.Permlink, p.Created, p.Category,
			*p.TotalValue, uint8(*p.Percentile))
		if err != nil {
			return 0, fmt.Errorf("append to batch: %w", err)
		}
		inserted++
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("send batch: %w", err)
	}
	return inserted, nil
}

// GetByAuthor retrieves an author's mirrored posts ordered by creation
// time ASC.
func (s *FinalizedPostStore) GetByAuthor(ctx context.Context, author string) ([]*domain.Post, error) {
	query := `
		SELECT author, permlink, created, category, total_value, percentile
		FROM finalized_posts FINAL
		WHERE author = ?
		ORDER BY created ASC
	`

	rows, err := s.conn.Query(ctx, query, author)
	if err != nil {
		return nil, fmt.Errorf("query posts by author: %w", err)
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		var (
			p          domain.Post
			totalValue float64
			percentile uint8
		)
		err := rows.Scan(&p.Author, &p.Permlink, &p.Created, &p.Category, &totalValue, &percentile)
		if err != nil {
			return nil, fmt.Errorf("scan post row: %w", err)
		}
		p.Created = p.Created.UTC()
		pct := int(percentile)
		p.TotalValue = &totalValue
		p.Percentile = &pct
		posts = append(posts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post rows: %w", err)
	}
	return posts, nil
}

// CountByDay returns the number of mirrored posts created on a UTC day.
func (s *FinalizedPostStore) CountByDay(ctx context.Context, day time.Time) (uint64, error) {
	query := `
		SELECT count() FROM finalized_posts FINAL
		WHERE created >= ? AND created < ?
	`

	start := domain.Day(day)
	var count uint64
	err := s.conn.QueryRow(ctx, query, start, start.Add(24*time.Hour)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts by day: %w", err)
	}
	return count, nil
}
