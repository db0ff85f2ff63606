package clickhouse

import (
	"context"
	"fmt"

	"steem-curation-lab/internal/domain"
)

// HistorySnapshotStore mirrors author and curator rolling-window
// snapshots into ClickHouse. Both backing tables are
// ReplacingMergeTree, so full re-exports dedupe on merge.
type HistorySnapshotStore struct {
	conn *Conn
}

// NewHistorySnapshotStore creates a new HistorySnapshotStore.
func NewHistorySnapshotStore(conn *Conn) *HistorySnapshotStore {
	return &HistorySnapshotStore{conn: conn}
}

// InsertAuthorBulk mirrors a batch of author snapshots.
func (s *HistorySnapshotStore) InsertAuthorBulk(ctx context.Context, snapshots []*domain.AuthorHistory) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO author_history_snapshots (author, post_author, permlink, window_days,
			count, min, max, avg, median)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, h := range snapshots {
		err = batch.Append(h.Author, h.PostAuthor, h.Permlink, uint16(h.WindowDays),
			uint32(h.Count), h.Min, h.Max, h.Avg, h.Median)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// InsertCuratorBulk mirrors a batch of curator snapshots.
func (s *HistorySnapshotStore) InsertCuratorBulk(ctx context.Context, snapshots []*domain.CuratorHistory) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO curator_history_snapshots (voter, post_author, permlink, window_days,
			count, min, max, avg, median)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, h := range snapshots {
		err = batch.Append(h.Voter, h.PostAuthor, h.Permlink, uint16(h.WindowDays),
			uint32(h.Count), h.Min, h.Max, h.Avg, h.Median)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// CountAuthorSnapshots returns the number of mirrored author snapshots.
func (s *HistorySnapshotStore) CountAuthorSnapshots(ctx context.Context) (uint64, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count() FROM author_history_snapshots FINAL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count author snapshots: %w", err)
	}
	return count, nil
}

// CountCuratorSnapshots returns the number of mirrored curator snapshots.
func (s *HistorySnapshotStore) CountCuratorSnapshots(ctx context.Context) (uint64, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count() FROM curator_history_snapshots FINAL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count curator snapshots: %w", err)
	}
	return count, nil
}
