package clickhouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"steem-curation-lab/internal/domain"
	chstore "steem-curation-lab/internal/storage/clickhouse"
)

func TestFinalizedPostStore_InsertBulkSkipsUnfinalized(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := chstore.NewFinalizedPostStore(conn)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	value := 12.5
	pct := 80
	posts := []*domain.Post{
		{Author: "alice", Permlink: "done", Created: created, Category: "travel",
			TotalValue: &value, Percentile: &pct},
		{Author: "alice", Permlink: "open", Created: created.Add(time.Hour)},
	}

	inserted, err := store.InsertBulk(ctx, posts)
	require.NoError(t, err)
	require.Equal(t, 1, inserted)

	got, err := store.GetByAuthor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "done", got[0].Permlink)
	require.Equal(t, 12.5, *got[0].TotalValue)
	require.Equal(t, 80, *got[0].Percentile)

	count, err := store.CountByDay(ctx, created)
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)
}

func TestHistorySnapshotStore_ReexportDedupes(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := chstore.NewHistorySnapshotStore(conn)

	snapshot := &domain.AuthorHistory{
		Author: "alice", PostAuthor: "alice", Permlink: "p", WindowDays: 7,
		WindowStats: domain.WindowStats{Count: 3, Min: 20, Max: 80, Avg: 50, Median: 50},
	}
	require.NoError(t, store.InsertAuthorBulk(ctx, []*domain.AuthorHistory{snapshot}))
	// A second full export re-sends the same row.
	require.NoError(t, store.InsertAuthorBulk(ctx, []*domain.AuthorHistory{snapshot}))

	count, err := store.CountAuthorSnapshots(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)

	require.NoError(t, store.InsertCuratorBulk(ctx, []*domain.CuratorHistory{{
		Voter: "carol", PostAuthor: "alice", Permlink: "p", WindowDays: 60,
		WindowStats: domain.WindowStats{Count: 2, Min: 8000, Max: 12000, Avg: 10000, Median: 8000},
	}}))

	count, err = store.CountCuratorSnapshots(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)
}
