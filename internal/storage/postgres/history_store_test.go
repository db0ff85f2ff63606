package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
	"steem-curation-lab/internal/storage/postgres"
)

func TestAuthorHistoryStore_AppendOnly(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewAuthorHistoryStore(pool)

	snapshot := &domain.AuthorHistory{
		Author: "alice", PostAuthor: "alice", Permlink: "p", WindowDays: 7,
		WindowStats: domain.WindowStats{Count: 3, Min: 20, Max: 80, Avg: 50, Median: 50},
	}
	require.NoError(t, store.Insert(ctx, snapshot))
	require.ErrorIs(t, store.Insert(ctx, snapshot), storage.ErrDuplicateKey)

	exists, err := store.Exists(ctx, "alice", "alice", "p", 7)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = store.Exists(ctx, "alice", "alice", "p", 14)
	require.NoError(t, err)
	require.False(t, exists)

	got, err := store.Get(ctx, "alice", "alice", "p", 7)
	require.NoError(t, err)
	require.Equal(t, 50.0, got.Avg)

	_, err = store.Get(ctx, "alice", "alice", "p", 14)
	require.ErrorIs(t, err, storage.ErrNotFound)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestCuratorHistoryStore_AppendOnly(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewCuratorHistoryStore(pool)

	snapshot := &domain.CuratorHistory{
		Voter: "carol", PostAuthor: "alice", Permlink: "p", WindowDays: 60,
		WindowStats: domain.WindowStats{Count: 2, Min: 8000, Max: 12000, Avg: 10000, Median: 8000},
	}
	require.NoError(t, store.Insert(ctx, snapshot))
	require.ErrorIs(t, store.Insert(ctx, snapshot), storage.ErrDuplicateKey)

	// An empty window still materializes a zeroed row.
	require.NoError(t, store.Insert(ctx, &domain.CuratorHistory{
		Voter: "carol", PostAuthor: "alice", Permlink: "p", WindowDays: 90,
	}))

	got, err := store.Get(ctx, "carol", "alice", "p", 90)
	require.NoError(t, err)
	require.Zero(t, got.Count)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestPriceStore_UpsertAndTruncation(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewPriceStore(pool)

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Upsert(ctx, &domain.PriceTick{
		Date: day.Add(15 * time.Hour), Open: 0.2, High: 0.3, Low: 0.1, Close: 0.25, Volume: 100,
	}))

	// Same day replaces.
	require.NoError(t, store.Upsert(ctx, &domain.PriceTick{
		Date: day, Open: 0.2, High: 0.35, Low: 0.1, Close: 0.3, Volume: 150,
	}))

	got, err := store.GetByDate(ctx, day.Add(23*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 0.3, got.Close)
	require.Equal(t, int64(150), got.Volume)

	_, err = store.GetByDate(ctx, day.AddDate(0, 0, 1))
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Upsert(ctx, &domain.PriceTick{
		Date: day.AddDate(0, 0, -1), Open: 0.2, High: 0.2, Low: 0.2, Close: 0.2, Volume: 10,
	}))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.True(t, all[0].Date.Before(all[1].Date))
}
