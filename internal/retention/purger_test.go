package retention

import (
	"context"
	"testing"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage/memory"
)

func TestPurger_RemovesOnlyAgedPosts(t *testing.T) {
	posts := memory.NewPostStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	aged := &domain.Post{Author: "alice", Permlink: "ancient", Created: now.AddDate(0, 0, -500)}
	boundary := &domain.Post{Author: "alice", Permlink: "boundary", Created: now.AddDate(0, 0, -409)}
	recent := &domain.Post{Author: "alice", Permlink: "recent", Created: now.AddDate(0, 0, -30)}
	for _, p := range []*domain.Post{aged, boundary, recent} {
		if err := posts.Insert(ctx, p); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	purger := NewPurger(posts, Options{Now: func() time.Time { return now }})
	purged, err := purger.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 post purged, got %d", purged)
	}

	if _, err := posts.Get(ctx, "alice", "ancient"); err == nil {
		t.Error("aged post must be gone")
	}
	if _, err := posts.Get(ctx, "alice", "boundary"); err != nil {
		t.Errorf("post at the cutoff must survive: %v", err)
	}
	if _, err := posts.Get(ctx, "alice", "recent"); err != nil {
		t.Errorf("recent post must survive: %v", err)
	}
}

func TestPurger_CustomLookback(t *testing.T) {
	posts := memory.NewPostStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := posts.Insert(ctx, &domain.Post{Author: "alice", Permlink: "p1", Created: now.AddDate(0, 0, -10)}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	purger := NewPurger(posts, Options{LookbackDays: 7, Now: func() time.Time { return now }})
	purged, err := purger.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("expected purge with 7-day lookback, got %d", purged)
	}
}
