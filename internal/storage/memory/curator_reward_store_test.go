package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

func TestCuratorRewardStore_SetValueOnce(t *testing.T) {
	store := NewCuratorRewardStore()
	ctx := context.Background()

	rt := time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC)
	reward := &domain.CuratorReward{Author: "alice", Permlink: "p1", Curator: "bob", RewardTime: rt, Vests: 2000}
	if err := store.Insert(ctx, reward); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	changed, err := store.SetValue(ctx, "alice", "p1", "bob", rt, 1.25, 5.0)
	if err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if !changed {
		t.Fatal("expected first SetValue to change the row")
	}

	changed, err = store.SetValue(ctx, "alice", "p1", "bob", rt, 9.99, 1.0)
	if err != nil {
		t.Fatalf("second SetValue failed: %v", err)
	}
	if changed {
		t.Error("expected second SetValue to be a no-op")
	}

	unvalued, _ := store.ListUnvalued(ctx, 0)
	if len(unvalued) != 0 {
		t.Errorf("expected no unvalued rewards, got %d", len(unvalued))
	}
}

func TestCuratorRewardStore_SumVestsByPost(t *testing.T) {
	store := NewCuratorRewardStore()
	ctx := context.Background()

	rt := time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC)
	rewards := []*domain.CuratorReward{
		{Author: "alice", Permlink: "p1", Curator: "bob", RewardTime: rt, Vests: 2000},
		{Author: "alice", Permlink: "p1", Curator: "carol", RewardTime: rt, Vests: 3000},
		{Author: "alice", Permlink: "p2", Curator: "bob", RewardTime: rt, Vests: 777},
	}
	for _, r := range rewards {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	sum, err := store.SumVestsByPost(ctx, "alice", "p1")
	if err != nil {
		t.Fatalf("SumVestsByPost failed: %v", err)
	}
	if sum != 5000 {
		t.Errorf("expected 5000 vests, got %d", sum)
	}
}

func TestCuratorRewardStore_EfficiencyLifecycle(t *testing.T) {
	store := NewCuratorRewardStore()
	ctx := context.Background()

	rt := time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC)
	good := &domain.CuratorReward{Author: "alice", Permlink: "p1", Curator: "bob", RewardTime: rt, Vests: 2000}
	bad := &domain.CuratorReward{Author: "alice", Permlink: "p1", Curator: "mallory", RewardTime: rt, Vests: 10}
	for _, r := range []*domain.CuratorReward{good, bad} {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	candidates, _ := store.ListEfficiencyCandidates(ctx, 0)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	if _, err := store.SetEfficiency(ctx, "alice", "p1", "bob", rt, 10500); err != nil {
		t.Fatalf("SetEfficiency failed: %v", err)
	}
	if err := store.MarkEfficiencyDropped(ctx, "alice", "p1", "mallory", rt); err != nil {
		t.Fatalf("MarkEfficiencyDropped failed: %v", err)
	}

	// Dropped and scored rewards never come back as candidates.
	candidates, _ = store.ListEfficiencyCandidates(ctx, 0)
	if len(candidates) != 0 {
		t.Errorf("expected 0 candidates after processing, got %d", len(candidates))
	}
}

func TestCuratorRewardStore_ListEfficienciesByCurator_Window(t *testing.T) {
	store := NewCuratorRewardStore()
	ctx := context.Background()

	anchor := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	entries := []struct {
		permlink string
		offset   time.Duration
		eff      int64
	}{
		{"p1", -2 * 24 * time.Hour, 9000},
		{"p2", -6 * 24 * time.Hour, 11000},
		{"p3", -9 * 24 * time.Hour, 5000}, // outside a 7-day window
	}
	for _, e := range entries {
		rt := anchor.Add(e.offset)
		r := &domain.CuratorReward{Author: "alice", Permlink: e.permlink, Curator: "bob", RewardTime: rt, Vests: 1}
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if _, err := store.SetEfficiency(ctx, "alice", e.permlink, "bob", rt, e.eff); err != nil {
			t.Fatalf("SetEfficiency failed: %v", err)
		}
	}

	got, err := store.ListEfficienciesByCurator(ctx, "bob", anchor.AddDate(0, 0, -7), anchor)
	if err != nil {
		t.Fatalf("ListEfficienciesByCurator failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 efficiencies in window, got %d", len(got))
	}
}

func TestCuratorRewardStore_DuplicateKey(t *testing.T) {
	store := NewCuratorRewardStore()
	ctx := context.Background()

	reward := &domain.CuratorReward{Author: "alice", Permlink: "p1", Curator: "bob", RewardTime: time.Now().UTC(), Vests: 1}
	if err := store.Insert(ctx, reward); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if err := store.Insert(ctx, reward); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}
