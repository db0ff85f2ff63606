package valuation

import (
	"context"
	"math"
	"testing"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage/memory"
)

type fixture struct {
	posts         *memory.PostStore
	prices        *memory.PriceStore
	authors       *memory.AuthorRewardStore
	curators      *memory.CuratorRewardStore
	beneficiaries *memory.BeneficiaryRewardStore
	engine        *Engine
}

func newFixture() *fixture {
	f := &fixture{
		posts:         memory.NewPostStore(),
		prices:        memory.NewPriceStore(),
		authors:       memory.NewAuthorRewardStore(),
		curators:      memory.NewCuratorRewardStore(),
		beneficiaries: memory.NewBeneficiaryRewardStore(),
	}
	f.engine = NewEngine(f.posts, f.prices, f.authors, f.curators, f.beneficiaries, Options{})
	return f
}

var (
	created    = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rewardTime = time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC)
)

// seedPost inserts a finalized post worth totalValue with a price tick
// on the reward day.
func (f *fixture) seedPost(t *testing.T, totalValue, closePrice float64) {
	t.Helper()
	ctx := context.Background()
	if err := f.posts.Insert(ctx, &domain.Post{Author: "alice", Permlink: "p1", Created: created}); err != nil {
		t.Fatalf("Insert post failed: %v", err)
	}
	if _, err := f.posts.Finalize(ctx, "alice", "p1", totalValue, 50); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if err := f.prices.Upsert(ctx, &domain.PriceTick{Date: domain.Day(rewardTime), Close: closePrice}); err != nil {
		t.Fatalf("Upsert price failed: %v", err)
	}
}

func TestEngine_ValuesAllRewardKinds(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedPost(t, 10.0, 0.25)

	// Two curator rewards of 300 and 200 vests: totalShares = 2*500.
	curatorRewards := []*domain.CuratorReward{
		{Author: "alice", Permlink: "p1", Curator: "carol", RewardTime: rewardTime, VoteTime: created, Vests: 300},
		{Author: "alice", Permlink: "p1", Curator: "dave", RewardTime: rewardTime, VoteTime: created, Vests: 200},
	}
	for _, r := range curatorRewards {
		if err := f.curators.Insert(ctx, r); err != nil {
			t.Fatalf("Insert curator reward failed: %v", err)
		}
	}
	if err := f.authors.Insert(ctx, &domain.AuthorReward{Author: "alice", Permlink: "p1", RewardTime: rewardTime, Vests: 400}); err != nil {
		t.Fatalf("Insert author reward failed: %v", err)
	}
	if err := f.beneficiaries.Insert(ctx, &domain.BeneficiaryReward{Author: "alice", Permlink: "p1", Beneficiary: "fund", RewardTime: rewardTime, Vests: 100}); err != nil {
		t.Fatalf("Insert beneficiary reward failed: %v", err)
	}

	result, err := f.engine.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.AuthorValued != 1 || result.CuratorValued != 2 || result.BeneficiaryValued != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	// author: 400/1000 * 10 = 4 USD, 16 STEEM at 0.25.
	authorRewards, _ := f.authors.GetByPost(ctx, "alice", "p1")
	if *authorRewards[0].Value != 4.0 {
		t.Errorf("author value: expected 4.0, got %f", *authorRewards[0].Value)
	}
	if *authorRewards[0].SteemValue != 16.0 {
		t.Errorf("author steem value: expected 16.0, got %f", *authorRewards[0].SteemValue)
	}

	got, _ := f.curators.GetByPost(ctx, "alice", "p1")
	valuesByCurator := map[string]float64{}
	for _, r := range got {
		if r.Value == nil {
			t.Fatalf("curator %s left unvalued", r.Curator)
		}
		valuesByCurator[r.Curator] = *r.Value
	}
	if valuesByCurator["carol"] != 3.0 || valuesByCurator["dave"] != 2.0 {
		t.Errorf("curator values: expected carol=3.0 dave=2.0, got %v", valuesByCurator)
	}

	benRewards, _ := f.beneficiaries.GetByPost(ctx, "alice", "p1")
	if *benRewards[0].Value != 1.0 {
		t.Errorf("beneficiary value: expected 1.0, got %f", *benRewards[0].Value)
	}
}

func TestEngine_ValueConservation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedPost(t, 37.5, 0.3)

	// Author + beneficiary + curator vests together equal 2x the
	// curator sum, so valued amounts must add up to the post total.
	curatorVests := []int64{120, 80, 50} // sum 250, totalShares 500
	for i, v := range curatorVests {
		r := &domain.CuratorReward{
			Author: "alice", Permlink: "p1",
			Curator:    []string{"c1", "c2", "c3"}[i],
			RewardTime: rewardTime, VoteTime: created, Vests: v,
		}
		if err := f.curators.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if err := f.authors.Insert(ctx, &domain.AuthorReward{Author: "alice", Permlink: "p1", RewardTime: rewardTime, Vests: 200}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := f.beneficiaries.Insert(ctx, &domain.BeneficiaryReward{Author: "alice", Permlink: "p1", Beneficiary: "fund", RewardTime: rewardTime, Vests: 50}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if _, err := f.engine.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var total float64
	authorRewards, _ := f.authors.GetByPost(ctx, "alice", "p1")
	total += *authorRewards[0].Value
	curRewards, _ := f.curators.GetByPost(ctx, "alice", "p1")
	for _, r := range curRewards {
		total += *r.Value
	}
	benRewards, _ := f.beneficiaries.GetByPost(ctx, "alice", "p1")
	total += *benRewards[0].Value

	if math.Abs(total-37.5) > 1e-9 {
		t.Errorf("valued rewards must sum to the post total: got %f, want 37.5", total)
	}
}

func TestEngine_SkipsUntilPostFinalized(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if err := f.posts.Insert(ctx, &domain.Post{Author: "alice", Permlink: "p1", Created: created}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := f.prices.Upsert(ctx, &domain.PriceTick{Date: domain.Day(rewardTime), Close: 0.25}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := f.curators.Insert(ctx, &domain.CuratorReward{Author: "alice", Permlink: "p1", Curator: "carol", RewardTime: rewardTime, VoteTime: created, Vests: 100}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := f.engine.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Total() != 0 || result.Skipped == 0 {
		t.Fatalf("expected skip for unfinalized post, got %+v", result)
	}

	// Finalizing the post makes the same reward valuable on retry.
	if _, err := f.posts.Finalize(ctx, "alice", "p1", 5.0, 0); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	result, err = f.engine.Run(ctx)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if result.CuratorValued != 1 {
		t.Fatalf("expected reward valued after finalization, got %+v", result)
	}
}

func TestEngine_SkipsOnMissingPrice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if err := f.posts.Insert(ctx, &domain.Post{Author: "alice", Permlink: "p1", Created: created}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := f.posts.Finalize(ctx, "alice", "p1", 5.0, 0); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if err := f.curators.Insert(ctx, &domain.CuratorReward{Author: "alice", Permlink: "p1", Curator: "carol", RewardTime: rewardTime, VoteTime: created, Vests: 100}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := f.engine.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Total() != 0 || result.Skipped != 1 {
		t.Fatalf("expected skip with no price tick, got %+v", result)
	}
}

func TestEngine_RerunIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedPost(t, 10.0, 0.25)

	if err := f.curators.Insert(ctx, &domain.CuratorReward{Author: "alice", Permlink: "p1", Curator: "carol", RewardTime: rewardTime, VoteTime: created, Vests: 100}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if _, err := f.engine.Run(ctx); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	result, err := f.engine.Run(ctx)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if result.Total() != 0 {
		t.Errorf("rerun must value nothing, got %+v", result)
	}
}
