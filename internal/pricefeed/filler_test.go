package pricefeed

import (
	"context"
	"errors"
	"testing"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage/memory"
)

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func newFillerFixture(fetch FetcherFunc, now time.Time) (*Filler, *memory.PriceStore, *memory.AuthorRewardStore) {
	prices := memory.NewPriceStore()
	authorRewards := memory.NewAuthorRewardStore()
	filler := NewFiller(FillerOptions{
		PriceStore:             prices,
		AuthorRewardStore:      authorRewards,
		CuratorRewardStore:     memory.NewCuratorRewardStore(),
		BeneficiaryRewardStore: memory.NewBeneficiaryRewardStore(),
		Fetcher:                fetch,
		Now:                    func() time.Time { return now },
	})
	return filler, prices, authorRewards
}

func TestFiller_FillsClosedMissingDates(t *testing.T) {
	ctx := context.Background()
	var fetched []time.Time
	fetch := FetcherFunc(func(_ context.Context, d time.Time) (*domain.PriceTick, error) {
		fetched = append(fetched, d)
		return &domain.PriceTick{Date: d, Close: 0.25}, nil
	})

	filler, prices, authorRewards := newFillerFixture(fetch, day(10).Add(6*time.Hour))

	// Rewards on three days: one already priced, one missing and
	// closed, one missing but still today.
	for i, d := range []time.Time{day(7), day(8), day(10)} {
		r := &domain.AuthorReward{Author: "alice", Permlink: "p1", RewardTime: d.Add(time.Duration(i) * time.Hour), Vests: 100}
		if err := authorRewards.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if err := prices.Upsert(ctx, &domain.PriceTick{Date: day(7), Close: 0.2}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	filled, err := filler.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if filled != 1 {
		t.Fatalf("expected 1 date filled, got %d", filled)
	}
	if len(fetched) != 1 || !fetched[0].Equal(day(8)) {
		t.Errorf("expected fetch only for the closed missing day, got %v", fetched)
	}

	if _, err := prices.GetByDate(ctx, day(8)); err != nil {
		t.Errorf("filled date must be stored: %v", err)
	}
	if _, err := prices.GetByDate(ctx, day(10)); err == nil {
		t.Error("open day must stay unfilled")
	}
}

func TestFiller_FetchFailureRetriesNextRun(t *testing.T) {
	ctx := context.Background()
	calls := 0
	fetch := FetcherFunc(func(_ context.Context, d time.Time) (*domain.PriceTick, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("provider down")
		}
		return &domain.PriceTick{Date: d, Close: 0.3}, nil
	})

	filler, prices, authorRewards := newFillerFixture(fetch, day(10))
	if err := authorRewards.Insert(ctx, &domain.AuthorReward{Author: "alice", Permlink: "p1", RewardTime: day(5), Vests: 100}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	filled, err := filler.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if filled != 0 {
		t.Fatalf("failed fetch must fill nothing, got %d", filled)
	}

	filled, err = filler.Run(ctx)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if filled != 1 {
		t.Fatalf("expected retry to fill the date, got %d", filled)
	}
	if _, err := prices.GetByDate(ctx, day(5)); err != nil {
		t.Errorf("date must be stored after retry: %v", err)
	}
}

func TestFiller_NoMissingDatesIsNoOp(t *testing.T) {
	ctx := context.Background()
	fetch := FetcherFunc(func(context.Context, time.Time) (*domain.PriceTick, error) {
		t.Error("fetch must not be called")
		return nil, nil
	})

	filler, prices, authorRewards := newFillerFixture(fetch, day(10))
	if err := authorRewards.Insert(ctx, &domain.AuthorReward{Author: "alice", Permlink: "p1", RewardTime: day(5), Vests: 100}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := prices.Upsert(ctx, &domain.PriceTick{Date: day(5), Close: 0.2}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	filled, err := filler.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if filled != 0 {
		t.Errorf("expected no fills, got %d", filled)
	}
}

func TestParseTick(t *testing.T) {
	tick, err := parseTick([]byte(`{"date":"2025-06-01","open":0.24,"high":0.27,"low":0.23,"close":0.26,"volume":120000}`))
	if err != nil {
		t.Fatalf("parseTick failed: %v", err)
	}
	if !tick.Date.Equal(day(1)) || tick.Close != 0.26 {
		t.Errorf("unexpected tick: %+v", tick)
	}

	if _, err := parseTick([]byte(`{"date":"junk"}`)); err == nil {
		t.Error("expected error for bad date")
	}
	if _, err := parseTick([]byte(`{"date":"2025-06-01","close":0}`)); err == nil {
		t.Error("expected error for non-positive close")
	}
	if _, err := parseTick([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
