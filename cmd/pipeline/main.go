// Package main runs the full cascade end to end on in-memory stores
// with a small synthetic event stream, then prints the resulting
// report. Useful for demos and smoke checks without any database.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/efficiency"
	"steem-curation-lab/internal/engine"
	"steem-curation-lab/internal/history"
	"steem-curation-lab/internal/ingestion"
	"steem-curation-lab/internal/percentile"
	"steem-curation-lab/internal/reporting"
	"steem-curation-lab/internal/storage/memory"
	"steem-curation-lab/internal/valuation"
)

func main() {
	ctx := context.Background()

	accounts := memory.NewAccountStore()
	prices := memory.NewPriceStore()
	posts := memory.NewPostStore()
	votes := memory.NewVoteStore()
	authorRewards := memory.NewAuthorRewardStore()
	curatorRewards := memory.NewCuratorRewardStore()
	beneficiaryRewards := memory.NewBeneficiaryRewardStore()
	beneficiaries := memory.NewBeneficiaryStore()
	comments := memory.NewCommentStore()
	resteems := memory.NewResteemStore()
	pendingPercentiles := memory.NewPendingPercentileStore()
	pendingVotes := memory.NewPendingVoteHistoryStore()
	authorHistories := memory.NewAuthorHistoryStore()
	curatorHistories := memory.NewCuratorHistoryStore()

	curatorAggregator := history.NewCuratorAggregator(pendingVotes, curatorRewards, curatorHistories,
		history.CuratorOptions{})
	defer curatorAggregator.Stop()

	eng := engine.New(engine.Options{
		Finalizer: percentile.NewFinalizer(posts, pendingPercentiles),
		Valuation: valuation.NewEngine(posts, prices, authorRewards, curatorRewards, beneficiaryRewards,
			valuation.Options{}),
		Efficiency:             efficiency.NewCalculator(votes, curatorRewards, efficiency.Options{}),
		CuratorHistory:         curatorAggregator,
		PendingPercentileStore: pendingPercentiles,
		PendingVoteStore:       pendingVotes,
	})

	applier := ingestion.NewApplier(ingestion.ApplierOptions{
		AccountStore:           accounts,
		PriceStore:             prices,
		PostStore:              posts,
		VoteStore:              votes,
		AuthorRewardStore:      authorRewards,
		CuratorRewardStore:     curatorRewards,
		BeneficiaryRewardStore: beneficiaryRewards,
		BeneficiaryStore:       beneficiaries,
		CommentStore:           comments,
		ResteemStore:           resteems,
		PendingPercentileStore: pendingPercentiles,
		PendingVoteStore:       pendingVotes,
		AuthorHistory:          history.NewAuthorAggregator(posts, authorHistories),
	})

	result, err := applier.Apply(ctx, syntheticBatch())
	if err != nil {
		log.Fatalf("apply batch: %v", err)
	}
	fmt.Printf("ingested: applied=%d duplicates=%d rejected=%d deferred=%d\n",
		result.Applied, result.Duplicates, result.Rejected, result.Deferred)

	run, err := eng.RunOnce(ctx)
	if err != nil {
		log.Fatalf("cascade: %v", err)
	}
	fmt.Printf("cascade: days=%d posts=%d valued=%d scored=%d snapshots=%d\n",
		run.DaysFinalized, run.PostsFinalized, run.RewardsValued(), run.Scored, run.SnapshotsWritten)

	report, err := reporting.NewGenerator(reporting.GeneratorOptions{
		PriceStore:             prices,
		AuthorHistoryStore:     authorHistories,
		CuratorHistoryStore:    curatorHistories,
		PendingPercentileStore: pendingPercentiles,
		PendingVoteStore:       pendingVotes,
		WindowDays:             7,
	}).Generate(ctx)
	if err != nil {
		log.Fatalf("generate report: %v", err)
	}
	fmt.Println(reporting.RenderMarkdown(report))
}

// syntheticBatch builds one week of activity: five posts paying out on
// day one, a watermark post the next day, votes, rewards a week later,
// and the price ticks the valuation needs.
func syntheticBatch() *ingestion.Batch {
	day1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	rewardTime := day1.AddDate(0, 0, 7).Add(6 * time.Hour)

	batch := &ingestion.Batch{}

	for _, name := range []string{"alice", "bob", "carol"} {
		batch.Accounts = append(batch.Accounts, &domain.Account{
			Name:    name,
			Created: day1.AddDate(-1, 0, 0),
		})
	}

	for d := 0; d <= 8; d++ {
		batch.PriceTicks = append(batch.PriceTicks, &domain.PriceTick{
			Date: day1.AddDate(0, 0, d),
			Open: 0.24, High: 0.26, Low: 0.23, Close: 0.25, Volume: 1000,
		})
	}

	values := []float64{5, 1, 4, 2, 3}
	for i, value := range values {
		permlink := fmt.Sprintf("post-%d", i+1)
		created := day1.Add(time.Duration(i+1) * time.Hour)
		batch.Posts = append(batch.Posts, &domain.Post{
			Author: "alice", Permlink: permlink, Created: created, Category: "travel",
		})
		batch.Votes = append(batch.Votes, &domain.Vote{
			Author: "alice", Permlink: permlink, Voter: "carol",
			Time: created.Add(30 * time.Minute), Weight: 100, Rshares: 1000,
		})
		batch.AuthorRewards = append(batch.AuthorRewards, &domain.AuthorReward{
			Author: "alice", Permlink: permlink, RewardTime: rewardTime, Vests: 2000,
		})
		batch.CuratorRewards = append(batch.CuratorRewards, &domain.CuratorReward{
			Author: "alice", Permlink: permlink, Curator: "carol",
			RewardTime: rewardTime, VoteTime: created.Add(30 * time.Minute), Vests: 1000,
		})
		batch.Payouts = append(batch.Payouts, &ingestion.Payout{
			Author: "alice", Permlink: permlink, TotalValue: value, Time: rewardTime,
		})
	}

	// The next-day post proves day one complete.
	batch.Posts = append(batch.Posts, &domain.Post{
		Author: "bob", Permlink: "watermark", Created: day2.Add(time.Hour),
	})
	batch.Payouts = append(batch.Payouts, &ingestion.Payout{
		Author: "bob", Permlink: "watermark", TotalValue: 1.5, Time: rewardTime,
	})

	return batch
}
