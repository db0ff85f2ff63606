package history

import (
	"context"
	"testing"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage/memory"
)

func day(d int) time.Time {
	return time.Date(2025, 6, d, 12, 0, 0, 0, time.UTC)
}

func finalizedPost(t *testing.T, posts *memory.PostStore, permlink string, created time.Time, percentile int) {
	t.Helper()
	ctx := context.Background()
	if err := posts.Insert(ctx, &domain.Post{Author: "alice", Permlink: permlink, Created: created}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := posts.Finalize(ctx, "alice", permlink, 1.0, percentile); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
}

func TestAuthorAggregator_SnapshotsEveryWindow(t *testing.T) {
	posts := memory.NewPostStore()
	histories := memory.NewAuthorHistoryStore()
	ctx := context.Background()

	// Track record: four finalized posts 2, 5, 10, and 40 days back.
	anchor := day(41)
	finalizedPost(t, posts, "old-40d", anchor.AddDate(0, 0, -40), 90)
	finalizedPost(t, posts, "old-10d", anchor.AddDate(0, 0, -10), 30)
	finalizedPost(t, posts, "old-5d", anchor.AddDate(0, 0, -5), 10)
	finalizedPost(t, posts, "old-2d", anchor.AddDate(0, 0, -2), 20)
	if err := posts.Insert(ctx, &domain.Post{Author: "alice", Permlink: "anchor", Created: anchor}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	agg := NewAuthorAggregator(posts, histories)
	written, err := agg.ComputeForPost(ctx, "alice", "anchor", anchor)
	if err != nil {
		t.Fatalf("ComputeForPost failed: %v", err)
	}
	if written != len(domain.AuthorWindows) {
		t.Fatalf("expected %d snapshots, got %d", len(domain.AuthorWindows), written)
	}

	// 7d window sees {10,20}: lower median 10.
	week, err := histories.Get(ctx, "alice", "alice", "anchor", 7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if week.Count != 2 || week.Median != 10 || week.Avg != 15 {
		t.Errorf("7d window: %+v", week.WindowStats)
	}

	// 14d window adds the 10-day-old post: {10,20,30}.
	fortnight, _ := histories.Get(ctx, "alice", "alice", "anchor", 14)
	if fortnight.Count != 3 || fortnight.Median != 20 {
		t.Errorf("14d window: %+v", fortnight.WindowStats)
	}

	// 90d window sees everything: {10,20,30,90}, lower median 20.
	quarter, _ := histories.Get(ctx, "alice", "alice", "anchor", 90)
	if quarter.Count != 4 || quarter.Median != 20 || quarter.Max != 90 {
		t.Errorf("90d window: %+v", quarter.WindowStats)
	}
}

func TestAuthorAggregator_IgnoresUnfinalizedPosts(t *testing.T) {
	posts := memory.NewPostStore()
	histories := memory.NewAuthorHistoryStore()
	ctx := context.Background()

	anchor := day(10)
	finalizedPost(t, posts, "ranked", anchor.AddDate(0, 0, -3), 50)
	if err := posts.Insert(ctx, &domain.Post{Author: "alice", Permlink: "unranked", Created: anchor.AddDate(0, 0, -2)}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	agg := NewAuthorAggregator(posts, histories)
	if _, err := agg.ComputeForPost(ctx, "alice", "anchor", anchor); err != nil {
		t.Fatalf("ComputeForPost failed: %v", err)
	}

	week, _ := histories.Get(ctx, "alice", "alice", "anchor", 7)
	if week.Count != 1 || week.Median != 50 {
		t.Errorf("unfinalized post must not count: %+v", week.WindowStats)
	}
}

func TestAuthorAggregator_SnapshotsAreImmutable(t *testing.T) {
	posts := memory.NewPostStore()
	histories := memory.NewAuthorHistoryStore()
	ctx := context.Background()

	anchor := day(10)
	finalizedPost(t, posts, "first", anchor.AddDate(0, 0, -3), 40)

	agg := NewAuthorAggregator(posts, histories)
	if _, err := agg.ComputeForPost(ctx, "alice", "anchor", anchor); err != nil {
		t.Fatalf("ComputeForPost failed: %v", err)
	}

	// A post finalized after the snapshot must not alter it.
	finalizedPost(t, posts, "late", anchor.AddDate(0, 0, -1), 99)
	written, err := agg.ComputeForPost(ctx, "alice", "anchor", anchor)
	if err != nil {
		t.Fatalf("second ComputeForPost failed: %v", err)
	}
	if written != 0 {
		t.Fatalf("existing snapshots must not be rewritten, wrote %d", written)
	}

	week, _ := histories.Get(ctx, "alice", "alice", "anchor", 7)
	if week.Count != 1 || week.Max != 40 {
		t.Errorf("snapshot changed after late finalization: %+v", week.WindowStats)
	}
}

func seedEfficiency(t *testing.T, curators *memory.CuratorRewardStore, permlink string, rewardTime time.Time, score int64) {
	t.Helper()
	ctx := context.Background()
	r := &domain.CuratorReward{
		Author: "someone", Permlink: permlink, Curator: "carol",
		RewardTime: rewardTime, VoteTime: rewardTime.AddDate(0, 0, -7), Vests: 100,
	}
	if err := curators.Insert(ctx, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := curators.SetEfficiency(ctx, "someone", permlink, "carol", rewardTime, score); err != nil {
		t.Fatalf("SetEfficiency failed: %v", err)
	}
}

func TestCuratorAggregator_DrainsQueue(t *testing.T) {
	pending := memory.NewPendingVoteHistoryStore()
	curators := memory.NewCuratorRewardStore()
	histories := memory.NewCuratorHistoryStore()
	ctx := context.Background()

	anchor := day(30)
	// carol's scored rewards 3 and 20 days before the anchor post.
	seedEfficiency(t, curators, "earlier-1", anchor.AddDate(0, 0, -3), 12000)
	seedEfficiency(t, curators, "earlier-2", anchor.AddDate(0, 0, -20), 8000)

	if err := pending.Enqueue(ctx, &domain.PendingVoteHistory{Author: "alice", Permlink: "anchor", Voter: "carol", Created: anchor}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	agg := NewCuratorAggregator(pending, curators, histories, CuratorOptions{Concurrency: 2})
	defer agg.Stop()

	result, err := agg.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.PairsProcessed != 1 {
		t.Fatalf("expected 1 pair processed, got %+v", result)
	}
	if result.SnapshotsWritten != len(domain.CuratorWindows) {
		t.Fatalf("expected %d snapshots, got %d", len(domain.CuratorWindows), result.SnapshotsWritten)
	}

	// 7d window sees only the 3-day-old score.
	week, err := histories.Get(ctx, "carol", "alice", "anchor", 7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if week.Count != 1 || week.Median != 12000 {
		t.Errorf("7d window: %+v", week.WindowStats)
	}

	// 28d window sees both: lower median of {8000,12000} is 8000.
	month, _ := histories.Get(ctx, "carol", "alice", "anchor", 28)
	if month.Count != 2 || month.Median != 8000 || month.Avg != 10000 {
		t.Errorf("28d window: %+v", month.WindowStats)
	}

	// Drained pairs leave the queue.
	count, _ := pending.Count(ctx)
	if count != 0 {
		t.Errorf("queue must be empty after drain, %d left", count)
	}
}

func TestCuratorAggregator_EmptyTrackRecordStillDrains(t *testing.T) {
	pending := memory.NewPendingVoteHistoryStore()
	curators := memory.NewCuratorRewardStore()
	histories := memory.NewCuratorHistoryStore()
	ctx := context.Background()

	if err := pending.Enqueue(ctx, &domain.PendingVoteHistory{Author: "alice", Permlink: "p1", Voter: "newbie", Created: day(5)}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	agg := NewCuratorAggregator(pending, curators, histories, CuratorOptions{})
	defer agg.Stop()

	result, err := agg.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.PairsProcessed != 1 {
		t.Fatalf("expected drain despite empty record, got %+v", result)
	}

	week, err := histories.Get(ctx, "newbie", "alice", "p1", 7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if week.Count != 0 {
		t.Errorf("expected zeroed snapshot, got %+v", week.WindowStats)
	}
	count, _ := pending.Count(ctx)
	if count != 0 {
		t.Errorf("queue must be empty, %d left", count)
	}
}

func TestCuratorAggregator_RerunIsIdempotent(t *testing.T) {
	pending := memory.NewPendingVoteHistoryStore()
	curators := memory.NewCuratorRewardStore()
	histories := memory.NewCuratorHistoryStore()
	ctx := context.Background()

	anchor := day(15)
	seedEfficiency(t, curators, "earlier", anchor.AddDate(0, 0, -2), 9000)
	if err := pending.Enqueue(ctx, &domain.PendingVoteHistory{Author: "alice", Permlink: "p1", Voter: "carol", Created: anchor}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	agg := NewCuratorAggregator(pending, curators, histories, CuratorOptions{})
	defer agg.Stop()

	if _, err := agg.Run(ctx); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}

	// Re-enqueueing the same pair after scores changed must not touch
	// the existing snapshots.
	seedEfficiency(t, curators, "late", anchor.AddDate(0, 0, -1), 1)
	if err := pending.Enqueue(ctx, &domain.PendingVoteHistory{Author: "alice", Permlink: "p1", Voter: "carol", Created: anchor}); err != nil {
		t.Fatalf("re-Enqueue failed: %v", err)
	}

	result, err := agg.Run(ctx)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if result.SnapshotsWritten != 0 {
		t.Errorf("rerun must not write snapshots, wrote %d", result.SnapshotsWritten)
	}

	week, _ := histories.Get(ctx, "carol", "alice", "p1", 7)
	if week.Count != 1 || week.Median != 9000 {
		t.Errorf("snapshot changed on rerun: %+v", week.WindowStats)
	}
}
