// Package percentile assigns day-relative value ranks to posts.
//
// Ranking is deferred until a day is provably complete: a day D is
// finalizable only once the pending queue holds an entry from a
// strictly later day. The queue's maximum day acts as the stream
// watermark; no wall-clock timers are involved.
package percentile

import (
	"context"
	"fmt"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// Finalizer drains the pending-percentile queue one closed day at a time.
type Finalizer struct {
	posts   storage.PostStore
	pending storage.PendingPercentileStore
}

// NewFinalizer creates a percentile finalizer.
func NewFinalizer(posts storage.PostStore, pending storage.PendingPercentileStore) *Finalizer {
	return &Finalizer{posts: posts, pending: pending}
}

// Result reports what one Run pass accomplished.
type Result struct {
	DaysFinalized  int
	PostsFinalized int
}

// Run finalizes every day strictly below the queue watermark.
// With zero or one distinct day pending there is no proof of
// completeness, so Run is a no-op. Re-running over already-finalized
// input changes nothing: Finalize writes are guarded by a null check
// and the day's queue entries are gone.
func (f *Finalizer) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	watermark, ok, err := f.pending.MaxDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("read queue watermark: %w", err)
	}
	if !ok {
		return result, nil
	}

	days, err := f.pending.ListDaysBefore(ctx, watermark)
	if err != nil {
		return nil, fmt.Errorf("list closed days: %w", err)
	}

	for _, day := range days {
		finalized, err := f.finalizeDay(ctx, day)
		if err != nil {
			return result, fmt.Errorf("finalize day %s: %w", day.Format("2006-01-02"), err)
		}
		result.DaysFinalized++
		result.PostsFinalized += finalized
	}

	return result, nil
}

// finalizeDay ranks all posts created on the given day and writes their
// total value and percentile. Posts absent from the queue earned
// nothing and rank with value 0. Queue entries are removed only after
// every post write succeeded, so a crash mid-day leaves the queue
// intact for a safe retry.
func (f *Finalizer) finalizeDay(ctx context.Context, day time.Time) (int, error) {
	entries, err := f.pending.ListByDay(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("list pending entries: %w", err)
	}

	values := make(map[domain.PostKey]float64, len(entries))
	for _, e := range entries {
		values[domain.PostKey{Author: e.Author, Permlink: e.Permlink}] = e.TotalValue
	}

	posts, err := f.posts.ListByCreatedDay(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("list day posts: %w", err)
	}
	if len(posts) == 0 {
		// Entries reference posts outside retention; nothing to rank.
		if err := f.pending.DeleteByDay(ctx, day); err != nil {
			return 0, fmt.Errorf("drop orphaned entries: %w", err)
		}
		return 0, nil
	}

	population := make([]float64, len(posts))
	for i, p := range posts {
		population[i] = values[p.Key()]
	}
	ranks := Ranks(population)

	finalized := 0
	for i, p := range posts {
		changed, err := f.posts.Finalize(ctx, p.Author, p.Permlink, population[i], ranks[i])
		if err != nil {
			return finalized, fmt.Errorf("finalize post %s/%s: %w", p.Author, p.Permlink, err)
		}
		if changed {
			finalized++
		}
	}

	if err := f.pending.DeleteByDay(ctx, day); err != nil {
		return finalized, fmt.Errorf("drain queue: %w", err)
	}
	return finalized, nil
}
