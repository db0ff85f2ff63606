package history

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// Defaults for the curator-side drain.
const (
	DefaultBatchSize   = 200
	DefaultConcurrency = 8
)

// AuthorAggregator writes author-side rolling-window snapshots.
type AuthorAggregator struct {
	posts     storage.PostStore
	histories storage.AuthorHistoryStore
}

// NewAuthorAggregator creates an author-side aggregator.
func NewAuthorAggregator(posts storage.PostStore, histories storage.AuthorHistoryStore) *AuthorAggregator {
	return &AuthorAggregator{posts: posts, histories: histories}
}

// ComputeForPost snapshots the author's finalized percentiles over each
// window preceding the post's creation. It runs once per new post;
// windows already materialized are left untouched, so a crashed run can
// be repeated safely. Returns the number of snapshot rows written.
func (a *AuthorAggregator) ComputeForPost(ctx context.Context, author, permlink string, created time.Time) (int, error) {
	written := 0
	for _, windowDays := range domain.AuthorWindows {
		exists, err := a.histories.Exists(ctx, author, author, permlink, windowDays)
		if err != nil {
			return written, fmt.Errorf("check window %d: %w", windowDays, err)
		}
		if exists {
			continue
		}

		from := created.AddDate(0, 0, -windowDays)
		posts, err := a.posts.ListByAuthorCreatedRange(ctx, author, from, created)
		if err != nil {
			return written, fmt.Errorf("list window %d posts: %w", windowDays, err)
		}

		// Only finalized posts carry a percentile; the rest did not
		// exist as ranked facts when this snapshot was taken.
		values := make([]float64, 0, len(posts))
		for _, p := range posts {
			if p.Percentile != nil {
				values = append(values, float64(*p.Percentile))
			}
		}

		snapshot := &domain.AuthorHistory{
			Author:      author,
			PostAuthor:  author,
			Permlink:    permlink,
			WindowDays:  windowDays,
			WindowStats: Compute(values),
		}
		if err := a.histories.Insert(ctx, snapshot); err != nil {
			return written, fmt.Errorf("insert window %d snapshot: %w", windowDays, err)
		}
		written++
	}
	return written, nil
}

// CuratorAggregator drains the pending vote-history queue and writes
// curator-side rolling-window snapshots.
type CuratorAggregator struct {
	pending   storage.PendingVoteHistoryStore
	curators  storage.CuratorRewardStore
	histories storage.CuratorHistoryStore

	batchSize int
	pool      pond.Pool
}

// CuratorOptions configures a CuratorAggregator.
type CuratorOptions struct {
	// BatchSize caps queued pairs loaded per pass. Zero means
	// DefaultBatchSize.
	BatchSize int

	// Concurrency bounds parallel pair processing. Zero means
	// DefaultConcurrency.
	Concurrency int
}

// NewCuratorAggregator creates a curator-side aggregator.
func NewCuratorAggregator(
	pending storage.PendingVoteHistoryStore,
	curators storage.CuratorRewardStore,
	histories storage.CuratorHistoryStore,
	opts CuratorOptions,
) *CuratorAggregator {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &CuratorAggregator{
		pending:   pending,
		curators:  curators,
		histories: histories,
		batchSize: batch,
		pool:      pond.NewPool(concurrency),
	}
}

// Result reports what one Run pass accomplished.
type Result struct {
	PairsProcessed   int
	SnapshotsWritten int
}

// Run processes up to one batch of queued (post, voter) pairs. Pairs
// fan out across the worker pool; each pair's windows run in order and
// the queue entry is deleted only after every window size has been
// attempted, so a failed pair stays queued for retry.
func (c *CuratorAggregator) Run(ctx context.Context) (*Result, error) {
	pairs, err := c.pending.List(ctx, c.batchSize)
	if err != nil {
		return nil, fmt.Errorf("list pending pairs: %w", err)
	}
	if len(pairs) == 0 {
		return &Result{}, nil
	}

	var processed, written atomic.Int64
	group := c.pool.NewGroup()
	for _, pair := range pairs {
		group.SubmitErr(func() error {
			n, err := c.processPair(ctx, pair)
			written.Add(int64(n))
			if err != nil {
				return err
			}
			processed.Add(1)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return &Result{
			PairsProcessed:   int(processed.Load()),
			SnapshotsWritten: int(written.Load()),
		}, fmt.Errorf("process pending pairs: %w", err)
	}

	return &Result{
		PairsProcessed:   int(processed.Load()),
		SnapshotsWritten: int(written.Load()),
	}, nil
}

// Stop releases the worker pool. The aggregator must not be used after.
func (c *CuratorAggregator) Stop() {
	c.pool.StopAndWait()
}

func (c *CuratorAggregator) processPair(ctx context.Context, pair *domain.PendingVoteHistory) (int, error) {
	written := 0
	for _, windowDays := range domain.CuratorWindows {
		exists, err := c.histories.Exists(ctx, pair.Voter, pair.Author, pair.Permlink, windowDays)
		if err != nil {
			return written, fmt.Errorf("check window %d for %s on %s/%s: %w", windowDays, pair.Voter, pair.Author, pair.Permlink, err)
		}
		if exists {
			continue
		}

		from := pair.Created.AddDate(0, 0, -windowDays)
		scores, err := c.curators.ListEfficienciesByCurator(ctx, pair.Voter, from, pair.Created)
		if err != nil {
			return written, fmt.Errorf("list window %d efficiencies for %s: %w", windowDays, pair.Voter, err)
		}

		values := make([]float64, len(scores))
		for i, s := range scores {
			values[i] = float64(s)
		}

		snapshot := &domain.CuratorHistory{
			Voter:       pair.Voter,
			PostAuthor:  pair.Author,
			Permlink:    pair.Permlink,
			WindowDays:  windowDays,
			WindowStats: Compute(values),
		}
		if err := c.histories.Insert(ctx, snapshot); err != nil {
			return written, fmt.Errorf("insert window %d snapshot for %s: %w", windowDays, pair.Voter, err)
		}
		written++
	}

	if err := c.pending.Delete(ctx, pair.Author, pair.Permlink, pair.Voter); err != nil {
		return written, fmt.Errorf("drain pair %s on %s/%s: %w", pair.Voter, pair.Author, pair.Permlink, err)
	}
	return written, nil
}
