package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"steem-curation-lab/internal/storage"
)

// DefaultTopN is the leaderboard length when none is configured.
const DefaultTopN = 20

// DefaultWindowDays is the leaderboard window: the longest one, so the
// ranking reflects the fullest track record available.
const DefaultWindowDays = 90

// Generator builds reports from engine storage.
type Generator struct {
	prices             storage.PriceStore
	authorHistories    storage.AuthorHistoryStore
	curatorHistories   storage.CuratorHistoryStore
	pendingPercentiles storage.PendingPercentileStore
	pendingVotes       storage.PendingVoteHistoryStore

	topN       int
	windowDays int
}

// GeneratorOptions contains the stores a Generator reads.
type GeneratorOptions struct {
	PriceStore             storage.PriceStore
	AuthorHistoryStore     storage.AuthorHistoryStore
	CuratorHistoryStore    storage.CuratorHistoryStore
	PendingPercentileStore storage.PendingPercentileStore
	PendingVoteStore       storage.PendingVoteHistoryStore

	// TopN caps leaderboard length. Zero means DefaultTopN.
	TopN int
	// WindowDays selects the leaderboard window. Zero means
	// DefaultWindowDays.
	WindowDays int
}

// NewGenerator creates a report generator.
func NewGenerator(opts GeneratorOptions) *Generator {
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	windowDays := opts.WindowDays
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Generator{
		prices:             opts.PriceStore,
		authorHistories:    opts.AuthorHistoryStore,
		curatorHistories:   opts.CuratorHistoryStore,
		pendingPercentiles: opts.PendingPercentileStore,
		pendingVotes:       opts.PendingVoteStore,
		topN:               topN,
		windowDays:         windowDays,
	}
}

// Generate builds a report over current storage state.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	report := &Report{GeneratedAt: time.Now().UTC()}

	ticks, err := g.prices.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load price history: %w", err)
	}
	report.DataSummary.PriceDays = len(ticks)
	if len(ticks) > 0 {
		report.DataSummary.PriceRangeStart = ticks[0].Date
		report.DataSummary.PriceRangeEnd = ticks[len(ticks)-1].Date
	}

	if report.DataSummary.PendingPercentiles, err = g.pendingPercentiles.Count(ctx); err != nil {
		return nil, fmt.Errorf("count pending percentiles: %w", err)
	}
	if report.DataSummary.PendingVoteHistories, err = g.pendingVotes.Count(ctx); err != nil {
		return nil, fmt.Errorf("count pending vote histories: %w", err)
	}

	if err := g.buildAuthorLeaderboard(ctx, report); err != nil {
		return nil, err
	}
	if err := g.buildCuratorLeaderboard(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// buildAuthorLeaderboard ranks authors by the average percentile of
// their densest window snapshot.
func (g *Generator) buildAuthorLeaderboard(ctx context.Context, report *Report) error {
	snapshots, err := g.authorHistories.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load author snapshots: %w", err)
	}
	report.DataSummary.AuthorSnapshots = len(snapshots)

	best := make(map[string]AuthorRow)
	for _, s := range snapshots {
		if s.WindowDays != g.windowDays || s.Count == 0 {
			continue
		}
		current, ok := best[s.Author]
		if ok && current.Posts >= s.Count {
			continue
		}
		best[s.Author] = AuthorRow{
			Author:     s.Author,
			WindowDays: s.WindowDays,
			Posts:      s.Count,
			MinPct:     s.Min,
			MaxPct:     s.Max,
			AvgPct:     s.Avg,
			MedianPct:  s.Median,
		}
	}

	rows := make([]AuthorRow, 0, len(best))
	for _, row := range best {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AvgPct != rows[j].AvgPct {
			return rows[i].AvgPct > rows[j].AvgPct
		}
		return rows[i].Author < rows[j].Author
	})
	if len(rows) > g.topN {
		rows = rows[:g.topN]
	}
	report.TopAuthors = rows
	return nil
}

// buildCuratorLeaderboard ranks curators by the average efficiency of
// their densest window snapshot.
func (g *Generator) buildCuratorLeaderboard(ctx context.Context, report *Report) error {
	snapshots, err := g.curatorHistories.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load curator snapshots: %w", err)
	}
	report.DataSummary.CuratorSnapshots = len(snapshots)

	best := make(map[string]CuratorRow)
	for _, s := range snapshots {
		if s.WindowDays != g.windowDays || s.Count == 0 {
			continue
		}
		current, ok := best[s.Voter]
		if ok && current.Rewards >= s.Count {
			continue
		}
		best[s.Voter] = CuratorRow{
			Curator:    s.Voter,
			WindowDays: s.WindowDays,
			Rewards:    s.Count,
			MinEff:     s.Min,
			MaxEff:     s.Max,
			AvgEff:     s.Avg,
			MedianEff:  s.Median,
		}
	}

	rows := make([]CuratorRow, 0, len(best))
	for _, row := range best {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AvgEff != rows[j].AvgEff {
			return rows[i].AvgEff > rows[j].AvgEff
		}
		return rows[i].Curator < rows[j].Curator
	})
	if len(rows) > g.topN {
		rows = rows[:g.topN]
	}
	report.TopCurators = rows
	return nil
}
