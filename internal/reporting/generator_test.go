package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage/memory"
)

func fixtureStores(t *testing.T) GeneratorOptions {
	t.Helper()
	ctx := context.Background()

	prices := memory.NewPriceStore()
	for d := 1; d <= 3; d++ {
		tick := &domain.PriceTick{Date: time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC), Close: 0.25}
		if err := prices.Upsert(ctx, tick); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	authorHistories := memory.NewAuthorHistoryStore()
	authorRows := []domain.AuthorHistory{
		{Author: "alice", PostAuthor: "alice", Permlink: "p1", WindowDays: 90,
			WindowStats: domain.WindowStats{Count: 4, Min: 20, Max: 90, Avg: 60, Median: 55}},
		{Author: "alice", PostAuthor: "alice", Permlink: "p2", WindowDays: 90,
			WindowStats: domain.WindowStats{Count: 6, Min: 10, Max: 95, Avg: 70, Median: 72}},
		{Author: "bob", PostAuthor: "bob", Permlink: "p3", WindowDays: 90,
			WindowStats: domain.WindowStats{Count: 2, Min: 30, Max: 50, Avg: 40, Median: 30}},
		// Different window and an empty record: both excluded.
		{Author: "carl", PostAuthor: "carl", Permlink: "p4", WindowDays: 7,
			WindowStats: domain.WindowStats{Count: 9, Avg: 99}},
		{Author: "dora", PostAuthor: "dora", Permlink: "p5", WindowDays: 90},
	}
	for i := range authorRows {
		if err := authorHistories.Insert(ctx, &authorRows[i]); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	curatorHistories := memory.NewCuratorHistoryStore()
	curatorRows := []domain.CuratorHistory{
		{Voter: "carol", PostAuthor: "alice", Permlink: "p1", WindowDays: 90,
			WindowStats: domain.WindowStats{Count: 5, Min: 4000, Max: 16000, Avg: 11000, Median: 10500}},
		{Voter: "dave", PostAuthor: "alice", Permlink: "p1", WindowDays: 90,
			WindowStats: domain.WindowStats{Count: 3, Min: 8000, Max: 14000, Avg: 12000, Median: 12000}},
	}
	for i := range curatorRows {
		if err := curatorHistories.Insert(ctx, &curatorRows[i]); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	return GeneratorOptions{
		PriceStore:             prices,
		AuthorHistoryStore:     authorHistories,
		CuratorHistoryStore:    curatorHistories,
		PendingPercentileStore: memory.NewPendingPercentileStore(),
		PendingVoteStore:       memory.NewPendingVoteHistoryStore(),
	}
}

func TestGenerator_Generate(t *testing.T) {
	report, err := NewGenerator(fixtureStores(t)).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if report.DataSummary.PriceDays != 3 {
		t.Errorf("expected 3 price days, got %d", report.DataSummary.PriceDays)
	}
	if !report.DataSummary.PriceRangeStart.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected price range start: %v", report.DataSummary.PriceRangeStart)
	}

	// alice's densest 90d snapshot (count 6, avg 70) outranks bob;
	// carl (wrong window) and dora (empty record) are excluded.
	if len(report.TopAuthors) != 2 {
		t.Fatalf("expected 2 ranked authors, got %d", len(report.TopAuthors))
	}
	if report.TopAuthors[0].Author != "alice" || report.TopAuthors[0].AvgPct != 70 || report.TopAuthors[0].Posts != 6 {
		t.Errorf("unexpected top author: %+v", report.TopAuthors[0])
	}
	if report.TopAuthors[1].Author != "bob" {
		t.Errorf("expected bob second, got %+v", report.TopAuthors[1])
	}

	// dave's higher average efficiency ranks him above carol.
	if len(report.TopCurators) != 2 || report.TopCurators[0].Curator != "dave" {
		t.Errorf("unexpected curator leaderboard: %+v", report.TopCurators)
	}
}

func TestGenerator_TopNCapsLeaderboards(t *testing.T) {
	opts := fixtureStores(t)
	opts.TopN = 1

	report, err := NewGenerator(opts).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(report.TopAuthors) != 1 || len(report.TopCurators) != 1 {
		t.Errorf("expected leaderboards capped at 1, got %d/%d", len(report.TopAuthors), len(report.TopCurators))
	}
}

func TestRenderMarkdown(t *testing.T) {
	report, err := NewGenerator(fixtureStores(t)).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)
	for _, want := range []string{"# Curation Report", "## Top Authors", "| alice | 90d | 6 |", "## Top Curators", "| dave |"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderCSV(t *testing.T) {
	report, err := NewGenerator(fixtureStores(t)).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	authorCSV := RenderAuthorCSV(report.TopAuthors)
	lines := strings.Split(strings.TrimSpace(authorCSV), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "author,window_days") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "alice,90,6,") {
		t.Errorf("unexpected first row: %s", lines[1])
	}

	curatorCSV := RenderCuratorCSV(report.TopCurators)
	if !strings.Contains(curatorCSV, "dave,90,3,") {
		t.Errorf("unexpected curator csv: %s", curatorCSV)
	}
}

func TestRenderMarkdown_EmptyReport(t *testing.T) {
	md := RenderMarkdown(&Report{GeneratedAt: time.Now()})
	if !strings.Contains(md, "No author history available.") {
		t.Error("empty report must say so")
	}
}
