// Package reporting renders engine state summaries as Markdown or CSV.
package reporting

import "time"

// Report summarizes the engine's derived state at a point in time.
type Report struct {
	GeneratedAt time.Time

	// Data Summary
	DataSummary DataSummary

	// Leaderboards, sorted best-first
	TopAuthors  []AuthorRow
	TopCurators []CuratorRow
}

// DataSummary describes the breadth of ingested and derived data.
type DataSummary struct {
	PriceDays       int
	PriceRangeStart time.Time // zero when no price history exists
	PriceRangeEnd   time.Time

	AuthorSnapshots  int
	CuratorSnapshots int

	PendingPercentiles   int
	PendingVoteHistories int
}

// AuthorRow ranks one author by their percentile track record over a
// window. Stats come from the author's densest snapshot for that
// window.
type AuthorRow struct {
	Author     string
	WindowDays int
	Posts      int // finalized posts inside the window
	MinPct     float64
	MaxPct     float64
	AvgPct     float64
	MedianPct  float64
}

// CuratorRow ranks one curator by their efficiency track record over a
// window, on the x10000 scale.
type CuratorRow struct {
	Curator    string
	WindowDays int
	Rewards    int // scored rewards inside the window
	MinEff     float64
	MaxEff     float64
	AvgEff     float64
	MedianEff  float64
}
