package domain

// Author-side and curator-side rolling window sizes, in days.
// The order is fixed; snapshots are attempted in this order.
var (
	AuthorWindows  = []int{7, 14, 21, 28, 90}
	CuratorWindows = []int{7, 14, 21, 28, 60, 90}
)

// WindowStats holds the five summary statistics computed over a
// trailing window. Median uses lower-median selection: the element at
// index (n-1)/2 of the ascending-sorted population.
type WindowStats struct {
	Count  int
	Min    float64
	Max    float64
	Avg    float64
	Median float64
}

// AuthorHistory is an immutable point-in-time snapshot of an author's
// finalized post percentiles over the WindowDays preceding a post's
// creation. Corresponds to the author_histories table. Rows are
// append-only and never recomputed.
type AuthorHistory struct {
	Author     string // subject author
	PostAuthor string // anchoring post's author (same as Author today)
	Permlink   string // anchoring post's permlink
	WindowDays int    // trailing window size in days

	WindowStats
}

// CuratorHistory is an immutable point-in-time snapshot of a curator's
// efficiency scores over the WindowDays preceding a post's creation.
// Corresponds to the curator_histories table. Rows are append-only and
// never recomputed.
type CuratorHistory struct {
	Voter      string // subject curator
	PostAuthor string // anchoring post's author
	Permlink   string // anchoring post's permlink
	WindowDays int    // trailing window size in days

	WindowStats
}
