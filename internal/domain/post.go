package domain

import "time"

// Post represents a top-level post on the chain.
// Corresponds to the posts table.
//
// TotalValue and Percentile stay nil until the day the post was created
// on has been finalized; they are written exactly once.
type Post struct {
	Author    string    // account that created the post
	Permlink  string    // permanent link, unique per author
	Created   time.Time // UTC creation time
	Category  string    // category / first tag at creation

	TotalValue *float64 // payout value in USD, nil until finalized
	Percentile *int     // day-relative value rank 0..99, nil until finalized
}

// Key returns the natural identity of the post.
func (p *Post) Key() PostKey {
	return PostKey{Author: p.Author, Permlink: p.Permlink}
}

// PostKey is the composite natural identity of a post.
type PostKey struct {
	Author   string
	Permlink string
}

// Day truncates a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
