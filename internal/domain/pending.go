package domain

import "time"

// PendingPercentile is a queue entry for a post whose payout value is
// known but whose day has not yet been proven complete. Corresponds to
// the pending_percentiles table. A post has at most one open entry.
type PendingPercentile struct {
	Author     string    // post author
	Permlink   string    // post permlink
	TotalValue float64   // provisional payout value in USD
	Created    time.Time // the post's creation time, defines its day
}

// PendingVoteHistory is a queue entry for a (post, voter) pair awaiting
// curator-side rolling-window computation. Corresponds to the
// pending_vote_histories table. It is a work list, not a fact table:
// entries are removed once every window size has been attempted.
type PendingVoteHistory struct {
	Author   string    // author of the voted post
	Permlink string    // permlink of the voted post
	Voter    string    // account that cast the vote
	Created  time.Time // the post's creation time, anchors the windows
}
