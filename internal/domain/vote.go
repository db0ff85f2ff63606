package domain

import "time"

// Vote represents a single vote cast on a post.
// Corresponds to the votes table. Immutable once ingested.
type Vote struct {
	Author   string    // author of the voted post
	Permlink string    // permlink of the voted post
	Voter    string    // account that cast the vote
	Time     time.Time // UTC time the vote landed
	Weight   int       // vote weight percentage, -100..100
	Rshares  int64     // raw influence contributed to the reward pool
}
