package domain

import "time"

// Comment represents a reply to a post or another comment.
// Corresponds to the comments table. No derived state.
type Comment struct {
	Commenter      string    // account that authored the comment
	Permlink       string    // permlink of the comment itself
	ParentAuthor   string    // author of the direct parent
	ParentPermlink string    // permlink of the direct parent
	RootAuthor     string    // author of the top-level post
	RootPermlink   string    // permlink of the top-level post
	Time           time.Time // UTC comment time
	Reputation     int64     // commenter reputation at comment time
}

// Resteem represents a reblog of a post by another account.
// Corresponds to the resteems table. No derived state.
type Resteem struct {
	Author      string    // author of the reblogged post
	Permlink    string    // permlink of the reblogged post
	ResteemedBy string    // account that performed the resteem
	Time        time.Time // UTC resteem time
	Followers   int       // resteemer's follower count at resteem time
}
