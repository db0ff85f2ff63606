package domain

import "time"

// AuthorReward represents the vesting payout an author received for a
// post. Corresponds to the author_rewards table.
//
// Value and SteemValue stay nil until the valuation engine has both the
// post's finalized total value and a price tick for the reward date.
type AuthorReward struct {
	Author     string    // post author receiving the reward
	Permlink   string    // permlink of the rewarded post
	RewardTime time.Time // UTC time the payout landed
	Vests      int64     // raw vesting shares paid out

	Value      *float64 // USD value, nil until valued
	SteemValue *float64 // value expressed in STEEM, nil until valued
}

// CuratorReward represents the vesting payout a single curator received
// for voting on a post. Corresponds to the curator_rewards table.
type CuratorReward struct {
	Author     string    // author of the curated post
	Permlink   string    // permlink of the curated post
	Curator    string    // account that cast the vote
	RewardTime time.Time // UTC time the payout landed
	VoteTime   time.Time // time of the vote the reward pays for
	Vests      int64     // raw vesting shares paid out

	Value      *float64 // USD value, nil until valued
	SteemValue *float64 // value expressed in STEEM, nil until valued

	// Efficiency is the normalized return-on-influence score for the
	// vote, scaled x10000. Nil until computed. EfficiencyDropped marks
	// structurally invalid candidates (no matching vote, or rshares <= 0)
	// that must never be retried.
	Efficiency        *int64
	EfficiencyDropped bool
}

// BeneficiaryReward represents the vesting payout a declared
// beneficiary received for a post. Corresponds to the
// beneficiary_rewards table.
type BeneficiaryReward struct {
	Author      string    // author of the post
	Permlink    string    // permlink of the post
	Beneficiary string    // account receiving the reward
	RewardTime  time.Time // UTC time the payout landed
	Vests       int64     // raw vesting shares paid out

	Value      *float64 // USD value, nil until valued
	SteemValue *float64 // value expressed in STEEM, nil until valued
}

// Beneficiary represents a declared reward-split assignment made at
// post time via comment options. Corresponds to the beneficiaries
// table.
type Beneficiary struct {
	Author      string // post author declaring the split
	Permlink    string // permlink of the post
	Beneficiary string // account designated to receive a share
	Pct         int    // percentage of the post's rewards, 0..100
}

// CurationShareScale reflects the reward-pool split convention:
// curators earn half the pool, so a post's total share denominator is
// twice the sum of its curator-reward shares.
const CurationShareScale = 2
