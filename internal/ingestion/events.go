// Package ingestion applies validated event batches to the event log
// and pending queues. Delivery is at-least-once and may be out of
// order across identities; the storage layer rejects duplicates and
// the applier treats rejection as success.
package ingestion

import (
	"time"

	"steem-curation-lab/internal/domain"
)

// Payout carries a post's final payout value, emitted when the chain
// pays the post out. It opens the post's pending-percentile entry.
type Payout struct {
	Author     string
	Permlink   string
	TotalValue float64   // payout value in USD
	Time       time.Time // UTC payout time
}

// Batch is one delivery unit of chain events. Any subset of fields may
// be populated; ordering inside a batch is not significant.
type Batch struct {
	Accounts           []*domain.Account
	PriceTicks         []*domain.PriceTick
	Posts              []*domain.Post
	Votes              []*domain.Vote
	AuthorRewards      []*domain.AuthorReward
	CuratorRewards     []*domain.CuratorReward
	BeneficiaryRewards []*domain.BeneficiaryReward
	Beneficiaries      []*domain.Beneficiary
	Comments           []*domain.Comment
	Resteems           []*domain.Resteem
	Payouts            []*Payout
}

// Size returns the total number of events in the batch.
func (b *Batch) Size() int {
	return len(b.Accounts) + len(b.PriceTicks) + len(b.Posts) +
		len(b.Votes) + len(b.AuthorRewards) + len(b.CuratorRewards) +
		len(b.BeneficiaryRewards) + len(b.Beneficiaries) +
		len(b.Comments) + len(b.Resteems) + len(b.Payouts)
}
