package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// VoteStore is an in-memory implementation of storage.VoteStore.
type VoteStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Vote // keyed by (author, permlink, voter, time)
}

// NewVoteStore creates a new in-memory vote store.
func NewVoteStore() *VoteStore {
	return &VoteStore{data: make(map[string]*domain.Vote)}
}

func voteKey(author, permlink, voter string, t time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%d", author, permlink, voter, t.UnixNano())
}

// Insert adds a new vote. Returns ErrDuplicateKey if the identity exists.
func (s *VoteStore) Insert(_ context.Context, v *domain.Vote) error {
	if v == nil || v.Author == "" || v.Permlink == "" || v.Voter == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := voteKey(v.Author, v.Permlink, v.Voter, v.Time)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	voteCopy := *v
	s.data[key] = &voteCopy
	return nil
}

// LatestBefore retrieves the vote by (author, permlink, voter) with the
// latest Time at or before t.
func (s *VoteStore) LatestBefore(_ context.Context, author, permlink, voter string, t time.Time) (*domain.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Vote
	for _, v := range s.data {
		if v.Author != author || v.Permlink != permlink || v.Voter != voter {
			continue
		}
		if v.Time.After(t) {
			continue
		}
		if latest == nil || v.Time.After(latest.Time) {
			latest = v
		}
	}

	if latest == nil {
		return nil, storage.ErrNotFound
	}
	voteCopy := *latest
	return &voteCopy, nil
}

// SumPositiveRshares returns the sum of positive rshares on a post.
func (s *VoteStore) SumPositiveRshares(_ context.Context, author, permlink string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for _, v := range s.data {
		if v.Author == author && v.Permlink == permlink && v.Rshares > 0 {
			sum += v.Rshares
		}
	}
	return sum, nil
}

var _ storage.VoteStore = (*VoteStore)(nil)
