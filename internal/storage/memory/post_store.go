package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// PostStore is an in-memory implementation of storage.PostStore.
type PostStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Post // keyed by (author, permlink)
}

// NewPostStore creates a new in-memory post store.
func NewPostStore() *PostStore {
	return &PostStore{data: make(map[string]*domain.Post)}
}

func postKey(author, permlink string) string {
	return fmt.Sprintf("%s|%s", author, permlink)
}

// Insert adds a new post. Returns ErrDuplicateKey if (author, permlink) exists.
func (s *PostStore) Insert(_ context.Context, p *domain.Post) error {
	if p == nil || p.Author == "" || p.Permlink == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := postKey(p.Author, p.Permlink)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	postCopy := *p
	s.data[key] = &postCopy
	return nil
}

// Get retrieves a post by its natural key.
func (s *PostStore) Get(_ context.Context, author, permlink string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[postKey(author, permlink)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	postCopy := *p
	return &postCopy, nil
}

// ListByCreatedDay retrieves all posts created on a UTC calendar day.
func (s *PostStore) ListByCreatedDay(_ context.Context, day time.Time) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target := domain.Day(day)

	var result []*domain.Post
	for _, p := range s.data {
		if domain.Day(p.Created).Equal(target) {
			postCopy := *p
			result = append(result, &postCopy)
		}
	}

	sortPosts(result)
	return result, nil
}

// ListByAuthorCreatedRange retrieves an author's posts with Created in
// [from, to), ordered by Created ASC.
func (s *PostStore) ListByAuthorCreatedRange(_ context.Context, author string, from, to time.Time) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Post
	for _, p := range s.data {
		if p.Author == author && !p.Created.Before(from) && p.Created.Before(to) {
			postCopy := *p
			result = append(result, &postCopy)
		}
	}

	sortPosts(result)
	return result, nil
}

// Finalize writes total value and percentile onto a post, only if the
// percentile is still null. Returns true if the row changed.
func (s *PostStore) Finalize(_ context.Context, author, permlink string, totalValue float64, percentile int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data[postKey(author, permlink)]
	if !ok {
		return false, storage.ErrNotFound
	}
	if p.Percentile != nil {
		return false, nil
	}

	v := totalValue
	pct := percentile
	p.TotalValue = &v
	p.Percentile = &pct
	return true, nil
}

// ListFinalizedSince retrieves finalized posts created at or after the
// cutoff, ordered by Created ASC.
func (s *PostStore) ListFinalizedSince(_ context.Context, since time.Time) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Post
	for _, p := range s.data {
		if p.Percentile != nil && !p.Created.Before(since) {
			postCopy := *p
			result = append(result, &postCopy)
		}
	}

	sortPosts(result)
	return result, nil
}

// PurgeCreatedBefore deletes posts older than the cutoff.
func (s *PostStore) PurgeCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for key, p := range s.data {
		if p.Created.Before(cutoff) {
			delete(s.data, key)
			purged++
		}
	}
	return purged, nil
}

func sortPosts(posts []*domain.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Created.Equal(posts[j].Created) {
			return posts[i].Created.Before(posts[j].Created)
		}
		if posts[i].Author != posts[j].Author {
			return posts[i].Author < posts[j].Author
		}
		return posts[i].Permlink < posts[j].Permlink
	})
}

var _ storage.PostStore = (*PostStore)(nil)
