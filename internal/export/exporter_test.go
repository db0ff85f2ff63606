package export

import (
	"context"
	"testing"
	"time"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage/memory"
)

type fakeMirror struct {
	posts            map[domain.PostKey]*domain.Post
	authorSnapshots  int
	curatorSnapshots int
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{posts: make(map[domain.PostKey]*domain.Post)}
}

func (m *fakeMirror) InsertPosts(_ context.Context, posts []*domain.Post) (int, error) {
	inserted := 0
	for _, p := range posts {
		if p.Percentile == nil {
			continue
		}
		m.posts[p.Key()] = p
		inserted++
	}
	return inserted, nil
}

func (m *fakeMirror) InsertAuthorSnapshots(_ context.Context, snapshots []*domain.AuthorHistory) error {
	m.authorSnapshots = len(snapshots)
	return nil
}

func (m *fakeMirror) InsertCuratorSnapshots(_ context.Context, snapshots []*domain.CuratorHistory) error {
	m.curatorSnapshots = len(snapshots)
	return nil
}

func TestExporter_Run(t *testing.T) {
	ctx := context.Background()
	posts := memory.NewPostStore()
	authorHistories := memory.NewAuthorHistoryStore()
	curatorHistories := memory.NewCuratorHistoryStore()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, permlink := range []string{"p1", "p2", "p3"} {
		p := &domain.Post{Author: "alice", Permlink: permlink, Created: created.Add(time.Duration(i) * time.Hour)}
		if err := posts.Insert(ctx, p); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	// Only p1 and p2 are finalized.
	for _, permlink := range []string{"p1", "p2"} {
		if _, err := posts.Finalize(ctx, "alice", permlink, 10, 50); err != nil {
			t.Fatalf("Finalize failed: %v", err)
		}
	}

	if err := authorHistories.Insert(ctx, &domain.AuthorHistory{
		Author: "alice", PostAuthor: "alice", Permlink: "p1", WindowDays: 7,
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	mirror := newFakeMirror()
	exporter := NewExporter(Options{
		PostStore:           posts,
		AuthorHistoryStore:  authorHistories,
		CuratorHistoryStore: curatorHistories,
		Mirror:              mirror,
	})

	result, err := exporter.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.PostsExported != 2 {
		t.Errorf("expected 2 posts exported, got %d", result.PostsExported)
	}
	if result.AuthorSnapshots != 1 || result.CuratorSnapshots != 0 {
		t.Errorf("unexpected snapshot counts: %+v", result)
	}
	if len(mirror.posts) != 2 {
		t.Errorf("expected 2 mirrored posts, got %d", len(mirror.posts))
	}
}

func TestExporter_WatermarkAdvances(t *testing.T) {
	ctx := context.Background()
	posts := memory.NewPostStore()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p1 := &domain.Post{Author: "alice", Permlink: "p1", Created: created}
	if err := posts.Insert(ctx, p1); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := posts.Finalize(ctx, "alice", "p1", 10, 50); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	mirror := newFakeMirror()
	exporter := NewExporter(Options{
		PostStore:           posts,
		AuthorHistoryStore:  memory.NewAuthorHistoryStore(),
		CuratorHistoryStore: memory.NewCuratorHistoryStore(),
		Mirror:              mirror,
	})

	if _, err := exporter.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// A post finalized later, created after the watermark, is picked up
	// on the next pass.
	p2 := &domain.Post{Author: "alice", Permlink: "p2", Created: created.Add(2 * time.Hour)}
	if err := posts.Insert(ctx, p2); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := posts.Finalize(ctx, "alice", "p2", 20, 75); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	result, err := exporter.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.PostsExported < 1 {
		t.Errorf("expected second pass to export the new post, got %d", result.PostsExported)
	}
	if len(mirror.posts) != 2 {
		t.Errorf("expected 2 mirrored posts, got %d", len(mirror.posts))
	}
}
