package clickhouse

import (
	"context"

	"steem-curation-lab/internal/domain"
)

// MirrorStore bundles the mirror tables behind the exporter's sink
// methods.
type MirrorStore struct {
	posts     *FinalizedPostStore
	snapshots *HistorySnapshotStore
}

// NewMirrorStore creates a MirrorStore on a shared connection.
func NewMirrorStore(conn *Conn) *MirrorStore {
	return &MirrorStore{
		posts:     NewFinalizedPostStore(conn),
		snapshots: NewHistorySnapshotStore(conn),
	}
}

// InsertPosts mirrors finalized posts.
func (m *MirrorStore) InsertPosts(ctx context.Context, posts []*domain.Post) (int, error) {
	return m.posts.InsertBulk(ctx, posts)
}

// InsertAuthorSnapshots mirrors author snapshots.
func (m *MirrorStore) InsertAuthorSnapshots(ctx context.Context, snapshots []*domain.AuthorHistory) error {
	return m.snapshots.InsertAuthorBulk(ctx, snapshots)
}

// InsertCuratorSnapshots mirrors curator snapshots.
func (m *MirrorStore) InsertCuratorSnapshots(ctx context.Context, snapshots []*domain.CuratorHistory) error {
	return m.snapshots.InsertCuratorBulk(ctx, snapshots)
}
