package journal

import "context"

// StoredSnapshot is rendered state a store keeps in place of the events
// folded into it.
type StoredSnapshot struct {
	Stream   StreamId
	Revision Revision
	Type     EntityType
	State    Data
}

// SnapshotStore is implemented by stores that compact a stream into its
// latest snapshot. A compacted stream is rendered by a single projection.
type SnapshotStore interface {
	// LoadSnapshot returns the latest snapshot, at InitialRevision when there
	// is none, and the events recorded after it.
	LoadSnapshot(ctx context.Context, id StreamId) (StoredSnapshot, History, error)
	// SaveSnapshot drops the events up to and including the snapshot
	// revision. A snapshot at a revision the stream no longer holds is
	// ignored.
	SaveSnapshot(ctx context.Context, snapshot StoredSnapshot) error
}
