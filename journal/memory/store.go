// Package memory is the default, process-local journal. Nothing survives a
// restart. Streams are compacted into their latest snapshot, so Load returns
// only the events recorded after it.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/wire"
	"github.com/pkg/errors"

	"github.com/weegigs/coin-counter-go/journal"
)

var Live = wire.NewSet(
	NewDefaultStore,
	wire.Bind(new(journal.Store), new(*Store)),
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

type StoreOption func(*Store)

func WithClock(clock Clock) StoreOption {
	return func(store *Store) {
		store.clock = clock
	}
}

func NewStore(options ...StoreOption) *Store {
	store := &Store{
		streams:  make(map[journal.EncodedStreamId]*stream),
		revision: journal.NewRevisionGenerator(),
		clock:    systemClock{},
	}

	for _, option := range options {
		option(store)
	}

	return store
}

func NewDefaultStore() *Store {
	return NewStore()
}

type Store struct {
	mu       sync.RWMutex
	streams  map[journal.EncodedStreamId]*stream
	revision *journal.RevisionGenerator
	clock    Clock
}

type stream struct {
	snapshot journal.StoredSnapshot
	events   []journal.Event
	revision journal.Revision
}

func (s *stream) tail(id journal.StreamId) journal.History {
	events := make([]journal.Event, len(s.events))
	copy(events, s.events)

	return journal.History{Stream: id, Events: events, Revision: s.revision}
}

func (s *Store) Load(ctx context.Context, id journal.StreamId) (journal.History, error) {
	if err := ctx.Err(); err != nil {
		return journal.History{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.streams[id.Encode()]
	if current == nil {
		return journal.HistoryOf(id, nil), nil
	}

	return current.tail(id), nil
}

func (s *Store) LoadSnapshot(ctx context.Context, id journal.StreamId) (journal.StoredSnapshot, journal.History, error) {
	if err := ctx.Err(); err != nil {
		return journal.StoredSnapshot{}, journal.History{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.streams[id.Encode()]
	if current == nil {
		return journal.StoredSnapshot{Stream: id, Revision: journal.InitialRevision}, journal.HistoryOf(id, nil), nil
	}

	return current.snapshot, current.tail(id), nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snapshot journal.StoredSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.streams[snapshot.Stream.Encode()]
	if current == nil {
		return nil
	}

	for i := len(current.events) - 1; i >= 0; i-- {
		if current.events[i].Revision == snapshot.Revision {
			current.snapshot = snapshot
			current.events = append([]journal.Event(nil), current.events[i+1:]...)
			return nil
		}
	}

	return nil
}

func (s *Store) Append(ctx context.Context, id journal.StreamId, options journal.AppendOptions, events ...journal.DomainEvent) (journal.Revision, error) {
	if len(events) == 0 {
		return "", journal.ErrEmptyAppend
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := s.clock.Now()
	timestamp := journal.TimestampFromTime(now)

	recorded := make([]journal.Event, len(events))
	for i, event := range events {
		data, err := journal.MarshalData(event)
		if err != nil {
			return "", errors.Wrapf(err, "failed to encode %s", journal.EventTypeOf(event))
		}

		revision := s.revision.NewRevision(now)
		recorded[i] = journal.Event{
			Stream:    id,
			Revision:  revision,
			ID:        journal.EventID(revision),
			Type:      journal.EventTypeOf(event),
			Timestamp: timestamp,
			Metadata:  options.Metadata,
			Data:      data,
		}
	}

	key := id.Encode()

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.streams[key]
	if !expected(current, options.ExpectedRevision) {
		return "", journal.ErrRevisionConflict
	}

	if current == nil {
		current = &stream{snapshot: journal.StoredSnapshot{Stream: id, Revision: journal.InitialRevision}}
		s.streams[key] = current
	}

	current.events = append(current.events, recorded...)
	current.revision = recorded[len(recorded)-1].Revision

	return current.revision, nil
}

// Remove drops a stream and reports how many events it still held.
func (s *Store) Remove(_ context.Context, id journal.StreamId) (int, error) {
	key := id.Encode()

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	if current := s.streams[key]; current != nil {
		count = len(current.events)
	}
	delete(s.streams, key)

	return count, nil
}

func expected(current *stream, revision journal.Revision) bool {
	switch {
	case revision == "":
		return true
	case revision == journal.InitialRevision:
		return current == nil
	case current == nil:
		return false
	default:
		return current.revision == revision
	}
}
