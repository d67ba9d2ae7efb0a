package journal

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go"
	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel"
)

const tracerName = "coins-journal"

// conflictAttempts bounds how often a command is re-run after losing a race
// for its stream.
const conflictAttempts = 100

type EntityService[T any] interface {
	Load(ctx context.Context, id StreamId) (Snapshot[T], error)
	Execute(ctx context.Context, id StreamId, command Command) (Snapshot[T], error)
}

// EntityLoader renders streams. With Snapshots set it resumes from the
// stored snapshot and saves a new one whenever it folded events.
type EntityLoader[T any] struct {
	Loader     Loader
	Snapshots  SnapshotStore
	Projection *Projection[T]
}

func (l *EntityLoader[T]) Load(ctx context.Context, id StreamId) (Snapshot[T], error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "load entity")
	defer span.End()

	if l.Snapshots != nil {
		return l.resume(ctx, id)
	}

	history, err := l.Loader(ctx, id)
	if err != nil {
		return Snapshot[T]{}, err
	}

	return l.Projection.Render(ctx, history)
}

func (l *EntityLoader[T]) resume(ctx context.Context, id StreamId) (Snapshot[T], error) {
	stored, history, err := l.Snapshots.LoadSnapshot(ctx, id)
	if err != nil {
		return Snapshot[T]{}, err
	}

	snapshot, err := l.Projection.Resume(ctx, stored, history)
	if err != nil {
		return Snapshot[T]{}, err
	}

	if len(history.Events) == 0 {
		return snapshot, nil
	}

	data, err := MarshalData(snapshot.State)
	if err != nil {
		return Snapshot[T]{}, pkgerrors.Wrapf(err, "failed to encode %s snapshot", snapshot.Type)
	}

	err = l.Snapshots.SaveSnapshot(ctx, StoredSnapshot{
		Stream:   id,
		Revision: snapshot.Revision,
		Type:     snapshot.Type,
		State:    data,
	})
	if err != nil {
		return Snapshot[T]{}, pkgerrors.Wrapf(err, "failed to save %s snapshot", snapshot.Type)
	}

	return snapshot, nil
}

func NewEntityService[T any](loader *EntityLoader[T], dispatcher *RoutedDispatcher[T]) *Service[T] {
	return &Service[T]{
		loader:     loader,
		dispatcher: dispatcher,
	}
}

// NewStoreService wires a loader and dispatcher over a single store, using
// its snapshots when it keeps them.
func NewStoreService[T any](store Store, projection *Projection[T], handlers CommandHandlers[T]) *Service[T] {
	loader := &EntityLoader[T]{Loader: store.Load, Projection: projection}
	if snapshots, ok := store.(SnapshotStore); ok {
		loader.Snapshots = snapshots
	}

	dispatcher := &RoutedDispatcher[T]{Append: store.Append, Handlers: handlers}

	return NewEntityService(loader, dispatcher)
}

type Service[T any] struct {
	loader     *EntityLoader[T]
	dispatcher *RoutedDispatcher[T]
}

func (s *Service[T]) Load(ctx context.Context, id StreamId) (Snapshot[T], error) {
	return s.loader.Load(ctx, id)
}

// Execute renders the current state, dispatches command against it and
// returns that state with the handler's events applied. A command that
// loses a race for the stream is re-run against the new state.
func (s *Service[T]) Execute(ctx context.Context, id StreamId, command Command) (Snapshot[T], error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "execute command")
	defer span.End()

	var result Snapshot[T]
	err := retry.Do(
		func() error {
			snapshot, err := s.execute(ctx, id, command)
			if err != nil {
				return err
			}

			result = snapshot
			return nil
		},
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrRevisionConflict)
		}),
		retry.Attempts(conflictAttempts),
		retry.Delay(time.Millisecond),
		retry.MaxDelay(10*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return Snapshot[T]{}, err
	}

	return result, nil
}

func (s *Service[T]) execute(ctx context.Context, id StreamId, command Command) (Snapshot[T], error) {
	state, err := s.Load(ctx, id)
	if err != nil {
		return Snapshot[T]{}, err
	}

	recorded, err := s.dispatcher.Dispatch(ctx, state, command)
	if err != nil {
		return Snapshot[T]{}, err
	}

	return s.loader.Projection.Fold(ctx, state, recorded)
}
