package journal

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
)

type EntityType string

func (et EntityType) String() string {
	return string(et)
}

type EntityTyped interface {
	EntityType() EntityType
}

func EntityTypeOf(state any) EntityType {
	if typed, ok := state.(EntityTyped); ok {
		return typed.EntityType()
	}

	return EntityType(NameOf(state))
}

// Snapshot is the state of a stream rendered at a revision.
type Snapshot[T any] struct {
	Stream   StreamId
	Revision Revision
	Type     EntityType
	State    T
}

func (s Snapshot[T]) Initialized() bool {
	return s.Revision != InitialRevision
}

type Fold[T any] interface {
	Apply(state *T, event *Event) error
}

// FoldFunction decodes the recorded payload into E before applying it.
type FoldFunction[T any, E any] func(state *T, event *E) error

func (f FoldFunction[T, E]) Apply(state *T, event *Event) error {
	var payload E
	if err := UnmarshalData(event.Data, &payload); err != nil {
		return err
	}

	return f(state, &payload)
}

type Folds[T any] map[EventType]Fold[T]

// Projection renders a history into state. Initial supplies the state before
// any event, which lets entities start with registered keys zeroed.
type Projection[T any] struct {
	Initial func() T
	Folds   Folds[T]
}

func (p *Projection[T]) initial() T {
	var state T
	if p.Initial != nil {
		state = p.Initial()
	}

	return state
}

func (p *Projection[T]) Render(ctx context.Context, history History) (Snapshot[T], error) {
	return p.render(ctx, p.initial(), history)
}

// Resume renders history on top of a stored snapshot.
func (p *Projection[T]) Resume(ctx context.Context, stored StoredSnapshot, history History) (Snapshot[T], error) {
	state := p.initial()

	if stored.Revision != "" && stored.Revision != InitialRevision {
		if expected := EntityTypeOf(state); stored.Type != expected {
			return Snapshot[T]{}, errors.Errorf("snapshot of %s holds %s, expected %s", stored.Stream, stored.Type, expected)
		}

		if err := UnmarshalData(stored.State, &state); err != nil {
			return Snapshot[T]{}, errors.Wrapf(err, "failed to decode %s snapshot", stored.Type)
		}
	}

	return p.render(ctx, state, history)
}

// Fold applies events recorded directly after snapshot. The snapshot's state
// is folded in place.
func (p *Projection[T]) Fold(ctx context.Context, snapshot Snapshot[T], events []Event) (Snapshot[T], error) {
	if len(events) == 0 {
		return snapshot, nil
	}

	return p.render(ctx, snapshot.State, History{
		Stream:   snapshot.Stream,
		Events:   events,
		Revision: events[len(events)-1].Revision,
	})
}

func (p *Projection[T]) render(ctx context.Context, state T, history History) (Snapshot[T], error) {
	_, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("render %s", EntityTypeOf(state)))
	defer span.End()

	for i := range history.Events {
		event := &history.Events[i]

		fold := p.Folds[event.Type]
		if fold == nil {
			continue
		}

		if err := fold.Apply(&state, event); err != nil {
			return Snapshot[T]{}, errors.Wrapf(err, "failed to apply %s", event.Type)
		}
	}

	return Snapshot[T]{
		Stream:   history.Stream,
		Revision: history.Revision,
		Type:     EntityTypeOf(state),
		State:    state,
	}, nil
}
