package journal

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
)

type CommandHandlers[T any] map[CommandName]CommandHandler[T]

type RoutedDispatcher[T any] struct {
	Append   Appender
	Handlers CommandHandlers[T]
}

// Dispatch routes command to its handler and returns the events it appended
// to the state's stream. Those appends are conditional on the stream still
// being at the state's revision unless the handler asks for another one.
func (d *RoutedDispatcher[T]) Dispatch(ctx context.Context, state Snapshot[T], command Command) ([]Event, error) {
	commandName := CommandNameOf(command)

	ctx, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("dispatch %s", commandName))
	defer span.End()

	handler := d.Handlers[commandName]
	if handler == nil {
		return nil, CommandNotFound(commandName)
	}

	tracking := &trackingAppender{append: d.Append, stream: state.Stream, revision: state.Revision}
	if err := handler.HandleCommand(ctx, command, state, tracking.Append); err != nil {
		return tracking.recorded, err
	}

	return tracking.recorded, nil
}

func CommandNotFound(command CommandName) CommandNotFoundError {
	return CommandNotFoundError{Command: command}
}

type CommandNotFoundError struct {
	Command CommandName
}

func (e CommandNotFoundError) Error() string {
	return fmt.Sprintf("unknown command: %s", e.Command)
}

type trackingAppender struct {
	append   Appender
	stream   StreamId
	revision Revision
	recorded []Event
}

func (a *trackingAppender) Append(ctx context.Context, id StreamId, options AppendOptions, events ...DomainEvent) (Revision, error) {
	own := id == a.stream
	if own && options.ExpectedRevision == "" {
		options.ExpectedRevision = a.revision
	}

	revision, err := a.append(ctx, id, options, events...)
	if err != nil || !own || len(events) == 0 {
		return revision, err
	}

	for _, event := range events {
		data, err := MarshalData(event)
		if err != nil {
			return revision, err
		}

		a.recorded = append(a.recorded, Event{
			Stream:   id,
			Type:     EventTypeOf(event),
			Metadata: options.Metadata,
			Data:     data,
		})
	}

	a.recorded[len(a.recorded)-1].Revision = revision
	a.revision = revision

	return revision, nil
}
