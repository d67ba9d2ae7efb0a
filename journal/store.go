package journal

import (
	"context"
	"errors"
)

type Loader = func(ctx context.Context, id StreamId) (History, error)
type Appender = func(ctx context.Context, id StreamId, options AppendOptions, events ...DomainEvent) (Revision, error)

// Store is the persistence contract shared by every journal backend.
type Store interface {
	Load(ctx context.Context, id StreamId) (History, error)
	Append(ctx context.Context, id StreamId, options AppendOptions, events ...DomainEvent) (Revision, error)
}

var ErrRevisionConflict = errors.New("revision-conflict")

var ErrEmptyAppend = errors.New("attempted to append an empty list of events")

type AppendOptions struct {
	Metadata
	ExpectedRevision Revision
}

type AppendOption func(options *AppendOptions)

func Options(options ...AppendOption) AppendOptions {
	modifiers := &AppendOptions{}
	for _, option := range options {
		option(modifiers)
	}

	return *modifiers
}

// WithExpectedRevision makes an append conditional on the stream still being
// at revision. InitialRevision means the stream must not exist yet.
func WithExpectedRevision(revision Revision) AppendOption {
	return func(options *AppendOptions) {
		options.ExpectedRevision = revision
	}
}

func WithCausationId(correlationId CorrelationID, causationId EventID) AppendOption {
	return func(options *AppendOptions) {
		options.Metadata.CausationId = causationId
		options.Metadata.CorrelationId = correlationId
	}
}
