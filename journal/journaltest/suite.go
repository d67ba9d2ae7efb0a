// Package journaltest holds the behaviour every journal.Store must share.
package journaltest

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/jaswdr/faker"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/coin-counter-go/journal"
)

var entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)

func NewStreamId() journal.StreamId {
	return journal.StreamId{
		Type: "go-test",
		Key:  strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()),
	}
}

type ValidationEvent struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

func NewSuite(ctx context.Context, store journal.Store) *Suite {
	return &Suite{
		store: store,
		ctx:   ctx,
		faker: faker.New(),
	}
}

type Suite struct {
	store journal.Store
	ctx   context.Context
	faker faker.Faker
}

func (s *Suite) Run(t *testing.T) {
	t.Run("loads an initial revision", s.LoadsInitial)
	t.Run("loads a revision with events", s.LoadsRevisionWithEvents)
	t.Run("appends a single event", s.AppendsSingleEvent)
	t.Run("appends multiple events in order", s.AppendsMultipleEvents)
	t.Run("rejects an empty append", s.RejectsEmptyAppend)
	t.Run("returns a revision conflict with an initial revision", s.RevisionConflictOnInitialRevision)
	t.Run("returns a revision conflict on a subsequent revision", s.RevisionConflictOnSubsequentRevision)
	t.Run("accepts the expected revision", s.AcceptsExpectedRevision)
	t.Run("supports causation id", s.Causation)
}

func (s *Suite) MakeEvent() ValidationEvent {
	return ValidationEvent{
		Text:  s.faker.Lorem().Sentence(10),
		Count: s.faker.IntBetween(0, 10000),
	}
}

func (s *Suite) MakeEvents(count int) []journal.DomainEvent {
	events := make([]journal.DomainEvent, count)
	for i := range events {
		events[i] = s.MakeEvent()
	}

	return events
}

func (s *Suite) LoadsInitial(t *testing.T) {
	id := NewStreamId()

	history, err := s.store.Load(s.ctx, id)
	require.NoError(t, err)

	assert.Empty(t, history.Events)
	assert.Equal(t, journal.InitialRevision, history.Revision)
	assert.Equal(t, id, history.Stream)
}

func (s *Suite) LoadsRevisionWithEvents(t *testing.T) {
	id := NewStreamId()

	revision, err := s.store.Append(s.ctx, id, journal.Options(), s.MakeEvent())
	require.NoError(t, err)

	history, err := s.store.Load(s.ctx, id)
	require.NoError(t, err)

	assert.Len(t, history.Events, 1)
	assert.Equal(t, revision, history.Revision)
	assert.Equal(t, id, history.Stream)
	assert.Equal(t, id, history.Events[0].Stream)
}

func (s *Suite) AppendsSingleEvent(t *testing.T) {
	id := NewStreamId()
	event := s.MakeEvent()

	_, err := s.store.Append(s.ctx, id, journal.Options(), event)
	require.NoError(t, err)

	last, err := s.Last(id)
	require.NoError(t, err)

	var decoded ValidationEvent
	require.NoError(t, journal.UnmarshalData(last.Data, &decoded))
	assert.Equal(t, event, decoded)
	assert.Equal(t, journal.EventTypeOf(event), last.Type)
}

func (s *Suite) AppendsMultipleEvents(t *testing.T) {
	id := NewStreamId()
	events := s.MakeEvents(17)

	_, err := s.store.Append(s.ctx, id, journal.Options(), events...)
	require.NoError(t, err)

	history, err := s.store.Load(s.ctx, id)
	require.NoError(t, err)
	require.Len(t, history.Events, len(events))

	for i, recorded := range history.Events {
		var decoded ValidationEvent
		require.NoError(t, journal.UnmarshalData(recorded.Data, &decoded))
		assert.Equal(t, events[i], decoded)
	}
}

func (s *Suite) RejectsEmptyAppend(t *testing.T) {
	_, err := s.store.Append(s.ctx, NewStreamId(), journal.Options())
	assert.ErrorIs(t, err, journal.ErrEmptyAppend)
}

func (s *Suite) RevisionConflictOnInitialRevision(t *testing.T) {
	id := NewStreamId()
	event := s.MakeEvent()

	_, err := s.store.Append(s.ctx, id, journal.Options(), event)
	require.NoError(t, err)

	_, err = s.store.Append(s.ctx, id, journal.Options(journal.WithExpectedRevision(journal.InitialRevision)), event)
	assert.ErrorIs(t, err, journal.ErrRevisionConflict)
}

func (s *Suite) RevisionConflictOnSubsequentRevision(t *testing.T) {
	id := NewStreamId()
	event := s.MakeEvent()

	_, err := s.store.Append(s.ctx, id, journal.Options(), event)
	require.NoError(t, err)

	first, err := s.store.Load(s.ctx, id)
	require.NoError(t, err)

	_, err = s.store.Append(s.ctx, id, journal.Options(), event)
	require.NoError(t, err)

	_, err = s.store.Append(s.ctx, id, journal.Options(journal.WithExpectedRevision(first.Revision)), event)
	assert.ErrorIs(t, err, journal.ErrRevisionConflict)
}

func (s *Suite) AcceptsExpectedRevision(t *testing.T) {
	id := NewStreamId()

	_, err := s.store.Append(s.ctx, id, journal.Options(journal.WithExpectedRevision(journal.InitialRevision)), s.MakeEvent())
	require.NoError(t, err)

	current, err := s.store.Load(s.ctx, id)
	require.NoError(t, err)

	_, err = s.store.Append(s.ctx, id, journal.Options(journal.WithExpectedRevision(current.Revision)), s.MakeEvent())
	assert.NoError(t, err)
}

func (s *Suite) Last(id journal.StreamId) (*journal.Event, error) {
	history, err := s.store.Load(s.ctx, id)
	if err != nil {
		return nil, err
	}

	length := len(history.Events)
	if length == 0 {
		return nil, errors.New("no events found")
	}

	return &history.Events[length-1], nil
}

func (s *Suite) Causation(t *testing.T) {
	id := NewStreamId()
	event := s.MakeEvent()

	_, err := s.store.Append(s.ctx, id, journal.Options(), event)
	require.NoError(t, err)

	first, err := s.Last(id)
	require.NoError(t, err)

	correlationId := journal.CorrelationID("event/" + first.ID.String())

	_, err = s.store.Append(s.ctx, id, journal.Options(journal.WithCausationId(correlationId, first.ID)), event)
	require.NoError(t, err)

	second, err := s.Last(id)
	require.NoError(t, err)

	assert.Equal(t, correlationId, second.Metadata.CorrelationId)
	assert.Equal(t, first.ID, second.Metadata.CausationId)
}
