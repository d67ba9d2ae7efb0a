// Package jetstream records each append as a single change set message on a
// NATS JetStream subject per journal stream.
package jetstream

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/coin-counter-go/internal/sequence"
	"github.com/weegigs/coin-counter-go/journal"
)

type StoreOption func(*Store)

const prefix = "change-set."

type Clock interface {
	Now() time.Time
}

func WithClock(clock Clock) StoreOption {
	return func(store *Store) {
		store.clock = clock
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

type record struct {
	Stream   journal.StreamId  `json:"stream"`
	ID       journal.EventID   `json:"id"`
	Type     journal.EventType `json:"type"`
	Data     journal.Data      `json:"data"`
	Metadata journal.Metadata  `json:"metadata"`
}

type changeSet struct {
	Events []record `json:"events"`
}

// NewStore binds a store to the JetStream stream name, creating the stream
// when it does not exist yet.
func NewStore(name string, connection *nats.Conn, options ...StoreOption) (*Store, error) {
	js, err := connection.JetStream()
	if err != nil {
		return nil, err
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:        name,
		Description: "change set stream for " + name,
		Subjects:    []string{prefix + ">"},
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return nil, err
	}

	store := &Store{
		name:       name,
		manager:    js,
		stream:     js,
		clock:      systemClock{},
		marshaller: JSONMarshaller{},
	}

	for _, option := range options {
		option(store)
	}

	if store.ids == nil {
		store.ids = journal.NewRevisionGenerator()
	}

	return store, nil
}

type Store struct {
	name       string
	manager    nats.JetStreamManager
	stream     nats.JetStream
	clock      Clock
	ids        *journal.RevisionGenerator
	marshaller Marshaller
}

func subject(id journal.StreamId) string {
	return prefix + id.Encode().String()
}

func (s *Store) Append(ctx context.Context, id journal.StreamId, options journal.AppendOptions, events ...journal.DomainEvent) (journal.Revision, error) {
	if len(events) == 0 {
		return "", journal.ErrEmptyAppend
	}

	now := s.clock.Now()
	records := make([]record, len(events))
	for index, event := range events {
		data, err := journal.MarshalData(event)
		if err != nil {
			return "", err
		}

		records[index] = record{
			Stream:   id,
			ID:       journal.EventID(s.ids.NewRevision(now)),
			Type:     journal.EventTypeOf(event),
			Data:     data,
			Metadata: options.Metadata,
		}
	}

	bytes, err := s.marshaller.Marshal(changeSet{Events: records})
	if err != nil {
		return "", err
	}

	opts := []nats.PubOpt{nats.Context(ctx)}

	expected := options.ExpectedRevision
	if expected != "" {
		if expected == journal.InitialRevision {
			opts = append(opts, nats.ExpectLastSequencePerSubject(0))
		} else {
			number, err := sequence.DecodeSequenceNumber(expected)
			if err != nil {
				return "", err
			}

			opts = append(opts, nats.ExpectLastSequencePerSubject(number))
		}
	}

	ack, err := s.stream.Publish(subject(id), bytes, opts...)
	if err != nil {
		var api *nats.APIError
		if errors.As(err, &api) && api.ErrorCode == nats.JSErrCodeStreamWrongLastSequence {
			return "", journal.ErrRevisionConflict
		}

		return "", err
	}

	return sequence.EncodeRevision(ulid.Timestamp(now), ack.Sequence, uint16(len(records)-1))
}

func (s *Store) Load(ctx context.Context, id journal.StreamId) (journal.History, error) {
	events, err := s.read(ctx, subject(id))
	if err != nil {
		return journal.History{}, err
	}

	return journal.HistoryOf(id, events), nil
}

func (s *Store) latest(ctx context.Context, subject string) (*uint64, error) {
	msg, err := s.manager.GetLastMsg(s.name, subject, nats.Context(ctx))
	if err != nil {
		if errors.Is(err, nats.ErrMsgNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &msg.Sequence, nil
}

func (s *Store) read(ctx context.Context, subject string) ([]journal.Event, error) {
	latest, err := s.latest(ctx, subject)
	if err != nil {
		return nil, err
	}

	if latest == nil {
		return nil, nil
	}

	subscription, err := s.stream.SubscribeSync(subject, nats.DeliverAll(), nats.OrderedConsumer())
	if err != nil {
		return nil, err
	}
	defer func(subscription *nats.Subscription) {
		if err := subscription.Unsubscribe(); err != nil {
			log.Err(err).Msg("ephemeral stream subscription failed to unsubscribe cleanly")
		}
	}(subscription)

	var events []journal.Event
	for {
		msg, err := subscription.NextMsgWithContext(ctx)
		if err != nil {
			return nil, err
		}

		metadata, err := msg.Metadata()
		if err != nil {
			return nil, err
		}

		recorded, err := s.decode(msg.Data, metadata)
		if err != nil {
			return nil, err
		}

		events = append(events, recorded...)

		if metadata.Sequence.Stream >= *latest {
			break
		}
	}

	return events, nil
}

func (s *Store) decode(data []byte, metadata *nats.MsgMetadata) ([]journal.Event, error) {
	cs := &changeSet{}
	if err := s.marshaller.Unmarshal(data, cs); err != nil {
		return nil, err
	}

	// Revisions carry the time the change set was minted, which the event
	// ids share, so that Append and Load agree on them.
	ts := ulid.Timestamp(metadata.Timestamp)
	if len(cs.Events) > 0 {
		if minted, err := ulid.Parse(cs.Events[0].ID.String()); err == nil {
			ts = minted.Time()
		}
	}

	recordedAt := journal.TimestampFromTime(metadata.Timestamp)

	result := make([]journal.Event, 0, len(cs.Events))
	for i, event := range cs.Events {
		revision, err := sequence.EncodeRevision(ts, metadata.Sequence.Stream, uint16(i))
		if err != nil {
			return nil, err
		}

		result = append(result, journal.Event{
			Stream:    event.Stream,
			Revision:  revision,
			ID:        event.ID,
			Type:      event.Type,
			Timestamp: recordedAt,
			Metadata:  event.Metadata,
			Data:      event.Data,
		})
	}

	return result, nil
}
