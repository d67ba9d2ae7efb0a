// Package esdbs stores journal streams as EventStoreDB streams.
package esdbs

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/EventStore/EventStore-Client-Go/esdb"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/weegigs/coin-counter-go/journal"
)

type StoreOption func(*Store)

const defaultPageSize = 97

func PageSize(size int) StoreOption {
	return func(s *Store) {
		if size <= 0 {
			size = defaultPageSize
		}

		s.pageSize = size
	}
}

func NewStore(client *esdb.Client, options ...StoreOption) *Store {
	store := &Store{
		db:       client,
		pageSize: defaultPageSize,
	}

	for _, option := range options {
		option(store)
	}

	return store
}

type Store struct {
	db       *esdb.Client
	pageSize int
}

// EventStoreDB numbers events from zero, which would collide with
// InitialRevision, so journal revisions are the event number plus one.
func revisionOf(eventNumber uint64) journal.Revision {
	return journal.Revision(fmt.Sprintf("%026x", eventNumber+1))
}

func eventNumberOf(revision journal.Revision) (uint64, error) {
	r, err := strconv.ParseUint(revision.String(), 16, 64)
	if err != nil || r == 0 {
		return 0, errors.Errorf("invalid expected revision %s", revision)
	}

	return r - 1, nil
}

func (s *Store) Append(ctx context.Context, id journal.StreamId, options journal.AppendOptions, events ...journal.DomainEvent) (journal.Revision, error) {
	if len(events) == 0 {
		return "", journal.ErrEmptyAppend
	}

	metadata := map[string]string{}
	if options.Metadata.CorrelationId != "" {
		metadata["$correlationId"] = options.Metadata.CorrelationId.String()
	}
	if options.Metadata.CausationId != "" {
		metadata["$causationId"] = options.Metadata.CausationId.String()
	}

	var md []byte
	if len(metadata) > 0 {
		var err error
		md, err = json.Marshal(metadata)
		if err != nil {
			return "", errors.Wrap(err, "failed to marshal metadata")
		}
	}

	proposed := make([]esdb.EventData, len(events))
	for i, event := range events {
		data, err := journal.MarshalData(event)
		if err != nil {
			return "", errors.Wrap(err, "failed to marshal event")
		}

		proposed[i] = esdb.EventData{
			ContentType: esdb.JsonContentType,
			EventType:   journal.EventTypeOf(event).String(),
			Data:        data.Data,
			Metadata:    md,
		}
	}

	var expected esdb.ExpectedRevision = esdb.Any{}
	if options.ExpectedRevision == journal.InitialRevision {
		expected = esdb.NoStream{}
	} else if options.ExpectedRevision != "" {
		number, err := eventNumberOf(options.ExpectedRevision)
		if err != nil {
			return "", err
		}

		expected = esdb.Revision(number)
	}

	result, err := s.db.AppendToStream(ctx, id.Encode().String(), esdb.AppendToStreamOptions{ExpectedRevision: expected}, proposed...)
	if err != nil {
		if errors.Is(err, esdb.ErrWrongExpectedStreamRevision) {
			return "", journal.ErrRevisionConflict
		}

		return "", errors.Wrap(err, "failed to append to stream")
	}

	return revisionOf(result.NextExpectedVersion), nil
}

func (s *Store) Load(ctx context.Context, id journal.StreamId) (journal.History, error) {
	var events []journal.Event

	var position esdb.StreamPosition = esdb.Start{}
	for {
		page, last, err := s.read(ctx, id, position)
		if err != nil {
			return journal.History{}, err
		}

		events = append(events, page...)
		if len(page) < s.pageSize {
			break
		}

		position = last
	}

	return journal.HistoryOf(id, events), nil
}

func (s *Store) read(ctx context.Context, id journal.StreamId, from esdb.StreamPosition) ([]journal.Event, esdb.StreamPosition, error) {
	if revision, ok := from.(esdb.StreamRevision); ok {
		from = esdb.StreamRevision{Value: revision.Value + 1}
	}

	stream, err := s.db.ReadStream(ctx, id.Encode().String(), esdb.ReadStreamOptions{From: from}, uint64(s.pageSize))
	if err != nil {
		if errors.Is(err, esdb.ErrStreamNotFound) || errors.Is(err, io.EOF) {
			return nil, esdb.End{}, nil
		}

		return nil, esdb.End{}, errors.Wrap(err, "failed to read stream")
	}
	defer stream.Close()

	var events []journal.Event
	var last esdb.StreamPosition = esdb.End{}

	for {
		resolved, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}

		if errors.Is(err, esdb.ErrStreamNotFound) {
			return nil, esdb.End{}, nil
		}

		if err != nil {
			return nil, esdb.End{}, errors.Wrap(err, "failed to read event")
		}

		e := resolved.OriginalEvent()

		var userMetadata map[string]string
		if len(e.UserMetadata) > 0 {
			if err := json.Unmarshal(e.UserMetadata, &userMetadata); err != nil {
				return nil, esdb.End{}, errors.Wrap(err, "failed to unmarshal metadata")
			}
		}

		events = append(events, journal.Event{
			Stream:    id,
			ID:        journal.EventID(e.EventID.String()),
			Revision:  revisionOf(e.EventNumber),
			Timestamp: journal.TimestampFromTime(e.CreatedDate),
			Type:      journal.EventType(e.EventType),
			Data: journal.Data{
				Encoding: journal.JsonEncoding,
				Data:     e.Data,
			},
			Metadata: journal.Metadata{
				CorrelationId: journal.CorrelationID(userMetadata["$correlationId"]),
				CausationId:   journal.EventID(userMetadata["$causationId"]),
			},
		})

		last = esdb.Revision(e.EventNumber)
	}

	return events, last, nil
}
