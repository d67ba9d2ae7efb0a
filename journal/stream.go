package journal

import (
	"errors"
	"strings"
)

// StreamId identifies a single journal stream, e.g. {coins default}.
type StreamId struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

func (id StreamId) Encode() EncodedStreamId {
	return EncodedStreamId(strings.Join([]string{id.Type, id.Key}, "."))
}

func (id StreamId) String() string {
	return id.Encode().String()
}

type EncodedStreamId string

func (id EncodedStreamId) String() string {
	return string(id)
}

func (id EncodedStreamId) Decode() (StreamId, error) {
	separated := strings.SplitN(string(id), ".", 2)
	if len(separated) < 2 || separated[0] == "" {
		return StreamId{}, errors.New("expected . delimiter in stream id")
	}

	return StreamId{
		Type: separated[0],
		Key:  separated[1],
	}, nil
}

// History is everything recorded against a stream, oldest first.
type History struct {
	Stream   StreamId `json:"stream"`
	Events   []Event  `json:"events,omitempty"`
	Revision Revision `json:"revision"`
}

func HistoryOf(id StreamId, events []Event) History {
	revision := InitialRevision
	if len(events) > 0 {
		revision = events[len(events)-1].Revision
	}

	return History{Stream: id, Events: events, Revision: revision}
}
