package journal

type EventID string

func (id EventID) String() string {
	return string(id)
}

type EventType string

func (et EventType) String() string {
	return string(et)
}

type CorrelationID string

func (id CorrelationID) String() string {
	return string(id)
}

// DomainEvent is any value a command handler appends to a stream.
type DomainEvent any

// EventTyped lets an event choose its recorded type instead of the derived one.
type EventTyped interface {
	EventType() EventType
}

func EventTypeOf(event DomainEvent) EventType {
	if typed, ok := event.(EventTyped); ok {
		return typed.EventType()
	}

	return EventType(NameOf(event))
}

type Metadata struct {
	CausationId   EventID       `json:"causationId,omitempty"`
	CorrelationId CorrelationID `json:"correlationId,omitempty"`
}

// Event is a domain event as recorded by a store.
type Event struct {
	Stream    StreamId  `json:"stream"`
	Revision  Revision  `json:"revision"`
	ID        EventID   `json:"id"`
	Type      EventType `json:"type"`
	Timestamp Timestamp `json:"timestamp"`
	Metadata  Metadata  `json:"metadata"`
	Data      Data      `json:"data"`
}
