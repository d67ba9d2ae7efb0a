package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type coinSlotJammed struct{}

type renamed struct{}

func (renamed) TypeName() string {
	return "custom:renamed"
}

type typedEvent struct{}

func (typedEvent) EventType() EventType {
	return "typed"
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, "journal:coin-slot-jammed", NameOf(coinSlotJammed{}))
	assert.Equal(t, "journal:coin-slot-jammed", NameOf(&coinSlotJammed{}))
	assert.Equal(t, "custom:renamed", NameOf(renamed{}))
	assert.Equal(t, "string", NameOf("value"))
}

func TestEventTypeOf(t *testing.T) {
	assert.Equal(t, EventType("typed"), EventTypeOf(typedEvent{}))
	assert.Equal(t, EventType("journal:coin-slot-jammed"), EventTypeOf(coinSlotJammed{}))
}

func TestStreamIdEncoding(t *testing.T) {
	id := StreamId{Type: "coins", Key: "default.front"}

	encoded := id.Encode()
	assert.Equal(t, EncodedStreamId("coins.default.front"), encoded)

	decoded, err := encoded.Decode()
	assert.NoError(t, err)
	assert.Equal(t, id, decoded)

	_, err = EncodedStreamId("coins").Decode()
	assert.Error(t, err)
}

func TestHistoryOf(t *testing.T) {
	id := StreamId{Type: "coins", Key: "default"}

	assert.Equal(t, InitialRevision, HistoryOf(id, nil).Revision)

	history := HistoryOf(id, []Event{{Revision: "a"}, {Revision: "b"}})
	assert.Equal(t, Revision("b"), history.Revision)
}
