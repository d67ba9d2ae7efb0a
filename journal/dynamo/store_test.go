package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/coin-counter-go/journal"
	"github.com/weegigs/coin-counter-go/journal/journaltest"
)

func TestStore(t *testing.T) {
	if testing.Short() {
		t.Skip("dynamo store needs a dynamodb-local container")
	}

	ctx := context.Background()
	store, tearDown, err := NewTestStore(ctx)
	if err != nil {
		t.Skipf("dynamodb-local unavailable: %v", err)
	}
	defer tearDown()

	t.Run("dynamo store validation", func(t *testing.T) {
		journaltest.NewSuite(ctx, store).Run(t)
	})

	t.Run("removes details for streams", func(t *testing.T) {
		id := journaltest.NewStreamId()

		_, err := store.Append(ctx, id, journal.Options(), journaltest.ValidationEvent{Text: "removed"})
		require.NoError(t, err)

		count, err := store.Remove(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, journal.InitialRevision, loaded.Revision)
	})
}

func TestChangeSet(t *testing.T) {
	id := journal.StreamId{Type: "coins", Key: "default"}
	events := []journal.Event{
		{Stream: id, Revision: "01A", Type: "coins:coin-inserted", Data: journal.Data{Encoding: journal.JsonEncoding, Data: []byte(`{"denomination":"5"}`)}},
		{Stream: id, Revision: "01B", Type: "coins:coin-inserted", Timestamp: "2024-01-01T00:00:00Z"},
	}

	cs, err := newChangeSet(id, events)
	require.NoError(t, err)

	assert.Equal(t, "coins.default", cs.PartitionKey)
	assert.Equal(t, "change-set#01B", cs.SortKey)
	assert.Equal(t, journal.Revision("01B"), cs.Revision)
	assert.Equal(t, latestSortKey, cs.latest().SortKey)

	decoded, err := cs.recorded()
	require.NoError(t, err)
	assert.Equal(t, events, decoded)
}

func TestMaybeRevisionConflict(t *testing.T) {
	assert.NoError(t, maybeRevisionConflict(nil))

	cancelled := &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}
	assert.ErrorIs(t, maybeRevisionConflict(cancelled), journal.ErrRevisionConflict)

	other := errors.New("throttled")
	assert.Equal(t, other, maybeRevisionConflict(other))
}
