package jetstream_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/coin-counter-go/journal"
	"github.com/weegigs/coin-counter-go/journal/jetstream"
	"github.com/weegigs/coin-counter-go/journal/journaltest"
)

func TestStore(t *testing.T) {
	if testing.Short() {
		t.Skip("jetstream store needs a nats container")
	}

	ctx := context.Background()
	store, cleanup, err := jetstream.NewTestStore(ctx)
	if err != nil {
		t.Skipf("nats container unavailable: %v", err)
	}
	defer cleanup()

	t.Run("jetstream store validation", func(t *testing.T) {
		journaltest.NewSuite(ctx, store).Run(t)
	})

	t.Run("append returns the loaded revision", func(t *testing.T) {
		id := journaltest.NewStreamId()

		revision, err := store.Append(ctx, id, journal.Options(), journaltest.ValidationEvent{Text: "a"}, journaltest.ValidationEvent{Text: "b"})
		require.NoError(t, err)

		history, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, revision, history.Revision)
	})
}
