package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/coin-counter-go/journal"
	"github.com/weegigs/coin-counter-go/journal/journaltest"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	t.Run("memory store validation", func(t *testing.T) {
		journaltest.NewSuite(ctx, store).Run(t)
	})

	t.Run("removes a stream", func(t *testing.T) {
		id := journaltest.NewStreamId()

		_, err := store.Append(ctx, id, journal.Options(), journaltest.ValidationEvent{Text: "a"}, journaltest.ValidationEvent{Text: "b"})
		require.NoError(t, err)

		count, err := store.Remove(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		history, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, journal.InitialRevision, history.Revision)
	})

	t.Run("stamps events with the store clock", func(t *testing.T) {
		at := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
		clocked := NewStore(WithClock(fixedClock{now: at}))
		id := journaltest.NewStreamId()

		revision, err := clocked.Append(ctx, id, journal.Options(), journaltest.ValidationEvent{Text: "a"})
		require.NoError(t, err)

		history, err := clocked.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, journal.TimestampFromTime(at), history.Events[0].Timestamp)

		timestamp, err := revision.Timestamp()
		require.NoError(t, err)
		assert.Equal(t, journal.TimestampFromTime(at), timestamp)
	})

	t.Run("loaded histories are isolated from later appends", func(t *testing.T) {
		id := journaltest.NewStreamId()

		_, err := store.Append(ctx, id, journal.Options(), journaltest.ValidationEvent{Text: "a"})
		require.NoError(t, err)

		before, err := store.Load(ctx, id)
		require.NoError(t, err)

		_, err = store.Append(ctx, id, journal.Options(), journaltest.ValidationEvent{Text: "b"})
		require.NoError(t, err)

		assert.Len(t, before.Events, 1)
	})

	t.Run("concurrent appends are all recorded", func(t *testing.T) {
		id := journaltest.NewStreamId()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := store.Append(ctx, id, journal.Options(), journaltest.ValidationEvent{Count: i})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		history, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Len(t, history.Events, 50)
	})

	t.Run("compacts a stream into its snapshot", func(t *testing.T) {
		id := journaltest.NewStreamId()

		first, err := store.Append(ctx, id, journal.Options(), journaltest.ValidationEvent{Count: 1})
		require.NoError(t, err)
		second, err := store.Append(ctx, id, journal.Options(), journaltest.ValidationEvent{Count: 2})
		require.NoError(t, err)
		latest, err := store.Append(ctx, id, journal.Options(), journaltest.ValidationEvent{Count: 3})
		require.NoError(t, err)

		state, err := journal.MarshalData(map[string]int{"count": 3})
		require.NoError(t, err)
		saved := journal.StoredSnapshot{Stream: id, Revision: second, Type: "test:counted", State: state}
		require.NoError(t, store.SaveSnapshot(ctx, saved))

		snapshot, tail, err := store.LoadSnapshot(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, saved, snapshot)
		require.Len(t, tail.Events, 1)
		assert.Equal(t, latest, tail.Events[0].Revision)
		assert.Equal(t, latest, tail.Revision)

		history, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Len(t, history.Events, 1)
		assert.Equal(t, latest, history.Revision)

		require.NoError(t, store.SaveSnapshot(ctx, journal.StoredSnapshot{Stream: id, Revision: first, Type: "test:counted", State: state}))
		snapshot, _, err = store.LoadSnapshot(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, second, snapshot.Revision)

		_, err = store.Append(ctx, id, journal.Options(journal.WithExpectedRevision(second)), journaltest.ValidationEvent{Count: 4})
		assert.ErrorIs(t, err, journal.ErrRevisionConflict)
		_, err = store.Append(ctx, id, journal.Options(journal.WithExpectedRevision(latest)), journaltest.ValidationEvent{Count: 4})
		assert.NoError(t, err)
	})

	t.Run("loads an initial snapshot for a new stream", func(t *testing.T) {
		id := journaltest.NewStreamId()

		snapshot, tail, err := store.LoadSnapshot(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, journal.InitialRevision, snapshot.Revision)
		assert.Equal(t, journal.InitialRevision, tail.Revision)
		assert.Empty(t, tail.Events)
	})

	t.Run("honours a cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := store.Load(cancelled, journaltest.NewStreamId())
		assert.ErrorIs(t, err, context.Canceled)
	})
}
