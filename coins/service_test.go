package coins

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/coin-counter-go/journal"
	"github.com/weegigs/coin-counter-go/journal/memory"
)

func newCounter(t *testing.T) (*Counter, *memory.Store, *Metrics) {
	t.Helper()

	store := memory.NewStore()
	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	counter := NewCounter(
		NewTallyService(store, DefaultDenominations),
		NewTotalService(store),
		DefaultKey,
		DefaultDenominations,
		metrics,
	)

	return counter, store, metrics
}

func TestTally(t *testing.T) {
	ctx := context.Background()

	t.Run("starts with every denomination at zero", func(t *testing.T) {
		counter, _, _ := newCounter(t)

		counts, err := counter.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[Denomination]int64{"1": 0, "5": 0, "10": 0, "25": 0}, counts)
	})

	t.Run("increments by exactly one per insert", func(t *testing.T) {
		counter, _, metrics := newCounter(t)

		for i := 0; i < 3; i++ {
			_, err := counter.Insert(ctx, "1")
			require.NoError(t, err)
		}

		counts, err := counter.Insert(ctx, "5")
		require.NoError(t, err)
		assert.Equal(t, map[Denomination]int64{"1": 3, "5": 1, "10": 0, "25": 0}, counts)

		assert.Equal(t, float64(3), testutil.ToFloat64(metrics.inserted.WithLabelValues("1")))
	})

	t.Run("rejects unregistered denominations without appending", func(t *testing.T) {
		counter, store, _ := newCounter(t)

		_, err := counter.Insert(ctx, "1")
		require.NoError(t, err)

		before, err := store.Load(ctx, TallyStream(DefaultKey))
		require.NoError(t, err)

		_, err = counter.Insert(ctx, "2")
		assert.True(t, IsInvalidInput(err))
		assert.EqualError(t, err, "Invalid denomination")

		after, err := store.Load(ctx, TallyStream(DefaultKey))
		require.NoError(t, err)
		assert.Equal(t, before.Revision, after.Revision)

		counts, err := counter.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[Denomination]int64{"1": 1, "5": 0, "10": 0, "25": 0}, counts)
	})

	t.Run("reset zeroes every denomination", func(t *testing.T) {
		counter, _, _ := newCounter(t)

		_, err := counter.Insert(ctx, "25")
		require.NoError(t, err)
		_, err = counter.Insert(ctx, "10")
		require.NoError(t, err)

		counts, err := counter.ResetCounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[Denomination]int64{"1": 0, "5": 0, "10": 0, "25": 0}, counts)

		counts, err = counter.ResetCounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[Denomination]int64{"1": 0, "5": 0, "10": 0, "25": 0}, counts)
	})

	t.Run("does not lose concurrent inserts", func(t *testing.T) {
		counter, _, _ := newCounter(t)

		var wg sync.WaitGroup
		for i := 0; i < 40; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := counter.Insert(ctx, "5")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		counts, err := counter.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(40), counts["5"])
	})

	t.Run("reset responses are zero while inserts race", func(t *testing.T) {
		counter, _, _ := newCounter(t)

		done := make(chan struct{})
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-done:
						return
					default:
					}

					_, err := counter.Insert(ctx, "1")
					assert.NoError(t, err)
				}
			}()
		}

		zero := map[Denomination]int64{"1": 0, "5": 0, "10": 0, "25": 0}
		for i := 0; i < 50; i++ {
			counts, err := counter.ResetCounts(ctx)
			require.NoError(t, err)
			assert.Equal(t, zero, counts)
		}

		close(done)
		wg.Wait()
	})

	t.Run("ignores coins whose denomination is no longer registered", func(t *testing.T) {
		store := memory.NewStore()
		_, err := store.Append(ctx, TallyStream(DefaultKey), journal.Options(), CoinInserted{Denomination: "50"}, CoinInserted{Denomination: "5"})
		require.NoError(t, err)

		counter := NewCounter(NewTallyService(store, DefaultDenominations), NewTotalService(store), DefaultKey, DefaultDenominations, nil)

		counts, err := counter.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[Denomination]int64{"1": 0, "5": 1, "10": 0, "25": 0}, counts)
	})
}

func TestTotal(t *testing.T) {
	ctx := context.Background()

	t.Run("starts at zero", func(t *testing.T) {
		counter, _, _ := newCounter(t)

		total, err := counter.Total(ctx)
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})

	t.Run("adds decimal amounts exactly", func(t *testing.T) {
		counter, _, _ := newCounter(t)

		_, err := counter.Add(ctx, decimal.NewFromInt(10))
		require.NoError(t, err)

		total, err := counter.Add(ctx, decimal.RequireFromString("5.5"))
		require.NoError(t, err)
		assert.Equal(t, "15.5", total.String())

		total, err = counter.ResetTotal(ctx)
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})

	t.Run("rejects non-positive amounts without appending", func(t *testing.T) {
		counter, store, _ := newCounter(t)

		for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-3)} {
			_, err := counter.Add(ctx, amount)
			assert.True(t, IsInvalidInput(err))
			assert.EqualError(t, err, "Invalid amount")
		}

		history, err := store.Load(ctx, TotalStream(DefaultKey))
		require.NoError(t, err)
		assert.Empty(t, history.Events)
	})

	t.Run("sums a sequence of adds", func(t *testing.T) {
		counter, _, _ := newCounter(t)

		expected := decimal.Zero
		for _, amount := range []string{"0.1", "0.2", "3", "1000.75", "0.05"} {
			value := decimal.RequireFromString(amount)
			expected = expected.Add(value)

			total, err := counter.Add(ctx, value)
			require.NoError(t, err)
			assert.True(t, expected.Equal(total))
			assert.False(t, total.IsNegative())
		}
	})

	t.Run("keeps the total separate from the tally", func(t *testing.T) {
		counter, _, _ := newCounter(t)

		_, err := counter.Add(ctx, decimal.NewFromInt(4))
		require.NoError(t, err)

		_, err = counter.ResetCounts(ctx)
		require.NoError(t, err)

		total, err := counter.Total(ctx)
		require.NoError(t, err)
		assert.Equal(t, "4", total.String())
	})
}
