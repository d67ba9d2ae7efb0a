package coins

import (
	"context"

	"github.com/google/wire"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/weegigs/coin-counter-go/journal"
)

// Key selects the pair of streams a counter reads and writes.
type Key string

const DefaultKey = Key("default")

func TallyStream(key Key) journal.StreamId {
	return journal.StreamId{Type: "coins", Key: string(key)}
}

func TotalStream(key Key) journal.StreamId {
	return journal.StreamId{Type: "total", Key: string(key)}
}

var Live = wire.NewSet(
	NewTallyService,
	NewTotalService,
	NewMetrics,
	NewCounter,
)

func NewTallyService(store journal.Store, denominations Denominations) *journal.Service[Tally] {
	projection := &journal.Projection[Tally]{
		Initial: func() Tally { return NewTally(denominations) },
		Folds: journal.Folds[Tally]{
			journal.EventTypeOf(CoinInserted{}): coinInserted(),
			journal.EventTypeOf(TallyReset{}):   tallyReset(),
		},
	}

	handlers := journal.CommandHandlers[Tally]{
		journal.CommandNameOf(InsertCoin{}): insertCoin(denominations),
		journal.CommandNameOf(ResetTally{}): resetTally(),
	}

	return journal.NewStoreService(store, projection, handlers)
}

func NewTotalService(store journal.Store) *journal.Service[Total] {
	projection := &journal.Projection[Total]{
		Initial: func() Total { return Total{Amount: decimal.Zero} },
		Folds: journal.Folds[Total]{
			journal.EventTypeOf(AmountDeposited{}): amountDeposited(),
			journal.EventTypeOf(TotalReset{}):      totalReset(),
		},
	}

	handlers := journal.CommandHandlers[Total]{
		journal.CommandNameOf(Deposit{}):    deposit(),
		journal.CommandNameOf(ResetTotal{}): resetTotal(),
	}

	return journal.NewStoreService(store, projection, handlers)
}

// Counter is the coin counter store: a tally of coins by denomination and
// a running decimal total, each kept in its own stream.
type Counter struct {
	tallies       journal.EntityService[Tally]
	totals        journal.EntityService[Total]
	key           Key
	denominations Denominations
	metrics       *Metrics
}

func NewCounter(tallies *journal.Service[Tally], totals *journal.Service[Total], key Key, denominations Denominations, metrics *Metrics) *Counter {
	return &Counter{
		tallies:       tallies,
		totals:        totals,
		key:           key,
		denominations: denominations,
		metrics:       metrics,
	}
}

func (c *Counter) Denominations() Denominations {
	return c.denominations
}

func (c *Counter) Counts(ctx context.Context) (map[Denomination]int64, error) {
	snapshot, err := c.tallies.Load(ctx, TallyStream(c.key))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tally")
	}

	return snapshot.State.Counts, nil
}

// Insert adds one coin of denomination d, rejecting labels that are not
// registered.
func (c *Counter) Insert(ctx context.Context, d Denomination) (map[Denomination]int64, error) {
	snapshot, err := c.tallies.Execute(ctx, TallyStream(c.key), InsertCoin{Denomination: d})
	if err != nil {
		if IsInvalidInput(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to insert coin")
	}

	c.metrics.coinInserted(d)

	return snapshot.State.Counts, nil
}

func (c *Counter) ResetCounts(ctx context.Context) (map[Denomination]int64, error) {
	snapshot, err := c.tallies.Execute(ctx, TallyStream(c.key), ResetTally{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to reset tally")
	}

	c.metrics.reset("coins")

	return snapshot.State.Counts, nil
}

func (c *Counter) Total(ctx context.Context) (decimal.Decimal, error) {
	snapshot, err := c.totals.Load(ctx, TotalStream(c.key))
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to load total")
	}

	return snapshot.State.Amount, nil
}

// Add deposits a positive amount and returns the new total.
func (c *Counter) Add(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	snapshot, err := c.totals.Execute(ctx, TotalStream(c.key), Deposit{Amount: amount})
	if err != nil {
		if IsInvalidInput(err) {
			return decimal.Zero, err
		}
		return decimal.Zero, errors.Wrap(err, "failed to deposit")
	}

	c.metrics.deposited()

	return snapshot.State.Amount, nil
}

func (c *Counter) ResetTotal(ctx context.Context) (decimal.Decimal, error) {
	snapshot, err := c.totals.Execute(ctx, TotalStream(c.key), ResetTotal{})
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to reset total")
	}

	c.metrics.reset("data")

	return snapshot.State.Amount, nil
}
