package widget

import (
	"context"

	"github.com/shopspring/decimal"
)

// Reading is what the widget displays. Counts is nil for sources that only
// keep a total.
type Reading struct {
	Counts map[string]int64
	Total  decimal.Decimal
}

// Source is one server contract the widget can drive.
type Source interface {
	// Action names a successful submit in the activity log.
	Action() string
	Load(ctx context.Context) (Reading, error)
	Submit(ctx context.Context, amount decimal.Decimal, input string) (Reading, error)
	Reset(ctx context.Context) (Reading, error)
}

type CoinsAPI interface {
	Coins(ctx context.Context) (map[string]int64, error)
	Increment(ctx context.Context, denomination string) (map[string]int64, error)
	ResetCoins(ctx context.Context) (map[string]int64, error)
}

type DataAPI interface {
	Total(ctx context.Context) (decimal.Decimal, error)
	Add(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
	ResetTotal(ctx context.Context) (decimal.Decimal, error)
}

// CoinSource drives the denomination contract. Its total is the number of
// coins counted.
type CoinSource struct {
	API CoinsAPI
}

func (CoinSource) Action() string {
	return "insert"
}

func (s CoinSource) Load(ctx context.Context) (Reading, error) {
	return countsReading(s.API.Coins(ctx))
}

func (s CoinSource) Submit(ctx context.Context, _ decimal.Decimal, input string) (Reading, error) {
	return countsReading(s.API.Increment(ctx, input))
}

func (s CoinSource) Reset(ctx context.Context) (Reading, error) {
	return countsReading(s.API.ResetCoins(ctx))
}

func countsReading(counts map[string]int64, err error) (Reading, error) {
	if err != nil {
		return Reading{}, err
	}

	var total int64
	for _, count := range counts {
		total += count
	}

	return Reading{Counts: counts, Total: decimal.NewFromInt(total)}, nil
}

// DataSource drives the running total contract.
type DataSource struct {
	API DataAPI
}

func (DataSource) Action() string {
	return "add"
}

func (s DataSource) Load(ctx context.Context) (Reading, error) {
	return totalReading(s.API.Total(ctx))
}

func (s DataSource) Submit(ctx context.Context, amount decimal.Decimal, _ string) (Reading, error) {
	return totalReading(s.API.Add(ctx, amount))
}

func (s DataSource) Reset(ctx context.Context) (Reading, error) {
	return totalReading(s.API.ResetTotal(ctx))
}

func totalReading(total decimal.Decimal, err error) (Reading, error) {
	if err != nil {
		return Reading{}, err
	}

	return Reading{Total: total}, nil
}
