package coins

import (
	"github.com/shopspring/decimal"

	"github.com/weegigs/coin-counter-go/journal"
)

// Tally counts inserted coins per registered denomination. Every registered
// denomination is present, zero until a coin is inserted.
type Tally struct {
	Counts map[Denomination]int64 `json:"counts"`
}

func (Tally) EntityType() journal.EntityType {
	return "coins:tally"
}

func NewTally(denominations Denominations) Tally {
	counts := make(map[Denomination]int64, len(denominations))
	for _, d := range denominations {
		counts[d] = 0
	}

	return Tally{Counts: counts}
}

// Worth sums face value times count over the numeric denominations.
func (t Tally) Worth() decimal.Decimal {
	worth := decimal.Zero
	for d, count := range t.Counts {
		if value, ok := d.Value(); ok {
			worth = worth.Add(value.Mul(decimal.NewFromInt(count)))
		}
	}

	return worth
}

// Total is the running sum of deposited amounts.
type Total struct {
	Amount decimal.Decimal `json:"amount"`
}

func (Total) EntityType() journal.EntityType {
	return "coins:total"
}
