package coins

import (
	"github.com/shopspring/decimal"

	"github.com/weegigs/coin-counter-go/journal"
)

func coinInserted() journal.Fold[Tally] {
	var fold journal.FoldFunction[Tally, CoinInserted] = func(tally *Tally, event *CoinInserted) error {
		// labels dropped from the registered set are ignored
		if _, ok := tally.Counts[event.Denomination]; ok {
			tally.Counts[event.Denomination]++
		}
		return nil
	}

	return fold
}

func tallyReset() journal.Fold[Tally] {
	var fold journal.FoldFunction[Tally, TallyReset] = func(tally *Tally, _ *TallyReset) error {
		for d := range tally.Counts {
			tally.Counts[d] = 0
		}
		return nil
	}

	return fold
}

func amountDeposited() journal.Fold[Total] {
	var fold journal.FoldFunction[Total, AmountDeposited] = func(total *Total, event *AmountDeposited) error {
		total.Amount = total.Amount.Add(event.Amount)
		return nil
	}

	return fold
}

func totalReset() journal.Fold[Total] {
	var fold journal.FoldFunction[Total, TotalReset] = func(total *Total, _ *TotalReset) error {
		total.Amount = decimal.Zero
		return nil
	}

	return fold
}
