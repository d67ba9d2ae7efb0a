package coins

import (
	"context"

	"github.com/weegigs/coin-counter-go/journal"
)

func insertCoin(denominations Denominations) journal.CommandHandler[Tally] {
	var handler journal.CommandHandlerFunction[Tally, InsertCoin] = func(ctx context.Context, cmd InsertCoin, state journal.Snapshot[Tally], publish journal.Appender) error {
		if !denominations.Contains(cmd.Denomination) {
			return InvalidDenomination(cmd.Denomination)
		}

		_, err := publish(ctx, state.Stream, journal.Options(), CoinInserted{Denomination: cmd.Denomination})
		return err
	}

	return handler
}

func resetTally() journal.CommandHandler[Tally] {
	var handler journal.CommandHandlerFunction[Tally, ResetTally] = func(ctx context.Context, _ ResetTally, state journal.Snapshot[Tally], publish journal.Appender) error {
		_, err := publish(ctx, state.Stream, journal.Options(), TallyReset{})
		return err
	}

	return handler
}

func deposit() journal.CommandHandler[Total] {
	var handler journal.CommandHandlerFunction[Total, Deposit] = func(ctx context.Context, cmd Deposit, state journal.Snapshot[Total], publish journal.Appender) error {
		if !cmd.Amount.IsPositive() {
			return InvalidAmount(cmd.Amount.String())
		}

		_, err := publish(ctx, state.Stream, journal.Options(), AmountDeposited{Amount: cmd.Amount})
		return err
	}

	return handler
}

func resetTotal() journal.CommandHandler[Total] {
	var handler journal.CommandHandlerFunction[Total, ResetTotal] = func(ctx context.Context, _ ResetTotal, state journal.Snapshot[Total], publish journal.Appender) error {
		_, err := publish(ctx, state.Stream, journal.Options(), TotalReset{})
		return err
	}

	return handler
}
