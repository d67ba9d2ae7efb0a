package coins

import "github.com/shopspring/decimal"

type InsertCoin struct {
	Denomination Denomination
}

type ResetTally struct{}

type Deposit struct {
	Amount decimal.Decimal
}

type ResetTotal struct{}
