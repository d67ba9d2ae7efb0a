package coins

import "github.com/shopspring/decimal"

type CoinInserted struct {
	Denomination Denomination `json:"denomination"`
}

type TallyReset struct{}

type AmountDeposited struct {
	Amount decimal.Decimal `json:"amount"`
}

type TotalReset struct{}
