package domain

import "github.com/shopspring/decimal"

// StockQuote is a point-in-time snapshot from the quote provider.
type StockQuote struct {
	Ticker        TickerSymbol
	Current       decimal.Decimal
	Open          decimal.Decimal
	High          decimal.Decimal
	Low           decimal.Decimal
	PreviousClose decimal.Decimal
	Change        decimal.Decimal
	PercentChange decimal.Decimal
}
