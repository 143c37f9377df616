package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TradeSide string

const (
	Buy  TradeSide = "BUY"
	Sell TradeSide = "SELL"
)

// Transaction is an immutable record of one executed trade, written
// atomically with the portfolio mutation it describes.
type Transaction struct {
	ID          string
	UserID      uint64
	Ticker      TickerSymbol
	Side        TradeSide
	Quantity    int
	Price       decimal.Decimal
	TotalAmount decimal.Decimal
	Timestamp   time.Time
}

func NewTransaction(userID uint64, ticker TickerSymbol, side TradeSide, quantity int, price decimal.Decimal, at time.Time) *Transaction {
	return &Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Ticker:      ticker,
		Side:        side,
		Quantity:    quantity,
		Price:       price,
		TotalAmount: price.Mul(decimal.NewFromInt(int64(quantity))),
		Timestamp:   at.UTC(),
	}
}
