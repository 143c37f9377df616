package interfaces

import (
	"context"

	"stonk-trader/internal/domain"
)

// TradeOutcome describes a successful buy/sell call: either an executed
// transaction or a queued pending order, with a user-facing message.
type TradeOutcome struct {
	Message     string
	Queued      bool
	Transaction *domain.Transaction
	Order       *domain.PendingOrder
}

// Trader is the order-execution entry point shared by the request path
// and the pending-order scheduler.
type Trader interface {
	Buy(ctx context.Context, userID uint64, ticker domain.TickerSymbol, quantity int) (*TradeOutcome, error)
	Sell(ctx context.Context, userID uint64, ticker domain.TickerSymbol, quantity int) (*TradeOutcome, error)
}
