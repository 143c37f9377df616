package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"stonk-trader/internal/domain"
)

// QuoteProvider supplies live prices. Implementations must return a
// positive price or an error; the engine does not distinguish causes.
type QuoteProvider interface {
	Price(ctx context.Context, ticker domain.TickerSymbol) (decimal.Decimal, error)
	Quote(ctx context.Context, ticker domain.TickerSymbol) (*domain.StockQuote, error)
}
