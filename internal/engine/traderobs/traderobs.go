package traderobs

import (
	"context"
	"time"

	"stonk-trader/internal/domain"
	"stonk-trader/internal/interfaces"
	"stonk-trader/internal/logger"
)

type observableTrader struct {
	trader interfaces.Trader
}

var _ interfaces.Trader = (*observableTrader)(nil)

// Wrap decorates a trader with spans and timing logs so every order,
// whether typed by a user or replayed by the scheduler, shows up in the
// trace output.
func Wrap(t interfaces.Trader) interfaces.Trader {
	return &observableTrader{trader: t}
}

func (ot *observableTrader) Buy(ctx context.Context, userID uint64, ticker domain.TickerSymbol, quantity int) (*interfaces.TradeOutcome, error) {
	return ot.execute(ctx, "trader.Buy", userID, ticker, quantity, ot.trader.Buy)
}

func (ot *observableTrader) Sell(ctx context.Context, userID uint64, ticker domain.TickerSymbol, quantity int) (*interfaces.TradeOutcome, error) {
	return ot.execute(ctx, "trader.Sell", userID, ticker, quantity, ot.trader.Sell)
}

func (ot *observableTrader) execute(ctx context.Context, op string, userID uint64, ticker domain.TickerSymbol, quantity int,
	fn func(context.Context, uint64, domain.TickerSymbol, int) (*interfaces.TradeOutcome, error),
) (*interfaces.TradeOutcome, error) {
	ctx, span := logger.StartSpan(ctx, op)
	defer span.End()

	start := time.Now()

	outcome, err := fn(ctx, userID, ticker, quantity)
	if err != nil {
		logger.ErrorWithErr(ctx, "Order rejected", err,
			"operation", op,
			"user_id", userID,
			"ticker", ticker,
			"quantity", quantity,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.Info(ctx, "Order handled",
		"operation", op,
		"user_id", userID,
		"ticker", ticker,
		"quantity", quantity,
		"queued", outcome.Queued,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return outcome, nil
}
