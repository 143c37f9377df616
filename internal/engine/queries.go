package engine

import (
	"context"
	"errors"
	"fmt"

	"stonk-trader/internal/domain"
	"stonk-trader/internal/logger"
)

// DefaultHistoryLimit bounds transaction-history queries when neither
// the caller nor the configuration supplies a limit.
const DefaultHistoryLimit = 50

// Portfolio returns the user's portfolio, creating it on first access.
func (e *Engine) Portfolio(ctx context.Context, userID uint64) (*domain.Portfolio, error) {
	return e.portfolios.GetOrCreate(ctx, userID)
}

// History returns up to limit transactions, most recent first. A
// non-positive limit falls back to the configured default.
func (e *Engine) History(ctx context.Context, userID uint64, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = e.historyLimit
	}
	return e.portfolios.History(ctx, userID, limit)
}

// PendingOrders lists the user's orders still awaiting execution.
func (e *Engine) PendingOrders(ctx context.Context, userID uint64) ([]*domain.PendingOrder, error) {
	return e.pending.UserPending(ctx, userID)
}

// Quote passes a full quote through from the provider.
func (e *Engine) Quote(ctx context.Context, ticker domain.TickerSymbol) (*domain.StockQuote, error) {
	q, err := e.quotes.Quote(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("%w for %s", domain.ErrPriceUnavailable, ticker)
	}
	return q, nil
}

// CancelPendingOrder cancels the user's queued order identified by its
// short code. Only the owner may cancel, and only while still Pending.
func (e *Engine) CancelPendingOrder(ctx context.Context, userID uint64, shortCode int) (string, error) {
	order, err := e.pending.ByShortCode(ctx, shortCode)
	if err != nil {
		return "", fmt.Errorf("look up order #%d: %w", shortCode, err)
	}
	if order == nil {
		return "", fmt.Errorf("%w: #%d", domain.ErrOrderNotFound, shortCode)
	}
	if order.UserID != userID {
		return "", domain.ErrOrderNotOwned
	}
	if order.Status != domain.StatusPending {
		return "", domain.ErrOrderNotCancellable
	}

	if err := order.MarkCancelled(); err != nil {
		return "", domain.ErrOrderNotCancellable
	}
	if err := e.pending.Update(ctx, order); err != nil {
		// The scheduler may have finalized the order between our read
		// and this write; surface that as not-cancellable.
		if errors.Is(err, domain.ErrOrderFinalized) {
			return "", domain.ErrOrderNotCancellable
		}
		return "", fmt.Errorf("persist cancellation of #%d: %w", shortCode, err)
	}

	logger.Info(ctx, "Pending order cancelled", "user_id", userID, "short_code", shortCode, "ticker", order.Ticker, "side", order.Side)
	return fmt.Sprintf("Cancelled pending order #%d (%s %d shares of %s).", shortCode, sideVerb(order.Side), order.Quantity, order.Ticker), nil
}
