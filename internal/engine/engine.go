package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"stonk-trader/internal/domain"
	"stonk-trader/internal/interfaces"
	"stonk-trader/internal/logger"
)

// Engine decides whether a trade executes now or is queued for the next
// market-open window, applies executed trades to the owning portfolio,
// and records history. It holds no lock of its own: every aggregate
// mutation is a single store call and the store serializes those.
type Engine struct {
	quotes     interfaces.QuoteProvider
	portfolios interfaces.PortfolioStore
	pending    interfaces.PendingOrderStore
	hours      interfaces.MarketHours

	historyLimit int

	now func() time.Time
}

// New builds an engine. historyLimit bounds history queries that pass
// no limit of their own; non-positive falls back to DefaultHistoryLimit.
func New(quotes interfaces.QuoteProvider, portfolios interfaces.PortfolioStore, pending interfaces.PendingOrderStore, hours interfaces.MarketHours, historyLimit int) *Engine {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Engine{
		quotes:       quotes,
		portfolios:   portfolios,
		pending:      pending,
		hours:        hours,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

func (e *Engine) Buy(ctx context.Context, userID uint64, ticker domain.TickerSymbol, quantity int) (*interfaces.TradeOutcome, error) {
	return e.trade(ctx, userID, ticker, domain.Buy, quantity)
}

func (e *Engine) Sell(ctx context.Context, userID uint64, ticker domain.TickerSymbol, quantity int) (*interfaces.TradeOutcome, error) {
	return e.trade(ctx, userID, ticker, domain.Sell, quantity)
}

func (e *Engine) trade(ctx context.Context, userID uint64, ticker domain.TickerSymbol, side domain.TradeSide, quantity int) (*interfaces.TradeOutcome, error) {
	if quantity <= 0 {
		return nil, domain.ErrQuantityNotPositive
	}

	now := e.now()
	if e.hours.Enforced() && !e.hours.IsOpen(now) {
		return e.queue(ctx, userID, ticker, side, quantity, now)
	}

	price, err := e.quotes.Price(ctx, ticker)
	if err != nil {
		logger.Warn(ctx, "Quote fetch failed", "ticker", ticker, "error", err)
		return nil, fmt.Errorf("%w for %s", domain.ErrPriceUnavailable, ticker)
	}

	portfolio, err := e.portfolios.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}

	switch side {
	case domain.Buy:
		return e.executeBuy(ctx, portfolio, ticker, quantity, price, now)
	default:
		return e.executeSell(ctx, portfolio, ticker, quantity, price, now)
	}
}

func (e *Engine) executeBuy(ctx context.Context, portfolio *domain.Portfolio, ticker domain.TickerSymbol, quantity int, price decimal.Decimal, now time.Time) (*interfaces.TradeOutcome, error) {
	totalCost := price.Mul(decimal.NewFromInt(int64(quantity)))
	if portfolio.CashBalance.LessThan(totalCost) {
		return nil, domain.ErrInsufficientFunds
	}

	holding := portfolio.Holding(ticker)
	if holding == nil {
		portfolio.AddHolding(domain.NewHolding(ticker, quantity, price))
	} else {
		holding.AddShares(quantity, price)
	}
	portfolio.AdjustCash(totalCost.Neg())

	tx := domain.NewTransaction(portfolio.UserID, ticker, domain.Buy, quantity, price, now)
	if err := e.portfolios.SaveWithTransaction(ctx, portfolio, tx); err != nil {
		return nil, fmt.Errorf("persist buy: %w", err)
	}

	logger.Trade(ctx, portfolio.UserID, string(domain.Buy), ticker.String(), quantity, price.StringFixed(2))
	return &interfaces.TradeOutcome{
		Message:     fmt.Sprintf("Bought %d shares of %s at %s for %s.", quantity, ticker, money(price), money(totalCost)),
		Transaction: tx,
	}, nil
}

func (e *Engine) executeSell(ctx context.Context, portfolio *domain.Portfolio, ticker domain.TickerSymbol, quantity int, price decimal.Decimal, now time.Time) (*interfaces.TradeOutcome, error) {
	holding := portfolio.Holding(ticker)
	if holding == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoSharesOwned, ticker)
	}
	if holding.Quantity < quantity {
		return nil, domain.ErrNotEnoughShares
	}

	if err := holding.RemoveShares(quantity); err != nil {
		return nil, err
	}
	if holding.Quantity == 0 {
		portfolio.RemoveHolding(ticker)
	}
	proceeds := price.Mul(decimal.NewFromInt(int64(quantity)))
	portfolio.AdjustCash(proceeds)

	tx := domain.NewTransaction(portfolio.UserID, ticker, domain.Sell, quantity, price, now)
	if err := e.portfolios.SaveWithTransaction(ctx, portfolio, tx); err != nil {
		return nil, fmt.Errorf("persist sell: %w", err)
	}

	logger.Trade(ctx, portfolio.UserID, string(domain.Sell), ticker.String(), quantity, price.StringFixed(2))
	return &interfaces.TradeOutcome{
		Message:     fmt.Sprintf("Sold %d shares of %s at %s for %s.", quantity, ticker, money(price), money(proceeds)),
		Transaction: tx,
	}, nil
}

// queue defers the trade to the next market-open window. The portfolio
// is not touched and no transaction is written on this path.
func (e *Engine) queue(ctx context.Context, userID uint64, ticker domain.TickerSymbol, side domain.TradeSide, quantity int, now time.Time) (*interfaces.TradeOutcome, error) {
	nextOpen, ok := e.hours.NextOpen(now)
	if !ok {
		return nil, errors.New("market closed but no next open could be computed")
	}

	warning := e.advisoryWarning(ctx, userID, ticker, side, quantity)

	order := domain.NewPendingOrder(userID, ticker, side, quantity, now, nextOpen)
	if err := e.pending.Add(ctx, order); err != nil {
		return nil, fmt.Errorf("queue pending order: %w", err)
	}

	logger.OrderQueued(ctx, userID, string(side), ticker.String(), quantity, order.ShortCode, nextOpen)
	msg := fmt.Sprintf("The market is closed. Your order to %s %d shares of %s was queued as order #%d and will execute when the market opens at %s.",
		sideVerb(side), quantity, ticker, order.ShortCode, nextOpen.UTC().Format(time.RFC1123))
	return &interfaces.TradeOutcome{
		Message: msg + warning,
		Queued:  true,
		Order:   order,
	}, nil
}

// advisoryWarning estimates, at the quote available right now, whether
// the queued order is likely to fail. Purely informational: any failure
// while estimating suppresses the warning rather than the order.
func (e *Engine) advisoryWarning(ctx context.Context, userID uint64, ticker domain.TickerSymbol, side domain.TradeSide, quantity int) string {
	price, err := e.quotes.Price(ctx, ticker)
	if err != nil {
		logger.Debug(ctx, "Advisory quote unavailable", "ticker", ticker, "error", err)
		return ""
	}
	portfolio, err := e.portfolios.GetOrCreate(ctx, userID)
	if err != nil {
		return ""
	}

	switch side {
	case domain.Buy:
		cost := price.Mul(decimal.NewFromInt(int64(quantity)))
		if portfolio.CashBalance.LessThan(cost) {
			return fmt.Sprintf(" Note: at the current price of %s this order would cost %s, more than your cash balance of %s.",
				money(price), money(cost), money(portfolio.CashBalance))
		}
	case domain.Sell:
		holding := portfolio.Holding(ticker)
		if holding == nil || holding.Quantity < quantity {
			owned := 0
			if holding != nil {
				owned = holding.Quantity
			}
			return fmt.Sprintf(" Note: you currently hold %d shares of %s, fewer than this order needs.", owned, ticker)
		}
	}
	return ""
}
