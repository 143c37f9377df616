package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Holding is a user's position in one ticker. AveragePrice is the
// quantity-weighted cost basis; it changes only when shares are added.
type Holding struct {
	Ticker       TickerSymbol
	Quantity     int
	AveragePrice decimal.Decimal
}

func NewHolding(ticker TickerSymbol, quantity int, price decimal.Decimal) *Holding {
	return &Holding{Ticker: ticker, Quantity: quantity, AveragePrice: price}
}

// AddShares folds qty shares bought at price into the position:
// newAvg = (oldQty*oldAvg + qty*price) / (oldQty+qty).
func (h *Holding) AddShares(qty int, price decimal.Decimal) {
	totalCost := h.AveragePrice.Mul(decimal.NewFromInt(int64(h.Quantity))).
		Add(price.Mul(decimal.NewFromInt(int64(qty))))
	h.Quantity += qty
	h.AveragePrice = totalCost.Div(decimal.NewFromInt(int64(h.Quantity)))
}

// RemoveShares decrements the position. Selling never touches AveragePrice.
func (h *Holding) RemoveShares(qty int) error {
	if qty > h.Quantity {
		return fmt.Errorf("cannot remove %d shares from a position of %d", qty, h.Quantity)
	}
	h.Quantity -= qty
	return nil
}

// Portfolio is the aggregate root for one user's cash and holdings.
// Holdings have no identity outside their owning portfolio.
type Portfolio struct {
	UserID      uint64
	CashBalance decimal.Decimal
	Holdings    map[TickerSymbol]*Holding
}

func NewPortfolio(userID uint64, startingBalance decimal.Decimal) *Portfolio {
	return &Portfolio{
		UserID:      userID,
		CashBalance: startingBalance,
		Holdings:    make(map[TickerSymbol]*Holding),
	}
}

// Holding returns the position for ticker, or nil if none is held.
func (p *Portfolio) Holding(ticker TickerSymbol) *Holding {
	return p.Holdings[ticker]
}

func (p *Portfolio) AddHolding(h *Holding) {
	p.Holdings[h.Ticker] = h
}

func (p *Portfolio) RemoveHolding(ticker TickerSymbol) {
	delete(p.Holdings, ticker)
}

// AdjustCash applies a signed delta to the cash balance.
func (p *Portfolio) AdjustCash(delta decimal.Decimal) {
	p.CashBalance = p.CashBalance.Add(delta)
}

// Clone deep-copies the aggregate so callers can mutate a working copy
// without exposing in-flight state to concurrent readers.
func (p *Portfolio) Clone() *Portfolio {
	cp := &Portfolio{
		UserID:      p.UserID,
		CashBalance: p.CashBalance,
		Holdings:    make(map[TickerSymbol]*Holding, len(p.Holdings)),
	}
	for t, h := range p.Holdings {
		hc := *h
		cp.Holdings[t] = &hc
	}
	return cp
}
