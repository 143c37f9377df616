package quotes

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"stonk-trader/internal/domain"
)

// Static serves fixed prices from configuration. Used as the STATIC
// quote source so the simulation runs without a provider API key.
type Static struct {
	prices map[domain.TickerSymbol]decimal.Decimal
}

func NewStatic(prices map[string]float64) *Static {
	m := make(map[domain.TickerSymbol]decimal.Decimal, len(prices))
	for raw, p := range prices {
		t, err := domain.NewTickerSymbol(raw)
		if err != nil || p <= 0 {
			continue
		}
		m[t] = decimal.NewFromFloat(p)
	}
	return &Static{prices: m}
}

func (s *Static) Price(_ context.Context, ticker domain.TickerSymbol) (decimal.Decimal, error) {
	p, ok := s.prices[ticker]
	if !ok {
		return decimal.Zero, fmt.Errorf("no static price configured for %s", ticker)
	}
	return p, nil
}

func (s *Static) Quote(ctx context.Context, ticker domain.TickerSymbol) (*domain.StockQuote, error) {
	p, err := s.Price(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return &domain.StockQuote{
		Ticker:        ticker,
		Current:       p,
		Open:          p,
		High:          p,
		Low:           p,
		PreviousClose: p,
	}, nil
}
