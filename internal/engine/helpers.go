package engine

import (
	"github.com/shopspring/decimal"

	"stonk-trader/internal/domain"
)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func sideVerb(side domain.TradeSide) string {
	if side == domain.Buy {
		return "buy"
	}
	return "sell"
}
