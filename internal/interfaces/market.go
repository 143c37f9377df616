package interfaces

import "time"

// MarketHours answers whether trading is allowed at a given instant and
// when the next trading window opens.
type MarketHours interface {
	Enforced() bool
	IsOpen(now time.Time) bool
	NextOpen(now time.Time) (time.Time, bool)
}
