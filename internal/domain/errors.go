package domain

import "errors"

// Trade rejections: the request was understood and refused. These carry
// the user-facing reason and never leave partial state behind. Anything
// outside this set is treated as a system fault by the scheduler.
var (
	ErrQuantityNotPositive = errors.New("quantity must be greater than zero")
	ErrPriceUnavailable    = errors.New("could not get price")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrNoSharesOwned       = errors.New("no shares owned")
	ErrNotEnoughShares     = errors.New("not enough shares to sell")
	ErrOrderNotFound       = errors.New("pending order not found")
	ErrOrderNotOwned       = errors.New("pending order belongs to another user")
	ErrOrderNotCancellable = errors.New("order is no longer pending and cannot be cancelled")
)

var rejections = []error{
	ErrQuantityNotPositive,
	ErrPriceUnavailable,
	ErrInsufficientFunds,
	ErrNoSharesOwned,
	ErrNotEnoughShares,
	ErrOrderNotFound,
	ErrOrderNotOwned,
	ErrOrderNotCancellable,
	ErrEmptyTicker,
}

// IsTradeRejection reports whether err (possibly wrapped) is one of the
// expected trade rejections rather than an infrastructure fault.
func IsTradeRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
