package interfaces

import (
	"context"

	"stonk-trader/internal/domain"
)

// PendingOrderStore persists deferred orders. Add assigns the order's
// user-facing short code; Update persists status transitions; Remove
// discards an order that should never execute nor appear in listings.
type PendingOrderStore interface {
	Add(ctx context.Context, o *domain.PendingOrder) error
	AllPending(ctx context.Context) ([]*domain.PendingOrder, error)
	UserPending(ctx context.Context, userID uint64) ([]*domain.PendingOrder, error)
	ByShortCode(ctx context.Context, shortCode int) (*domain.PendingOrder, error)
	Update(ctx context.Context, o *domain.PendingOrder) error
	Remove(ctx context.Context, id string) error
}
