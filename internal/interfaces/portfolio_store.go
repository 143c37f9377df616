package interfaces

import (
	"context"

	"stonk-trader/internal/domain"
)

// PortfolioStore persists portfolio aggregates and their trade history.
// SaveWithTransaction must commit both records as one atomic unit.
type PortfolioStore interface {
	GetOrCreate(ctx context.Context, userID uint64) (*domain.Portfolio, error)
	Save(ctx context.Context, p *domain.Portfolio) error
	SaveWithTransaction(ctx context.Context, p *domain.Portfolio, tx *domain.Transaction) error
	History(ctx context.Context, userID uint64, limit int) ([]*domain.Transaction, error)
}
