package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"stonk-trader/internal/domain"
)

// In-memory adapters. Each exported method is one read-modify-write
// critical section, which is the only serialization the engine and the
// scheduler rely on for concurrent access to the same aggregate.

type PortfolioStore struct {
	mu              sync.RWMutex
	startingBalance decimal.Decimal
	portfolios      map[uint64]*domain.Portfolio
	history         map[uint64][]*domain.Transaction
}

func NewPortfolioStore(startingBalance decimal.Decimal) *PortfolioStore {
	return &PortfolioStore{
		startingBalance: startingBalance,
		portfolios:      make(map[uint64]*domain.Portfolio),
		history:         make(map[uint64][]*domain.Transaction),
	}
}

// GetOrCreate returns a private copy of the user's portfolio, creating
// it with the configured starting balance on first access.
func (s *PortfolioStore) GetOrCreate(_ context.Context, userID uint64) (*domain.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.portfolios[userID]
	if !ok {
		p = domain.NewPortfolio(userID, s.startingBalance)
		s.portfolios[userID] = p
	}
	return p.Clone(), nil
}

func (s *PortfolioStore) Save(_ context.Context, p *domain.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portfolios[p.UserID] = p.Clone()
	return nil
}

// SaveWithTransaction commits the portfolio and its transaction record
// under one lock so no reader observes one without the other.
func (s *PortfolioStore) SaveWithTransaction(_ context.Context, p *domain.Portfolio, tx *domain.Transaction) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portfolios[p.UserID] = p.Clone()
	s.history[p.UserID] = append(s.history[p.UserID], tx)
	return nil
}

// History returns up to limit transactions, most recent first.
func (s *PortfolioStore) History(_ context.Context, userID uint64, limit int) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.history[userID]
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	out := make([]*domain.Transaction, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

type PendingOrderStore struct {
	mu       sync.RWMutex
	orders   map[string]*domain.PendingOrder
	byCode   map[int]string
	nextCode int
}

func NewPendingOrderStore() *PendingOrderStore {
	return &PendingOrderStore{
		orders:   make(map[string]*domain.PendingOrder),
		byCode:   make(map[int]string),
		nextCode: 1,
	}
}

// Add stores the order and assigns its sequential short code.
func (s *PendingOrderStore) Add(_ context.Context, o *domain.PendingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ShortCode = s.nextCode
	s.nextCode++
	cp := *o
	s.orders[o.ID] = &cp
	s.byCode[o.ShortCode] = o.ID
	return nil
}

func (s *PendingOrderStore) AllPending(_ context.Context) ([]*domain.PendingOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.PendingOrder
	for _, o := range s.orders {
		if o.Status == domain.StatusPending {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *PendingOrderStore) UserPending(_ context.Context, userID uint64) ([]*domain.PendingOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.PendingOrder
	for _, o := range s.orders {
		if o.UserID == userID && o.Status == domain.StatusPending {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *PendingOrderStore) ByShortCode(_ context.Context, shortCode int) (*domain.PendingOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[shortCode]
	if !ok {
		return nil, nil
	}
	cp := *s.orders[id]
	return &cp, nil
}

// Remove discards an order entirely, freeing its short code.
func (s *PendingOrderStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	delete(s.orders, id)
	delete(s.byCode, o.ShortCode)
	return nil
}

// Update persists a status transition. A caller holding a stale copy of
// an order that has since been finalized is rejected, which keeps the
// Pending -> terminal transition one-way even under races.
func (s *PendingOrderStore) Update(_ context.Context, o *domain.PendingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.orders[o.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if existing.Status != domain.StatusPending && existing.Status != o.Status {
		return domain.ErrOrderFinalized
	}
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}
