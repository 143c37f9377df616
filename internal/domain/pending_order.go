package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusProcessed OrderStatus = "PROCESSED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusFailed    OrderStatus = "FAILED"
)

// ErrOrderFinalized is returned when a transition is attempted on an
// order that already reached a terminal status.
var ErrOrderFinalized = errors.New("pending order already finalized")

// PendingOrder is a trade request deferred because the market was closed.
// It starts Pending and moves exactly once to Processed, Cancelled or
// Failed; the terminal states accept no further transitions.
type PendingOrder struct {
	ID            string
	ShortCode     int
	UserID        uint64
	Ticker        TickerSymbol
	Side          TradeSide
	Quantity      int
	RequestedAt   time.Time
	ScheduledFor  time.Time
	Status        OrderStatus
	FailureReason string
}

func NewPendingOrder(userID uint64, ticker TickerSymbol, side TradeSide, quantity int, requestedAt, scheduledFor time.Time) *PendingOrder {
	return &PendingOrder{
		ID:           uuid.NewString(),
		UserID:       userID,
		Ticker:       ticker,
		Side:         side,
		Quantity:     quantity,
		RequestedAt:  requestedAt.UTC(),
		ScheduledFor: scheduledFor.UTC(),
		Status:       StatusPending,
	}
}

func (o *PendingOrder) MarkProcessed() error {
	if o.Status != StatusPending {
		return ErrOrderFinalized
	}
	o.Status = StatusProcessed
	return nil
}

func (o *PendingOrder) MarkCancelled() error {
	if o.Status != StatusPending {
		return ErrOrderFinalized
	}
	o.Status = StatusCancelled
	return nil
}

func (o *PendingOrder) MarkFailed(reason string) error {
	if o.Status != StatusPending {
		return ErrOrderFinalized
	}
	o.Status = StatusFailed
	o.FailureReason = reason
	return nil
}
