package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"stonk-trader/internal/domain"
	"stonk-trader/internal/interfaces"
	"stonk-trader/internal/logger"
)

// Scheduler drains queued orders once the market opens. It wakes on a
// fixed interval, checks market hours, and replays every Pending order
// through the execution engine at the current market price. Orders are
// processed independently: one failure never blocks the rest of the
// batch.
type Scheduler struct {
	interval time.Duration
	trader   interfaces.Trader
	pending  interfaces.PendingOrderStore
	hours    interfaces.MarketHours
	notifier interfaces.Notifier

	now func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(interval time.Duration, trader interfaces.Trader, pending interfaces.PendingOrderStore, hours interfaces.MarketHours, notifier interfaces.Notifier) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		interval: interval,
		trader:   trader,
		pending:  pending,
		hours:    hours,
		notifier: notifier,
		now:      time.Now,
	}
}

// Start begins the polling loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	logger.Info(ctx, "Pending order scheduler started", "interval", s.interval.String())
	return nil
}

// Stop shuts the scheduler down, letting an in-flight tick finish so no
// order is abandoned mid-write.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info(ctx, "Pending order scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First pass immediately on start.
	s.Tick(s.ctx)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Tick(s.ctx)
		}
	}
}

// Tick runs one poll pass: nothing happens while the market is closed;
// otherwise every Pending order is replayed at the current price. Once
// the batch has been fetched it is processed to completion even if the
// scheduler is stopped mid-pass.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.hours.IsOpen(s.now()) {
		return
	}

	orders, err := s.pending.AllPending(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch pending orders", err)
		return
	}
	if len(orders) == 0 {
		return
	}

	logger.Info(ctx, "Processing pending orders", "count", len(orders))

	ctx = context.WithoutCancel(ctx)
	for _, order := range orders {
		s.process(ctx, order)
	}
}

func (s *Scheduler) process(ctx context.Context, order *domain.PendingOrder) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "Panic while processing pending order", "order_id", order.ID, "short_code", order.ShortCode, "panic", fmt.Sprint(r))
			s.fail(ctx, order, fmt.Sprintf("system error: %v", r))
		}
	}()

	var (
		outcome *interfaces.TradeOutcome
		err     error
	)
	if order.Side == domain.Buy {
		outcome, err = s.trader.Buy(ctx, order.UserID, order.Ticker, order.Quantity)
	} else {
		outcome, err = s.trader.Sell(ctx, order.UserID, order.Ticker, order.Quantity)
	}

	switch {
	case err == nil && outcome.Queued:
		// The market closed between this tick's open check and the
		// replay, so the engine queued a duplicate instead of
		// executing. Drop the duplicate and leave the original order
		// Pending so the next open's tick replays it.
		s.requeue(ctx, order, outcome.Order)
	case err == nil:
		s.succeed(ctx, order, outcome)
	case domain.IsTradeRejection(err):
		s.fail(ctx, order, err.Error())
	default:
		// Infrastructure fault: terminal Failed state with a generic
		// reason so the order does not silently stay queued forever.
		logger.ErrorWithErr(ctx, "System fault replaying pending order", err, "order_id", order.ID, "short_code", order.ShortCode)
		s.fail(ctx, order, "system error: "+err.Error())
	}
}

func (s *Scheduler) requeue(ctx context.Context, order, duplicate *domain.PendingOrder) {
	if duplicate != nil {
		if err := s.pending.Remove(ctx, duplicate.ID); err != nil {
			logger.ErrorWithErr(ctx, "Failed to remove order re-queued during replay", err,
				"order_id", duplicate.ID, "short_code", duplicate.ShortCode)
		}
	}
	logger.Warn(ctx, "Market closed during replay, order stays pending",
		"order_id", order.ID, "short_code", order.ShortCode, "user_id", order.UserID)
}

func (s *Scheduler) succeed(ctx context.Context, order *domain.PendingOrder, outcome *interfaces.TradeOutcome) {
	if err := order.MarkProcessed(); err != nil {
		// Finalized elsewhere (e.g. cancelled during this tick).
		return
	}
	if err := s.pending.Update(ctx, order); err != nil {
		if errors.Is(err, domain.ErrOrderFinalized) {
			logger.Warn(ctx, "Pending order finalized concurrently, skipping", "order_id", order.ID, "short_code", order.ShortCode)
			return
		}
		logger.ErrorWithErr(ctx, "CRITICAL: executed pending order but could not persist Processed status", err, "order_id", order.ID, "short_code", order.ShortCode)
		return
	}

	logger.Info(ctx, "Processed pending order",
		"order_id", order.ID,
		"short_code", order.ShortCode,
		"user_id", order.UserID,
		"side", order.Side,
		"ticker", order.Ticker,
		"quantity", order.Quantity,
	)
	s.notifier.Notify(ctx, order.UserID, interfaces.NotifySuccess, outcome.Message)
}

func (s *Scheduler) fail(ctx context.Context, order *domain.PendingOrder, reason string) {
	if err := order.MarkFailed(reason); err != nil {
		return
	}
	if err := s.pending.Update(ctx, order); err != nil {
		if errors.Is(err, domain.ErrOrderFinalized) {
			return
		}
		// The order stays Pending in the store and will be retried on
		// the next tick.
		logger.ErrorWithErr(ctx, "CRITICAL: could not persist Failed status for pending order", err, "order_id", order.ID, "short_code", order.ShortCode)
		return
	}

	logger.Warn(ctx, "Pending order failed",
		"order_id", order.ID,
		"short_code", order.ShortCode,
		"user_id", order.UserID,
		"side", order.Side,
		"ticker", order.Ticker,
		"quantity", order.Quantity,
		"reason", reason,
	)
	s.notifier.Notify(ctx, order.UserID, interfaces.NotifyFailure,
		fmt.Sprintf("Your pending order #%d to %s %d shares of %s failed to execute. Reason: %s",
			order.ShortCode, strings.ToLower(string(order.Side)), order.Quantity, order.Ticker, reason))
}
