package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stonk-trader/internal/domain"
	"stonk-trader/internal/engine"
	"stonk-trader/internal/interfaces"
	"stonk-trader/internal/storage"
)

type fakeHours struct {
	enforced bool
	open     bool
	next     time.Time

	// openSequence, when set, scripts successive IsOpen answers; the
	// last entry repeats once exhausted.
	openSequence []bool
	openCalls    int
}

func (f *fakeHours) Enforced() bool { return f.enforced }

func (f *fakeHours) IsOpen(time.Time) bool {
	if !f.enforced {
		return true
	}
	if len(f.openSequence) > 0 {
		i := f.openCalls
		if i >= len(f.openSequence) {
			i = len(f.openSequence) - 1
		}
		f.openCalls++
		return f.openSequence[i]
	}
	return f.open
}

func (f *fakeHours) NextOpen(time.Time) (time.Time, bool) {
	if !f.enforced {
		return time.Time{}, false
	}
	return f.next, true
}

type stubQuotes struct {
	price decimal.Decimal
	err   error
}

func (s *stubQuotes) Price(context.Context, domain.TickerSymbol) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.price, nil
}

func (s *stubQuotes) Quote(ctx context.Context, ticker domain.TickerSymbol) (*domain.StockQuote, error) {
	p, err := s.Price(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return &domain.StockQuote{Ticker: ticker, Current: p}, nil
}

type notification struct {
	userID  uint64
	kind    interfaces.NotifyKind
	message string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) Notify(_ context.Context, userID uint64, kind interfaces.NotifyKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{userID, kind, message})
}

type stubTrader struct {
	err   error
	panic bool
	calls int
}

func (s *stubTrader) Buy(context.Context, uint64, domain.TickerSymbol, int) (*interfaces.TradeOutcome, error) {
	s.calls++
	if s.panic {
		panic("storage gone")
	}
	if s.err != nil {
		return nil, s.err
	}
	return &interfaces.TradeOutcome{Message: "done"}, nil
}

func (s *stubTrader) Sell(ctx context.Context, userID uint64, ticker domain.TickerSymbol, qty int) (*interfaces.TradeOutcome, error) {
	return s.Buy(ctx, userID, ticker, qty)
}

type fixture struct {
	scheduler  *Scheduler
	engine     *engine.Engine
	quotes     *stubQuotes
	pending    *storage.PendingOrderStore
	portfolios *storage.PortfolioStore
	hours      *fakeHours
	notifier   *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		quotes:     &stubQuotes{price: decimal.RequireFromString("50")},
		pending:    storage.NewPendingOrderStore(),
		portfolios: storage.NewPortfolioStore(decimal.RequireFromString("10000")),
		hours:      &fakeHours{enforced: true, open: false, next: time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC)},
		notifier:   &recordingNotifier{},
	}
	f.engine = engine.New(f.quotes, f.portfolios, f.pending, f.hours, 0)
	f.scheduler = New(time.Minute, f.engine, f.pending, f.hours, f.notifier)
	return f
}

// queueOrder places an order while the fixture market is closed.
func (f *fixture) queueOrder(t *testing.T, userID uint64, ticker domain.TickerSymbol, side domain.TradeSide, qty int) *domain.PendingOrder {
	t.Helper()
	require.False(t, f.hours.open, "orders can only be queued while closed")
	var (
		out *interfaces.TradeOutcome
		err error
	)
	if side == domain.Buy {
		out, err = f.engine.Buy(context.Background(), userID, ticker, qty)
	} else {
		out, err = f.engine.Sell(context.Background(), userID, ticker, qty)
	}
	require.NoError(t, err)
	require.True(t, out.Queued)
	return out.Order
}

func TestTickDoesNothingWhileMarketClosed(t *testing.T) {
	f := newFixture(t)
	order := f.queueOrder(t, 42, "AAPL", domain.Buy, 10)

	f.scheduler.Tick(context.Background())

	stored, err := f.pending.ByShortCode(context.Background(), order.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Empty(t, f.notifier.events)
}

func TestTickExecutesQueuedOrderAtCurrentPrice(t *testing.T) {
	f := newFixture(t)
	order := f.queueOrder(t, 42, "AAPL", domain.Buy, 10)

	// Price moved between request time and the open.
	f.quotes.price = decimal.RequireFromString("55")
	f.hours.open = true

	f.scheduler.Tick(context.Background())

	stored, _ := f.pending.ByShortCode(context.Background(), order.ShortCode)
	assert.Equal(t, domain.StatusProcessed, stored.Status)

	p, _ := f.portfolios.GetOrCreate(context.Background(), 42)
	assert.True(t, p.CashBalance.Equal(decimal.RequireFromString("9450")), "replay settles at the fresh price, got %s", p.CashBalance)
	require.NotNil(t, p.Holding("AAPL"))
	assert.True(t, p.Holding("AAPL").AveragePrice.Equal(decimal.RequireFromString("55")))

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, uint64(42), f.notifier.events[0].userID)
	assert.Equal(t, interfaces.NotifySuccess, f.notifier.events[0].kind)
	assert.Contains(t, f.notifier.events[0].message, "Bought 10 shares of AAPL at $55.00")
}

func TestTickIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.queueOrder(t, 42, "AAPL", domain.Buy, 10)
	f.hours.open = true

	f.scheduler.Tick(context.Background())
	f.scheduler.Tick(context.Background())

	p, _ := f.portfolios.GetOrCreate(context.Background(), 42)
	assert.True(t, p.CashBalance.Equal(decimal.RequireFromString("9500")), "second tick must not re-execute, got %s", p.CashBalance)

	history, _ := f.portfolios.History(context.Background(), 42, 0)
	assert.Len(t, history, 1)
	assert.Len(t, f.notifier.events, 1)
}

func TestTickMarksRejectedOrderFailed(t *testing.T) {
	f := newFixture(t)
	order := f.queueOrder(t, 42, "AAPL", domain.Sell, 5) // user owns nothing
	f.hours.open = true

	f.scheduler.Tick(context.Background())

	stored, _ := f.pending.ByShortCode(context.Background(), order.ShortCode)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Contains(t, stored.FailureReason, "no shares owned")

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, interfaces.NotifyFailure, f.notifier.events[0].kind)
	assert.Contains(t, f.notifier.events[0].message, "failed to execute")
}

func TestOneFailureDoesNotBlockTheBatch(t *testing.T) {
	f := newFixture(t)
	bad := f.queueOrder(t, 7, "MSFT", domain.Sell, 5)
	good := f.queueOrder(t, 42, "AAPL", domain.Buy, 10)
	f.hours.open = true

	f.scheduler.Tick(context.Background())

	badStored, _ := f.pending.ByShortCode(context.Background(), bad.ShortCode)
	goodStored, _ := f.pending.ByShortCode(context.Background(), good.ShortCode)
	assert.Equal(t, domain.StatusFailed, badStored.Status)
	assert.Equal(t, domain.StatusProcessed, goodStored.Status)
	assert.Len(t, f.notifier.events, 2)
}

func TestSystemFaultMarksOrderFailedWithGenericReason(t *testing.T) {
	f := newFixture(t)
	order := f.queueOrder(t, 42, "AAPL", domain.Buy, 10)
	f.hours.open = true

	trader := &stubTrader{err: errors.New("database unavailable")}
	sched := New(time.Minute, trader, f.pending, f.hours, f.notifier)
	sched.Tick(context.Background())

	stored, _ := f.pending.ByShortCode(context.Background(), order.ShortCode)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Contains(t, stored.FailureReason, "system error")
	assert.Contains(t, stored.FailureReason, "database unavailable")
}

func TestPanicDuringReplayMarksOrderFailed(t *testing.T) {
	f := newFixture(t)
	order := f.queueOrder(t, 42, "AAPL", domain.Buy, 10)
	f.hours.open = true

	trader := &stubTrader{panic: true}
	sched := New(time.Minute, trader, f.pending, f.hours, f.notifier)
	sched.Tick(context.Background())

	stored, _ := f.pending.ByShortCode(context.Background(), order.ShortCode)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Contains(t, stored.FailureReason, "system error")
}

func TestCancelledOrderIsNeverRevisited(t *testing.T) {
	f := newFixture(t)
	order := f.queueOrder(t, 42, "AAPL", domain.Buy, 10)

	_, err := f.engine.CancelPendingOrder(context.Background(), 42, order.ShortCode)
	require.NoError(t, err)

	f.hours.open = true
	f.scheduler.Tick(context.Background())

	stored, _ := f.pending.ByShortCode(context.Background(), order.ShortCode)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Empty(t, f.notifier.events)
}

func TestMarketCloseDuringReplayLeavesOrderPending(t *testing.T) {
	f := newFixture(t)
	order := f.queueOrder(t, 42, "AAPL", domain.Buy, 10)

	// Open for the tick's check, closed again by the time the engine
	// re-checks during replay.
	f.hours.openSequence = []bool{true, false}

	f.scheduler.Tick(context.Background())

	stored, err := f.pending.ByShortCode(context.Background(), order.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status, "order must stay queued for the next open")

	all, _ := f.pending.AllPending(context.Background())
	require.Len(t, all, 1, "replay must not spawn a duplicate order")
	assert.Equal(t, order.ID, all[0].ID)

	p, _ := f.portfolios.GetOrCreate(context.Background(), 42)
	assert.True(t, p.CashBalance.Equal(decimal.RequireFromString("10000")), "nothing settled, got %s", p.CashBalance)
	assert.Empty(t, f.notifier.events)

	// Next open: the same order executes once.
	f.hours.openSequence = nil
	f.hours.open = true
	f.scheduler.Tick(context.Background())

	stored, _ = f.pending.ByShortCode(context.Background(), order.ShortCode)
	assert.Equal(t, domain.StatusProcessed, stored.Status)

	p, _ = f.portfolios.GetOrCreate(context.Background(), 42)
	assert.True(t, p.CashBalance.Equal(decimal.RequireFromString("9500")))
	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, interfaces.NotifySuccess, f.notifier.events[0].kind)
	assert.Contains(t, f.notifier.events[0].message, "Bought 10 shares of AAPL")
}

// flakyPendingStore fails Update on demand while behaving normally
// otherwise.
type flakyPendingStore struct {
	*storage.PendingOrderStore
	updateErr error
}

func (s *flakyPendingStore) Update(ctx context.Context, o *domain.PendingOrder) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.PendingOrderStore.Update(ctx, o)
}

func TestFailedStatusWriteLeavesOrderPendingForRetry(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyPendingStore{PendingOrderStore: storage.NewPendingOrderStore()}
	portfolios := storage.NewPortfolioStore(decimal.RequireFromString("10000"))
	quotes := &stubQuotes{price: decimal.RequireFromString("50")}
	hours := &fakeHours{enforced: true, open: false, next: time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC)}
	notifier := &recordingNotifier{}
	eng := engine.New(quotes, portfolios, flaky, hours, 0)
	sched := New(time.Minute, eng, flaky, hours, notifier)

	// Queue a sell the replay will reject: the user owns nothing.
	out, err := eng.Sell(ctx, 42, "AAPL", 5)
	require.NoError(t, err)
	require.True(t, out.Queued)

	hours.open = true
	flaky.updateErr = errors.New("write timeout")
	sched.Tick(ctx)

	stored, _ := flaky.ByShortCode(ctx, out.Order.ShortCode)
	assert.Equal(t, domain.StatusPending, stored.Status, "order must stay Pending when the Failed write is lost")
	assert.Empty(t, notifier.events, "no notification until the status is durable")

	// The store recovers; the next tick finalizes the order.
	flaky.updateErr = nil
	sched.Tick(ctx)

	stored, _ = flaky.ByShortCode(ctx, out.Order.ShortCode)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Contains(t, stored.FailureReason, "no shares owned")
	require.Len(t, notifier.events, 1)
	assert.Equal(t, interfaces.NotifyFailure, notifier.events[0].kind)
}

func TestConcurrentFinalizationSkipsNotification(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyPendingStore{PendingOrderStore: storage.NewPendingOrderStore()}
	portfolios := storage.NewPortfolioStore(decimal.RequireFromString("10000"))
	quotes := &stubQuotes{price: decimal.RequireFromString("50")}
	hours := &fakeHours{enforced: true, open: false, next: time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC)}
	notifier := &recordingNotifier{}
	eng := engine.New(quotes, portfolios, flaky, hours, 0)
	sched := New(time.Minute, eng, flaky, hours, notifier)

	out, err := eng.Buy(ctx, 42, "AAPL", 10)
	require.NoError(t, err)
	require.True(t, out.Queued)

	// Another writer finalized the order between this tick's fetch and
	// its status write.
	hours.open = true
	flaky.updateErr = domain.ErrOrderFinalized
	sched.Tick(ctx)

	assert.Empty(t, notifier.events, "a concurrently finalized order gets no second notification")
}

func TestStartStopLifecycle(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.scheduler.Start(context.Background()))

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, f.scheduler.Stop(stopCtx))
}
