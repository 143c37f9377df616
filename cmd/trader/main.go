package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"stonk-trader/internal/domain"
	"stonk-trader/internal/interfaces"
	"stonk-trader/internal/logger"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := "config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := loadConfig(ctx, cfgPath)
	must(err)

	a, err := buildApp(ctx, cfg)
	must(err)

	must(a.scheduler.Start(ctx))
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		_ = a.scheduler.Stop(stopCtx)
		_ = logger.Shutdown(stopCtx)
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	userID := localUserID()
	lines := make(chan string)
	go readLines(lines)

	fmt.Println("stonk-trader ready. Commands: buy, sell, portfolio, history, pending, cancel, quote, exit")
	for {
		select {
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			return
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := a.handleCommand(ctx, userID, line); quit {
				return
			}
		}
	}
}

func readLines(out chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		out <- scanner.Text()
	}
	close(out)
}

func localUserID() uint64 {
	if v := os.Getenv("TRADER_USER_ID"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			return id
		}
	}
	return 1
}

// handleCommand parses one console command and prints the outcome. This
// is the stand-in for a chat platform's command surface.
func (a *app) handleCommand(ctx context.Context, userID uint64, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case "exit", "quit":
		return true

	case "buy", "sell":
		if len(fields) != 3 {
			fmt.Printf("usage: %s TICKER QUANTITY\n", fields[0])
			return false
		}
		ticker, err := domain.NewTickerSymbol(fields[1])
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		qty, err := strconv.Atoi(fields[2])
		if err != nil {
			fmt.Println("error: quantity must be a number")
			return false
		}
		var (
			outcome  *interfaces.TradeOutcome
			tradeErr error
		)
		if strings.EqualFold(fields[0], "buy") {
			outcome, tradeErr = a.engine.Buy(ctx, userID, ticker, qty)
		} else {
			outcome, tradeErr = a.engine.Sell(ctx, userID, ticker, qty)
		}
		if tradeErr != nil {
			fmt.Println("trade failed:", tradeErr)
			return false
		}
		fmt.Println(outcome.Message)

	case "portfolio":
		p, err := a.engine.Portfolio(ctx, userID)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Printf("Cash: $%s\n", p.CashBalance.StringFixed(2))
		for _, h := range p.Holdings {
			fmt.Printf("  %-6s %5d shares @ $%s avg\n", h.Ticker, h.Quantity, h.AveragePrice.StringFixed(2))
		}

	case "history":
		limit := 0
		if len(fields) > 1 {
			limit, _ = strconv.Atoi(fields[1])
		}
		txs, err := a.engine.History(ctx, userID, limit)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		for _, tx := range txs {
			fmt.Printf("%s  %-4s %5d %-6s @ $%s  total $%s\n",
				tx.Timestamp.Format("2006-01-02 15:04"), tx.Side, tx.Quantity, tx.Ticker,
				tx.Price.StringFixed(2), tx.TotalAmount.StringFixed(2))
		}

	case "pending":
		orders, err := a.engine.PendingOrders(ctx, userID)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		if len(orders) == 0 {
			fmt.Println("No pending orders.")
			return false
		}
		for _, o := range orders {
			fmt.Printf("#%d  %-4s %5d %-6s  scheduled %s\n",
				o.ShortCode, o.Side, o.Quantity, o.Ticker, o.ScheduledFor.Format(time.RFC1123))
		}

	case "cancel":
		if len(fields) != 2 {
			fmt.Println("usage: cancel ORDER_CODE")
			return false
		}
		code, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Println("error: order code must be a number")
			return false
		}
		msg, err := a.engine.CancelPendingOrder(ctx, userID, code)
		if err != nil {
			fmt.Println("cancel failed:", err)
			return false
		}
		fmt.Println(msg)

	case "quote":
		if len(fields) != 2 {
			fmt.Println("usage: quote TICKER")
			return false
		}
		ticker, err := domain.NewTickerSymbol(fields[1])
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		q, err := a.engine.Quote(ctx, ticker)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Printf("%s  $%s (%s%%)  open $%s  high $%s  low $%s  prev close $%s\n",
			q.Ticker, q.Current.StringFixed(2), q.PercentChange.StringFixed(2),
			q.Open.StringFixed(2), q.High.StringFixed(2), q.Low.StringFixed(2),
			q.PreviousClose.StringFixed(2))

	default:
		fmt.Println("Commands: buy TICKER QTY | sell TICKER QTY | portfolio | history [n] | pending | cancel CODE | quote TICKER | exit")
	}

	return false
}
