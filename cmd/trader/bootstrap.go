package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"stonk-trader/internal/engine"
	"stonk-trader/internal/engine/traderobs"
	"stonk-trader/internal/interfaces"
	"stonk-trader/internal/logger"
	"stonk-trader/internal/market"
	"stonk-trader/internal/notify"
	"stonk-trader/internal/quotes"
	"stonk-trader/internal/scheduler"
	"stonk-trader/internal/storage"
	"stonk-trader/internal/store"
)

// initializeSystem loads environment variables and sets up logging.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeQuotes picks the quote source configured for this run.
func initializeQuotes(ctx context.Context, cfg *store.Config) interfaces.QuoteProvider {
	if cfg.Quotes.Source == "LIVE" {
		apiKey := os.Getenv(cfg.Quotes.APIKeyEnv)
		if apiKey == "" {
			logger.Warn(ctx, "Quote API key env var is empty", "env", cfg.Quotes.APIKeyEnv)
		}
		logger.Info(ctx, "Using live quote provider", "base_url", cfg.Quotes.BaseURL)
		return quotes.NewClient(cfg.Quotes.BaseURL, apiKey)
	}

	logger.Info(ctx, "Using static quote prices", "symbols", len(cfg.Quotes.Static))
	return quotes.NewStatic(cfg.Quotes.Static)
}

type app struct {
	cfg       *store.Config
	engine    *engine.Engine
	scheduler *scheduler.Scheduler
}

// buildApp wires stores, market hours, engine and scheduler together.
func buildApp(ctx context.Context, cfg *store.Config) (*app, error) {
	hours, err := market.NewHours(cfg.MarketHours)
	if err != nil {
		return nil, fmt.Errorf("market hours: %w", err)
	}

	portfolios := storage.NewPortfolioStore(decimal.NewFromFloat(cfg.StartingBalance))
	pending := storage.NewPendingOrderStore()
	provider := initializeQuotes(ctx, cfg)

	eng := engine.New(provider, portfolios, pending, hours, cfg.History.DefaultLimit)
	sched := scheduler.New(
		time.Duration(cfg.Scheduler.PollSeconds)*time.Second,
		traderobs.Wrap(eng),
		pending,
		hours,
		notify.NewLogNotifier(),
	)

	if !cfg.MarketHours.Enforce {
		logger.Warn(ctx, "Market hours enforcement disabled - trading allowed 24/7")
	}

	return &app{cfg: cfg, engine: eng, scheduler: sched}, nil
}
