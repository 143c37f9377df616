package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"stonk-trader/internal/domain"
)

// Client fetches quotes from a finnhub-shaped REST endpoint
// (GET {base}/quote?symbol=AAPL&token=...).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// quoteResponse mirrors the provider's wire format: "c" current, "o"
// open, "h" high, "l" low, "pc" previous close, "d" change, "dp"
// percent change.
type quoteResponse struct {
	Current       float64 `json:"c"`
	Open          float64 `json:"o"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	PreviousClose float64 `json:"pc"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
}

func (c *Client) Price(ctx context.Context, ticker domain.TickerSymbol) (decimal.Decimal, error) {
	q, err := c.Quote(ctx, ticker)
	if err != nil {
		return decimal.Zero, err
	}
	return q.Current, nil
}

func (c *Client) Quote(ctx context.Context, ticker domain.TickerSymbol) (*domain.StockQuote, error) {
	url := fmt.Sprintf("%s/quote?symbol=%s&token=%s", c.baseURL, ticker, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request for %s: status %d", ticker, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var wire quoteResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decode quote for %s: %w", ticker, err)
	}

	// The provider reports unknown symbols as zeroed quotes.
	if wire.Current <= 0 {
		return nil, fmt.Errorf("no quote available for %s", ticker)
	}

	return &domain.StockQuote{
		Ticker:        ticker,
		Current:       decimal.NewFromFloat(wire.Current),
		Open:          decimal.NewFromFloat(wire.Open),
		High:          decimal.NewFromFloat(wire.High),
		Low:           decimal.NewFromFloat(wire.Low),
		PreviousClose: decimal.NewFromFloat(wire.PreviousClose),
		Change:        decimal.NewFromFloat(wire.Change),
		PercentChange: decimal.NewFromFloat(wire.PercentChange),
	}, nil
}
