// Package yahoo implements the market data provider against the Yahoo
// Finance chart API.
package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jshaw/alphascan/internal/series"
	"github.com/jshaw/alphascan/pkg/config"
	"github.com/jshaw/alphascan/pkg/httputil"
	"github.com/jshaw/alphascan/pkg/logger"
)

// Client fetches daily price history from the Yahoo Finance chart API
type Client struct {
	httpClient *httputil.Client
	baseURL    string
	logger     *logger.Logger
}

// New creates a new Yahoo Finance client
func New(cfg *config.Config, log *logger.Logger) *Client {
	httpClient := httputil.NewWithTimeout(log, 15*time.Second).
		WithRateLimit(cfg.MarketData.RateLimit, cfg.MarketData.RateBurst).
		WithHeaders(map[string]string{
			"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
			"Accept":     "application/json",
		})

	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.MarketData.BaseURL,
		logger:     log,
	}
}

// NewWithHTTPClient creates a client over an existing HTTP client.
// Used by tests to point at a fixture server.
func NewWithHTTPClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     log,
	}
}

// History fetches up to lookbackDays daily bars for a ticker. Bars with
// null price fields (halted sessions) are dropped; a symbol with no usable
// bars maps to marketdata.ErrNoData.
func (c *Client) History(ctx context.Context, ticker string, lookbackDays int) (*series.Frame, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -lookbackDays)

	fullURL := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&includePrePost=false",
		c.baseURL, url.PathEscape(ticker), from.Unix(), to.Unix(),
	)

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", ticker, err)
	}

	frame, err := parseChart(body)
	if err != nil {
		return nil, fmt.Errorf("parse history for %s: %w", ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"bars":   frame.Len(),
	}).Debug("Fetched price history")

	return frame, nil
}
