// Package marketdata defines the price-history provider contract the
// pipeline consumes.
package marketdata

import (
	"context"
	"errors"

	"github.com/jshaw/alphascan/internal/series"
)

// ErrNoData reports a normal no-data condition: unknown ticker, delisted
// symbol, or an empty history window. Callers exclude the ticker and move
// on; it is not a transport failure.
var ErrNoData = errors.New("no price data available")

// Provider fetches daily OHLCV history for a ticker. Implementations must
// map missing tickers and empty windows to ErrNoData rather than failing.
type Provider interface {
	History(ctx context.Context, ticker string, lookbackDays int) (*series.Frame, error)
}
