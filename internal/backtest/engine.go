// Package backtest simulates fixed-holding-period returns for the top
// entries of a ranked list.
package backtest

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/jshaw/alphascan/internal/contracts"
	"github.com/jshaw/alphascan/internal/marketdata"
	"github.com/jshaw/alphascan/internal/series"
	"github.com/jshaw/alphascan/pkg/logger"
)

// ErrNoTrades reports that no ticker produced a valid return
var ErrNoTrades = errors.New("no tickers produced a valid return")

// Config holds backtest parameters
type Config struct {
	TopK         int // ranked entries simulated
	HoldDays     int // fixed holding period
	LookbackDays int // history window fetched per ticker
}

// DefaultConfig returns the standard top-3, 10-day-hold, 2-year-lookback
// setup
func DefaultConfig() Config {
	return Config{
		TopK:         3,
		HoldDays:     10,
		LookbackDays: 730,
	}
}

// Trade is one simulated buy-and-hold round trip
type Trade struct {
	Ticker string  `json:"ticker"`
	Entry  float64 `json:"entry"`
	Exit   float64 `json:"exit"`
	Return float64 `json:"return"`
}

// Result aggregates the simulation.
//
// MaxDrawdown is the minimum single-trade return, not a running
// peak-to-trough measure, and the equity curve compounds returns in
// ranked-iteration order rather than chronologically. Both are deliberate
// approximations carried over from the strategy's definition; do not
// "fix" them to mean something else.
type Result struct {
	WinRate     float64   `json:"win_rate"`    // fraction in [0,1]
	AvgReturn   float64   `json:"avg_return"`  // mean per-trade return
	MaxDrawdown float64   `json:"max_drawdown"`
	Sharpe      float64   `json:"sharpe"` // mean/std of returns, 0 when std is 0
	EquityCurve []float64 `json:"equity_curve"`
	Trades      []Trade   `json:"trades"`
}

// Engine runs top-K holding simulations
type Engine struct {
	provider marketdata.Provider
	logger   *logger.Logger
}

// NewEngine creates a new backtest engine
func NewEngine(provider marketdata.Provider, log *logger.Logger) *Engine {
	return &Engine{
		provider: provider,
		logger:   log,
	}
}

// Run simulates buying the top K ranked entries and holding for HoldDays.
// Entry is the close HoldDays+1 bars from the end, exit the most recent
// close. Tickers with too little history are skipped; fewer than K
// simulated trades is expected and valid. Only a completely empty result
// is an error.
func (e *Engine) Run(ctx context.Context, ranked []contracts.Recommendation, cfg Config) (*Result, error) {
	if cfg.TopK < 1 || cfg.HoldDays < 1 {
		return nil, fmt.Errorf("invalid backtest config: topK=%d holdDays=%d", cfg.TopK, cfg.HoldDays)
	}

	top := ranked
	if len(top) > cfg.TopK {
		top = top[:cfg.TopK]
	}

	result := &Result{
		EquityCurve: []float64{1.0},
	}

	for _, rec := range top {
		trade, err := e.simulate(ctx, rec.Ticker, cfg)
		if err != nil {
			e.logger.WithFields(map[string]interface{}{
				"ticker": rec.Ticker,
				"reason": err.Error(),
			}).Debug("Ticker skipped in backtest")
			continue
		}

		result.Trades = append(result.Trades, trade)
		last := result.EquityCurve[len(result.EquityCurve)-1]
		result.EquityCurve = append(result.EquityCurve, last*(1+trade.Return))
	}

	if len(result.Trades) == 0 {
		return nil, ErrNoTrades
	}

	returns := make([]float64, len(result.Trades))
	wins := 0
	minReturn := result.Trades[0].Return
	for i, trade := range result.Trades {
		returns[i] = trade.Return
		if trade.Return > 0 {
			wins++
		}
		if trade.Return < minReturn {
			minReturn = trade.Return
		}
	}

	result.WinRate = float64(wins) / float64(len(returns))
	result.AvgReturn = stat.Mean(returns, nil)
	result.MaxDrawdown = minReturn

	if std := stat.PopStdDev(returns, nil); std > 0 {
		result.Sharpe = result.AvgReturn / std
	}

	e.logger.WithFields(map[string]interface{}{
		"trades":   len(result.Trades),
		"win_rate": result.WinRate,
		"avg":      result.AvgReturn,
	}).Info("Backtest completed")

	return result, nil
}

// simulate runs one buy-and-hold round trip for a ticker
func (e *Engine) simulate(ctx context.Context, ticker string, cfg Config) (Trade, error) {
	var trade Trade

	frame, err := e.provider.History(ctx, ticker, cfg.LookbackDays)
	if err != nil {
		return trade, fmt.Errorf("fetch history: %w", err)
	}

	close, ok := frame.Column(series.ColClose)
	if !ok {
		return trade, fmt.Errorf("close column unavailable")
	}
	if len(close) < cfg.HoldDays+1 {
		return trade, fmt.Errorf("only %d bars, need %d", len(close), cfg.HoldDays+1)
	}

	entry := close[len(close)-cfg.HoldDays-1]
	exit := close[len(close)-1]
	if !series.IsUsable(entry) || entry == 0 || !series.IsUsable(exit) {
		return trade, fmt.Errorf("unusable entry or exit price")
	}

	trade.Ticker = ticker
	trade.Entry = entry
	trade.Exit = exit
	trade.Return = (exit - entry) / entry
	return trade, nil
}
