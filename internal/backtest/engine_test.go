package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jshaw/alphascan/internal/contracts"
	"github.com/jshaw/alphascan/internal/series"
	"github.com/jshaw/alphascan/pkg/logger"
)

type fakeProvider struct {
	frames map[string]*series.Frame
}

func (p *fakeProvider) History(_ context.Context, ticker string, _ int) (*series.Frame, error) {
	f, ok := p.frames[ticker]
	if !ok {
		return nil, context.DeadlineExceeded
	}
	return f, nil
}

// closeFrame builds a frame from an explicit close series
func closeFrame(t *testing.T, closes []float64) *series.Frame {
	t.Helper()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, len(closes))
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i)
	}

	f, err := series.New(dates)
	require.NoError(t, err)
	require.NoError(t, f.AddColumn(series.ColClose, closes))
	return f
}

// flatThenMove builds n bars at base with the last bar at exit
func flatThenMove(t *testing.T, n int, base, exit float64) *series.Frame {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = base
	}
	closes[n-1] = exit
	return closeFrame(t, closes)
}

func ranked(tickers ...string) []contracts.Recommendation {
	recs := make([]contracts.Recommendation, len(tickers))
	for i, ticker := range tickers {
		recs[i] = contracts.Recommendation{Ticker: ticker, Rank: i + 1}
	}
	return recs
}

func TestRun_KnownReturns(t *testing.T) {
	cfg := Config{TopK: 2, HoldDays: 10, LookbackDays: 365}

	provider := &fakeProvider{frames: map[string]*series.Frame{
		"UP":   flatThenMove(t, 30, 100, 110), // +10%
		"DOWN": flatThenMove(t, 30, 100, 95),  // -5%
	}}
	engine := NewEngine(provider, logger.NewNop())

	result, err := engine.Run(context.Background(), ranked("UP", "DOWN"), cfg)
	require.NoError(t, err)

	require.Len(t, result.Trades, 2)
	assert.InDelta(t, 0.10, result.Trades[0].Return, 1e-9)
	assert.InDelta(t, -0.05, result.Trades[1].Return, 1e-9)

	assert.Equal(t, 0.5, result.WinRate)
	assert.InDelta(t, 0.025, result.AvgReturn, 1e-9)
	assert.InDelta(t, -0.05, result.MaxDrawdown, 1e-9)

	// Equity compounds in ranked order from 1.0
	require.Len(t, result.EquityCurve, 3)
	assert.Equal(t, 1.0, result.EquityCurve[0])
	assert.InDelta(t, 1.10, result.EquityCurve[1], 1e-9)
	assert.InDelta(t, 1.045, result.EquityCurve[2], 1e-9)
}

func TestRun_SharpeZeroForIdenticalReturns(t *testing.T) {
	cfg := Config{TopK: 2, HoldDays: 10, LookbackDays: 365}

	provider := &fakeProvider{frames: map[string]*series.Frame{
		"A": flatThenMove(t, 30, 100, 110),
		"B": flatThenMove(t, 30, 200, 220),
	}}
	engine := NewEngine(provider, logger.NewNop())

	result, err := engine.Run(context.Background(), ranked("A", "B"), cfg)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Sharpe)
	assert.Equal(t, 1.0, result.WinRate)
}

func TestRun_SkipsShortHistories(t *testing.T) {
	cfg := Config{TopK: 3, HoldDays: 10, LookbackDays: 365}

	provider := &fakeProvider{frames: map[string]*series.Frame{
		"OK":    flatThenMove(t, 30, 100, 110),
		"SHORT": closeFrame(t, []float64{100, 101}),
	}}
	engine := NewEngine(provider, logger.NewNop())

	result, err := engine.Run(context.Background(), ranked("OK", "SHORT", "GONE"), cfg)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	assert.Equal(t, "OK", result.Trades[0].Ticker)
}

func TestRun_NoTrades(t *testing.T) {
	cfg := Config{TopK: 1, HoldDays: 10, LookbackDays: 365}

	engine := NewEngine(&fakeProvider{}, logger.NewNop())

	_, err := engine.Run(context.Background(), ranked("GONE"), cfg)
	assert.ErrorIs(t, err, ErrNoTrades)
}

func TestRun_InvalidConfig(t *testing.T) {
	engine := NewEngine(&fakeProvider{}, logger.NewNop())

	_, err := engine.Run(context.Background(), ranked("A"), Config{TopK: 0, HoldDays: 10})
	assert.Error(t, err)

	_, err = engine.Run(context.Background(), ranked("A"), Config{TopK: 1, HoldDays: 0})
	assert.Error(t, err)
}

func TestRun_TruncatesToTopK(t *testing.T) {
	cfg := Config{TopK: 1, HoldDays: 10, LookbackDays: 365}

	provider := &fakeProvider{frames: map[string]*series.Frame{
		"FIRST":  flatThenMove(t, 30, 100, 110),
		"SECOND": flatThenMove(t, 30, 100, 120),
	}}
	engine := NewEngine(provider, logger.NewNop())

	result, err := engine.Run(context.Background(), ranked("FIRST", "SECOND"), cfg)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	assert.Equal(t, "FIRST", result.Trades[0].Ticker)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, 10, cfg.HoldDays)
	assert.Equal(t, 730, cfg.LookbackDays)
}
