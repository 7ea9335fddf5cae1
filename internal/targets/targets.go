// Package targets derives entry/exit price levels from the last close and
// the current ATR.
package targets

import (
	"errors"
	"fmt"
	"math"

	"github.com/jshaw/alphascan/internal/contracts"
	"github.com/jshaw/alphascan/internal/indicators"
	"github.com/jshaw/alphascan/internal/series"
	"github.com/jshaw/alphascan/pkg/logger"
)

// ErrUndefined reports that price targets cannot be derived for the input:
// table too short, close unavailable, or ATR undefined/zero.
var ErrUndefined = errors.New("price targets undefined")

const (
	minBars       = 20
	minBarsStrict = 30

	// Risk/reward presentation guard
	minRR = 0.1
	maxRR = 10.0
)

// Engine derives price targets
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a new price target engine
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// Compute derives the target bundle from a frame with at least 20 bars.
// All levels are rounded to two decimals; rr is clamped to [0.1, 10.0] and
// degenerate values map to 1.0, so downstream presentation never sees a
// diverging ratio.
func (e *Engine) Compute(f *series.Frame) (contracts.PriceTargets, error) {
	return e.compute(f, minBars)
}

// ComputeStrict is the validating variant requiring at least 30 bars
func (e *Engine) ComputeStrict(f *series.Frame) (contracts.PriceTargets, error) {
	return e.compute(f, minBarsStrict)
}

func (e *Engine) compute(f *series.Frame, minRows int) (contracts.PriceTargets, error) {
	var t contracts.PriceTargets

	if f == nil || f.Len() < minRows {
		return t, fmt.Errorf("%w: need at least %d bars", ErrUndefined, minRows)
	}

	close, ok := f.Column(series.ColClose)
	if !ok {
		return t, fmt.Errorf("%w: close column unavailable", ErrUndefined)
	}

	lastClose := series.Last(close)
	if !series.IsUsable(lastClose) {
		return t, fmt.Errorf("%w: last close is not a number", ErrUndefined)
	}

	atr := indicators.LastATR(f, indicators.DefaultATRPeriod)
	if !series.IsUsable(atr) || atr == 0 {
		return t, fmt.Errorf("%w: ATR unavailable", ErrUndefined)
	}

	t.BuyLow = round2(lastClose - 0.5*atr)
	t.BuyHigh = round2(lastClose + 0.2*atr)
	t.TP1 = round2(lastClose + 1.2*atr)
	t.TP2 = round2(lastClose + 2.0*atr)
	t.SL = round2(lastClose - 1.0*atr)
	t.RR = riskReward(t.TP1, t.BuyHigh, t.SL)

	return t, nil
}

// riskReward computes (tp1-buyHigh)/(buyHigh-sl) from the rounded levels,
// falling back to 1.0 on a zero denominator or a non-finite result, then
// clamping into [0.1, 10.0].
func riskReward(tp1, buyHigh, sl float64) float64 {
	denom := buyHigh - sl

	rr := 1.0
	if denom != 0 {
		rr = round2((tp1 - buyHigh) / denom)
	}
	if math.IsNaN(rr) || math.IsInf(rr, 0) {
		rr = 1.0
	}

	if rr < minRR {
		rr = minRR
	}
	if rr > maxRR {
		rr = maxRR
	}
	return rr
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
