// Package factors computes the per-ticker alpha factor scores. Each score
// is a pure function of the OHLCV frame, bounded to [0,100], and falls back
// to the neutral 50 whenever its history window is unmet or the arithmetic
// degenerates (zero, NaN or infinite denominators).
package factors

import (
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"github.com/jshaw/alphascan/internal/contracts"
	"github.com/jshaw/alphascan/internal/indicators"
	"github.com/jshaw/alphascan/internal/series"
	"github.com/jshaw/alphascan/pkg/logger"
)

const (
	neutralScore = 50

	minMomentumBars = 60
	minTrendBars    = 25
	minVolumeBars   = 25
	minVolAdjBars   = 20

	trendWindow     = 20
	trendMinSamples = 10
)

// Engine computes factor scores
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a new factor engine
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// Momentum scores the percentage deviation of the last close from its
// 50-bar moving average, scaled so a +-50% deviation saturates the score.
func (e *Engine) Momentum(f *series.Frame) int {
	close, ok := f.Column(series.ColClose)
	if !ok || len(close) < minMomentumBars {
		return neutralScore
	}

	ma50 := series.Last(talib.Sma(close, 50))
	lastClose := series.Last(close)

	if !series.IsUsable(ma50) || ma50 == 0 || !series.IsUsable(lastClose) {
		return neutralScore
	}

	pct := (lastClose - ma50) / ma50 * 100.0
	return clampScore(pct * 2)
}

// TrendStrength scores the OLS regression slope of the trailing 20 closes
// against a 0-based index, normalized by the last price.
func (e *Engine) TrendStrength(f *series.Frame) int {
	close, ok := f.Column(series.ColClose)
	if !ok || len(close) < minTrendBars {
		return neutralScore
	}

	window := series.DropNaN(series.Tail(close, trendWindow))
	if len(window) < trendMinSamples {
		return neutralScore
	}

	xs := make([]float64, len(window))
	for i := range xs {
		xs[i] = float64(i)
	}

	_, slope := stat.LinearRegression(xs, window, nil, false)
	if !series.IsUsable(slope) {
		return neutralScore
	}

	lastPrice := window[len(window)-1]
	if lastPrice == 0 || !series.IsUsable(lastPrice) {
		return neutralScore
	}

	return clampScore(slope / lastPrice * 50000)
}

// VolumeDivergence scores the z-score of the last volume against its
// 20-bar mean and sample standard deviation, mapped so z=-2 is 0 and
// z=+2 is 100.
func (e *Engine) VolumeDivergence(f *series.Frame) int {
	vol, ok := f.Column(series.ColVolume)
	if !ok || len(vol) < minVolumeBars {
		return neutralScore
	}

	window := series.Tail(vol, 20)
	lastVol := series.Last(vol)
	mean := stat.Mean(window, nil)
	std := stat.StdDev(window, nil)

	if !series.IsUsable(std) || std == 0 || !series.IsUsable(mean) {
		return neutralScore
	}

	z := (lastVol - mean) / std
	return clampScore((z + 2) * 25)
}

// VolatilityAdjusted scores relative volatility inversely: lower ATR% means
// a higher score, saturating at an ATR of 10% of price or more.
func (e *Engine) VolatilityAdjusted(f *series.Frame) int {
	close, ok := f.Column(series.ColClose)
	if !ok || len(close) < minVolAdjBars {
		return neutralScore
	}

	atrPct := indicators.ATRPercent(f, indicators.DefaultATRPeriod)
	if !series.IsUsable(atrPct) || atrPct <= 0 {
		return neutralScore
	}

	return clampScore(100 - math.Min(atrPct*10, 100))
}

// Compute assembles the full factor bundle for a frame. TechScore and
// SentScore are filled in later by the scan composite.
func (e *Engine) Compute(f *series.Frame) contracts.FactorBundle {
	bundle := contracts.FactorBundle{
		Momentum:      e.Momentum(f),
		TrendStrength: e.TrendStrength(f),
		Volume:        e.VolumeDivergence(f),
		VolAdj:        e.VolatilityAdjusted(f),
	}

	if atrPct := indicators.ATRPercent(f, indicators.DefaultATRPeriod); series.IsUsable(atrPct) {
		rounded := math.Round(atrPct*100) / 100
		bundle.ATRPercent = &rounded
	}

	if e.logger != nil {
		e.logger.WithFields(map[string]interface{}{
			"momentum": bundle.Momentum,
			"trend":    bundle.TrendStrength,
			"volume":   bundle.Volume,
			"vol_adj":  bundle.VolAdj,
		}).Debug("Computed factor bundle")
	}

	return bundle
}

// clampScore clips a raw score into [0,100] and truncates to int.
// Degenerate values (NaN, +-Inf) collapse to the neutral 50.
func clampScore(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return neutralScore
	}
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return int(v)
}
