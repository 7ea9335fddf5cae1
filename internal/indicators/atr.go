// Package indicators implements the technical range engine shared by factor
// scoring, price targets and risk levels.
package indicators

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/jshaw/alphascan/internal/series"
)

// DefaultATRPeriod is the trailing window used across the system
const DefaultATRPeriod = 14

// TrueRange computes the per-bar true range:
// max(high-low, |high-prevClose|, |low-prevClose|). The first bar has no
// prior close, so its true range reduces to high-low.
func TrueRange(high, low, close []float64) []float64 {
	tr := make([]float64, len(high))
	for i := range high {
		hl := high[i] - low[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// ATR computes the Average True Range: a trailing simple mean of true range
// over period bars, aligned to the input dates. The warm-up region (fewer
// than period samples) is NaN, so a too-short table yields an undefined
// last value and callers treat ATR as unavailable.
//
// Fails soft: when High/Low/Close are not available the result is an empty
// series rather than an error.
func ATR(f *series.Frame, period int) []float64 {
	if period < 1 {
		period = DefaultATRPeriod
	}

	high, okH := f.Column(series.ColHigh)
	low, okL := f.Column(series.ColLow)
	close, okC := f.Column(series.ColClose)
	if !okH || !okL || !okC {
		return nil
	}

	tr := TrueRange(high, low, close)

	// talib's Sma walks the warm-up indices unconditionally, so a history
	// shorter than the period must not reach it at all. Everything is
	// warm-up then: return an all-NaN series of the same length.
	if len(tr) < period {
		atr := make([]float64, len(tr))
		for i := range atr {
			atr[i] = math.NaN()
		}
		return atr
	}

	// talib fills the warm-up region with zeros; rewrite it to NaN so the
	// early bars read as undefined instead of as zero volatility.
	atr := talib.Sma(tr, period)
	for i := 0; i < period-1; i++ {
		atr[i] = math.NaN()
	}

	return atr
}

// LastATR returns the current ATR value, or NaN when it is undefined
func LastATR(f *series.Frame, period int) float64 {
	return series.Last(ATR(f, period))
}

// ATRPercent returns the current ATR as a percentage of the last close, or
// NaN when either input is undefined or the close is zero.
func ATRPercent(f *series.Frame, period int) float64 {
	atr := LastATR(f, period)

	close, ok := f.Column(series.ColClose)
	if !ok {
		return math.NaN()
	}
	lastClose := series.Last(close)

	if !series.IsUsable(atr) || !series.IsUsable(lastClose) || lastClose == 0 {
		return math.NaN()
	}

	return atr / lastClose * 100.0
}
