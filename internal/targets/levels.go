package targets

import (
	"fmt"

	"github.com/jshaw/alphascan/internal/indicators"
	"github.com/jshaw/alphascan/internal/series"
)

// Mode selects the stop/target ATR multipliers
type Mode string

const (
	Conservative Mode = "conservative"
	Moderate     Mode = "moderate"
	Aggressive   Mode = "aggressive"
)

type multipliers struct {
	sl float64
	tp float64
}

var modeMultipliers = map[Mode]multipliers{
	Conservative: {sl: 1.5, tp: 2.0},
	Moderate:     {sl: 1.2, tp: 2.5},
	Aggressive:   {sl: 1.0, tp: 3.0},
}

// Levels is the mode-tiered risk band derived from last price and ATR
type Levels struct {
	ATR        float64 `json:"atr"`
	ATRPercent float64 `json:"atr_percent"`
	StopLoss   float64 `json:"stop_loss"`
	Target     float64 `json:"target_price"`
	RiskReward float64 `json:"risk_reward"`
	Volatility string  `json:"volatility"` // Low, Medium, High
}

// Levels derives a stop-loss/target pair using the mode's ATR multipliers
// plus a coarse volatility band for display. Unknown modes fall back to
// Moderate.
func (e *Engine) Levels(f *series.Frame, mode Mode) (Levels, error) {
	var l Levels

	if f == nil || f.Len() == 0 {
		return l, fmt.Errorf("%w: empty table", ErrUndefined)
	}

	close, ok := f.Column(series.ColClose)
	if !ok {
		return l, fmt.Errorf("%w: close column unavailable", ErrUndefined)
	}

	lastPrice := series.Last(close)
	if !series.IsUsable(lastPrice) || lastPrice == 0 {
		return l, fmt.Errorf("%w: last price unusable", ErrUndefined)
	}

	atr := indicators.LastATR(f, indicators.DefaultATRPeriod)
	if !series.IsUsable(atr) || atr == 0 {
		return l, fmt.Errorf("%w: ATR unavailable", ErrUndefined)
	}

	mult, ok := modeMultipliers[mode]
	if !ok {
		mult = modeMultipliers[Moderate]
	}

	l.ATR = round2(atr)
	l.ATRPercent = round2(atr / lastPrice * 100)
	l.StopLoss = round2(lastPrice - atr*mult.sl)
	l.Target = round2(lastPrice + atr*mult.tp)

	risk := lastPrice - l.StopLoss
	reward := l.Target - lastPrice
	if risk > 0 {
		l.RiskReward = round2(reward / risk)
	}

	switch {
	case l.ATRPercent > 3:
		l.Volatility = "High"
	case l.ATRPercent > 1.5:
		l.Volatility = "Medium"
	default:
		l.Volatility = "Low"
	}

	return l, nil
}
