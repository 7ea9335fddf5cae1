package contracts

import (
	"math"
	"time"
)

// FactorBundle is the fixed set of per-ticker factor scores. Each score is
// clamped to [0,100]; a score whose defining window is unavailable or whose
// computation is degenerate is the neutral 50, never absent. ATRPercent is
// the only nullable member: nil means ATR is undefined for the ticker.
type FactorBundle struct {
	Momentum      int      `json:"momentum"`
	TrendStrength int      `json:"trend_strength"`
	Volume        int      `json:"volume"`
	VolAdj        int      `json:"vol_adj"`
	ATRPercent    *float64 `json:"atr_percent"`
	TechScore     int      `json:"tech_score"`
	SentScore     int      `json:"sent_score"`
}

// PriceTargets holds the ATR-derived trade levels, all rounded to two
// decimals. RR is clamped to [0.1, 10.0].
type PriceTargets struct {
	BuyLow  float64 `json:"buy_low"`
	BuyHigh float64 `json:"buy_high"`
	TP1     float64 `json:"tp1"`
	TP2     float64 `json:"tp2"`
	SL      float64 `json:"sl"`
	RR      float64 `json:"rr"`
}

// Recommendation is the ranking unit produced by a sector scan and persisted
// under the composite key (AsOfDate, Sector, Rank).
type Recommendation struct {
	AsOfDate   time.Time    `json:"as_of_date"`
	Sector     string       `json:"sector"`
	Rank       int          `json:"rank"` // 1-based, dense within a sector/date partition
	Ticker     string       `json:"ticker"`
	AlphaScore int          `json:"alpha_score"`
	FinalScore float64      `json:"final_score"` // weighted tech/sent composite
	Factors    FactorBundle `json:"factors"`
	Targets    PriceTargets `json:"targets"`
}

// IsTopRanked checks if the recommendation is in the top N ranks
func (r *Recommendation) IsTopRanked(n int) bool {
	return r.Rank > 0 && r.Rank <= n
}

// ATRPercentOrWorst returns the ATR percentage, treating nil as +Inf so
// undefined volatility sorts last in ascending tie-breaks.
func (f *FactorBundle) ATRPercentOrWorst() float64 {
	if f.ATRPercent == nil {
		return math.Inf(1)
	}
	return *f.ATRPercent
}
