// Package sentiment defines the sentiment scoring seam. The ranking engine
// depends only on the Scorer interface; the shipped implementation is a
// fixed placeholder until a real sentiment source is wired in.
package sentiment

import "context"

// Scorer produces a 0-100 sentiment score for a ticker
type Scorer interface {
	Score(ctx context.Context, ticker string) (int, error)
}

// Static is a Scorer that returns the same score for every ticker.
// Stand-in for a real sentiment engine, not a bug.
type Static struct {
	value int
}

// NewStatic creates a static scorer, clamping the value into [0,100]
func NewStatic(value int) Static {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	return Static{value: value}
}

// Score returns the fixed score
func (s Static) Score(_ context.Context, _ string) (int, error) {
	return s.value, nil
}

// DefaultPlaceholder is the placeholder sentiment used until a real engine
// is substituted.
const DefaultPlaceholder = 70
