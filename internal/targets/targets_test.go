package targets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jshaw/alphascan/internal/series"
	"github.com/jshaw/alphascan/pkg/logger"
)

func constFrame(t *testing.T, n int, high, low, close float64) *series.Frame {
	t.Helper()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, n)
	h := make([]float64, n)
	l := make([]float64, n)
	c := make([]float64, n)
	for i := 0; i < n; i++ {
		dates[i] = base.AddDate(0, 0, i)
		h[i], l[i], c[i] = high, low, close
	}

	f, err := series.New(dates)
	require.NoError(t, err)
	require.NoError(t, f.AddColumn(series.ColHigh, h))
	require.NoError(t, f.AddColumn(series.ColLow, l))
	require.NoError(t, f.AddColumn(series.ColClose, c))
	return f
}

func testEngine() *Engine {
	return NewEngine(logger.NewNop())
}

func TestCompute_KnownLevels(t *testing.T) {
	// Constant 5-point range on a 100 close gives ATR 5
	f := constFrame(t, 20, 102.5, 97.5, 100)

	targets, err := testEngine().Compute(f)
	require.NoError(t, err)

	assert.Equal(t, 97.5, targets.BuyLow)
	assert.Equal(t, 101.0, targets.BuyHigh)
	assert.Equal(t, 106.0, targets.TP1)
	assert.Equal(t, 110.0, targets.TP2)
	assert.Equal(t, 95.0, targets.SL)
	assert.Equal(t, 0.83, targets.RR)
}

func TestCompute_TooFewBars(t *testing.T) {
	f := constFrame(t, 19, 102.5, 97.5, 100)

	_, err := testEngine().Compute(f)
	assert.ErrorIs(t, err, ErrUndefined)
}

func TestCompute_NilFrame(t *testing.T) {
	_, err := testEngine().Compute(nil)
	assert.ErrorIs(t, err, ErrUndefined)
}

func TestCompute_ZeroATR(t *testing.T) {
	// Flat bars: zero true range means targets cannot be derived
	f := constFrame(t, 20, 100, 100, 100)

	_, err := testEngine().Compute(f)
	assert.ErrorIs(t, err, ErrUndefined)
}

func TestComputeStrict_RequiresThirtyBars(t *testing.T) {
	f := constFrame(t, 25, 102.5, 97.5, 100)

	_, err := testEngine().ComputeStrict(f)
	assert.ErrorIs(t, err, ErrUndefined)

	f = constFrame(t, 30, 102.5, 97.5, 100)
	_, err = testEngine().ComputeStrict(f)
	assert.NoError(t, err)
}

func TestRiskReward_Clamps(t *testing.T) {
	// Denominator zero falls back to 1.0
	assert.Equal(t, 1.0, riskReward(110, 100, 100))

	// Tiny reward clamps up to the floor
	assert.Equal(t, 0.1, riskReward(100.01, 100, 90))

	// Huge reward clamps down to the ceiling
	assert.Equal(t, 10.0, riskReward(500, 100, 99))
}

func TestLevels_Modes(t *testing.T) {
	f := constFrame(t, 20, 102.5, 97.5, 100)

	tests := []struct {
		mode   Mode
		sl     float64
		target float64
	}{
		{Conservative, 92.5, 110.0},
		{Moderate, 94.0, 112.5},
		{Aggressive, 95.0, 115.0},
	}

	for _, tt := range tests {
		levels, err := testEngine().Levels(f, tt.mode)
		require.NoError(t, err, string(tt.mode))

		assert.Equal(t, 5.0, levels.ATR, string(tt.mode))
		assert.Equal(t, tt.sl, levels.StopLoss, string(tt.mode))
		assert.Equal(t, tt.target, levels.Target, string(tt.mode))
	}
}

func TestLevels_UnknownModeFallsBackToModerate(t *testing.T) {
	f := constFrame(t, 20, 102.5, 97.5, 100)

	levels, err := testEngine().Levels(f, Mode("bogus"))
	require.NoError(t, err)
	assert.Equal(t, 94.0, levels.StopLoss)
}

func TestLevels_VolatilityBands(t *testing.T) {
	// ATR% 5 lands in the High band
	f := constFrame(t, 20, 102.5, 97.5, 100)
	levels, err := testEngine().Levels(f, Moderate)
	require.NoError(t, err)
	assert.Equal(t, "High", levels.Volatility)

	// ATR% 1 lands in the Low band
	f = constFrame(t, 20, 100.5, 99.5, 100)
	levels, err = testEngine().Levels(f, Moderate)
	require.NoError(t, err)
	assert.Equal(t, "Low", levels.Volatility)
}
