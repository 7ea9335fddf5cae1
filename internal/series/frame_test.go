package series

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dates(n int) []time.Time {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.AddDate(0, 0, i)
	}
	return out
}

func TestNew_KeepsOrderedIndex(t *testing.T) {
	d := dates(3)

	f, err := New(d)
	require.NoError(t, err)
	assert.Equal(t, d, f.Dates())
}

func TestNew_RejectsOutOfOrderDates(t *testing.T) {
	// Columns align by position, so a reordered index cannot be repaired
	// here without misaligning them
	d := dates(3)
	_, err := New([]time.Time{d[2], d[0], d[1]})
	assert.Error(t, err)
}

func TestNew_RejectsDuplicates(t *testing.T) {
	d := dates(2)
	_, err := New([]time.Time{d[0], d[1], d[0]})
	assert.Error(t, err)
}

func TestAddColumn_LengthMismatch(t *testing.T) {
	f, err := New(dates(3))
	require.NoError(t, err)

	err = f.AddColumn(ColClose, []float64{1, 2})
	assert.Error(t, err)
}

func TestAddColumnBlock_FirstSubColumnWins(t *testing.T) {
	f, err := New(dates(3))
	require.NoError(t, err)

	rows := [][]float64{
		{101.5, 999},
		{},
		{103.25},
	}
	require.NoError(t, f.AddColumnBlock(ColClose, rows))

	col, ok := f.Column(ColClose)
	require.True(t, ok)
	assert.Equal(t, 101.5, col[0])
	assert.True(t, math.IsNaN(col[1]), "empty row should become NaN")
	assert.Equal(t, 103.25, col[2])
}

func TestDropIncomplete(t *testing.T) {
	f, err := New(dates(4))
	require.NoError(t, err)

	require.NoError(t, f.AddColumn(ColClose, []float64{100, math.NaN(), 102, 103}))
	require.NoError(t, f.AddColumn(ColVolume, []float64{1000, 1100, math.NaN(), 1300}))

	out := f.DropIncomplete(ColClose, ColVolume)

	assert.Equal(t, 2, out.Len())
	close, _ := out.Column(ColClose)
	assert.Equal(t, []float64{100, 103}, close)
	vol, _ := out.Column(ColVolume)
	assert.Equal(t, []float64{1000, 1300}, vol)
}

func TestDropIncomplete_IgnoresAbsentColumns(t *testing.T) {
	f, err := New(dates(2))
	require.NoError(t, err)
	require.NoError(t, f.AddColumn(ColClose, []float64{100, 101}))

	out := f.DropIncomplete(ColClose, ColVolume)
	assert.Equal(t, 2, out.Len())
}

func TestLast(t *testing.T) {
	assert.Equal(t, 3.0, Last([]float64{1, 2, 3}))
	assert.True(t, math.IsNaN(Last(nil)))
}

func TestTail(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, []float64{4, 5}, Tail(vals, 2))
	assert.Equal(t, vals, Tail(vals, 10))
}

func TestDropNaN(t *testing.T) {
	got := DropNaN([]float64{1, math.NaN(), 3})
	assert.Equal(t, []float64{1, 3}, got)
}

func TestIsUsable(t *testing.T) {
	assert.True(t, IsUsable(0))
	assert.False(t, IsUsable(math.NaN()))
	assert.False(t, IsUsable(math.Inf(1)))
	assert.False(t, IsUsable(math.Inf(-1)))
}
