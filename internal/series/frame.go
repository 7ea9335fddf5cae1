// Package series holds the normalized OHLCV table every downstream formula
// consumes. Provider quirks (multi-column blocks, null bars) are absorbed
// here so indicator and factor code only ever sees clean float64 columns
// aligned to a strictly increasing date index.
package series

import (
	"fmt"
	"math"
	"time"
)

// Standard column names
const (
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColClose  = "Close"
	ColVolume = "Volume"
)

// Frame is a time-ordered table of named numeric columns
type Frame struct {
	dates []time.Time
	cols  map[string][]float64
}

// New creates an empty frame over the given date index. Dates must be
// strictly increasing: out-of-order or duplicate input is rejected, since
// AddColumn aligns values by position and a reordered index would silently
// misalign them.
func New(dates []time.Time) (*Frame, error) {
	index := make([]time.Time, len(dates))
	copy(index, dates)

	for i := 1; i < len(index); i++ {
		if !index[i].After(index[i-1]) {
			return nil, fmt.Errorf("date index not strictly increasing at %s", index[i].Format("2006-01-02"))
		}
	}

	return &Frame{
		dates: index,
		cols:  make(map[string][]float64),
	}, nil
}

// AddColumn attaches a single numeric series to the frame
func (f *Frame) AddColumn(name string, values []float64) error {
	if len(values) != len(f.dates) {
		return fmt.Errorf("column %s has %d values, index has %d", name, len(values), len(f.dates))
	}

	col := make([]float64, len(values))
	copy(col, values)
	f.cols[name] = col
	return nil
}

// AddColumnBlock attaches a column delivered as a two-dimensional block
// (one row per bar). Some providers return a table where the semantic
// series is the first sub-column; the remaining sub-columns are discarded.
// Rows with no sub-columns become NaN.
func (f *Frame) AddColumnBlock(name string, rows [][]float64) error {
	if len(rows) != len(f.dates) {
		return fmt.Errorf("column block %s has %d rows, index has %d", name, len(rows), len(f.dates))
	}

	col := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			col[i] = math.NaN()
			continue
		}
		col[i] = row[0]
	}
	f.cols[name] = col
	return nil
}

// Column returns the named series, or reports it unavailable. The returned
// slice is shared with the frame and must not be mutated.
func (f *Frame) Column(name string) ([]float64, bool) {
	col, ok := f.cols[name]
	return col, ok
}

// Len returns the number of bars
func (f *Frame) Len() int {
	return len(f.dates)
}

// Dates returns the date index. Shared, do not mutate.
func (f *Frame) Dates() []time.Time {
	return f.dates
}

// DropIncomplete returns a new frame without the rows where any of the
// named columns is NaN. A named column that is entirely absent from the
// frame is ignored; availability is the caller's concern.
func (f *Frame) DropIncomplete(names ...string) *Frame {
	keep := make([]bool, len(f.dates))
	kept := 0
	for i := range f.dates {
		keep[i] = true
		for _, name := range names {
			col, ok := f.cols[name]
			if !ok {
				continue
			}
			if math.IsNaN(col[i]) {
				keep[i] = false
				break
			}
		}
		if keep[i] {
			kept++
		}
	}

	out := &Frame{
		dates: make([]time.Time, 0, kept),
		cols:  make(map[string][]float64, len(f.cols)),
	}
	for name := range f.cols {
		out.cols[name] = make([]float64, 0, kept)
	}

	for i := range f.dates {
		if !keep[i] {
			continue
		}
		out.dates = append(out.dates, f.dates[i])
		for name, col := range f.cols {
			out.cols[name] = append(out.cols[name], col[i])
		}
	}

	return out
}
