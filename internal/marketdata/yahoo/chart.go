package yahoo

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/jshaw/alphascan/internal/marketdata"
	"github.com/jshaw/alphascan/internal/series"
)

// chartResponse mirrors the relevant part of the Yahoo chart API payload
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []quoteBlock `json:"quote"`
	} `json:"indicators"`
}

// quoteBlock holds one set of OHLCV columns. Halted sessions appear as
// null entries, decoded as nil pointers.
type quoteBlock struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// parseChart normalizes a chart API payload into an OHLCV frame. The API
// can return several quote blocks for one symbol; the first block carries
// the semantic series. Incomplete bars are dropped, and a response with no
// usable bars maps to marketdata.ErrNoData.
func parseChart(body []byte) (*series.Frame, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode chart response: %w", err)
	}

	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return nil, marketdata.ErrNoData
		}
		return nil, fmt.Errorf("chart API error: %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}

	if len(resp.Chart.Result) == 0 {
		return nil, marketdata.ErrNoData
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, marketdata.ErrNoData
	}

	dates := make([]time.Time, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		dates[i] = time.Unix(ts, 0).UTC()
	}

	frame, err := series.New(dates)
	if err != nil {
		return nil, fmt.Errorf("build frame: %w", err)
	}

	quote := result.Indicators.Quote[0]
	columns := map[string][]*float64{
		series.ColOpen:   quote.Open,
		series.ColHigh:   quote.High,
		series.ColLow:    quote.Low,
		series.ColClose:  quote.Close,
		series.ColVolume: quote.Volume,
	}

	n := len(result.Timestamp)
	for name, ptrs := range columns {
		values := make([]float64, n)
		for i := range values {
			if i < len(ptrs) && ptrs[i] != nil {
				values[i] = *ptrs[i]
			} else {
				values[i] = math.NaN()
			}
		}
		if err := frame.AddColumn(name, values); err != nil {
			return nil, fmt.Errorf("add column %s: %w", name, err)
		}
	}

	frame = frame.DropIncomplete(
		series.ColOpen, series.ColHigh, series.ColLow, series.ColClose, series.ColVolume,
	)
	if frame.Len() == 0 {
		return nil, marketdata.ErrNoData
	}

	return frame, nil
}
