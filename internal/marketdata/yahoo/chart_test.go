package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jshaw/alphascan/internal/marketdata"
	"github.com/jshaw/alphascan/internal/series"
	"github.com/jshaw/alphascan/pkg/httputil"
	"github.com/jshaw/alphascan/pkg/logger"
)

// Three daily bars; the middle bar is a halted session with null prices
const chartFixture = `{
  "chart": {
    "result": [{
      "timestamp": [1735689600, 1735776000, 1735862400],
      "indicators": {
        "quote": [{
          "open":   [100.0, null, 102.0],
          "high":   [101.0, null, 103.5],
          "low":    [99.0,  null, 101.0],
          "close":  [100.5, null, 103.0],
          "volume": [1000000, null, 1200000]
        }]
      }
    }],
    "error": null
  }
}`

const notFoundFixture = `{
  "chart": {
    "result": null,
    "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}
  }
}`

func TestParseChart_DropsNullBars(t *testing.T) {
	frame, err := parseChart([]byte(chartFixture))
	require.NoError(t, err)

	assert.Equal(t, 2, frame.Len())

	close, ok := frame.Column(series.ColClose)
	require.True(t, ok)
	assert.Equal(t, []float64{100.5, 103.0}, close)

	vol, ok := frame.Column(series.ColVolume)
	require.True(t, ok)
	assert.Equal(t, []float64{1000000, 1200000}, vol)
}

func TestParseChart_NotFound(t *testing.T) {
	_, err := parseChart([]byte(notFoundFixture))
	assert.ErrorIs(t, err, marketdata.ErrNoData)
}

func TestParseChart_EmptyResult(t *testing.T) {
	_, err := parseChart([]byte(`{"chart":{"result":[],"error":null}}`))
	assert.ErrorIs(t, err, marketdata.ErrNoData)
}

func TestParseChart_NoTimestamps(t *testing.T) {
	body := `{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[]}}],"error":null}}`
	_, err := parseChart([]byte(body))
	assert.ErrorIs(t, err, marketdata.ErrNoData)
}

func TestParseChart_AllBarsNull(t *testing.T) {
	body := `{
	  "chart": {
	    "result": [{
	      "timestamp": [1735689600],
	      "indicators": {"quote": [{"open":[null],"high":[null],"low":[null],"close":[null],"volume":[null]}]}
	    }],
	    "error": null
	  }
	}`
	_, err := parseChart([]byte(body))
	assert.ErrorIs(t, err, marketdata.ErrNoData)
}

func TestParseChart_OtherAPIError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Unauthorized","description":"nope"}}}`
	_, err := parseChart([]byte(body))
	require.Error(t, err)
	assert.False(t, errors.Is(err, marketdata.ErrNoData))
}

func TestParseChart_Garbage(t *testing.T) {
	_, err := parseChart([]byte("not json"))
	assert.Error(t, err)
}

func TestClient_History(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, chartFixture)
	}))
	defer server.Close()

	log := logger.NewNop()
	client := NewWithHTTPClient(httputil.New(log).DisableRetry(), server.URL, log)

	frame, err := client.History(context.Background(), "AAPL", 365)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
	assert.Equal(t, 2, frame.Len())
}

func TestClient_History_NoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, notFoundFixture)
	}))
	defer server.Close()

	log := logger.NewNop()
	client := NewWithHTTPClient(httputil.New(log).DisableRetry(), server.URL, log)

	_, err := client.History(context.Background(), "GONE", 365)
	assert.ErrorIs(t, err, marketdata.ErrNoData)
}
