package universe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jshaw/alphascan/pkg/config"
	"github.com/jshaw/alphascan/pkg/httputil"
	"github.com/jshaw/alphascan/pkg/logger"
)

const constituentCSV = `Symbol,Name,Sector
AAPL,Apple Inc.,Information Technology
XOM,Exxon Mobil,Energy
BRK-B,Berkshire Hathaway,Financials
`

const constituentHTML = `<html><body>
<table class="wikitable">
<tr><th>Symbol</th><th>Security</th><th>GICS Sector</th></tr>
<tr><td>AAPL</td><td>Apple Inc.</td><td>Information Technology</td></tr>
<tr><td>BRK.B</td><td>Berkshire Hathaway</td><td>Financials</td></tr>
</table>
</body></html>`

func newResolver(t *testing.T, primaryURL, fallbackURL string) *Resolver {
	t.Helper()

	cfg := &config.Config{
		Universe: config.UniverseConfig{
			CachePath:   filepath.Join(t.TempDir(), "constituents.csv"),
			PrimaryURL:  primaryURL,
			FallbackURL: fallbackURL,
		},
	}
	log := logger.NewNop()
	return NewResolver(cfg, httputil.New(log).DisableRetry(), log)
}

func TestLoad_PrimarySource(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(constituentCSV))
	}))
	defer primary.Close()

	r := newResolver(t, primary.URL, "http://127.0.0.1:0/unreachable")

	table, err := r.Load(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, table, 3)
	assert.Equal(t, "AAPL", table[0].Symbol)
	assert.Equal(t, "Information Technology", table[0].Sector)
	assert.Equal(t, "Exxon Mobil", table[1].Security)
}

func TestLoad_FallbackSource(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(constituentHTML))
	}))
	defer fallback.Close()

	r := newResolver(t, primary.URL, fallback.URL)

	table, err := r.Load(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, table, 2)

	// Share classes use the market data provider's hyphen convention
	assert.Equal(t, "BRK-B", table[1].Symbol)
}

func TestLoad_BothSourcesFail(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	r := newResolver(t, failing.URL, failing.URL)

	_, err := r.Load(context.Background(), false)
	assert.Error(t, err)
}

func TestLoad_CacheHitSkipsNetwork(t *testing.T) {
	hits := 0
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(constituentCSV))
	}))
	defer primary.Close()

	r := newResolver(t, primary.URL, "http://127.0.0.1:0/unreachable")

	_, err := r.Load(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, hits)

	// Cache is now populated; a second load must not touch the network
	table, err := r.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, table, 3)
	assert.Equal(t, 1, hits)
}

func TestLoad_ForceRefreshBypassesCache(t *testing.T) {
	hits := 0
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(constituentCSV))
	}))
	defer primary.Close()

	r := newResolver(t, primary.URL, "http://127.0.0.1:0/unreachable")

	_, err := r.Load(context.Background(), false)
	require.NoError(t, err)

	_, err = r.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestLoad_CacheRoundTrip(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(constituentCSV))
	}))
	defer primary.Close()

	r := newResolver(t, primary.URL, "")

	_, err := r.Load(context.Background(), false)
	require.NoError(t, err)

	data, err := os.ReadFile(r.cachePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Symbol,Security,GICS Sector")
	assert.Contains(t, string(data), "BRK-B")
}

func TestSectorToTickers(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(constituentCSV))
	}))
	defer primary.Close()

	r := newResolver(t, primary.URL, "")

	mapping, err := r.SectorToTickers(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL"}, mapping["Information Technology"])
	assert.Equal(t, []string{"XOM"}, mapping["Energy"])
	assert.Equal(t, 3, mapping.Count())
}

func TestParseConstituentCSV_MissingSymbolColumn(t *testing.T) {
	_, err := parseConstituentCSV([]byte("Ticker,Sector\nAAPL,Tech\n"))
	assert.Error(t, err)
}

func TestParseConstituentCSV_SkipsBlankSymbols(t *testing.T) {
	table, err := parseConstituentCSV([]byte("Symbol,Sector\n,Tech\nAAPL,Tech\n"))
	require.NoError(t, err)
	assert.Len(t, table, 1)
}

func TestParseConstituentHTML_NoTable(t *testing.T) {
	_, err := parseConstituentHTML([]byte("<html><body><p>nothing</p></body></html>"))
	assert.Error(t, err)
}
