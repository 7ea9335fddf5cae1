package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 260, cfg.MarketData.LookbackDays)
	assert.Equal(t, 10, cfg.Scan.TopN)
	assert.Equal(t, 3, cfg.Scan.MaxPerSector)
	assert.InDelta(t, 1.0, cfg.Scan.TechWeight+cfg.Scan.SentWeight, 1e-9)
	assert.Equal(t, 3, cfg.Backtest.TopK)
	assert.False(t, cfg.Redis.Enabled)
	assert.Len(t, cfg.Scan.Sectors, 5)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SCAN_TOP_N", "5")
	t.Setenv("SCAN_SECTORS", "Energy,Utilities")
	t.Setenv("MARKETDATA_CACHE_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 5, cfg.Scan.TopN)
	assert.Equal(t, []string{"Energy", "Utilities"}, cfg.Scan.Sectors)
	assert.Equal(t, 30*time.Minute, cfg.MarketData.CacheTTL)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("ENV", "nonsense")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_WeightsMustSumToOne(t *testing.T) {
	t.Setenv("SCAN_TECH_WEIGHT", "0.9")
	t.Setenv("SCAN_SENT_WEIGHT", "0.4")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_WorkersFloor(t *testing.T) {
	t.Setenv("SCAN_WORKERS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "not-a-number")
	assert.Equal(t, 7, getEnvAsInt("TEST_INT", 7))

	t.Setenv("TEST_BOOL", "true")
	assert.True(t, getEnvAsBool("TEST_BOOL", false))

	t.Setenv("TEST_LIST", "a, b ,c")
	assert.Equal(t, []string{"a", "b", "c"}, getEnvAsList("TEST_LIST", ""))
}
