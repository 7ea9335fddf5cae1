package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis (optional bar cache)
	Redis RedisConfig

	// Market data provider
	MarketData MarketDataConfig

	// Universe resolver
	Universe UniverseConfig

	// Scan parameters
	Scan ScanConfig

	// Backtest defaults
	Backtest BacktestConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// MarketDataConfig holds price-history provider configuration
type MarketDataConfig struct {
	BaseURL      string
	LookbackDays int           // daily bars requested per ticker
	CacheTTL     time.Duration // bar-cache TTL (redis)
	RateLimit    float64       // requests per second toward the provider
	RateBurst    int
}

// UniverseConfig holds constituent-universe acquisition configuration
type UniverseConfig struct {
	CachePath   string // local CSV cache, refreshed only on demand
	PrimaryURL  string // structured CSV source
	FallbackURL string // HTML reference page
}

// ScanConfig holds the daily-scan tuning knobs
type ScanConfig struct {
	Sectors        []string
	TopN           int // recommendations kept per sector
	MaxPerSector   int // diversification cap on the combined list
	Workers        int // ticker fan-out width
	MinPrice       float64
	MinAvgVolume   float64 // 20-day average volume floor
	MinHistoryRows int
	TechWeight     float64
	SentWeight     float64
}

// BacktestConfig holds backtest defaults
type BacktestConfig struct {
	TopK          int
	HoldDays      int
	LookbackYears int
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Market data
		MarketData: MarketDataConfig{
			BaseURL:      getEnv("MARKETDATA_BASE_URL", "https://query1.finance.yahoo.com"),
			LookbackDays: getEnvAsInt("MARKETDATA_LOOKBACK_DAYS", 260),
			CacheTTL:     getEnvAsDuration("MARKETDATA_CACHE_TTL", "1h"),
			RateLimit:    getEnvAsFloat("MARKETDATA_RATE_LIMIT", 5.0),
			RateBurst:    getEnvAsInt("MARKETDATA_RATE_BURST", 5),
		},

		// Universe
		Universe: UniverseConfig{
			CachePath:   getEnv("UNIVERSE_CACHE_PATH", "cache/sp500_universe.csv"),
			PrimaryURL:  getEnv("UNIVERSE_PRIMARY_URL", "https://datahub.io/core/s-and-p-500-companies/r/constituents.csv"),
			FallbackURL: getEnv("UNIVERSE_FALLBACK_URL", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"),
		},

		// Scan
		Scan: ScanConfig{
			Sectors:        getEnvAsList("SCAN_SECTORS", "Information Technology,Health Care,Financials,Industrials,Energy"),
			TopN:           getEnvAsInt("SCAN_TOP_N", 10),
			MaxPerSector:   getEnvAsInt("SCAN_MAX_PER_SECTOR", 3),
			Workers:        getEnvAsInt("SCAN_WORKERS", 8),
			MinPrice:       getEnvAsFloat("SCAN_MIN_PRICE", 5.0),
			MinAvgVolume:   getEnvAsFloat("SCAN_MIN_AVG_VOLUME", 500000),
			MinHistoryRows: getEnvAsInt("SCAN_MIN_HISTORY_ROWS", 120),
			TechWeight:     getEnvAsFloat("SCAN_TECH_WEIGHT", 0.6),
			SentWeight:     getEnvAsFloat("SCAN_SENT_WEIGHT", 0.4),
		},

		// Backtest
		Backtest: BacktestConfig{
			TopK:          getEnvAsInt("BACKTEST_TOP_K", 3),
			HoldDays:      getEnvAsInt("BACKTEST_HOLD_DAYS", 10),
			LookbackYears: getEnvAsInt("BACKTEST_LOOKBACK_YEARS", 2),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if sum := c.Scan.TechWeight + c.Scan.SentWeight; sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("SCAN_TECH_WEIGHT and SCAN_SENT_WEIGHT must sum to 1.0")
	}

	if c.Scan.Workers < 1 {
		return fmt.Errorf("SCAN_WORKERS must be at least 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fallback, _ := time.ParseDuration(defaultValue)
		return fallback
	}

	return value
}

func getEnvAsList(key string, defaultValue string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	parts := strings.Split(valueStr, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
