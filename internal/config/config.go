package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	CORS       CORSConfig
	Log        LogConfig
	MarketData MarketDataConfig
	Refresh    RefreshConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// MarketDataConfig holds settings for the quote and history provider.
type MarketDataConfig struct {
	Timeout     time.Duration
	Concurrency int
	// Benchmarks are the index symbols reported next to the portfolio return.
	// The first one is used to fit beta and alpha.
	Benchmarks []string
	// RiskFreeSymbol quotes an annual yield in percent.
	RiskFreeSymbol string
}

// RefreshConfig holds the schedule for the nightly market data refresh.
type RefreshConfig struct {
	Enabled  bool
	Schedule string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("MARKET_DATA_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_DATA_TIMEOUT: %w", err)
	}
	concurrency, err := strconv.Atoi(getEnv("MARKET_DATA_CONCURRENCY", "4"))
	if err != nil || concurrency < 1 {
		return nil, fmt.Errorf("invalid MARKET_DATA_CONCURRENCY: %q", os.Getenv("MARKET_DATA_CONCURRENCY"))
	}
	pretty, err := strconv.ParseBool(getEnv("LOG_PRETTY", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_PRETTY: %w", err)
	}
	refreshEnabled, err := strconv.ParseBool(getEnv("REFRESH_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_ENABLED: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_tracker.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: pretty,
		},
		MarketData: MarketDataConfig{
			Timeout:        timeout,
			Concurrency:    concurrency,
			Benchmarks:     splitList(getEnv("BENCHMARK_SYMBOLS", "^GSPC,^DJI,^IXIC")),
			RiskFreeSymbol: getEnv("RISK_FREE_SYMBOL", "^TNX"),
		},
		Refresh: RefreshConfig{
			Enabled: refreshEnabled,
			// After US market close on weekdays.
			Schedule: getEnv("REFRESH_SCHEDULE", "30 22 * * 1-5"),
		},
	}

	if len(config.MarketData.Benchmarks) == 0 {
		return nil, fmt.Errorf("BENCHMARK_SYMBOLS must name at least one symbol")
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// ReferenceSymbols returns every benchmark plus the risk-free symbol.
// These are fetched alongside a user's own holdings.
func (m MarketDataConfig) ReferenceSymbols() []string {
	out := make([]string, 0, len(m.Benchmarks)+1)
	out = append(out, m.Benchmarks...)
	if m.RiskFreeSymbol != "" {
		out = append(out, m.RiskFreeSymbol)
	}
	return out
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
