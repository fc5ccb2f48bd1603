// Package common provides shared utilities for Nivesh
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Nivesh
type Config struct {
	Environment       string        `toml:"environment"`
	ReferenceCurrency string        `toml:"reference_currency"` // Currency for the portfolio grand total ("USD" or "INR", default "INR")
	Server            ServerConfig  `toml:"server"`
	Storage           StorageConfig `toml:"storage"`
	Rates             RatesConfig   `toml:"rates"`
	Clients           ClientsConfig `toml:"clients"`
	Timeline          TimelineConfig `toml:"timeline"`
	Logging           LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds paths for the two storage areas.
type StorageConfig struct {
	Ledger AreaConfig `toml:"ledger"` // Investments + transactions (BadgerHold)
	Rates  AreaConfig `toml:"rates"`  // Rate cache (JSON file)
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// RatesConfig governs the rate provider: cache freshness and instrument
// routing. Routing rules are evaluated in order; the first matching pattern
// picks the price source, so new sources slot in without code changes.
type RatesConfig struct {
	FreshnessHours int         `toml:"freshness_hours"` // Max age of a current-rate cache entry, default 12
	LookbackDays   int         `toml:"lookback_days"`   // How far back a historical lookup may settle, default 7
	Routing        []RouteRule `toml:"routing"`
}

// RouteRule maps an instrument-id pattern to a named price source.
type RouteRule struct {
	Pattern string `toml:"pattern"` // regexp matched against the instrument id
	Source  string `toml:"source"`  // registered source name
}

// Freshness returns the configured freshness window for current rates.
func (c *RatesConfig) Freshness() time.Duration {
	if c.FreshnessHours <= 0 {
		return DefaultRateFreshness
	}
	return time.Duration(c.FreshnessHours) * time.Hour
}

// Lookback returns how many days before a requested date a historical quote
// may fall.
func (c *RatesConfig) Lookback() int {
	if c.LookbackDays <= 0 {
		return 7
	}
	return c.LookbackDays
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	AlphaVantage APIClientConfig `toml:"alphavantage"`
	MFAPI        APIClientConfig `toml:"mfapi"`
	Captnemo     APIClientConfig `toml:"captnemo"`
	Yahoo        APIClientConfig `toml:"yahoo"`
	Frankfurter  APIClientConfig `toml:"frankfurter"`
}

// APIClientConfig holds one upstream API's connection settings.
type APIClientConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key,omitempty"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *APIClientConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// TimelineConfig bounds historical snapshot generation.
type TimelineConfig struct {
	Floor string `toml:"floor"` // Earliest snapshot date (YYYY-MM-DD)
}

// FloorDate parses the timeline floor, defaulting to 2022-09-01.
func (c *TimelineConfig) FloorDate() time.Time {
	if d, err := time.Parse("2006-01-02", c.Floor); err == nil {
		return d
	}
	return time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment:       "development",
		ReferenceCurrency: "INR",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Ledger: AreaConfig{Path: "data/ledger"},
			Rates:  AreaConfig{Path: "data/rates"},
		},
		Rates: RatesConfig{
			FreshnessHours: 12,
			LookbackDays:   7,
			Routing: []RouteRule{
				{Pattern: `^\d{6}$`, Source: "mutualfund"},
				{Pattern: `^IN[A-Z0-9]{10}$`, Source: "isin"},
				{Pattern: `.*`, Source: "market"},
			},
		},
		Clients: ClientsConfig{
			AlphaVantage: APIClientConfig{
				BaseURL:   "https://www.alphavantage.co",
				RateLimit: 1,
				Timeout:   "30s",
			},
			MFAPI: APIClientConfig{
				BaseURL:   "https://api.mfapi.in",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Captnemo: APIClientConfig{
				BaseURL:   "https://mf.captnemo.in",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Yahoo: APIClientConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Frankfurter: APIClientConfig{
				BaseURL:   "https://api.frankfurter.app",
				RateLimit: 5,
				Timeout:   "30s",
			},
		},
		Timeline: TimelineConfig{
			Floor: "2022-09-01",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateReferenceCurrency(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("NIVESH_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("NIVESH_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("NIVESH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("NIVESH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("NIVESH_DATA_PATH"); path != "" {
		config.Storage.Ledger.Path = filepath.Join(path, "ledger")
		config.Storage.Rates.Path = filepath.Join(path, "rates")
	}

	if rc := os.Getenv("NIVESH_REFERENCE_CURRENCY"); rc != "" {
		config.ReferenceCurrency = strings.ToUpper(rc)
	}

	if hours := os.Getenv("NIVESH_RATE_FRESHNESS_HOURS"); hours != "" {
		if h, err := strconv.Atoi(hours); err == nil {
			config.Rates.FreshnessHours = h
		}
	}

	// API key: prefer the vendor-standard env name, then the NIVESH_ one.
	for _, name := range []string{"ALPHAVANTAGE_API_KEY", "NIVESH_ALPHAVANTAGE_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			config.Clients.AlphaVantage.APIKey = key
			break
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// validateReferenceCurrency ensures ReferenceCurrency is "USD" or "INR",
// defaulting to "INR".
func validateReferenceCurrency(config *Config) {
	rc := strings.ToUpper(config.ReferenceCurrency)
	if rc != "USD" && rc != "INR" {
		rc = "INR"
	}
	config.ReferenceCurrency = rc
}
