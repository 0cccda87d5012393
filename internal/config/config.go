// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for the cache database and data files (always absolute)
	AliasFile        string // Optional path to an alias CSV asset; empty means the embedded table
	OwnersFile       string // Path to the trademark registry CSV (Owner column)
	CacheBackend     string // "sqlite" or "file"
	CacheTTL         time.Duration
	FetchTimeout     time.Duration
	FetchConcurrency int // Max concurrent provider calls per analysis run
	AnalysisLimit    int // Default number of top owners analyzed per run
	LogLevel         string
	Port             int
	DevMode          bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("TICKERMATCH_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		AliasFile:        getEnv("ALIAS_FILE", ""),
		OwnersFile:       getEnv("OWNERS_FILE", filepath.Join(absDataDir, "trademarks.csv")),
		CacheBackend:     getEnv("CACHE_BACKEND", "sqlite"),
		CacheTTL:         time.Duration(getEnvAsFloat("STOCK_CACHE_HOURS", 1) * float64(time.Hour)),
		FetchTimeout:     time.Duration(getEnvAsInt("FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
		FetchConcurrency: getEnvAsInt("FETCH_CONCURRENCY", 4),
		AnalysisLimit:    getEnvAsInt("ANALYSIS_LIMIT", 500),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnvAsInt("PORT", 2000),
		DevMode:          getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.CacheBackend != "sqlite" && c.CacheBackend != "file" {
		return fmt.Errorf("invalid cache backend %q (expected \"sqlite\" or \"file\")", c.CacheBackend)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("fetch concurrency must be at least 1")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
