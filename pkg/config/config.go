package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Polygon API
	Polygon PolygonConfig

	// Gainer scan defaults
	Scan ScanConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// PolygonConfig holds Polygon.io API configuration
type PolygonConfig struct {
	APIKey  string
	BaseURL string

	// Outbound call budget
	Timeout     time.Duration
	MaxRetries  int
	RateLimit   int // requests per second across all endpoints
	Concurrency int // max in-flight bar fetches, sized to the connection pool
}

// ScanConfig holds default gainer-scan parameters
type ScanConfig struct {
	TopN            int
	LookbackMinutes int
	Premarket       bool
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Polygon: PolygonConfig{
			APIKey:      getEnv("POLYGON_API_KEY", ""),
			BaseURL:     getEnv("POLYGON_BASE_URL", "https://api.polygon.io"),
			Timeout:     getEnvAsDuration("HTTP_TIMEOUT", "30s"),
			MaxRetries:  getEnvAsInt("HTTP_MAX_RETRIES", 3),
			RateLimit:   getEnvAsInt("POLYGON_RATE_LIMIT", 50),
			Concurrency: getEnvAsInt("FETCH_CONCURRENCY", 50),
		},

		Scan: ScanConfig{
			TopN:            getEnvAsInt("TOP_N", 20),
			LookbackMinutes: getEnvAsInt("LOOKBACK_MINUTES", 10),
			Premarket:       getEnvAsBool("PREMARKET", false),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scan.TopN <= 0 {
		return fmt.Errorf("TOP_N must be positive")
	}

	if c.Scan.LookbackMinutes < 1 || c.Scan.LookbackMinutes > 30 {
		return fmt.Errorf("LOOKBACK_MINUTES must be in [1,30]")
	}

	if c.Polygon.Concurrency <= 0 {
		return fmt.Errorf("FETCH_CONCURRENCY must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
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

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
