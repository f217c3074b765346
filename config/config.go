package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application-level configuration
type Config struct {
	// Browser
	CDPURL   string // DevTools endpoint of the already-logged-in Chrome
	TripsURL string

	// Fetching
	RateLimitDelay  int // milliseconds between browser interactions
	MaxRetries      int
	NavTimeout      time.Duration
	DownloadTimeout time.Duration // per attempt, receipt generation is async

	// Output
	OutputDir string
	LogLevel  string
}

// Load reads configuration from environment variables (and a .env file, if
// present) or falls back to defaults
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		CDPURL:          getEnv("CDP_URL", "http://localhost:9222"),
		TripsURL:        getEnv("TRIPS_URL", "https://riders.uber.com/trips"),
		RateLimitDelay:  getEnvInt("RATE_LIMIT_DELAY_MS", 2000),
		MaxRetries:      getEnvInt("MAX_RETRIES", 3),
		NavTimeout:      getEnvDuration("NAV_TIMEOUT", 30*time.Second),
		DownloadTimeout: getEnvDuration("DOWNLOAD_TIMEOUT", 10*time.Second),
		OutputDir:       getEnv("OUTPUT_DIR", defaultOutputDir()),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "uber_receipts"
	}
	return filepath.Join(home, "Downloads", "uber_receipts")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
