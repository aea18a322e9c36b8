// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default values applied when the environment is silent.
const (
	DefaultAPIURL      = "http://localhost:8000"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultLogLevel    = "info"
	DefaultDBPath      = ".comply/comply.db"
)

// Settings holds all application configuration.
type Settings struct {
	API     APIConfig
	Log     LogConfig
	Storage StorageConfig
}

// APIConfig holds backend connection configuration.
type APIConfig struct {
	// BaseURL is the backend address. COMPLY_API_URL is the single
	// environment knob for it.
	BaseURL string
	// Timeout applies to non-streaming requests. The chat stream itself is
	// unbounded and torn down by context cancellation.
	Timeout time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Pretty bool
}

// StorageConfig holds transcript persistence configuration.
type StorageConfig struct {
	DBPath string
}

// New loads settings from environment variables, applying defaults.
// Returns an error if an environment variable contains an invalid value.
func New() (Settings, error) {
	timeoutSecs, err := getEnvInt("COMPLY_HTTP_TIMEOUT", int(DefaultHTTPTimeout/time.Second))
	if err != nil {
		return Settings{}, err
	}
	if timeoutSecs <= 0 {
		return Settings{}, fmt.Errorf("COMPLY_HTTP_TIMEOUT must be positive, got %d", timeoutSecs)
	}

	pretty, err := getEnvBool("COMPLY_LOG_PRETTY", true)
	if err != nil {
		return Settings{}, err
	}

	level := getEnvString("COMPLY_LOG_LEVEL", DefaultLogLevel)
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return Settings{}, fmt.Errorf("invalid COMPLY_LOG_LEVEL: %q", level)
	}

	return Settings{
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnvString("COMPLY_API_URL", DefaultAPIURL), "/"),
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		Log: LogConfig{
			Level:  level,
			Pretty: pretty,
		},
		Storage: StorageConfig{
			DBPath: getEnvString("COMPLY_DB", DefaultDBPath),
		},
	}, nil
}

// MustNew loads settings and panics on invalid environment values.
// Use this only when configuration errors should be fatal.
func MustNew() Settings {
	settings, err := New()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// Environment variable helpers with proper error handling

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return b, nil
}
