package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

type Config struct {
	// HTTP Server
	Port string

	// Storage
	DataBackend    string
	DataDir        string
	SQLiteDBPath   string
	RedisURL       string
	RedisKeyPrefix string

	// AMQP (empty URL disables change events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Snapshot worker
	SnapshotDir    string
	SnapshotRetain int

	// Defaults
	DefaultCurrency string
	DefaultTheme    string
	DefaultLanguage string

	// Observability and caching
	LogLevel       string
	ViewCacheSize  int
	ViewCacheTTL   time.Duration
	MetricsEnabled bool
}

// Load reads the environment, after merging a .env file in the working
// directory when one exists. Variables already set win over the file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:    strings.ToLower(getEnv("DATA_BACKEND", "memory")),
		DataDir:        getEnv("DATA_DIR", "data"),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/moneytracker.db"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "moneytracker"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_changes"),

		SnapshotDir:    getEnv("SNAPSHOT_DIR", "./data/snapshots"),
		SnapshotRetain: getEnvInt("SNAPSHOT_RETAIN", 20),

		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
		DefaultTheme:    strings.ToLower(getEnv("DEFAULT_THEME", "light")),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),

		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ViewCacheSize:  getEnvInt("VIEW_CACHE_SIZE", 64),
		ViewCacheTTL:   getEnvDuration("VIEW_CACHE_TTL", 5*time.Minute),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}
}

// AMQPEnabled reports whether change events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite", "redis"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "redis":
		if parsedURL, err := url.Parse(c.RedisURL); err != nil || c.RedisURL == "" {
			errors = append(errors, fmt.Sprintf("invalid Redis URL '%s'", c.RedisURL))
		} else if parsedURL.Scheme != "redis" && parsedURL.Scheme != "rediss" {
			errors = append(errors, fmt.Sprintf("invalid Redis URL scheme '%s': must be 'redis' or 'rediss'", parsedURL.Scheme))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SnapshotDir == "" {
		errors = append(errors, "snapshot directory cannot be empty")
	}
	if c.SnapshotRetain < 1 {
		errors = append(errors, fmt.Sprintf("invalid snapshot retention %d: must be at least 1", c.SnapshotRetain))
	}

	if _, err := currency.ParseISO(c.DefaultCurrency); err != nil {
		errors = append(errors, fmt.Sprintf("invalid default currency '%s': not an ISO 4217 code", c.DefaultCurrency))
	}
	if c.DefaultTheme != "light" && c.DefaultTheme != "dark" {
		errors = append(errors, fmt.Sprintf("invalid default theme '%s': must be 'light' or 'dark'", c.DefaultTheme))
	}
	if _, err := language.Parse(c.DefaultLanguage); err != nil {
		errors = append(errors, fmt.Sprintf("invalid default language '%s': %v", c.DefaultLanguage, err))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if c.ViewCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid view cache size %d: must be at least 1", c.ViewCacheSize))
	}
	if c.ViewCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid view cache TTL %v: must be at least 1 second", c.ViewCacheTTL))
	} else if c.ViewCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid view cache TTL %v: must be at most 24 hours", c.ViewCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
