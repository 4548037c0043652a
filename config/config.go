package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Board   BoardConfig   `mapstructure:"board"`
	Scanner ScannerConfig `mapstructure:"scanner"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RemoteConfig holds remote product store configuration
type RemoteConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second
	Burst     int           `mapstructure:"burst"`
}

// BoardConfig holds the bucket layout of the kanban board
type BoardConfig struct {
	KnownBuckets    []string `mapstructure:"known_buckets"`
	FallbackBucket  string   `mapstructure:"fallback_bucket"`
	DiscoverBuckets bool     `mapstructure:"discover_buckets"`
}

// ScannerConfig holds recognition engine configuration
type ScannerConfig struct {
	TesseractPath string        `mapstructure:"tesseract_path"`
	Language      string        `mapstructure:"language"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"` // 0 disables lookup caching
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/stockboard/")

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFile loads configuration from an explicit file, still honoring
// environment overrides
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	// STOCKBOARD_REMOTE_BASE_URL -> remote.base_url
	v.SetEnvPrefix("STOCKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	config.Board.KnownBuckets = splitList(config.Board.KnownBuckets)
	config.Server.AllowedOrigins = splitList(config.Server.AllowedOrigins)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Remote store defaults
	v.SetDefault("remote.base_url", "http://localhost:5000/api")
	v.SetDefault("remote.timeout", "10s")
	v.SetDefault("remote.rate_limit", 20)
	v.SetDefault("remote.burst", 10)

	// Board defaults: fixed buckets, unknown categories left off the board
	v.SetDefault("board.known_buckets", []string{"Uncategorized", "Category1", "Category2"})
	v.SetDefault("board.fallback_bucket", "")
	v.SetDefault("board.discover_buckets", false)

	// Scanner defaults
	v.SetDefault("scanner.tesseract_path", "tesseract")
	v.SetDefault("scanner.language", "eng")
	v.SetDefault("scanner.timeout", "60s")

	// Cache defaults
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.cleanup_interval", "10m")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// splitList expands comma separated entries, which is how lists arrive from env vars
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Remote.BaseURL == "" {
		return fmt.Errorf("remote base URL is required (set STOCKBOARD_REMOTE_BASE_URL)")
	}

	if config.Remote.RateLimit <= 0 || config.Remote.Burst <= 0 {
		return fmt.Errorf("remote rate limit and burst must be positive, got: %v/%d", config.Remote.RateLimit, config.Remote.Burst)
	}

	if len(config.Board.KnownBuckets) == 0 && config.Board.FallbackBucket == "" && !config.Board.DiscoverBuckets {
		return fmt.Errorf("board needs known buckets, a fallback bucket or bucket discovery")
	}

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error, got: %s", config.Logging.Level)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Logging.Format)
	}

	if config.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative, got: %v", config.Cache.TTL)
	}

	if config.Cache.CleanupInterval <= 0 {
		return fmt.Errorf("cache cleanup interval must be positive, got: %v", config.Cache.CleanupInterval)
	}

	return nil
}
