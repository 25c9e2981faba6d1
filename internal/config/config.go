package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Supported store backends
const (
	StoreDynamoDB = "dynamodb"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Supported log formats
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	Store       StoreConfig
	Log         LogConfig
	RateLimit   RateLimitConfig
}

// StoreConfig selects and configures the product store backend
type StoreConfig struct {
	Type       string // "dynamodb", "sqlite" or "memory"
	TableName  string
	Region     string
	Endpoint   string // optional DynamoDB endpoint override, e.g. DynamoDB Local
	SQLitePath string
	PageSize   int // scan page size for the sqlite and memory backends
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// RateLimitConfig holds the local server's request rate limit
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Set up Viper
	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("STORE_TYPE", StoreDynamoDB)
	viper.SetDefault("TABLE_NAME", "product-inventory")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("SQLITE_PATH", "./data/products.db")
	viper.SetDefault("MEMORY_PAGE_SIZE", 100)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", LogFormatText)
	viper.SetDefault("RATE_LIMIT_RPS", 10)
	viper.SetDefault("RATE_LIMIT_BURST", 20)

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		Store: StoreConfig{
			Type:       strings.ToLower(viper.GetString("STORE_TYPE")),
			TableName:  viper.GetString("TABLE_NAME"),
			Region:     viper.GetString("AWS_REGION"),
			Endpoint:   viper.GetString("DYNAMODB_ENDPOINT"),
			SQLitePath: viper.GetString("SQLITE_PATH"),
			PageSize:   viper.GetInt("MEMORY_PAGE_SIZE"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: strings.ToLower(viper.GetString("LOG_FORMAT")),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
	}

	return config, nil
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	switch c.Store.Type {
	case StoreDynamoDB:
		if strings.TrimSpace(c.Store.TableName) == "" {
			return fmt.Errorf("TABLE_NAME is required for the %s store", StoreDynamoDB)
		}
	case StoreSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required for the %s store", StoreSQLite)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_TYPE %q", c.Store.Type)
	}

	if c.Store.PageSize <= 0 {
		return fmt.Errorf("MEMORY_PAGE_SIZE must be positive, got %d", c.Store.PageSize)
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if c.Log.Format != LogFormatJSON && c.Log.Format != LogFormatText {
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.Log.Format)
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit must be positive, got %v rps burst %d", c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}

	return nil
}

// NewLogger builds the application logger from the logging configuration
func (c *Config) NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	if c.Log.Format == LogFormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger, nil
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
