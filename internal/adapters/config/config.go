package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Tickers    []string `envconfig:"TICKERS" default:"AAPL,GOOG,GOOGL,AMZN,TSLA,MSFT"`
	Subreddits []string `envconfig:"SUBREDDITS" default:"stocks,wallstreetbets,investing,daytrading,stockmarket"`

	Reddit      RedditConfig      `envconfig:"REDDIT"`
	Aggregation AggregationConfig `envconfig:"AGGREGATION"`
	Server      ServerConfig      `envconfig:"SERVER"`
	Telegram    TelegramConfig    `envconfig:"TELEGRAM"`
	Database    DatabaseConfig    `envconfig:"DATABASE"`
	Logging     LoggingConfig     `envconfig:"LOGGING"`
}

// RedditConfig represents Reddit ingestion parameters
type RedditConfig struct {
	UserAgent string        `envconfig:"REDDIT_USER_AGENT" default:"StockSentiment/1.0"`
	PostLimit int           `envconfig:"REDDIT_POST_LIMIT" default:"100"`
	Timeout   time.Duration `envconfig:"REDDIT_TIMEOUT" default:"10s"`
}

// AggregationConfig represents aggregation run parameters
type AggregationConfig struct {
	Interval time.Duration `envconfig:"AGGREGATION_INTERVAL" default:"1h"`
}

// ServerConfig represents HTTP API parameters
type ServerConfig struct {
	Port string `envconfig:"SERVER_PORT" default:"8080"`
}

// TelegramConfig represents optional run-summary notifications
type TelegramConfig struct {
	Enabled  bool   `envconfig:"TELEGRAM_ENABLED" default:"false"`
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"false"`
}

// DatabaseConfig represents database connection parameters
type DatabaseConfig struct {
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           int    `envconfig:"DB_PORT" default:"5432"`
	Name           string `envconfig:"DB_NAME" default:"stock_sentiment"`
	User           string `envconfig:"DB_USER" required:"true"`
	Password       string `envconfig:"DB_PASSWORD" required:"true"`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	MigrationsPath string `envconfig:"DB_MIGRATIONS_PATH" default:"migrations"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return fmt.Errorf("at least one ticker must be configured")
	}
	if len(c.Subreddits) == 0 {
		return fmt.Errorf("at least one subreddit must be configured")
	}

	for _, sub := range c.Subreddits {
		if strings.EqualFold(sub, "all") {
			return fmt.Errorf("subreddit name %q is reserved for the cross-subreddit bucket", sub)
		}
	}

	if c.Reddit.PostLimit < 1 {
		return fmt.Errorf("reddit post limit must be at least 1")
	}
	if c.Aggregation.Interval < time.Minute {
		return fmt.Errorf("aggregation interval must be at least 1m")
	}

	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required when notifications are enabled")
	}
	if c.Telegram.Enabled && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram chat_id is required when notifications are enabled")
	}

	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
