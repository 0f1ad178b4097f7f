package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/cypherlabdev/odds-scanner-service/internal/models"
)

// Config holds all configuration for odds-scanner-service
type Config struct {
	Server  ServerConfig
	Kafka   KafkaConfig
	Redis   RedisConfig
	Feeds   FeedsConfig
	Scanner ScannerConfig
	Refresh RefreshConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port               int
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string // Topic to consume from (normalized_quotes)
	GroupID string `mapstructure:"group_id"`

	RetryBackoff time.Duration `mapstructure:"retry_backoff"` // First wait before reprocessing a failed batch
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// FeedsConfig holds the upstream data source configuration
type FeedsConfig struct {
	Sportsbook SportsbookFeedConfig
	Polymarket PolymarketFeedConfig
}

// SportsbookFeedConfig configures The Odds API
type SportsbookFeedConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"` // Empty disables the sportsbook feed
	Regions string
	Markets string
	Timeout time.Duration
}

// PolymarketFeedConfig configures the Polymarket Gamma API
type PolymarketFeedConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Limit    int
	SeriesID int `mapstructure:"series_id"` // 0 = all series
	Timeout  time.Duration
}

// ScannerConfig holds aggregation and scan parameters
type ScannerConfig struct {
	FairBaseline     string  `mapstructure:"fair_baseline"`      // best, mean
	MinEdge          float64 `mapstructure:"min_edge"`           // 0.01 = 1 percentage point
	LowHoldThreshold float64 `mapstructure:"low_hold_threshold"` // Hold percent (5 = 5%)
	ArbitrageStake   float64 `mapstructure:"arbitrage_stake"`    // Total stake for arbitrage stake plans
}

// RefreshConfig holds background refresh configuration
type RefreshConfig struct {
	Enabled  bool
	Interval time.Duration
	Sport    string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "normalized_quotes")
	v.SetDefault("kafka.group_id", "odds-scanner")
	v.SetDefault("kafka.retry_backoff", "1s")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 2*time.Minute)

	v.SetDefault("feeds.sportsbook.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("feeds.sportsbook.api_key", "")
	v.SetDefault("feeds.sportsbook.regions", "us")
	v.SetDefault("feeds.sportsbook.markets", "h2h,spreads,totals")
	v.SetDefault("feeds.sportsbook.timeout", 10*time.Second)

	v.SetDefault("feeds.polymarket.base_url", "https://gamma-api.polymarket.com")
	v.SetDefault("feeds.polymarket.limit", 20)
	v.SetDefault("feeds.polymarket.series_id", 0)
	v.SetDefault("feeds.polymarket.timeout", 10*time.Second)

	v.SetDefault("scanner.fair_baseline", string(models.FairBaselineBest))
	v.SetDefault("scanner.min_edge", 0.01)
	v.SetDefault("scanner.low_hold_threshold", 5.0)
	v.SetDefault("scanner.arbitrage_stake", 100.0)

	v.SetDefault("refresh.enabled", true)
	v.SetDefault("refresh.interval", 5*time.Minute)
	v.SetDefault("refresh.sport", "americanfootball_nfl")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("ODDS_SCANNER")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate checks values viper cannot type-check
func (c *Config) Validate() error {
	switch models.FairBaseline(c.Scanner.FairBaseline) {
	case models.FairBaselineBest, models.FairBaselineMean:
	default:
		return fmt.Errorf("scanner.fair_baseline must be %q or %q, got %q",
			models.FairBaselineBest, models.FairBaselineMean, c.Scanner.FairBaseline)
	}
	if c.Scanner.MinEdge < 0 {
		return fmt.Errorf("scanner.min_edge must not be negative, got %v", c.Scanner.MinEdge)
	}
	if c.Scanner.LowHoldThreshold <= 0 {
		return fmt.Errorf("scanner.low_hold_threshold must be positive, got %v", c.Scanner.LowHoldThreshold)
	}
	if c.Scanner.ArbitrageStake < 0 {
		return fmt.Errorf("scanner.arbitrage_stake must not be negative, got %v", c.Scanner.ArbitrageStake)
	}
	if c.Refresh.Enabled && c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh.interval must be positive when refresh is enabled, got %v", c.Refresh.Interval)
	}
	return nil
}

// ToAggregationParams converts config to aggregator parameters
func (c *ScannerConfig) ToAggregationParams() models.AggregationParams {
	return models.AggregationParams{
		Baseline: models.FairBaseline(c.FairBaseline),
		MinEdge:  c.MinEdge,
	}
}

// ToScanParams converts config to scanner parameters
func (c *ScannerConfig) ToScanParams() models.ScanParams {
	return models.ScanParams{
		LowHoldThreshold: c.LowHoldThreshold,
		ArbitrageStake:   decimal.NewFromFloat(c.ArbitrageStake),
	}
}
