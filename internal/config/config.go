// Package config provides configuration management for the gridiron metrics service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Model       ModelConfig       `mapstructure:"model" validate:"required"`
	Betting     BettingConfig     `mapstructure:"betting" validate:"required"`
	DataSource  DataSourceConfig  `mapstructure:"data_source" validate:"required"`
	Computation ComputationConfig `mapstructure:"computation" validate:"required"`
	Schedule    ScheduleConfig    `mapstructure:"schedule"`
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Metrics     MetricsConfig     `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name          string `mapstructure:"name" validate:"required"`
	Environment   string `mapstructure:"environment" validate:"required,environment"`
	LogLevel      string `mapstructure:"log_level" validate:"required,loglevel"`
	CurrentSeason int    `mapstructure:"current_season" validate:"required,gt=1868"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ModelConfig holds the calibrated constants of the probability and schedule models.
type ModelConfig struct {
	ScoringStdDev            float64 `mapstructure:"scoring_std_dev" validate:"gt=0"`
	HomeFieldAdvantage       float64 `mapstructure:"home_field_advantage" validate:"gte=0"`
	DefaultTopTierRating     float64 `mapstructure:"default_top_tier_rating"`
	DefaultSecondTierRating  float64 `mapstructure:"default_second_tier_rating"`
	DefaultLowerTierRating   float64 `mapstructure:"default_lower_tier_rating"`
	TopTierOpponentThreshold float64 `mapstructure:"top_tier_opponent_threshold"`
	SureThingThreshold       float64 `mapstructure:"sure_thing_threshold" validate:"gt=0,lte=1"`
	LongshotThreshold        float64 `mapstructure:"longshot_threshold" validate:"gte=0,lt=1"`
	CoinflipLow              float64 `mapstructure:"coinflip_low" validate:"gte=0,lte=1"`
	CoinflipHigh             float64 `mapstructure:"coinflip_high" validate:"gte=0,lte=1"`
	CloseGameMargin          int     `mapstructure:"close_game_margin" validate:"gt=0"`
}

// BettingConfig controls which bookmaker's line is used for a game.
type BettingConfig struct {
	ProviderPreference []string `mapstructure:"provider_preference" validate:"providers"`
}

// DataSourceConfig represents the upstream stats API configuration
type DataSourceConfig struct {
	Name               string `mapstructure:"name" validate:"required"`
	Enabled            bool   `mapstructure:"enabled"`
	BaseURL            string `mapstructure:"base_url" validate:"required,url"`
	APIKey             string `mapstructure:"api_key"`
	RateLimitPerSecond int    `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	RetryAttempts      int    `mapstructure:"retry_attempts" validate:"gte=0"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RatingsFile        string `mapstructure:"ratings_file"`

	CircuitBreakerCooldownSeconds int `mapstructure:"circuit_breaker_cooldown_seconds" validate:"gte=0"`
}

// ComputationConfig controls computation passes
type ComputationConfig struct {
	Workers               int    `mapstructure:"workers" validate:"required,gt=0"`
	CacheTTLSeconds       int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	IncludePostseason     bool   `mapstructure:"include_postseason"`
	DefaultClassification string `mapstructure:"default_classification" validate:"omitempty,classification"`
}

// ScheduleConfig represents scheduled dataset refreshes
type ScheduleConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Refresh string `mapstructure:"refresh" validate:"required_if=Enabled true"`
	Source  string `mapstructure:"source" validate:"omitempty,oneof=database api"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Port               int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	HealthPort         int      `mapstructure:"health_port" validate:"required,min=1,max=65535"`
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
	ReadTimeoutSeconds int      `mapstructure:"read_timeout_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// CacheTTL returns the report cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Computation.CacheTTLSeconds) * time.Second
}

// SourceTimeout returns the upstream request timeout.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.DataSource.TimeoutSeconds) * time.Second
}
