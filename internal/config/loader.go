package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "config/config.yaml"
	envPrefix         = "GRIDIRON"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error; defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setServiceDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

// ReloadFromEnv replaces cfg with the file named by GRIDIRON_CONFIG_PATH, if set.
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setModelDefaults(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// setModelDefaults installs the calibrated constants so a config file only
// needs to name the ones it overrides.
func setModelDefaults(v *viper.Viper) {
	v.SetDefault("model.scoring_std_dev", 13.5)
	v.SetDefault("model.home_field_advantage", 2.15)
	v.SetDefault("model.default_top_tier_rating", 0.0)
	v.SetDefault("model.default_second_tier_rating", -15.0)
	v.SetDefault("model.default_lower_tier_rating", -25.0)
	v.SetDefault("model.top_tier_opponent_threshold", 10.0)
	v.SetDefault("model.sure_thing_threshold", 0.8)
	v.SetDefault("model.longshot_threshold", 0.2)
	v.SetDefault("model.coinflip_low", 0.4)
	v.SetDefault("model.coinflip_high", 0.6)
	v.SetDefault("model.close_game_margin", 8)
	v.SetDefault("betting.provider_preference", []string{"DraftKings", "ESPN Bet"})
}

func setServiceDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gridiron-metrics")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)
	v.SetDefault("data_source.name", "cfbd")
	v.SetDefault("data_source.base_url", "https://api.collegefootballdata.com")
	v.SetDefault("data_source.rate_limit_per_second", 5)
	v.SetDefault("data_source.retry_attempts", 3)
	v.SetDefault("data_source.timeout_seconds", 30)
	v.SetDefault("computation.workers", 8)
	v.SetDefault("computation.cache_ttl_seconds", 300)
	v.SetDefault("schedule.refresh", "*/30 * * * *")
	v.SetDefault("schedule.source", "database")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.health_port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
