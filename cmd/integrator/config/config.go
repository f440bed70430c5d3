// Package config loads the integrator's runtime settings from config file
// and environment.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/reconciler"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/pkg/logger"
)

// Config holds every runtime setting of the integrator.
type Config struct {
	// HTTP listener port.
	Port int `mapstructure:"port"`

	// Provider credentials and connection settings.
	SecretID    string `mapstructure:"secret_id"`
	SecretKey   string `mapstructure:"secret_key"`
	BaseURL     string `mapstructure:"base_url"`
	RedirectURI string `mapstructure:"redirect_uri"`

	// BalanceTypes is the reconciler's balance-type preference order.
	BalanceTypes []string `mapstructure:"balance_types"`

	// Logging settings.
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// SetDefaults registers every default on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 3000)
	// Registering empty defaults keeps env-only keys visible to Unmarshal.
	v.SetDefault("secret_id", "")
	v.SetDefault("secret_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("redirect_uri", "")
	v.SetDefault("balance_types", reconciler.DefaultConfig().BalanceTypes)
	v.SetDefault("log_level", string(logger.InfoLevel))
	v.SetDefault("log_format", string(logger.TextFormat))
}

// Load unmarshals and validates the configuration.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration. Provider credentials are allowed to
// be empty: the service then starts unconfigured and reports that on /status.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	if len(c.BalanceTypes) == 0 {
		return fmt.Errorf("at least one balance type preference is required")
	}

	logConfig := &logger.Config{
		Level:  logger.Level(c.LogLevel),
		Format: logger.Format(c.LogFormat),
	}
	if err := logConfig.Validate(); err != nil {
		return err
	}

	return nil
}

// LoggerConfig derives the logger configuration.
func (c *Config) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:  logger.Level(c.LogLevel),
		Format: logger.Format(c.LogFormat),
	}
}
