// Package config provides configuration management for the screener.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"dividend-screener/internal/models"
)

// Config holds all application configuration. It is constructed once at
// process start and passed into components; nothing reads the
// environment after Load returns.
type Config struct {
	Screening   ScreeningConfig `mapstructure:"screening"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Credentials Credentials     `mapstructure:"-"` // Loaded separately
}

// ScreeningConfig holds default screening parameters.
type ScreeningConfig struct {
	MinYield          float64 `mapstructure:"min_yield"`
	DaysAhead         int     `mapstructure:"days_ahead"`
	ExcludeForeign    bool    `mapstructure:"exclude_foreign"`
	ExcludeADR        bool    `mapstructure:"exclude_adr"`
	ExcludeDistressed bool    `mapstructure:"exclude_distressed"`
	StrictFiltering   bool    `mapstructure:"strict_filtering"`
}

// FilterConfig converts the screening section into a run configuration.
func (c ScreeningConfig) FilterConfig() models.FilterConfig {
	return models.FilterConfig{
		MinYield:          c.MinYield,
		ExcludeForeign:    c.ExcludeForeign,
		ExcludeADR:        c.ExcludeADR,
		ExcludeDistressed: c.ExcludeDistressed,
		StrictFiltering:   c.StrictFiltering,
		DaysAhead:         c.DaysAhead,
	}.Normalize()
}

// CacheConfig holds paths to the flat cache files.
type CacheConfig struct {
	ResultFile string `mapstructure:"result_file"`
	IgnoreFile string `mapstructure:"ignore_file"`
}

// DatabaseConfig holds the durable-store location.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// Credentials holds external API credentials.
type Credentials struct {
	Polygon PolygonCredentials `mapstructure:"polygon"`
	Broker  BrokerCredentials  `mapstructure:"broker"`
}

// PolygonCredentials holds the dividends API key.
type PolygonCredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// BrokerCredentials holds brokerage login credentials.
type BrokerCredentials struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/dividend-screener"
	}
	return filepath.Join(home, ".config", "dividend-screener")
}

// Load loads configuration from the specified directory. If configDir is
// empty, the default config directory is used. Missing files are created
// from templates.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyDefaults(cfg, configDir)
	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("screening.min_yield", 0.0)
	v.SetDefault("screening.days_ahead", 14)
	v.SetDefault("screening.exclude_foreign", true)
	v.SetDefault("screening.exclude_adr", true)
	v.SetDefault("screening.exclude_distressed", true)
	v.SetDefault("screening.strict_filtering", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir); err != nil {
				return err
			}
		} else {
			return err
		}
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyDefaults(cfg *Config, configDir string) {
	if cfg.Cache.ResultFile == "" {
		cfg.Cache.ResultFile = filepath.Join(configDir, "dividend_cache.csv")
	}
	if cfg.Cache.IgnoreFile == "" {
		cfg.Cache.IgnoreFile = filepath.Join(configDir, "ignore_cache.csv")
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(configDir, "screener.db")
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		cfg.Credentials.Polygon.APIKey = v
	}
	if v := os.Getenv("BROKER_USERNAME"); v != "" {
		cfg.Credentials.Broker.Username = v
	}
	if v := os.Getenv("BROKER_PASSWORD"); v != "" {
		cfg.Credentials.Broker.Password = v
	}
}
