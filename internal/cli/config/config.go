package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. WOOLBALL_API_KEY
const EnvPrefix = "WOOLBALL"

// Config represents the woolball CLI configuration
type Config struct {
	APIKey      string            `mapstructure:"api_key"`
	NoColor     bool              `mapstructure:"no_color"`
	Templates   TemplatesConfig   `mapstructure:"templates"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Materialize MaterializeConfig `mapstructure:"materialize"`
	Log         LogConfig         `mapstructure:"log"`
}

// TemplatesConfig controls where template files are downloaded from
type TemplatesConfig struct {
	// BaseURL overrides the catalog base URL; empty keeps the published one
	BaseURL string `mapstructure:"base_url"`
}

// HTTPConfig configures the template fetcher
type HTTPConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// MaterializeConfig configures how files are written
type MaterializeConfig struct {
	Concurrency int  `mapstructure:"concurrency"`
	Atomic      bool `mapstructure:"atomic"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from configFile, or from woolball.yaml in the
// working directory or $HOME/.config/woolball when configFile is empty.
// A missing config file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("api_key", "")
	v.SetDefault("no_color", false)
	v.SetDefault("templates.base_url", "")
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.user_agent", "woolball-cli")
	v.SetDefault("http.max_body_bytes", 8<<20)
	v.SetDefault("materialize.concurrency", 0)
	v.SetDefault("materialize.atomic", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("woolball")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "woolball"))
		}
	}

	// Enable environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got: %s", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("http.max_body_bytes must be positive, got: %d", cfg.HTTP.MaxBodyBytes)
	}
	if cfg.Materialize.Concurrency < 0 {
		return fmt.Errorf("materialize.concurrency must not be negative, got: %d", cfg.Materialize.Concurrency)
	}
	if cfg.Templates.BaseURL != "" {
		u, err := url.Parse(cfg.Templates.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("templates.base_url must be an http(s) URL, got: %s", cfg.Templates.BaseURL)
		}
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got: %s", cfg.Log.Format)
	}
	return nil
}
