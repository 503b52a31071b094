// Package config handles configuration loading for ineqstat.
// It supports YAML config files with environment variable overrides.
//
// Only presentation and runtime settings live here. The study inputs
// (decile table and share vectors) are compiled in and are not configurable.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. INEQSTAT_API_PORT.
const EnvPrefix = "INEQSTAT"

// Config represents the complete application configuration.
type Config struct {
	Report  ReportConfig  `mapstructure:"report"  json:"report"  yaml:"report"`
	API     APIConfig     `mapstructure:"api"     json:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" json:"logging" yaml:"logging"`
}

// ReportConfig controls how reports are built and rendered.
type ReportConfig struct {
	Format           string  `mapstructure:"format"            json:"format"            yaml:"format"`    // "text" or "json"
	Precision        int     `mapstructure:"precision"         json:"precision"         yaml:"precision"` // decimals for amounts and percentages
	IncludeReference bool    `mapstructure:"include_reference" json:"include_reference" yaml:"include_reference"`
	Strict           bool    `mapstructure:"strict"            json:"strict"            yaml:"strict"`    // fail when shares are malformed
	Tolerance        float64 `mapstructure:"tolerance"         json:"tolerance"         yaml:"tolerance"` // relative, for re-aggregation checks
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string        `mapstructure:"host"         json:"host"         yaml:"host"`
	Port        int           `mapstructure:"port"         json:"port"         yaml:"port"`
	CORSOrigins []string      `mapstructure:"cors_origins" json:"cors_origins" yaml:"cors_origins"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"    json:"cache_ttl"    yaml:"cache_ttl"` // 0 disables report caching
}

// Addr returns host:port.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  json:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" json:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.ineqstat/config.yaml (home directory)
//  3. /etc/ineqstat/config.yaml (system)
//
// Environment variables override config file values.
// Format: INEQSTAT_<SECTION>_<KEY>, e.g., INEQSTAT_REPORT_PRECISION
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".ineqstat"))
	v.AddConfigPath("/etc/ineqstat")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Report defaults
	v.SetDefault("report.format", "text")
	v.SetDefault("report.precision", 2)
	v.SetDefault("report.include_reference", false)
	v.SetDefault("report.strict", false)
	v.SetDefault("report.tolerance", 1e-6)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.cache_ttl", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate rejects settings the renderers and server cannot honour.
func (c *Config) Validate() error {
	switch c.Report.Format {
	case "text", "json":
	default:
		return fmt.Errorf("report.format: unsupported format %q (want text or json)", c.Report.Format)
	}
	if c.Report.Precision < 0 || c.Report.Precision > 10 {
		return fmt.Errorf("report.precision: %d out of range [0,10]", c.Report.Precision)
	}
	if c.Report.Tolerance <= 0 {
		return fmt.Errorf("report.tolerance: must be positive, got %g", c.Report.Tolerance)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port: %d out of range", c.API.Port)
	}
	if c.API.CacheTTL < 0 {
		return fmt.Errorf("api.cache_ttl: must not be negative, got %s", c.API.CacheTTL)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: unsupported format %q (want text or json)", c.Logging.Format)
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
