// Package config handles configuration management for warehousectl.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for warehousectl.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// ConnectTimeout bounds session establishment, in seconds.
	ConnectTimeout int `mapstructure:"connect_timeout"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Refresh holds configuration for the refresh subcommand.
	Refresh RefreshConfig `mapstructure:"refresh"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`

	// RFM holds configuration for the rfm subcommand.
	RFM RFMConfig `mapstructure:"rfm"`
}

// RefreshConfig holds configuration for the warehouse refresh.
type RefreshConfig struct {
	// CalendarStart is the first day of the calendar dimension (YYYY-MM-DD).
	CalendarStart string `mapstructure:"calendar_start"`

	// CalendarEnd is the last day of the calendar dimension, inclusive (YYYY-MM-DD).
	CalendarEnd string `mapstructure:"calendar_end"`

	// ReferenceCity is the city that maps to the core commercial region.
	ReferenceCity string `mapstructure:"reference_city"`
}

// SeedConfig holds configuration for operational demo data generation.
type SeedConfig struct {
	// Clients is the number of client rows to generate.
	Clients int `mapstructure:"clients"`

	// Products is the number of product rows to generate.
	Products int `mapstructure:"products"`

	// Orders is the number of order rows to generate.
	Orders int `mapstructure:"orders"`

	// RandomSeed makes generation reproducible when non-zero.
	RandomSeed uint64 `mapstructure:"random_seed"`
}

// RFMConfig holds configuration for the RFM segmentation.
type RFMConfig struct {
	// Clusters is the number of behavioral segments to produce.
	Clusters int `mapstructure:"clusters"`

	// CSVPath is the flat-file export destination ("" disables the export).
	CSVPath string `mapstructure:"csv_path"`

	// ReportPath is the text report destination ("" disables the report).
	ReportPath string `mapstructure:"report_path"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		ConnectTimeout: 10,
		LogLevel:       "info",
		Refresh: RefreshConfig{
			CalendarStart: "2023-01-01",
			CalendarEnd:   "2025-12-31",
			ReferenceCity: "Paris",
		},
		Seed: SeedConfig{
			Clients:  200,
			Products: 50,
			Orders:   2000,
		},
		RFM: RFMConfig{
			Clusters:   4,
			CSVPath:    "rfm_segments.csv",
			ReportPath: "rfm_report.txt",
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./warehousectl.yaml
// 3. ~/.config/warehousectl/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("warehousectl")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "warehousectl"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	if c.ConnectTimeout < 1 {
		return fmt.Errorf("connect_timeout must be at least 1 second")
	}
	return nil
}

// ValidateRefresh checks configuration required for the refresh command.
func (c *Config) ValidateRefresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	start, end, err := c.Refresh.CalendarRange()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("calendar_end must not precede calendar_start")
	}
	if c.Refresh.ReferenceCity == "" {
		return fmt.Errorf("reference_city is required")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Seed.Clients < 1 {
		return fmt.Errorf("seed clients must be at least 1")
	}
	if c.Seed.Products < 1 {
		return fmt.Errorf("seed products must be at least 1")
	}
	if c.Seed.Orders < 0 {
		return fmt.Errorf("seed orders must be non-negative")
	}
	return nil
}

// ValidateRFM checks configuration required for the rfm command.
func (c *Config) ValidateRFM() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.RFM.Clusters < 2 {
		return fmt.Errorf("rfm clusters must be at least 2")
	}
	return nil
}

// CalendarRange parses the configured calendar bounds.
func (r RefreshConfig) CalendarRange() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", r.CalendarStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid calendar_start: %w", err)
	}
	end, err := time.Parse("2006-01-02", r.CalendarEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid calendar_end: %w", err)
	}
	return start, end, nil
}
