// Package config loads the YAML configuration of the changetrack command.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/viant/changetrack/engine"
	"github.com/viant/changetrack/tracker"
)

// Environment variables that override file settings.
const (
	EnvDriver = "CHANGETRACK_DRIVER"
	EnvDSN    = "CHANGETRACK_DSN"
)

// Config contains storage and logging settings.
type Config struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string `yaml:"driver"`
	// DSN is the connection string passed to the driver.
	DSN string `yaml:"dsn"`
	// Table is the change tracking table name.
	Table string `yaml:"table"`

	Log Log `yaml:"log"`
}

// Log contains logging settings.
type Log struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`
	// Path is the log file. Empty means stderr.
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Driver: "sqlite",
		DSN:    "changetrack.sqlite",
		Table:  tracker.DefaultTable,
		Log:    Log{Level: "info"},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvDriver)); v != "" {
		c.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDSN)); v != "" {
		c.DSN = v
	}
}

// Dialect returns the SQL dialect for Driver.
func (c *Config) Dialect() (engine.Dialect, error) {
	return engine.ParseDialect(c.Driver)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Dialect(); err != nil {
		errs = append(errs, err)
	}
	if c.DSN == "" {
		errs = append(errs, errors.New("config: dsn is required"))
	}
	if c.Table == "" {
		c.Table = tracker.DefaultTable
	}
	if err := tracker.ValidateTable(c.Table); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
