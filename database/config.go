package database

import (
	"fmt"
	"time"
)

// Config holds SQLite connection configuration.
type Config struct {
	// Path is the SQLite database file. ":memory:" opens an in-memory database.
	Path string `mapstructure:"path"`

	// MaxOpenConns sets the maximum number of open connections.
	MaxOpenConns int `mapstructure:"max_open_conns"`

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `mapstructure:"max_retries"`

	// InsertBatchSize is the number of rows per INSERT statement.
	InsertBatchSize int `mapstructure:"insert_batch_size"`

	// LogLevel is the GORM log level: silent, error, warn or info.
	LogLevel string `mapstructure:"log_level"`

	// SlowQueryThreshold is the duration above which queries are logged as slow (e.g. "200ms").
	SlowQueryThreshold string `mapstructure:"slow_query_threshold"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 1
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.InsertBatchSize <= 0 {
		c.InsertBatchSize = 500
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.SlowQueryThreshold == "" {
		c.SlowQueryThreshold = "200ms"
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("max_open_conns must be > 0")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be > 0")
	}
	if c.InsertBatchSize <= 0 {
		return fmt.Errorf("insert_batch_size must be > 0")
	}
	if _, err := time.ParseDuration(c.SlowQueryThreshold); err != nil {
		return fmt.Errorf("invalid slow_query_threshold %q: %w", c.SlowQueryThreshold, err)
	}
	return nil
}
