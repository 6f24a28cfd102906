// Package config provides centralized configuration management for the cleaner.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
//
// Column naming and parsing rules for the cleaner itself live in a separate
// YAML rules file; see LoadRules.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Input    InputConfig
	Output   OutputConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// InputConfig holds settings for reading the source table.
type InputConfig struct {
	// MaxFileSize is the maximum accepted input size in bytes (default: 100MB)
	MaxFileSize int64 `env:"INPUT_MAX_FILE_SIZE" default:"104857600" validate:"gt=0"`

	// Sheet selects the worksheet of a spreadsheet input (default: first sheet)
	Sheet string `env:"INPUT_SHEET"`

	// TwoDigitYearPivot controls how 2-digit years are read (default: 20)
	TwoDigitYearPivot int `env:"DATE_TWO_DIGIT_YEAR_PIVOT" default:"20" validate:"gte=0,lte=99"`

	// RulesFile is an optional YAML file overriding the cleaning rules
	RulesFile string `env:"CLEANER_RULES_FILE"`
}

// OutputConfig holds settings for writing the cleaned table.
type OutputConfig struct {
	// Sheet is the worksheet name for spreadsheet output (default: Sheet1)
	Sheet string `env:"OUTPUT_SHEET" default:"Sheet1" validate:"required,max=31"`

	// DateFormat is the spreadsheet number format for date cells (default: yyyy-mm-dd)
	DateFormat string `env:"OUTPUT_DATE_FORMAT" default:"yyyy-mm-dd" validate:"required"`
}

// DatabaseConfig holds the optional Postgres export settings.
// Export is disabled unless URL is set.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// Table is the destination table for exported rows (default: cleaned_records)
	Table string `env:"DB_EXPORT_TABLE" default:"cleaned_records" validate:"required_with=URL"`

	// Truncate empties the destination table before copying (default: false)
	Truncate bool `env:"DB_EXPORT_TRUNCATE" default:"false"`

	// MaxConns is the maximum number of pooled connections (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4" validate:"gte=1,lte=100"`

	// ConnectTimeout bounds connecting and pinging the server (default: 10s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"10s" validate:"gt=0"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text" validate:"oneof=text json TEXT JSON"`
}

// ExportEnabled reports whether the Postgres export is configured.
func (c *DatabaseConfig) ExportEnabled() bool {
	return c.URL != "" && c.Table != ""
}
