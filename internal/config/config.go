// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"rvg-calc/core/types"
	apperrors "rvg-calc/internal/errors"
	"rvg-calc/internal/logging"
)

// FileName is the default configuration file in the user's home directory
const FileName = ".rvg-calc.json"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Calculation contains calculation defaults
	Calculation CalculationConfig `json:"calculation"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// CalculationConfig contains calculation defaults
type CalculationConfig struct {
	// Currency of every amount; only EUR is supported
	Currency types.Currency `json:"currency"`

	// ReducedFees uses the legal-aid table by default
	ReducedFees bool `json:"reduced_fees"`

	// AutoExpense appends the communication flat rate
	AutoExpense bool `json:"auto_expense"`

	// AutoVAT appends the VAT line
	AutoVAT bool `json:"auto_vat"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (cli, json)
	DefaultFormat string `json:"default_format"`

	// ShowNotes prints the per-item derivation notes
	ShowNotes bool `json:"show_notes"`

	// ShowNotices prints the result notices
	ShowNotices bool `json:"show_notices"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`

	// ReadTimeoutSeconds bounds reading a request
	ReadTimeoutSeconds int `json:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds writing a response
	WriteTimeoutSeconds int `json:"write_timeout_seconds"`

	// AllowedOrigins lists the CORS origins; empty disables CORS
	AllowedOrigins []string `json:"allowed_origins"`

	// CacheTTLSeconds keeps results per input hash; 0 disables the cache
	CacheTTLSeconds int `json:"cache_ttl_seconds"`
}

// ReadTimeout returns the read timeout as a duration
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// CacheTTL returns the result cache lifetime as a duration
func (s ServerConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Calculation: CalculationConfig{
			Currency:    types.CurrencyEUR,
			ReducedFees: false,
			AutoExpense: true,
			AutoVAT:     true,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowNotes:     false,
			ShowNotices:   true,
		},
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 10,
			AllowedOrigins:      []string{"*"},
			CacheTTLSeconds:     300,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns the configuration file in the home directory
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(homeDir, FileName)
}

// Load loads configuration from a file; a missing file yields the defaults
func Load(path string) (*Config, error) {
	return LoadWithDefaults(path, Default())
}

// LoadWithDefaults loads path on top of base. Fields the file leaves out keep
// the values of base; a missing file yields base unchanged.
func LoadWithDefaults(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return nil, apperrors.Config("reading "+path, err)
	}

	if err := json.Unmarshal(data, base); err != nil {
		return nil, apperrors.Config("parsing "+path, err)
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	return base, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if c.Calculation.Currency != types.CurrencyEUR {
		return apperrors.Config("unsupported currency "+c.Calculation.Currency.String(), nil)
	}
	switch c.Output.DefaultFormat {
	case "cli", "json":
	default:
		return apperrors.Config("unknown output format "+c.Output.DefaultFormat, nil)
	}
	if c.Server.Addr == "" {
		return apperrors.Config("server address is empty", nil)
	}
	if c.Server.CacheTTLSeconds < 0 {
		return apperrors.Config("cache_ttl_seconds must not be negative", nil)
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
