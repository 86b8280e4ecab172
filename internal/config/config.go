// Package config loads the YAML configuration file of the url2pdf command.
//
// Every field is optional: pointer fields distinguish "unset" from an explicit
// zero, so a file can disable a cluster limit (lifespan: 0) without being
// confused with one that says nothing about it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxAddrLength     = 256
	MaxPathLength     = 4096
	MaxDomainLength   = 253 // RFC 1035
	MaxDomains        = 256
	MaxKeywordLength  = 32 // "networkidle2", "letter"
	MaxSelectorLength = 1024
	MaxWorkersLimit   = 1024
	MaxParallelLimit  = 1024
	MaxViewportLimit  = 16384
	DefaultServerAddr = ":3001"
	DefaultConfigDir  = "go-url2pdf"
)

// Config holds the settings read from a config file.
type Config struct {
	Cluster ClusterConfig `yaml:"cluster"`
	Browser BrowserConfig `yaml:"browser"`
	Server  ServerConfig  `yaml:"server"`
	Page    PageConfig    `yaml:"page"`
	PDF     PDFConfig     `yaml:"pdf"`
}

// ClusterConfig mirrors the scheduler limits. Nil means "keep the default".
type ClusterConfig struct {
	MinWorkers           *int      `yaml:"minWorkers"`
	MaxWorkers           *int      `yaml:"maxWorkers"`
	MaxParallelTasks     *int      `yaml:"maxParallelTasks"`
	MaxLifeSpan          *Duration `yaml:"maxLifeSpan"`          // 0 disables
	MaxIdleTime          *Duration `yaml:"maxIdleTime"`          // 0 disables
	MaxPageWaitingTime   *Duration `yaml:"maxPageWaitingTime"`   // 0 disables
	MaxWaitBeforeClosing *Duration `yaml:"maxWaitBeforeClosing"` // 0 = 30s fallback
	WatchInterval        *Duration `yaml:"watchInterval"`
	MaxRemovalEachTime   *int      `yaml:"maxRemovalEachTime"`
}

// BrowserConfig selects the Chrome binary.
type BrowserConfig struct {
	Bin       string `yaml:"bin"` // Empty = auto-detect or download
	NoSandbox bool   `yaml:"noSandbox"`
}

// ServerConfig defines the HTTP front end.
type ServerConfig struct {
	Addr            string    `yaml:"addr"`           // Default ":3001"
	AllowedDomains  []string  `yaml:"allowedDomains"` // Empty = any host
	ShutdownTimeout *Duration `yaml:"shutdownTimeout"`
}

// PageConfig defines default page options for every request.
type PageConfig struct {
	Width           int       `yaml:"width"`
	Height          int       `yaml:"height"`
	Timeout         *Duration `yaml:"timeout"`
	WaitUntil       string    `yaml:"waitUntil"` // "load", "domcontentloaded", "networkidle0", "networkidle2"
	Media           string    `yaml:"media"`     // "screen", "print"
	WaitForSelector string    `yaml:"waitForSelector"`
	CacheBust       *bool     `yaml:"cacheBust"`
}

// PDFConfig defines default print options for every request.
type PDFConfig struct {
	Format          string  `yaml:"format"` // "letter", "a4", ...
	Landscape       bool    `yaml:"landscape"`
	PrintBackground bool    `yaml:"printBackground"`
	Scale           float64 `yaml:"scale"`
}

// Validate checks field lengths and numeric ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := c.Cluster.validate(); err != nil {
		return err
	}

	if err := validateFieldLength("browser.bin", c.Browser.Bin, MaxPathLength); err != nil {
		return err
	}

	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if len(c.Server.AllowedDomains) > MaxDomains {
		return fmt.Errorf("%w: server.allowedDomains has %d entries (max %d)", ErrInvalidValue, len(c.Server.AllowedDomains), MaxDomains)
	}
	for i, d := range c.Server.AllowedDomains {
		name := fmt.Sprintf("server.allowedDomains[%d]", i)
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidValue, name)
		}
		if err := validateFieldLength(name, d, MaxDomainLength); err != nil {
			return err
		}
	}
	if err := validateNonNegative("server.shutdownTimeout", c.Server.ShutdownTimeout); err != nil {
		return err
	}

	if c.Page.Width < 0 || c.Page.Width > MaxViewportLimit {
		return fmt.Errorf("%w: page.width must be between 0 and %d, got %d", ErrInvalidValue, MaxViewportLimit, c.Page.Width)
	}
	if c.Page.Height < 0 || c.Page.Height > MaxViewportLimit {
		return fmt.Errorf("%w: page.height must be between 0 and %d, got %d", ErrInvalidValue, MaxViewportLimit, c.Page.Height)
	}
	if err := validateNonNegative("page.timeout", c.Page.Timeout); err != nil {
		return err
	}
	if err := validateFieldLength("page.waitUntil", c.Page.WaitUntil, MaxKeywordLength); err != nil {
		return err
	}
	if err := validateFieldLength("page.media", c.Page.Media, MaxKeywordLength); err != nil {
		return err
	}
	if err := validateFieldLength("page.waitForSelector", c.Page.WaitForSelector, MaxSelectorLength); err != nil {
		return err
	}

	if err := validateFieldLength("pdf.format", c.PDF.Format, MaxKeywordLength); err != nil {
		return err
	}
	if c.PDF.Scale < 0 {
		return fmt.Errorf("%w: pdf.scale must not be negative, got %.2f", ErrInvalidValue, c.PDF.Scale)
	}

	return nil
}

func (c *ClusterConfig) validate() error {
	ints := []struct {
		name string
		v    *int
		min  int
		max  int
	}{
		{"cluster.minWorkers", c.MinWorkers, 0, MaxWorkersLimit},
		{"cluster.maxWorkers", c.MaxWorkers, 1, MaxWorkersLimit},
		{"cluster.maxParallelTasks", c.MaxParallelTasks, 1, MaxParallelLimit},
		{"cluster.maxRemovalEachTime", c.MaxRemovalEachTime, 1, MaxWorkersLimit},
	}
	for _, f := range ints {
		if f.v != nil && (*f.v < f.min || *f.v > f.max) {
			return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalidValue, f.name, f.min, f.max, *f.v)
		}
	}
	if c.MinWorkers != nil && c.MaxWorkers != nil && *c.MinWorkers > *c.MaxWorkers {
		return fmt.Errorf("%w: cluster.minWorkers (%d) exceeds cluster.maxWorkers (%d)", ErrInvalidValue, *c.MinWorkers, *c.MaxWorkers)
	}

	durations := []struct {
		name string
		v    *Duration
	}{
		{"cluster.maxLifeSpan", c.MaxLifeSpan},
		{"cluster.maxIdleTime", c.MaxIdleTime},
		{"cluster.maxPageWaitingTime", c.MaxPageWaitingTime},
		{"cluster.maxWaitBeforeClosing", c.MaxWaitBeforeClosing},
	}
	for _, f := range durations {
		if err := validateNonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	if c.WatchInterval != nil && *c.WatchInterval <= 0 {
		return fmt.Errorf("%w: cluster.watchInterval must be positive", ErrInvalidValue)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateNonNegative(fieldName string, d *Duration) error {
	if d != nil && *d < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidValue, fieldName, d.Std())
	}
	return nil
}

// DefaultConfig returns a neutral configuration: every override unset.
func DefaultConfig() *Config {
	return &Config{}
}

// Parse decodes and validates YAML configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := unmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-url2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, DefaultConfigDir, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
