package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-url2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string // URL2PDF_CONFIG: config file name or path
	Addr       string // URL2PDF_ADDR: listen address
	LogFormat  string // URL2PDF_LOG_FORMAT: text, json

	// Tier 2 - Pool limits
	MinWorkers       *int // URL2PDF_MIN_WORKERS
	MaxWorkers       *int // URL2PDF_MAX_WORKERS
	MaxParallelTasks *int // URL2PDF_MAX_PARALLEL_TASKS

	// Tier 3 - Timings
	MaxLifeSpan          *time.Duration // URL2PDF_MAX_LIFE_SPAN
	MaxIdleTime          *time.Duration // URL2PDF_MAX_IDLE_TIME
	MaxPageWaitingTime   *time.Duration // URL2PDF_MAX_PAGE_WAITING_TIME
	MaxWaitBeforeClosing *time.Duration // URL2PDF_MAX_WAIT_BEFORE_CLOSING

	// Tier 4 - Browser and access
	BrowserBin     string   // URL2PDF_BROWSER_BIN
	NoSandbox      bool     // URL2PDF_NO_SANDBOX
	AllowedDomains []string // URL2PDF_ALLOWED_DOMAINS: comma-separated
}

// knownEnvVars lists valid URL2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"URL2PDF_CONFIG":     true,
	"URL2PDF_ADDR":       true,
	"URL2PDF_LOG_FORMAT": true,
	// Tier 2 - Pool limits
	"URL2PDF_MIN_WORKERS":        true,
	"URL2PDF_MAX_WORKERS":        true,
	"URL2PDF_MAX_PARALLEL_TASKS": true,
	// Tier 3 - Timings
	"URL2PDF_MAX_LIFE_SPAN":           true,
	"URL2PDF_MAX_IDLE_TIME":           true,
	"URL2PDF_MAX_PAGE_WAITING_TIME":   true,
	"URL2PDF_MAX_WAIT_BEFORE_CLOSING": true,
	// Tier 4 - Browser and access
	"URL2PDF_BROWSER_BIN":     true,
	"URL2PDF_NO_SANDBOX":      true,
	"URL2PDF_ALLOWED_DOMAINS": true,
	// Test suites
	"URL2PDF_INTEGRATION": true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored, like unset variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("URL2PDF_CONFIG"),
		Addr:       os.Getenv("URL2PDF_ADDR"),
		LogFormat:  os.Getenv("URL2PDF_LOG_FORMAT"),
		BrowserBin: os.Getenv("URL2PDF_BROWSER_BIN"),

		MinWorkers:       envInt("URL2PDF_MIN_WORKERS", 0),
		MaxWorkers:       envInt("URL2PDF_MAX_WORKERS", 1),
		MaxParallelTasks: envInt("URL2PDF_MAX_PARALLEL_TASKS", 1),

		MaxLifeSpan:          envDuration("URL2PDF_MAX_LIFE_SPAN"),
		MaxIdleTime:          envDuration("URL2PDF_MAX_IDLE_TIME"),
		MaxPageWaitingTime:   envDuration("URL2PDF_MAX_PAGE_WAITING_TIME"),
		MaxWaitBeforeClosing: envDuration("URL2PDF_MAX_WAIT_BEFORE_CLOSING"),
	}

	cfg.NoSandbox, _ = strconv.ParseBool(os.Getenv("URL2PDF_NO_SANDBOX"))

	if domains := os.Getenv("URL2PDF_ALLOWED_DOMAINS"); domains != "" {
		cfg.AllowedDomains = splitList(domains)
	}

	return cfg
}

// envInt parses an integer variable, returning nil when unset or below floor.
func envInt(name string, floor int) *int {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < floor {
		return nil
	}
	return &v
}

// envDuration parses "90s", "2m" or a bare number of seconds.
func envDuration(name string) *time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	d, err := config.ParseDuration(raw)
	if err != nil || d < 0 {
		return nil
	}
	return &d
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// warnUnknownEnvVars logs warnings for unrecognized URL2PDF_* variables.
// Helps catch typos like URL2PDF_MAX_WORKER instead of URL2PDF_MAX_WORKERS.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "URL2PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Environment wins over the config file; CLI flags are applied later
// and win over both: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if len(env.AllowedDomains) > 0 {
		cfg.Server.AllowedDomains = env.AllowedDomains
	}

	if env.MinWorkers != nil {
		cfg.Cluster.MinWorkers = env.MinWorkers
	}
	if env.MaxWorkers != nil {
		cfg.Cluster.MaxWorkers = env.MaxWorkers
	}
	if env.MaxParallelTasks != nil {
		cfg.Cluster.MaxParallelTasks = env.MaxParallelTasks
	}

	setDuration(&cfg.Cluster.MaxLifeSpan, env.MaxLifeSpan)
	setDuration(&cfg.Cluster.MaxIdleTime, env.MaxIdleTime)
	setDuration(&cfg.Cluster.MaxPageWaitingTime, env.MaxPageWaitingTime)
	setDuration(&cfg.Cluster.MaxWaitBeforeClosing, env.MaxWaitBeforeClosing)

	if env.BrowserBin != "" {
		cfg.Browser.Bin = env.BrowserBin
	}
	if env.NoSandbox {
		cfg.Browser.NoSandbox = true
	}
}

// setDuration overwrites dst when src is set.
func setDuration(dst **config.Duration, src *time.Duration) {
	if src == nil {
		return
	}
	v := config.Duration(*src)
	*dst = &v
}
