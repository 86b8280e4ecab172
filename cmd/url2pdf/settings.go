package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/config"
)

// defaultShutdownTimeout bounds request draining when neither flag nor
// config sets it.
const defaultShutdownTimeout = 30 * time.Second

// settings is the resolved configuration for one run.
type settings struct {
	cluster   url2pdf.Config
	bin       string
	noSandbox bool
	page      *url2pdf.PageOptions
	pdf       *url2pdf.PDFOptions

	addr            string
	allowedDomains  []string
	shutdownTimeout time.Duration

	logFormat string
}

// loadFileConfig loads the config named by the flag, then URL2PDF_CONFIG.
// No name means no file.
func loadFileConfig(flagValue string, env *envConfig) (*config.Config, error) {
	name := flagValue
	if name == "" {
		name = env.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(name)
}

// resolveSettings layers CLI flags > env vars > config file > defaults.
// Command-specific flags are applied through extra, after the shared ones.
func resolveSettings(f *renderingFlags, stderr io.Writer, extra ...func(*config.Config)) (*settings, error) {
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(stderr)

	cfg, err := loadFileConfig(f.common.config, envCfg)
	if err != nil {
		return nil, err
	}
	applyEnvConfig(envCfg, cfg)
	applyFlags(f, cfg)
	for _, apply := range extra {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &settings{
		cluster:   clusterConfig(cfg.Cluster),
		bin:       cfg.Browser.Bin,
		noSandbox: cfg.Browser.NoSandbox,
		page:      pageOptions(cfg.Page),
		pdf:       pdfOptions(cfg.PDF),
		addr:      cfg.Server.Addr,
		logFormat: f.common.logFormat,
	}
	s.allowedDomains = append(s.allowedDomains, cfg.Server.AllowedDomains...)
	s.pdf.PageRanges = f.pdf.pageRanges
	if s.addr == "" {
		s.addr = config.DefaultServerAddr
	}
	s.shutdownTimeout = defaultShutdownTimeout
	if cfg.Server.ShutdownTimeout != nil {
		s.shutdownTimeout = cfg.Server.ShutdownTimeout.Std()
	}
	if s.logFormat == "" {
		s.logFormat = envCfg.LogFormat
	}

	if err := s.cluster.Validate(); err != nil {
		return nil, err
	}
	if err := s.page.Validate(); err != nil {
		return nil, err
	}
	if err := s.pdf.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// applyFlags copies explicitly set flags into cfg.
func applyFlags(f *renderingFlags, cfg *config.Config) {
	setInt := func(name string, dst **int, v int) {
		if f.changed(name) {
			*dst = &v
		}
	}
	setDur := func(name string, dst **config.Duration, v time.Duration) {
		if f.changed(name) {
			d := config.Duration(v)
			*dst = &d
		}
	}

	setInt("min-workers", &cfg.Cluster.MinWorkers, f.cluster.minWorkers)
	setInt("max-workers", &cfg.Cluster.MaxWorkers, f.cluster.maxWorkers)
	setInt("max-pages", &cfg.Cluster.MaxParallelTasks, f.cluster.maxParallel)
	setDur("max-life-span", &cfg.Cluster.MaxLifeSpan, f.cluster.lifeSpan)
	setDur("max-idle", &cfg.Cluster.MaxIdleTime, f.cluster.idleTime)
	setDur("max-page-wait", &cfg.Cluster.MaxPageWaitingTime, f.cluster.pageWait)
	setDur("close-grace", &cfg.Cluster.MaxWaitBeforeClosing, f.cluster.closeGrace)

	if f.browser.bin != "" {
		cfg.Browser.Bin = f.browser.bin
	}
	if f.browser.noSandbox {
		cfg.Browser.NoSandbox = true
	}

	if f.changed("width") {
		cfg.Page.Width = f.page.width
	}
	if f.changed("height") {
		cfg.Page.Height = f.page.height
	}
	setDur("timeout", &cfg.Page.Timeout, f.page.timeout)
	if f.page.waitUntil != "" {
		cfg.Page.WaitUntil = f.page.waitUntil
	}
	if f.page.media != "" {
		cfg.Page.Media = f.page.media
	}
	if f.page.selector != "" {
		cfg.Page.WaitForSelector = f.page.selector
	}
	if f.page.noCacheBust {
		off := false
		cfg.Page.CacheBust = &off
	}

	if f.pdf.format != "" {
		cfg.PDF.Format = f.pdf.format
	}
	if f.changed("landscape") {
		cfg.PDF.Landscape = f.pdf.landscape
	}
	if f.changed("background") {
		cfg.PDF.PrintBackground = f.pdf.background
	}
	if f.changed("scale") {
		cfg.PDF.Scale = f.pdf.scale
	}
}

// applyServeFlags copies serve-only flags into cfg.
func applyServeFlags(f *serveFlags, cfg *config.Config) {
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if len(f.allowedDomains) > 0 {
		cfg.Server.AllowedDomains = f.allowedDomains
	}
	if f.changed("shutdown-timeout") {
		d := config.Duration(f.shutdownTimeout)
		cfg.Server.ShutdownTimeout = &d
	}
}

// clusterConfig overlays the file settings on the scheduler defaults.
func clusterConfig(c config.ClusterConfig) url2pdf.Config {
	out := url2pdf.DefaultConfig()
	if c.MinWorkers != nil {
		out.MinWorkers = *c.MinWorkers
	}
	if c.MaxWorkers != nil {
		out.MaxWorkers = *c.MaxWorkers
	}
	if c.MaxParallelTasks != nil {
		out.MaxParallelTasks = *c.MaxParallelTasks
	}
	if c.MaxLifeSpan != nil {
		out.MaxLifeSpan = c.MaxLifeSpan.Std()
	}
	if c.MaxIdleTime != nil {
		out.MaxIdleTime = c.MaxIdleTime.Std()
	}
	if c.MaxPageWaitingTime != nil {
		out.MaxPageWaitingTime = c.MaxPageWaitingTime.Std()
	}
	if c.MaxWaitBeforeClosing != nil {
		out.MaxWaitBeforeClosing = c.MaxWaitBeforeClosing.Std()
	}
	if c.WatchInterval != nil {
		out.WatchInterval = c.WatchInterval.Std()
	}
	if c.MaxRemovalEachTime != nil {
		out.MaxRemovalEachTime = *c.MaxRemovalEachTime
	}
	return out
}

func pageOptions(p config.PageConfig) *url2pdf.PageOptions {
	out := url2pdf.DefaultPageOptions()
	if p.Width > 0 {
		out.Width = p.Width
	}
	if p.Height > 0 {
		out.Height = p.Height
	}
	if p.Timeout != nil && *p.Timeout > 0 {
		out.Timeout = p.Timeout.Std()
	}
	if p.WaitUntil != "" {
		out.WaitUntil = url2pdf.WaitUntil(strings.ToLower(p.WaitUntil))
	}
	if p.Media != "" {
		out.EmulateMedia = strings.ToLower(p.Media)
	}
	out.WaitForSelector = p.WaitForSelector
	if p.CacheBust != nil {
		out.CacheBust = *p.CacheBust
	}
	return out
}

func pdfOptions(p config.PDFConfig) *url2pdf.PDFOptions {
	return &url2pdf.PDFOptions{
		Format:          p.Format,
		Landscape:       p.Landscape,
		PrintBackground: p.PrintBackground,
		Scale:           p.Scale,
	}
}

// newLogger builds the slog logger for a run.
// --verbose enables debug records, --quiet keeps warnings and errors only.
func newLogger(w io.Writer, format string, verbose, quiet bool) (*slog.Logger, error) {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: unknown log format %q (want text or json)", ErrUsage, format)
	}
}
