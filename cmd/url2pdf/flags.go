package main

import (
	"errors"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// ErrUsage reports invalid command-line usage.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logFormat string
}

// clusterFlags holds worker pool limits.
type clusterFlags struct {
	minWorkers  int
	maxWorkers  int
	maxParallel int
	lifeSpan    time.Duration
	idleTime    time.Duration
	pageWait    time.Duration
	closeGrace  time.Duration
}

// browserFlags holds Chrome selection flags.
type browserFlags struct {
	bin       string
	noSandbox bool
}

// pageFlags holds navigation flags.
type pageFlags struct {
	width       int
	height      int
	timeout     time.Duration
	waitUntil   string
	media       string
	selector    string
	noCacheBust bool
}

// pdfFlags holds print flags.
type pdfFlags struct {
	format     string
	landscape  bool
	background bool
	scale      float64
	pageRanges string
}

// renderingFlags groups everything needed to build a cluster and render.
type renderingFlags struct {
	common  commonFlags
	cluster clusterFlags
	browser browserFlags
	page    pageFlags
	pdf     pdfFlags

	// set answers whether a flag was given explicitly.
	set *flag.FlagSet
}

// changed reports whether name was passed on the command line.
func (f *renderingFlags) changed(name string) bool {
	return f.set != nil && f.set.Changed(name)
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	renderingFlags
	addr            string
	allowedDomains  []string
	shutdownTimeout time.Duration
	warmup          bool
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	renderingFlags
	output string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
}

// addClusterFlags adds worker pool flags to a FlagSet.
func addClusterFlags(fs *flag.FlagSet, f *clusterFlags) {
	fs.IntVar(&f.minWorkers, "min-workers", 0, "browsers kept alive when idle")
	fs.IntVar(&f.maxWorkers, "max-workers", 0, "maximum concurrent browsers")
	fs.IntVar(&f.maxParallel, "max-pages", 0, "maximum open pages per browser")
	fs.DurationVar(&f.lifeSpan, "max-life-span", 0, "recycle browsers older than this (0 = never)")
	fs.DurationVar(&f.idleTime, "max-idle", 0, "close browsers idle longer than this (0 = never)")
	fs.DurationVar(&f.pageWait, "max-page-wait", 0, "fail tasks waiting longer than this (0 = never)")
	fs.DurationVar(&f.closeGrace, "close-grace", 0, "wait for open pages before closing a browser")
}

// addBrowserFlags adds Chrome flags to a FlagSet.
func addBrowserFlags(fs *flag.FlagSet, f *browserFlags) {
	fs.StringVar(&f.bin, "browser-bin", "", "Chrome executable path")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox")
}

// addPageFlags adds navigation flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.IntVar(&f.width, "width", 0, "viewport width in pixels (default 1280)")
	fs.IntVar(&f.height, "height", 0, "viewport height in pixels (default 1696)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "navigation timeout (default 3m)")
	fs.StringVar(&f.waitUntil, "wait-until", "", "load, domcontentloaded, networkidle0, networkidle2")
	fs.StringVar(&f.media, "media", "", "emulated media: screen, print")
	fs.StringVar(&f.selector, "wait-for", "", "CSS selector to wait for before printing")
	fs.BoolVar(&f.noCacheBust, "no-cache-bust", false, "do not add a random query parameter")
}

// addPDFFlags adds print flags to a FlagSet.
func addPDFFlags(fs *flag.FlagSet, f *pdfFlags) {
	fs.StringVarP(&f.format, "format", "f", "", "paper format: letter, legal, tabloid, ledger, a0-a6")
	fs.BoolVar(&f.landscape, "landscape", false, "landscape orientation")
	fs.BoolVar(&f.background, "background", false, "print background graphics")
	fs.Float64Var(&f.scale, "scale", 0, "rendering scale (0.1-2)")
	fs.StringVar(&f.pageRanges, "pages", "", "page ranges, e.g. 1-3,5")
}

func addRenderingFlags(fs *flag.FlagSet, f *renderingFlags) {
	addCommonFlags(fs, &f.common)
	addClusterFlags(fs, &f.cluster)
	addBrowserFlags(fs, &f.browser)
	addPageFlags(fs, &f.page)
	addPDFFlags(fs, &f.pdf)
	f.set = fs
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default :3001)")
	fs.StringSliceVar(&f.allowedDomains, "allow-domain", nil, "allowed URL domain (repeatable, empty = any)")
	fs.DurationVar(&f.shutdownTimeout, "shutdown-timeout", 30*time.Second, "time to drain requests on shutdown")
	fs.BoolVar(&f.warmup, "warmup", false, "launch the minimum browsers before listening")
	addRenderingFlags(fs, &f.renderingFlags)

	fs.Usage = func() { printServeUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &renderFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file (single URL) or directory")
	addRenderingFlags(fs, &f.renderingFlags)

	fs.Usage = func() { printRenderUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
