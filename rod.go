package url2pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-url2pdf/internal/process"
)

// Compile-time interface checks
var (
	_ Launcher          = (*RodLauncher)(nil)
	_ Browser           = (*rodBrowser)(nil)
	_ Page              = (*rodPage)(nil)
	_ processIdentifier = (*rodBrowser)(nil)
)

// Environment variables read by DefaultRodLauncher.
const (
	EnvBrowserBin    = "URL2PDF_BROWSER_BIN"
	EnvRodBrowserBin = "ROD_BROWSER_BIN"
	EnvNoSandbox     = "URL2PDF_NO_SANDBOX"
)

// Chrome switches applied to every launched browser.
var chromeFlags = []flags.Flag{
	"disable-dev-shm-usage",
	"hide-scrollbars",
}

// RodLauncher starts headless Chrome with go-rod.
// Rod downloads Chromium on first run when Bin is empty and none is found.
type RodLauncher struct {
	Bin       string // Browser executable (empty = auto-detect)
	NoSandbox bool   // Required in most containers
}

// DefaultRodLauncher configures a launcher from the environment.
// The sandbox is disabled in CI, with an explicit binary (Docker images),
// or when URL2PDF_NO_SANDBOX is true.
func DefaultRodLauncher() *RodLauncher {
	l := &RodLauncher{Bin: os.Getenv(EnvBrowserBin)}
	if l.Bin == "" {
		l.Bin = os.Getenv(EnvRodBrowserBin)
	}
	noSandbox, _ := strconv.ParseBool(os.Getenv(EnvNoSandbox))
	l.NoSandbox = noSandbox || os.Getenv("CI") == "true" || l.Bin != ""
	return l
}

// Launch starts a browser process and connects to it.
func (l *RodLauncher) Launch(ctx context.Context) (Browser, error) {
	lc := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(l.NoSandbox).
		Set("window-size", fmt.Sprintf("%d,%d", DefaultViewportWidth, DefaultViewportHeight))
	for _, f := range chromeFlags {
		lc = lc.Set(f)
	}
	if l.Bin != "" {
		lc = lc.Bin(l.Bin)
	}

	u, err := lc.Launch()
	if err != nil {
		lc.Kill()
		return nil, err
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		pid := lc.PID()
		lc.Kill()
		_ = process.KillGroup(pid)
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return &rodBrowser{browser: browser, launcher: lc, pid: lc.PID()}, nil
}

// rodBrowser is one Chrome process.
type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	pid      int
}

func (b *rodBrowser) PID() int { return b.pid }

func (b *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	p, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	return &rodPage{page: p}, nil
}

// Close asks Chrome to exit, then kills the whole process group so renderer
// and GPU children do not outlive it.
func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	_ = process.KillGroup(b.pid)
	b.launcher.Kill()
	b.launcher.Cleanup()
	return err
}

// rodPage is one Chrome tab.
type rodPage struct {
	page *rod.Page
}

// lifecycleEvents maps wait policies to Chrome lifecycle events.
var lifecycleEvents = map[WaitUntil]proto.PageLifecycleEventName{
	WaitLoad:              proto.PageLifecycleEventNameLoad,
	WaitDOMContentLoaded:  proto.PageLifecycleEventNameDOMContentLoaded,
	WaitNetworkIdle:       proto.PageLifecycleEventNameNetworkIdle,
	WaitNetworkAlmostIdle: proto.PageLifecycleEventNameNetworkAlmostIdle,
}

// documentStatusJS reads the HTTP status of the main document.
// Zero means the scheme has no status (file:, data:, about:).
const documentStatusJS = `() => {
	const nav = performance.getEntriesByType("navigation")[0];
	return nav && nav.responseStatus ? nav.responseStatus : 0;
}`

func (p *rodPage) Navigate(ctx context.Context, url string, opts *PageOptions) error {
	opts = opts.withDefaults()
	page := p.page.Context(ctx).Timeout(opts.Timeout)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("setting viewport: %w", err)
	}
	if opts.EmulateMedia != "" {
		if err := (proto.EmulationSetEmulatedMedia{Media: opts.EmulateMedia}).Call(page); err != nil {
			return fmt.Errorf("emulating media %q: %w", opts.EmulateMedia, err)
		}
	}

	wait := page.WaitNavigation(lifecycleEvents[opts.WaitUntil])
	if err := page.Navigate(url); err != nil {
		return err
	}
	wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := page.Eval(documentStatusJS)
	if err != nil {
		return fmt.Errorf("reading response status: %w", err)
	}
	if status := res.Value.Int(); status != 0 && (status < 200 || status > 299) {
		return fmt.Errorf("unexpected response status %d", status)
	}

	if opts.WaitForSelector != "" {
		if _, err := page.Element(opts.WaitForSelector); err != nil {
			return fmt.Errorf("waiting for selector %q: %w", opts.WaitForSelector, err)
		}
	}
	return nil
}

func (p *rodPage) PDF(ctx context.Context, opts *PDFOptions) ([]byte, error) {
	reader, err := p.page.Context(ctx).PDF(buildPrintToPDF(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

// buildPrintToPDF maps PDFOptions onto Chrome's print request.
func buildPrintToPDF(opts *PDFOptions) *proto.PagePrintToPDF {
	o := opts.Normalize()

	req := &proto.PagePrintToPDF{
		Landscape:           o.Landscape,
		DisplayHeaderFooter: o.DisplayHeaderFooter,
		PrintBackground:     o.PrintBackground,
		PaperWidth:          floatPtr(o.PaperWidth),
		PaperHeight:         floatPtr(o.PaperHeight),
		PageRanges:          o.PageRanges,
		HeaderTemplate:      o.HeaderTemplate,
		FooterTemplate:      o.FooterTemplate,
		PreferCSSPageSize:   o.PreferCSSPageSize,
	}
	if o.Scale != 0 {
		req.Scale = floatPtr(o.Scale)
	}
	if o.Margin != nil {
		req.MarginTop = floatPtr(o.Margin.Top)
		req.MarginRight = floatPtr(o.Margin.Right)
		req.MarginBottom = floatPtr(o.Margin.Bottom)
		req.MarginLeft = floatPtr(o.Margin.Left)
	}
	return req
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
