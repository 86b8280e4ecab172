package url2pdf

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

// errFakeLaunch is returned by fakeLauncher for scripted launch failures.
var errFakeLaunch = errors.New("chrome executable not found")

// fakeLauncher is a Launcher that starts in-memory browsers.
type fakeLauncher struct {
	mu          sync.Mutex
	launchDelay time.Duration
	failFirst   int  // number of initial launches that fail
	failAll     bool // every launch fails
	navErr      error
	launches    int
	browsers    []*fakeBrowser
}

func (l *fakeLauncher) Launch(ctx context.Context) (Browser, error) {
	l.mu.Lock()
	l.launches++
	n := l.launches
	fail := l.failAll || n <= l.failFirst
	delay := l.launchDelay
	l.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, errFakeLaunch
	}

	b := &fakeBrowser{launcher: l, pid: 1000 + n}
	l.mu.Lock()
	l.browsers = append(l.browsers, b)
	l.mu.Unlock()
	return b, nil
}

func (l *fakeLauncher) launchCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}

func (l *fakeLauncher) allBrowsers() []*fakeBrowser {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*fakeBrowser(nil), l.browsers...)
}

func (l *fakeLauncher) closedCount() int {
	n := 0
	for _, b := range l.allBrowsers() {
		if b.isClosed() {
			n++
		}
	}
	return n
}

// fakeBrowser tracks open pages and the peak number of concurrent pages.
type fakeBrowser struct {
	launcher *fakeLauncher
	pid      int

	mu      sync.Mutex
	closed  bool
	open    int
	maxOpen int
	visited []string
}

func (b *fakeBrowser) PID() int { return b.pid }

func (b *fakeBrowser) NewPage(ctx context.Context) (Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, errors.New("browser closed")
	}
	b.open++
	b.maxOpen = max(b.maxOpen, b.open)
	return &fakePage{browser: b}, nil
}

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *fakeBrowser) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *fakeBrowser) peakPages() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxOpen
}

func (b *fakeBrowser) visitedURLs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.visited...)
}

// fakePage returns a PDF-looking payload naming the visited URL.
type fakePage struct {
	browser *fakeBrowser
	url     string
	closed  bool
}

func (p *fakePage) Navigate(ctx context.Context, url string, opts *PageOptions) error {
	p.browser.mu.Lock()
	p.browser.visited = append(p.browser.visited, url)
	p.browser.mu.Unlock()

	p.browser.launcher.mu.Lock()
	err := p.browser.launcher.navErr
	p.browser.launcher.mu.Unlock()
	if err != nil {
		return err
	}
	p.url = url
	return ctx.Err()
}

func (p *fakePage) PDF(ctx context.Context, opts *PDFOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte("%PDF-1.4 " + p.url), nil
}

func (p *fakePage) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.browser.mu.Lock()
	p.browser.open--
	p.browser.mu.Unlock()
	return nil
}

// sleepAction returns an Action that holds the page for d.
func sleepAction(d time.Duration) Action {
	return func(ctx context.Context, page Page, opts *PDFOptions) ([]byte, error) {
		select {
		case <-time.After(d):
			return []byte("done"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// blockingAction returns an Action that holds the page until release is
// closed or the page context ends.
func blockingAction(release <-chan struct{}) Action {
	return func(ctx context.Context, page Page, opts *PDFOptions) ([]byte, error) {
		select {
		case <-release:
			return []byte("released"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// noCacheBust keeps visited URLs deterministic.
func noCacheBust() *PageOptions {
	return &PageOptions{CacheBust: false}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
