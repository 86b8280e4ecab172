package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	url2pdf "github.com/alnah/go-url2pdf"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - In-memory browser backend
// ---------------------------------------------------------------------------

var errStubLaunch = errors.New("chrome not installed")

const (
	testTimeout = 5 * time.Second
	testTick    = 10 * time.Millisecond
)

// stubLauncher starts browsers whose pages print their URL.
type stubLauncher struct {
	mu       sync.Mutex
	fail     bool
	navErr   error
	launches int
}

func (l *stubLauncher) Launch(context.Context) (url2pdf.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches++
	if l.fail {
		return nil, errStubLaunch
	}
	return &stubBrowser{navErr: l.navErr}, nil
}

func (l *stubLauncher) launchCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}

type stubBrowser struct {
	navErr error
}

func (b *stubBrowser) NewPage(context.Context) (url2pdf.Page, error) {
	return &stubPage{navErr: b.navErr}, nil
}

func (b *stubBrowser) Close() error { return nil }

type stubPage struct {
	navErr error
	url    string
}

func (p *stubPage) Navigate(_ context.Context, url string, _ *url2pdf.PageOptions) error {
	if p.navErr != nil {
		return p.navErr
	}
	p.url = url
	return nil
}

func (p *stubPage) PDF(context.Context, *url2pdf.PDFOptions) ([]byte, error) {
	return []byte("%PDF-1.4 " + p.url), nil
}

func (p *stubPage) Close() error { return nil }

// testEnv returns an Environment writing to buffers and launching stubs.
func testEnv(l *stubLauncher) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &Environment{
		Now:         time.Now,
		Stdout:      stdout,
		Stderr:      stderr,
		NewLauncher: func(string, bool) url2pdf.Launcher { return l },
	}, stdout, stderr
}

// ---------------------------------------------------------------------------
// Test Infrastructure - Server dependencies
// ---------------------------------------------------------------------------

type makePDFCall struct {
	url  string
	pdf  *url2pdf.PDFOptions
	page *url2pdf.PageOptions
}

// stubRenderer records calls and answers with pdf or err.
type stubRenderer struct {
	mu    sync.Mutex
	calls []makePDFCall
	pdf   []byte
	err   error
}

func (r *stubRenderer) MakePDF(_ context.Context, url string, pdf *url2pdf.PDFOptions, page *url2pdf.PageOptions) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, makePDFCall{url: url, pdf: pdf, page: page})
	if r.err != nil {
		return nil, r.err
	}
	if r.pdf != nil {
		return r.pdf, nil
	}
	return []byte("%PDF-1.4 " + url), nil
}

func (r *stubRenderer) lastCall() makePDFCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return makePDFCall{}
	}
	return r.calls[len(r.calls)-1]
}

type stubPool struct {
	snapshot  url2pdf.Snapshot
	closeErr  error
	closeAlls int
}

func (p *stubPool) Snapshot() url2pdf.Snapshot { return p.snapshot }

func (p *stubPool) CloseAll(context.Context) error {
	p.closeAlls++
	return p.closeErr
}

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
