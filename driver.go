package url2pdf

import "context"

// Launcher starts browser processes.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser is one running browser process.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is one browser tab.
type Page interface {
	// Navigate loads url and waits according to opts.
	// Non-2xx document responses are reported as errors.
	Navigate(ctx context.Context, url string, opts *PageOptions) error
	PDF(ctx context.Context, opts *PDFOptions) ([]byte, error)
	Close() error
}

// Action runs against a loaded page and produces the task result.
type Action func(ctx context.Context, page Page, opts *PDFOptions) ([]byte, error)

// processIdentifier is implemented by browsers backed by an OS process.
type processIdentifier interface {
	PID() int
}

// PrintPDF is the Action that prints the page with opts.
func PrintPDF(ctx context.Context, page Page, opts *PDFOptions) ([]byte, error) {
	return page.PDF(ctx, opts)
}
