package main

// Notes:
// - exitCodeFor: every sentinel from url2pdf, config and this package, plus
//   wrapped errors to verify the errors.Is chain.
// - Exit code constants follow Unix conventions and stay below 126.

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Admission timeout (exit 5)
		{"task timeout", url2pdf.ErrTaskTimeout, ExitTimeout},
		{"timeout error", &url2pdf.TimeoutError{Budget: time.Second}, ExitTimeout},
		{"wrapped timeout error", fmt.Errorf("render: %w", &url2pdf.TimeoutError{}), ExitTimeout},

		// Browser errors (exit 4)
		{"browser launch", url2pdf.ErrBrowserLaunch, ExitBrowser},
		{"page create", url2pdf.ErrPageCreate, ExitBrowser},
		{"page load", url2pdf.ErrPageLoad, ExitBrowser},
		{"page action", url2pdf.ErrPageAction, ExitBrowser},
		{"pdf generation", url2pdf.ErrPDFGeneration, ExitBrowser},
		{"wrapped browser launch", fmt.Errorf("worker: %w", url2pdf.ErrBrowserLaunch), ExitBrowser},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"write pdf", ErrWritePDF, ExitIO},
		{"listen", ErrListen, ExitIO},
		{"wrapped permission", fmt.Errorf("%w: %w", ErrWritePDF, os.ErrPermission), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid config value", config.ErrInvalidValue, ExitUsage},
		{"no input", ErrNoInput, ExitUsage},
		{"usage", ErrUsage, ExitUsage},
		{"url not allowed", ErrURLNotAllowed, ExitUsage},
		{"empty url", url2pdf.ErrEmptyURL, ExitUsage},
		{"invalid pool size", url2pdf.ErrInvalidPoolSize, ExitUsage},
		{"invalid parallelism", url2pdf.ErrInvalidParallelism, ExitUsage},
		{"invalid duration", url2pdf.ErrInvalidDuration, ExitUsage},
		{"invalid viewport", url2pdf.ErrInvalidViewport, ExitUsage},
		{"invalid wait until", url2pdf.ErrInvalidWaitUntil, ExitUsage},
		{"invalid scale", url2pdf.ErrInvalidScale, ExitUsage},
		{"invalid format", url2pdf.ErrInvalidFormat, ExitUsage},
		{"invalid page range", url2pdf.ErrInvalidPageRange, ExitUsage},
		{"invalid margin", url2pdf.ErrInvalidMargin, ExitUsage},

		// General errors (exit 1)
		{"cluster closed", url2pdf.ErrClusterClosed, ExitGeneral},
		{"unknown error", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Errorf("standard codes = %d/%d/%d, want 0/1/2", ExitSuccess, ExitGeneral, ExitUsage)
	}
	codes := []int{ExitSuccess, ExitGeneral, ExitUsage, ExitIO, ExitBrowser, ExitTimeout}
	seen := make(map[int]bool, len(codes))
	for _, c := range codes {
		if c >= 126 {
			t.Errorf("exit code %d collides with shell reserved codes", c)
		}
		if seen[c] {
			t.Errorf("exit code %d used twice", c)
		}
		seen[c] = true
	}
}
