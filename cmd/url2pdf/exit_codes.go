package main

import (
	"errors"
	"os"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/config"
)

// Exit codes for url2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All URLs rendered, or server stopped cleanly
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Output not writable, address in use
	ExitBrowser = 4 // Browser/Chrome errors
	ExitTimeout = 5 // Task waited longer than the admission budget
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, url2pdf.ErrTaskTimeout) {
		return ExitTimeout
	}

	// Browser errors (exit 4)
	if errors.Is(err, url2pdf.ErrBrowserLaunch) ||
		errors.Is(err, url2pdf.ErrPageCreate) ||
		errors.Is(err, url2pdf.ErrPageLoad) ||
		errors.Is(err, url2pdf.ErrPageAction) ||
		errors.Is(err, url2pdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrListen) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrURLNotAllowed) ||
		isValidationError(err) {
		return ExitUsage
	}

	return ExitGeneral
}

// isValidationError reports whether err rejects caller input rather than
// signalling a rendering failure. The HTTP server maps these to 422.
func isValidationError(err error) bool {
	for _, target := range []error{
		url2pdf.ErrEmptyURL,
		url2pdf.ErrNilAction,
		url2pdf.ErrInvalidPoolSize,
		url2pdf.ErrInvalidParallelism,
		url2pdf.ErrInvalidDuration,
		url2pdf.ErrInvalidRemoval,
		url2pdf.ErrInvalidViewport,
		url2pdf.ErrInvalidWaitUntil,
		url2pdf.ErrInvalidMedia,
		url2pdf.ErrInvalidScale,
		url2pdf.ErrInvalidFormat,
		url2pdf.ErrInvalidPageRange,
		url2pdf.ErrInvalidMargin,
		url2pdf.ErrInvalidPaperSize,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
