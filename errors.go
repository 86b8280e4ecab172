package url2pdf

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors for library operations.
var (
	ErrBrowserLaunch = errors.New("failed to launch browser")
	ErrPageCreate    = errors.New("failed to create browser page")
	ErrPageLoad      = errors.New("failed to load page")
	ErrPageAction    = errors.New("page action failed")
	ErrPDFGeneration = errors.New("PDF generation failed")
	ErrClusterClosed = errors.New("browser cluster is closed")
	ErrTaskTimeout   = errors.New("page task timed out waiting for a browser")
	ErrNilLauncher   = errors.New("browser launcher cannot be nil")
	ErrNilAction     = errors.New("page action cannot be nil")
	ErrEmptyURL      = errors.New("url cannot be empty")

	// Cluster configuration errors.
	ErrInvalidPoolSize    = errors.New("invalid worker pool size")
	ErrInvalidParallelism = errors.New("invalid max parallel tasks")
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrInvalidRemoval     = errors.New("invalid max removal per sweep")

	// Page options validation errors.
	ErrInvalidViewport  = errors.New("invalid viewport")
	ErrInvalidWaitUntil = errors.New("invalid wait policy")
	ErrInvalidMedia     = errors.New("invalid emulated media")

	// PDF options validation errors.
	ErrInvalidScale     = errors.New("invalid scale")
	ErrInvalidFormat    = errors.New("invalid paper format")
	ErrInvalidPageRange = errors.New("invalid page range")
	ErrInvalidMargin    = errors.New("invalid margin")
	ErrInvalidPaperSize = errors.New("invalid paper size")
)

// TimeoutError reports a task that waited in the queue past its admission
// budget. It matches ErrTaskTimeout with errors.Is.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("page task timed out after %v waiting for a browser", e.Budget)
}

// Unwrap lets errors.Is(err, ErrTaskTimeout) succeed.
func (e *TimeoutError) Unwrap() error {
	return ErrTaskTimeout
}

// StatusCode returns the HTTP status callers should answer with.
func (e *TimeoutError) StatusCode() int {
	return http.StatusRequestTimeout
}
