package url2pdf

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestTimeoutError - Matching and Status
// ---------------------------------------------------------------------------

func TestTimeoutError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("rendering: %w", &TimeoutError{Budget: 2 * time.Minute})

	if !errors.Is(err, ErrTaskTimeout) {
		t.Error("errors.Is(err, ErrTaskTimeout) = false")
	}

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatal("errors.As(err, *TimeoutError) = false")
	}
	if te.StatusCode() != http.StatusRequestTimeout {
		t.Errorf("StatusCode() = %d, want %d", te.StatusCode(), http.StatusRequestTimeout)
	}
	if !strings.Contains(te.Error(), "2m0s") {
		t.Errorf("Error() = %q, should name the budget", te.Error())
	}
}

func TestSentinelsDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrBrowserLaunch, ErrPageCreate, ErrPageLoad, ErrPageAction,
		ErrPDFGeneration, ErrClusterClosed, ErrTaskTimeout, ErrTaskSubmitted,
		ErrNilLauncher, ErrNilAction, ErrEmptyURL,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v matches %v", a, b)
			}
		}
	}
}
