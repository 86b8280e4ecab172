// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-url2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserLaunch returns hints for browser launch errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserLaunch() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	noSandbox, _ := strconv.ParseBool(os.Getenv("URL2PDF_NO_SANDBOX"))
	if (inCI || IsInContainer()) && !noSandbox {
		hints = append(hints, "set URL2PDF_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("URL2PDF_BROWSER_BIN") == "" && os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set URL2PDF_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForAdmissionTimeout returns a hint for tasks that waited too long for a browser.
func ForAdmissionTimeout() string {
	return format("raise --max-workers or --max-page-wait, or lower the request rate")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-url2pdf/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-url2pdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForDomainNotAllowed lists the hosts a request may target.
func ForDomainNotAllowed(allowed []string) string {
	if len(allowed) == 0 {
		return ""
	}
	return format("allowed domains: " + strings.Join(allowed, ", "))
}

// ForAddressInUse returns a hint for listen errors.
func ForAddressInUse(addr string) string {
	return format("another process listens on " + addr + "; use --addr to pick a different port")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
