// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath = errors.New("path cannot be empty")
	ErrEmptyURL  = errors.New("url cannot be empty")
)

// MaxFileNameLength bounds names derived from URLs (most filesystems cap at 255).
const MaxFileNameLength = 200

// WriteFileAtomic writes data to a temporary file in the destination
// directory and renames it over path, so readers never observe a partial PDF.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, writeErr := tmpFile.Write(data); writeErr != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", writeErr)
	}
	if syncErr := tmpFile.Sync(); syncErr != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", syncErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if chmodErr := os.Chmod(tmpPath, perm); chmodErr != nil {
		return fmt.Errorf("setting permissions: %w", chmodErr)
	}
	if renameErr := os.Rename(tmpPath, path); renameErr != nil {
		return fmt.Errorf("renaming temp file: %w", renameErr)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsURL returns true if the string looks like a URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// PDFNameForURL derives a file name from a URL.
//
// Examples:
//   - "https://example.com" -> "example.com.pdf"
//   - "https://example.com/docs/intro.html" -> "example.com-docs-intro.html.pdf"
//   - "https://example.com/a?b=c" -> "example.com-a-b-c.pdf"
func PDFNameForURL(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", ErrEmptyURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}

	parts := []string{u.Hostname()}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" && seg != "." && seg != ".." {
			parts = append(parts, seg)
		}
	}
	if u.RawQuery != "" {
		parts = append(parts, u.RawQuery)
	}

	name := sanitize(strings.Join(parts, "-"))
	if name == "" {
		name = "page"
	}
	if len(name) > MaxFileNameLength {
		name = strings.TrimRight(name[:MaxFileNameLength], "-")
	}
	return name + ".pdf", nil
}

// sanitize keeps letters, digits, dots and underscores, collapsing every
// other run of characters into a single dash.
func sanitize(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-.")
}
