package url2pdf

// Notes:
// - buildPrintToPDF and DefaultRodLauncher are tested without a browser.
// - TestRodLauncher_Integration starts real Chrome; it is skipped with -short
//   and unless URL2PDF_INTEGRATION is set.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestBuildPrintToPDF - Option Mapping
// ---------------------------------------------------------------------------

func TestBuildPrintToPDF(t *testing.T) {
	t.Parallel()

	t.Run("defaults to letter without margins", func(t *testing.T) {
		t.Parallel()

		req := buildPrintToPDF(nil)
		if *req.PaperWidth != 8.5 || *req.PaperHeight != 11 {
			t.Errorf("paper = %vx%v, want 8.5x11", *req.PaperWidth, *req.PaperHeight)
		}
		if req.Scale != nil {
			t.Errorf("Scale = %v, want nil", *req.Scale)
		}
		if req.MarginTop != nil {
			t.Error("margins should be left to Chrome when unset")
		}
	})

	t.Run("all fields", func(t *testing.T) {
		t.Parallel()

		req := buildPrintToPDF(&PDFOptions{
			Scale:               1.5,
			DisplayHeaderFooter: true,
			HeaderTemplate:      "<span class=title></span>",
			FooterTemplate:      "<span class=pageNumber></span>",
			PrintBackground:     true,
			Landscape:           true,
			PageRanges:          "1-2",
			Format:              "A3",
			MarginTop:           0.4,
			MarginLeft:          0.2,
			PreferCSSPageSize:   true,
		})

		if *req.Scale != 1.5 {
			t.Errorf("Scale = %v", *req.Scale)
		}
		if *req.PaperWidth != 11.7 || *req.PaperHeight != 16.54 {
			t.Errorf("paper = %vx%v, want A3", *req.PaperWidth, *req.PaperHeight)
		}
		if *req.MarginTop != 0.4 || *req.MarginLeft != 0.2 || *req.MarginBottom != 0 {
			t.Errorf("margins = %v/%v/%v", *req.MarginTop, *req.MarginLeft, *req.MarginBottom)
		}
		if !req.Landscape || !req.PrintBackground || !req.DisplayHeaderFooter || !req.PreferCSSPageSize {
			t.Errorf("flags not mapped: %+v", req)
		}
		if req.PageRanges != "1-2" || req.HeaderTemplate == "" || req.FooterTemplate == "" {
			t.Errorf("strings not mapped: %+v", req)
		}
	})
}

// ---------------------------------------------------------------------------
// TestDefaultRodLauncher - Environment
// ---------------------------------------------------------------------------

func TestDefaultRodLauncher(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		wantBin       string
		wantNoSandbox bool
	}{
		{"nothing set", map[string]string{}, "", false},
		{"project bin", map[string]string{EnvBrowserBin: "/usr/bin/chromium"}, "/usr/bin/chromium", true},
		{"rod bin", map[string]string{EnvRodBrowserBin: "/opt/chrome"}, "/opt/chrome", true},
		{"project bin wins", map[string]string{EnvBrowserBin: "/a", EnvRodBrowserBin: "/b"}, "/a", true},
		{"ci", map[string]string{"CI": "true"}, "", true},
		{"explicit no sandbox", map[string]string{EnvNoSandbox: "1"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{EnvBrowserBin, EnvRodBrowserBin, EnvNoSandbox, "CI"} {
				t.Setenv(k, tt.env[k])
			}

			l := DefaultRodLauncher()
			if l.Bin != tt.wantBin {
				t.Errorf("Bin = %q, want %q", l.Bin, tt.wantBin)
			}
			if l.NoSandbox != tt.wantNoSandbox {
				t.Errorf("NoSandbox = %v, want %v", l.NoSandbox, tt.wantNoSandbox)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRodLauncher_Integration - Real Browser
// ---------------------------------------------------------------------------

func TestRodLauncher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if os.Getenv("URL2PDF_INTEGRATION") == "" {
		t.Skip("set URL2PDF_INTEGRATION=1 to run browser tests")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body><h1 id="ready">Invoice</h1></body></html>`)
	}))
	defer srv.Close()

	c, err := NewCluster(DefaultRodLauncher(), WithPoolSize(1, 1), WithLogger(discardLogger()))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	r := NewRenderer(c)

	pdf, err := r.MakePDF(ctx, srv.URL+"/invoice", &PDFOptions{Format: "A4"}, &PageOptions{WaitForSelector: "#ready", WaitUntil: WaitLoad})
	if err != nil {
		t.Fatalf("MakePDF() error = %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF: %q", pdf[:min(len(pdf), 16)])
	}

	_, err = r.MakePDF(ctx, srv.URL+"/missing", nil, &PageOptions{WaitUntil: WaitLoad})
	if !errors.Is(err, ErrPageLoad) {
		t.Errorf("404 error = %v, want ErrPageLoad", err)
	}

	snap := c.Snapshot()
	if len(snap.Workers) != 1 || snap.Workers[0].PID <= 0 {
		t.Errorf("snapshot workers = %+v, want one browser with a pid", snap.Workers)
	}
}
