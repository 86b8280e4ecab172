package url2pdf

// Notes:
// - PageOptions: viewport bounds, wait policies, media emulation, defaults
// - PDFOptions: scale bounds, named formats, page ranges, margins
// - Normalize: paper size resolution and margin folding

import (
	"errors"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestPageOptions_Validate - PageOptions Validation
// ---------------------------------------------------------------------------

func TestPageOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    *PageOptions
		wantErr error
	}{
		{"nil is valid (use defaults)", nil, nil},
		{"zero value is valid", &PageOptions{}, nil},
		{"defaults are valid", DefaultPageOptions(), nil},
		{"print media", &PageOptions{EmulateMedia: MediaPrint}, nil},
		{"load policy", &PageOptions{WaitUntil: WaitLoad}, nil},
		{"networkidle0 policy", &PageOptions{WaitUntil: WaitNetworkIdle}, nil},
		{"negative width", &PageOptions{Width: -1}, ErrInvalidViewport},
		{"huge height", &PageOptions{Height: MaxViewportDimension + 1}, ErrInvalidViewport},
		{"negative timeout", &PageOptions{Timeout: -time.Second}, ErrInvalidDuration},
		{"unknown policy", &PageOptions{WaitUntil: "networkidle1"}, ErrInvalidWaitUntil},
		{"unknown media", &PageOptions{EmulateMedia: "tv"}, ErrInvalidMedia},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.opts.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPageOptions_WithDefaults(t *testing.T) {
	t.Parallel()

	t.Run("nil yields defaults", func(t *testing.T) {
		t.Parallel()

		got := (*PageOptions)(nil).withDefaults()
		if *got != *DefaultPageOptions() {
			t.Errorf("withDefaults() = %+v, want %+v", got, DefaultPageOptions())
		}
	})

	t.Run("explicit fields kept", func(t *testing.T) {
		t.Parallel()

		in := &PageOptions{Width: 800, WaitUntil: WaitLoad, WaitForSelector: "#ready"}
		got := in.withDefaults()

		if got.Width != 800 || got.WaitUntil != WaitLoad || got.WaitForSelector != "#ready" {
			t.Errorf("explicit fields overwritten: %+v", got)
		}
		if got.Height != DefaultViewportHeight {
			t.Errorf("Height = %d, want %d", got.Height, DefaultViewportHeight)
		}
		if got.Timeout != DefaultNavigationTimeout {
			t.Errorf("Timeout = %v, want %v", got.Timeout, DefaultNavigationTimeout)
		}
		if in.Height != 0 {
			t.Error("withDefaults() modified its receiver")
		}
	})
}

func TestDefaultPageOptions(t *testing.T) {
	t.Parallel()

	got := DefaultPageOptions()
	if got.Width != 1280 || got.Height != 1696 {
		t.Errorf("viewport = %dx%d, want 1280x1696", got.Width, got.Height)
	}
	if got.WaitUntil != WaitNetworkAlmostIdle {
		t.Errorf("WaitUntil = %q, want %q", got.WaitUntil, WaitNetworkAlmostIdle)
	}
	if !got.CacheBust {
		t.Error("CacheBust should default to true")
	}
}

// ---------------------------------------------------------------------------
// TestPDFOptions_Validate - PDFOptions Validation
// ---------------------------------------------------------------------------

func TestPDFOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    *PDFOptions
		wantErr error
	}{
		{"nil is valid (use defaults)", nil, nil},
		{"zero value is valid", &PDFOptions{}, nil},
		{"min scale", &PDFOptions{Scale: MinScale}, nil},
		{"max scale", &PDFOptions{Scale: MaxScale}, nil},
		{"scale too small", &PDFOptions{Scale: 0.05}, ErrInvalidScale},
		{"scale too large", &PDFOptions{Scale: 2.5}, ErrInvalidScale},
		{"format case insensitive", &PDFOptions{Format: "a4"}, nil},
		{"format ledger", &PDFOptions{Format: "Ledger"}, nil},
		{"format a6", &PDFOptions{Format: "A6"}, nil},
		{"unknown format", &PDFOptions{Format: "B5"}, ErrInvalidFormat},
		{"single page", &PDFOptions{PageRanges: "3"}, nil},
		{"page range", &PDFOptions{PageRanges: "2-5"}, nil},
		{"page list", &PDFOptions{PageRanges: "1-3, 7, 9-"}, nil},
		{"reversed range", &PDFOptions{PageRanges: "5-2"}, ErrInvalidPageRange},
		{"zero page", &PDFOptions{PageRanges: "0-2"}, ErrInvalidPageRange},
		{"garbage range", &PDFOptions{PageRanges: "first-last"}, ErrInvalidPageRange},
		{"negative paper width", &PDFOptions{PaperWidth: -1}, ErrInvalidPaperSize},
		{"negative margin field", &PDFOptions{MarginLeft: -0.1}, ErrInvalidMargin},
		{"negative margin struct", &PDFOptions{Margin: &Margin{Top: -1}}, ErrInvalidMargin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.opts.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPDFOptions_Normalize - Paper Size and Margins
// ---------------------------------------------------------------------------

func TestPDFOptions_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       *PDFOptions
		wantWidth  float64
		wantHeight float64
		wantMargin *Margin
	}{
		{
			name:       "nil defaults to letter",
			opts:       nil,
			wantWidth:  8.5,
			wantHeight: 11,
		},
		{
			name:       "named format",
			opts:       &PDFOptions{Format: "A4"},
			wantWidth:  8.27,
			wantHeight: 11.7,
		},
		{
			name:       "explicit size overrides format",
			opts:       &PDFOptions{Format: "A4", PaperWidth: 5, PaperHeight: 7},
			wantWidth:  5,
			wantHeight: 7,
		},
		{
			name:       "partial size completes from format",
			opts:       &PDFOptions{Format: "Legal", PaperWidth: 6},
			wantWidth:  6,
			wantHeight: 14,
		},
		{
			name:       "individual margins fold",
			opts:       &PDFOptions{MarginTop: 1, MarginBottom: 0.5},
			wantWidth:  8.5,
			wantHeight: 11,
			wantMargin: &Margin{Top: 1, Bottom: 0.5},
		},
		{
			name:       "margin struct wins",
			opts:       &PDFOptions{Margin: &Margin{Left: 2}, MarginTop: 1},
			wantWidth:  8.5,
			wantHeight: 11,
			wantMargin: &Margin{Left: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.opts.Normalize()
			if got.PaperWidth != tt.wantWidth || got.PaperHeight != tt.wantHeight {
				t.Errorf("paper = %vx%v, want %vx%v", got.PaperWidth, got.PaperHeight, tt.wantWidth, tt.wantHeight)
			}
			switch {
			case tt.wantMargin == nil && got.Margin != nil:
				t.Errorf("Margin = %+v, want nil", got.Margin)
			case tt.wantMargin != nil && (got.Margin == nil || *got.Margin != *tt.wantMargin):
				t.Errorf("Margin = %+v, want %+v", got.Margin, tt.wantMargin)
			}
		})
	}
}

func TestPDFOptions_NormalizeCopies(t *testing.T) {
	t.Parallel()

	in := &PDFOptions{Margin: &Margin{Top: 1}}
	got := in.Normalize()
	got.Margin.Top = 9

	if in.Margin.Top != 1 {
		t.Error("Normalize() shares the Margin pointer with its receiver")
	}
	if in.PaperWidth != 0 {
		t.Error("Normalize() modified its receiver")
	}
}
