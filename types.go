package url2pdf

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Viewport defaults match a US Letter page rendered at 160 DPI.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 1696
	MaxViewportDimension  = 16384

	DefaultNavigationTimeout = 3 * time.Minute
)

// WaitUntil names the page lifecycle event navigation waits for.
type WaitUntil string

// Wait policies.
const (
	WaitLoad              WaitUntil = "load"
	WaitDOMContentLoaded  WaitUntil = "domcontentloaded"
	WaitNetworkIdle       WaitUntil = "networkidle0"
	WaitNetworkAlmostIdle WaitUntil = "networkidle2"
)

// Media types for CSS media emulation.
const (
	MediaScreen = "screen"
	MediaPrint  = "print"
)

// PageOptions configures how a page is prepared before the action runs.
type PageOptions struct {
	Width           int           `json:"width,omitempty"`
	Height          int           `json:"height,omitempty"`
	Timeout         time.Duration `json:"timeout,omitempty"`
	WaitUntil       WaitUntil     `json:"waitUntil,omitempty"`
	EmulateMedia    string        `json:"emulateMedia,omitempty"`
	WaitForSelector string        `json:"waitForSelector,omitempty"`
	CacheBust       bool          `json:"cacheBust,omitempty"`
}

// DefaultPageOptions returns the options used when none are given.
func DefaultPageOptions() *PageOptions {
	return &PageOptions{
		Width:     DefaultViewportWidth,
		Height:    DefaultViewportHeight,
		Timeout:   DefaultNavigationTimeout,
		WaitUntil: WaitNetworkAlmostIdle,
		CacheBust: true,
	}
}

// Validate checks that page options are usable.
// Returns nil if p is nil (nil means use defaults).
func (p *PageOptions) Validate() error {
	if p == nil {
		return nil
	}
	if p.Width < 0 || p.Width > MaxViewportDimension {
		return fmt.Errorf("%w: width %d", ErrInvalidViewport, p.Width)
	}
	if p.Height < 0 || p.Height > MaxViewportDimension {
		return fmt.Errorf("%w: height %d", ErrInvalidViewport, p.Height)
	}
	if p.Timeout < 0 {
		return fmt.Errorf("%w: navigation timeout %v", ErrInvalidDuration, p.Timeout)
	}
	switch p.WaitUntil {
	case "", WaitLoad, WaitDOMContentLoaded, WaitNetworkIdle, WaitNetworkAlmostIdle:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidWaitUntil, p.WaitUntil)
	}
	switch p.EmulateMedia {
	case "", MediaScreen, MediaPrint:
	default:
		return fmt.Errorf("%w: %q (must be screen or print)", ErrInvalidMedia, p.EmulateMedia)
	}
	return nil
}

// withDefaults returns a copy with zero fields filled from DefaultPageOptions.
func (p *PageOptions) withDefaults() *PageOptions {
	d := DefaultPageOptions()
	if p == nil {
		return d
	}
	out := *p
	if out.Width == 0 {
		out.Width = d.Width
	}
	if out.Height == 0 {
		out.Height = d.Height
	}
	if out.Timeout == 0 {
		out.Timeout = d.Timeout
	}
	if out.WaitUntil == "" {
		out.WaitUntil = d.WaitUntil
	}
	return &out
}

// Scale bounds accepted by Chrome's print-to-PDF.
const (
	MinScale = 0.1
	MaxScale = 2.0
)

// PaperSize is a paper format in inches.
type PaperSize struct {
	Width  float64
	Height float64
}

// paperFormats lists the named formats, keyed in lower case.
var paperFormats = map[string]PaperSize{
	"letter":  {8.5, 11},
	"legal":   {8.5, 14},
	"tabloid": {11, 17},
	"ledger":  {17, 11},
	"a0":      {33.1, 46.8},
	"a1":      {23.4, 33.1},
	"a2":      {16.54, 23.4},
	"a3":      {11.7, 16.54},
	"a4":      {8.27, 11.7},
	"a5":      {5.83, 8.27},
	"a6":      {4.13, 5.83},
}

// Margin holds page margins in inches.
type Margin struct {
	Top    float64 `json:"top,omitempty"`
	Right  float64 `json:"right,omitempty"`
	Bottom float64 `json:"bottom,omitempty"`
	Left   float64 `json:"left,omitempty"`
}

func (m *Margin) isZero() bool {
	return m == nil || (m.Top == 0 && m.Right == 0 && m.Bottom == 0 && m.Left == 0)
}

// PDFOptions configures Chrome's print-to-PDF.
// PaperWidth/PaperHeight override Format; the individual Margin* fields are
// folded into Margin when Margin is unset.
type PDFOptions struct {
	Scale               float64 `json:"scale,omitempty"`
	DisplayHeaderFooter bool    `json:"displayHeaderFooter,omitempty"`
	HeaderTemplate      string  `json:"headerTemplate,omitempty"`
	FooterTemplate      string  `json:"footerTemplate,omitempty"`
	PrintBackground     bool    `json:"printBackground,omitempty"`
	Landscape           bool    `json:"landscape,omitempty"`
	PageRanges          string  `json:"pageRanges,omitempty"`
	Format              string  `json:"format,omitempty"`
	PaperWidth          float64 `json:"paperWidth,omitempty"`
	PaperHeight         float64 `json:"paperHeight,omitempty"`
	Margin              *Margin `json:"margin,omitempty"`
	MarginTop           float64 `json:"marginTop,omitempty"`
	MarginRight         float64 `json:"marginRight,omitempty"`
	MarginBottom        float64 `json:"marginBottom,omitempty"`
	MarginLeft          float64 `json:"marginLeft,omitempty"`
	PreferCSSPageSize   bool    `json:"preferCSSPageSize,omitempty"`
}

// Validate checks that PDF options are acceptable to Chrome.
// Returns nil if o is nil (nil means use defaults).
func (o *PDFOptions) Validate() error {
	if o == nil {
		return nil
	}
	if o.Scale != 0 && (o.Scale < MinScale || o.Scale > MaxScale) {
		return fmt.Errorf("%w: %.2f (must be between %.1f and %.1f)", ErrInvalidScale, o.Scale, MinScale, MaxScale)
	}
	if o.Format != "" {
		if _, ok := paperFormats[strings.ToLower(o.Format)]; !ok {
			return fmt.Errorf("%w: %q (must be one of Letter, Legal, Tabloid, Ledger, A0-A6)", ErrInvalidFormat, o.Format)
		}
	}
	if o.PaperWidth < 0 || o.PaperHeight < 0 {
		return fmt.Errorf("%w: %.2fx%.2f", ErrInvalidPaperSize, o.PaperWidth, o.PaperHeight)
	}
	if err := validatePageRanges(o.PageRanges); err != nil {
		return err
	}
	margins := []float64{o.MarginTop, o.MarginRight, o.MarginBottom, o.MarginLeft}
	if o.Margin != nil {
		margins = append(margins, o.Margin.Top, o.Margin.Right, o.Margin.Bottom, o.Margin.Left)
	}
	for _, m := range margins {
		if m < 0 {
			return fmt.Errorf("%w: %.2f (must not be negative)", ErrInvalidMargin, m)
		}
	}
	return nil
}

// Normalize returns a copy with paper size resolved and margins folded.
func (o *PDFOptions) Normalize() *PDFOptions {
	if o == nil {
		o = &PDFOptions{}
	}
	out := *o

	if out.Margin.isZero() && (out.MarginTop != 0 || out.MarginRight != 0 || out.MarginBottom != 0 || out.MarginLeft != 0) {
		out.Margin = &Margin{
			Top:    out.MarginTop,
			Right:  out.MarginRight,
			Bottom: out.MarginBottom,
			Left:   out.MarginLeft,
		}
	} else if out.Margin != nil {
		m := *out.Margin
		out.Margin = &m
	}

	if out.PaperWidth == 0 || out.PaperHeight == 0 {
		size := paperFormats["letter"]
		if f, ok := paperFormats[strings.ToLower(out.Format)]; ok {
			size = f
		}
		if out.PaperWidth == 0 {
			out.PaperWidth = size.Width
		}
		if out.PaperHeight == 0 {
			out.PaperHeight = size.Height
		}
	}
	return &out
}

// validatePageRanges accepts comma-separated pages or ranges like "1-5, 8".
func validatePageRanges(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		if !isPositiveInt(lo) || (isRange && hi != "" && !isPositiveInt(hi)) {
			return fmt.Errorf("%w: %q (must be like 2-5)", ErrInvalidPageRange, s)
		}
		if isRange && hi != "" {
			a, _ := strconv.Atoi(lo)
			b, _ := strconv.Atoi(hi)
			if a > b {
				return fmt.Errorf("%w: %q (start after end)", ErrInvalidPageRange, s)
			}
		}
	}
	return nil
}

func isPositiveInt(s string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil && n > 0
}
