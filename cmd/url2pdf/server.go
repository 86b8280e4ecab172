package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/hints"
)

// Sentinel errors for the HTTP front end.
var (
	ErrURLNotAllowed = errors.New("url not allowed")
	ErrListen        = errors.New("failed to listen")
)

const (
	// maxRequestBody bounds /save-as-pdf payloads (header/footer templates included).
	maxRequestBody = 1 << 20

	// minRequestTimeout is the smallest navigation timeout a request may ask for.
	minRequestTimeout = 30 * time.Second

	readHeaderTimeout = 10 * time.Second
)

// renderer is the part of the library the server needs to print a URL.
type renderer interface {
	MakePDF(ctx context.Context, url string, pdf *url2pdf.PDFOptions, page *url2pdf.PageOptions) ([]byte, error)
}

// pool is the part of the cluster the maintenance routes need.
type pool interface {
	Snapshot() url2pdf.Snapshot
	CloseAll(ctx context.Context) error
}

var (
	_ renderer = (*url2pdf.Renderer)(nil)
	_ pool     = (*url2pdf.Cluster)(nil)
)

// Server exposes the cluster over HTTP.
type Server struct {
	renderer       renderer
	pool           pool
	allowedDomains []string
	page           *url2pdf.PageOptions
	pdf            *url2pdf.PDFOptions
	version        string
	logger         *slog.Logger
}

// NewServer returns a server printing with r and reporting on p.
// page and pdf are the defaults every request starts from.
func NewServer(r renderer, p pool, s *settings, version string, logger *slog.Logger) *Server {
	return &Server{
		renderer:       r,
		pool:           p,
		allowedDomains: s.allowedDomains,
		page:           s.page,
		pdf:            s.pdf,
		version:        version,
		logger:         logger,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /save-as-pdf", s.handleSaveAsPDF)
	mux.HandleFunc("GET /activity-check", s.handleActivityCheck)
	mux.HandleFunc("GET /clean-browsers", s.handleCleanBrowsers)
	mux.HandleFunc("GET /healthcheck", s.handleHealthcheck)
	return mux
}

// pageRequest carries the page options of a request. Timeout is in
// milliseconds; waitUntilSchema is accepted as an alias of waitUntil.
type pageRequest struct {
	Width           *int    `json:"width"`
	Height          *int    `json:"height"`
	Timeout         *int64  `json:"timeout"`
	WaitUntil       string  `json:"waitUntil"`
	WaitUntilSchema string  `json:"waitUntilSchema"`
	EmulateMedia    string  `json:"emulateMedia"`
	WaitForSelector *string `json:"waitForSelector"`
	CacheBust       *bool   `json:"cacheBust"`
}

type saveRequest struct {
	URL         string              `json:"url"`
	PDFOptions  *url2pdf.PDFOptions `json:"pdfOptions"`
	PageOptions *pageRequest        `json:"pageOptions"`
}

type validationResponse struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

func (s *Server) handleSaveAsPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	req := saveRequest{PDFOptions: clonePDF(s.pdf)}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Errors: []string{"invalid JSON body: " + err.Error()}})
		return
	}
	if req.PDFOptions == nil {
		req.PDFOptions = clonePDF(s.pdf)
	}

	if err := s.validateURL(req.URL); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	page := mergePage(s.page, req.PageOptions)
	if errs := validationErrors(page.Validate(), req.PDFOptions.Validate()); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Errors: errs})
		return
	}

	start := time.Now()
	pdf, err := s.renderer.MakePDF(r.Context(), req.URL, req.PDFOptions, page)
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("pdf failed", "url", req.URL, "status", status, "error", err)
		http.Error(w, fmt.Sprintf("PDF making error: %v", err), status)
		return
	}
	s.logger.Info("pdf done", "url", req.URL, "bytes", len(pdf), "duration", time.Since(start).Round(time.Millisecond))

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleActivityCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.pool.Snapshot())
}

func (s *Server) handleCleanBrowsers(w http.ResponseWriter, r *http.Request) {
	if err := s.pool.CloseAll(r.Context()); err != nil {
		s.logger.Error("clean browsers", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "done"})
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "version: %s", s.version)
}

// validateURL accepts absolute http(s) URLs whose host is an allowed domain
// or a subdomain of one. An empty allow list accepts any host.
func (s *Server) validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: %w", ErrURLNotAllowed, url2pdf.ErrEmptyURL)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return fmt.Errorf("%w: url should be an absolute http(s) URL", ErrURLNotAllowed)
	}
	if !hostAllowed(u.Hostname(), s.allowedDomains) {
		return fmt.Errorf("%w: url must belong to one of the following domains: %s%s",
			ErrURLNotAllowed, strings.Join(s.allowedDomains, ","), hints.ForDomainNotAllowed(s.allowedDomains))
	}
	return nil
}

func hostAllowed(host string, domains []string) bool {
	if len(domains) == 0 {
		return true
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "."))
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// mergePage overlays request fields on the server defaults.
func mergePage(base *url2pdf.PageOptions, req *pageRequest) *url2pdf.PageOptions {
	out := *base
	if req == nil {
		return &out
	}
	if req.Width != nil {
		out.Width = *req.Width
	}
	if req.Height != nil {
		out.Height = *req.Height
	}
	if req.Timeout != nil {
		out.Timeout = requestTimeout(*req.Timeout)
	}
	switch {
	case req.WaitUntil != "":
		out.WaitUntil = url2pdf.WaitUntil(req.WaitUntil)
	case req.WaitUntilSchema != "":
		out.WaitUntil = url2pdf.WaitUntil(req.WaitUntilSchema)
	}
	if req.EmulateMedia != "" {
		out.EmulateMedia = req.EmulateMedia
	}
	if req.WaitForSelector != nil {
		out.WaitForSelector = *req.WaitForSelector
	}
	if req.CacheBust != nil {
		out.CacheBust = *req.CacheBust
	}
	return &out
}

// requestTimeout converts milliseconds, raising short budgets to
// minRequestTimeout. Zero keeps the default; negatives fail validation.
func requestTimeout(ms int64) time.Duration {
	d := time.Duration(ms) * time.Millisecond
	if d > 0 && d < minRequestTimeout {
		return minRequestTimeout
	}
	return d
}

func clonePDF(o *url2pdf.PDFOptions) *url2pdf.PDFOptions {
	if o == nil {
		return &url2pdf.PDFOptions{}
	}
	out := *o
	if o.Margin != nil {
		m := *o.Margin
		out.Margin = &m
	}
	return &out
}

func validationErrors(errs ...error) []string {
	var out []string
	for _, err := range errs {
		if err != nil {
			out = append(out, err.Error())
		}
	}
	return out
}

// statusFor maps a rendering error to an HTTP status.
func statusFor(err error) int {
	var te *url2pdf.TimeoutError
	switch {
	case errors.As(err, &te):
		return te.StatusCode()
	case isValidationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, url2pdf.ErrClusterClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// listenAndServe serves until ctx is canceled, then drains in-flight
// requests for at most drain.
func listenAndServe(ctx context.Context, addr string, h http.Handler, drain time.Duration, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w on %s: %w%s", ErrListen, addr, err, hints.ForAddressInUse(addr))
	}
	return serve(ctx, ln, h, drain, logger)
}

func serve(ctx context.Context, ln net.Listener, h http.Handler, drain time.Duration, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "drain", drain)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
