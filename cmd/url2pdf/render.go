package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/fileutil"
	"github.com/alnah/go-url2pdf/internal/hints"
)

// Sentinel errors for the render command.
var (
	ErrNoInput  = errors.New("no URL specified")
	ErrWritePDF = errors.New("failed to write PDF file")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// RenderJob is one URL and the file it is printed to.
type RenderJob struct {
	URL        string
	OutputPath string
}

// RenderResult holds the outcome of a single job.
type RenderResult struct {
	URL        string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// planJobs maps URLs to output paths. A single URL with an output ending
// in .pdf is written to that file; otherwise output is a directory
// (default: current directory) and names derive from the URLs.
func planJobs(urls []string, output string) ([]RenderJob, error) {
	if len(urls) == 0 {
		return nil, ErrNoInput
	}

	for _, u := range urls {
		if !fileutil.IsURL(u) {
			return nil, fmt.Errorf("%w: %q is not an http(s) URL", ErrUsage, u)
		}
	}

	if len(urls) == 1 && strings.EqualFold(filepath.Ext(output), ".pdf") {
		return []RenderJob{{URL: urls[0], OutputPath: output}}, nil
	}

	dir := output
	if dir == "" {
		dir = "."
	}
	jobs := make([]RenderJob, 0, len(urls))
	seen := make(map[string]int, len(urls))
	for _, u := range urls {
		name, err := fileutil.PDFNameForURL(u)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUsage, err)
		}
		// Two URLs may map to the same name.
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s-%d.pdf", strings.TrimSuffix(name, ".pdf"), n+1)
		} else {
			seen[name] = 1
		}
		jobs = append(jobs, RenderJob{URL: u, OutputPath: filepath.Join(dir, name)})
	}
	return jobs, nil
}

// renderBatch submits every job to the cluster at once; the cluster queues
// what its workers cannot take yet.
func renderBatch(ctx context.Context, r renderer, jobs []RenderJob, pdf *url2pdf.PDFOptions, page *url2pdf.PageOptions) []RenderResult {
	results := make([]RenderResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)

	for i, job := range jobs {
		g.Go(func() error {
			results[i] = renderOne(gctx, r, job, pdf, page)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func renderOne(ctx context.Context, r renderer, job RenderJob, pdf *url2pdf.PDFOptions, page *url2pdf.PageOptions) RenderResult {
	start := time.Now()
	result := RenderResult{URL: job.URL, OutputPath: job.OutputPath}

	data, err := r.MakePDF(ctx, job.URL, pdf, page)
	if err == nil {
		if writeErr := fileutil.WriteFileAtomic(job.OutputPath, data, filePermissions); writeErr != nil {
			err = fmt.Errorf("%w: %w", ErrWritePDF, writeErr)
		}
	}

	result.Err = err
	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed jobs.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed jobs.
func countResults(results []RenderResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs render results and returns the first failure.
func printResults(results []RenderResult, quiet, verbose bool, env *Environment) error {
	summary := countResults(results)
	var first error

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.URL, r.Err, hintFor(r.Err))
			if first == nil {
				first = r.Err
			}
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.URL, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return first
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, url2pdf.ErrBrowserLaunch):
		return hints.ForBrowserLaunch()
	case errors.Is(err, url2pdf.ErrTaskTimeout):
		return hints.ForAdmissionTimeout()
	case errors.Is(err, ErrWritePDF):
		return hints.ForOutputDirectory()
	default:
		return ""
	}
}

// runRender prints each URL to a PDF file through a private cluster.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	jobs, err := planJobs(positional, flags.output)
	if err != nil {
		return err
	}

	s, err := resolveSettings(&flags.renderingFlags, env.Stderr)
	if err != nil {
		return err
	}
	logger, err := newLogger(env.Stderr, s.logFormat, flags.common.verbose, flags.common.quiet)
	if err != nil {
		return err
	}

	dir := filepath.Dir(jobs[0].OutputPath)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("%w: creating %s: %w%s", ErrWritePDF, dir, err, hints.ForOutputDirectory())
	}

	// One-shot runs keep no idle browsers.
	cfg := s.cluster
	cfg.MinWorkers = 0
	cluster, err := url2pdf.NewCluster(env.NewLauncher(s.bin, s.noSandbox),
		url2pdf.WithConfig(cfg),
		url2pdf.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.MaxWaitBeforeClosing+5*time.Second)
		defer cancel()
		if err := cluster.Close(closeCtx); err != nil {
			logger.Warn("closing browsers", "error", err)
		}
	}()

	results := renderBatch(ctx, url2pdf.NewRenderer(cluster), jobs, s.pdf, s.page)
	return printResults(results, flags.common.quiet, flags.common.verbose, env)
}
