// Package url2pdf renders web pages to PDF on a pool of headless Chrome
// browsers.
//
// # Quick Start
//
// Create a cluster, wrap it in a Renderer, and close it when done:
//
//	cluster, err := url2pdf.NewCluster(url2pdf.DefaultRodLauncher())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cluster.Close(context.Background())
//
//	pdf, err := url2pdf.NewRenderer(cluster).MakePDF(ctx, "https://example.com", nil, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("example.pdf", pdf, 0644)
//
// # Scheduling
//
// The cluster keeps between MinWorkers and MaxWorkers browsers. Each browser
// (a Worker) serves up to MaxParallelTasks pages at once. Tasks wait in a FIFO
// queue until a worker has spare capacity; a task that waits longer than
// MaxPageWaitingTime is rejected with a *TimeoutError (errors.Is
// ErrTaskTimeout, HTTP 408). When no worker is available the cluster launches
// ceil(waiting/MaxParallelTasks) more, within MaxWorkers.
//
// A background sweep retires browsers older than MaxLifeSpan or idle longer
// than MaxIdleTime, at most MaxRemovalEachTime per sweep. A retiring browser
// finishes its open pages within MaxWaitBeforeClosing before it is killed.
//
// # Configuration
//
// Use functional options to customize the cluster:
//
//	cluster, err := url2pdf.NewCluster(launcher,
//	    url2pdf.WithPoolSize(1, 4),
//	    url2pdf.WithMaxParallelTasks(5),
//	    url2pdf.WithAdmissionTimeout(30 * time.Second),
//	    url2pdf.WithLogger(slog.Default()),
//	)
//
// Per-request options are passed to MakePDF:
//
//	pdf, err := renderer.MakePDF(ctx, url,
//	    &url2pdf.PDFOptions{Format: "A4", PrintBackground: true},
//	    &url2pdf.PageOptions{WaitUntil: url2pdf.WaitNetworkIdle, WaitForSelector: "#ready"},
//	)
//
// # Custom Actions
//
// Submit runs any Action against the loaded page, for example to capture
// something other than a PDF. The page is opened, navigated, handed to the
// action and closed by the worker; panics inside the action are reported as
// ErrPageAction.
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set URL2PDF_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use URL2PDF_BROWSER_BIN (or ROD_BROWSER_BIN) to specify a
// custom Chrome binary.
package url2pdf
