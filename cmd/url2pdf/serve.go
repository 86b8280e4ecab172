package main

import (
	"context"
	"fmt"
	"time"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/config"
	"github.com/alnah/go-url2pdf/internal/hints"
)

// runServe starts the cluster and the HTTP front end, and blocks until ctx
// is canceled. Shutdown drains HTTP requests first, then closes every browser.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, positional)
	}

	s, err := resolveSettings(&flags.renderingFlags, env.Stderr, func(cfg *config.Config) {
		applyServeFlags(flags, cfg)
	})
	if err != nil {
		return err
	}
	logger, err := newLogger(env.Stderr, s.logFormat, flags.common.verbose, flags.common.quiet)
	if err != nil {
		return err
	}

	cluster, err := url2pdf.NewCluster(env.NewLauncher(s.bin, s.noSandbox),
		url2pdf.WithConfig(s.cluster),
		url2pdf.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), s.cluster.MaxWaitBeforeClosing+5*time.Second)
		defer cancel()
		if err := cluster.Close(closeCtx); err != nil {
			logger.Warn("closing browsers", "error", err)
		}
		logger.Info("browsers closed")
	}()

	if flags.warmup {
		if err := cluster.Warmup(ctx); err != nil {
			return fmt.Errorf("warming up: %w%s", err, hints.ForBrowserLaunch())
		}
	}

	logger.Info("cluster ready",
		"minWorkers", s.cluster.MinWorkers,
		"maxWorkers", s.cluster.MaxWorkers,
		"maxParallelTasks", s.cluster.MaxParallelTasks,
		"allowedDomains", s.allowedDomains,
	)

	srv := NewServer(url2pdf.NewRenderer(cluster), cluster, s, Version, logger)
	return listenAndServe(ctx, s.addr, srv.Handler(), s.shutdownTimeout, logger)
}
