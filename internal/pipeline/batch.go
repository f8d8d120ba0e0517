package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/greensight/carbonscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// Target identifies one page to run a report for.
type Target struct {
	// URL is the page's public URL.
	URL string

	// Page is the page identity the report is stored under.
	Page model.PageKey
}

// BatchProcessor handles concurrent report runs over multiple pages.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-page execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each run.
	// We use a factory to ensure each run gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent runs.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed runs.
	// Access is synchronized via mutex.
	results []*model.ReportRun
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent runs.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// DefaultBatchConcurrency bounds concurrent page renders. Renders are
// expensive for the renderer service, so the default stays modest.
const DefaultBatchConcurrency = 4

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each run to create a fresh
// pipeline instance. This ensures that pipeline state doesn't leak between
// runs and allows for per-run customization if needed.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultBatchConcurrency,
		results:         make([]*model.ReportRun, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs reports for multiple pages concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each page gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all runs in target order, including pages whose run failed; a
// failed run carries its error in ReportRun.Err. The error return indicates
// batch-level cancellation only.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []Target) ([]*model.ReportRun, error) {
	bp.logger.Info("starting batch processing",
		"total_pages", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.ReportRun, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("running report",
				"page", target.Page.String(),
				"index", i+1,
				"total", len(targets),
			)

			run := &model.ReportRun{URL: target.URL, Page: target.Page}

			// Create and execute pipeline
			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, run)

			// Store result regardless of error
			// The run carries error information if it failed
			bp.mu.Lock()
			bp.results[i] = run
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("report run failed",
					"page", target.Page.String(),
					"error", err,
				)
				// Don't return the error to errgroup - we want the other
				// pages to complete. The error is recorded in the run.
				return nil
			}

			bp.logger.Info("report run completed",
				"page", target.Page.String(),
			)

			return nil
		})
	}

	// Wait for all runs to complete
	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_pages", len(targets),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback runs reports for multiple pages and calls a
// callback for each completed run. This is useful for streaming results.
//
// The callback receives the run and the index of the target in the
// original slice. The callback is called from the goroutine that completed
// the run, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []Target,
	callback func(run *model.ReportRun, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_pages", len(targets),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			run := &model.ReportRun{URL: target.URL, Page: target.Page}
			pipeline := bp.pipelineFactory()
			_ = pipeline.Execute(ctx, run) //nolint:errcheck // Error is stored in the run

			// Call the callback with the result
			callback(run, i)

			return nil
		})
	}

	return g.Wait()
}
