package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of items processed at once when no
// WithConcurrency option is given.
const DefaultConcurrency = 4

// BatchProcessor runs an indexed unit of work over a bounded number of
// goroutines.
type BatchProcessor struct {
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of items processed at once.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// Concurrency returns the configured concurrency limit.
func (bp *BatchProcessor) Concurrency() int {
	return bp.concurrency
}

// Process calls fn for every index in [0, n) with at most bp.Concurrency()
// calls in flight. Results are stored by index, so the returned slice is in
// index order. The first error cancels the context passed to the remaining
// calls and is returned.
func Process[T any](ctx context.Context, bp *BatchProcessor, n int, fn func(ctx context.Context, index int) (T, error)) ([]T, error) {
	bp.logger.DebugContext(ctx, "starting batch", "items", n, "concurrency", bp.concurrency)
	start := time.Now()

	results := make([]T, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := fn(ctx, i)
			if err != nil {
				return err
			}

			// Each goroutine writes a distinct index.
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	bp.logger.DebugContext(ctx, "batch complete", "items", n, "elapsed", time.Since(start))
	return results, nil
}
