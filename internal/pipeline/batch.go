package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nao1215/storepreview/internal/model"
)

// DefaultConcurrency is used when WithConcurrency is not given.
const DefaultConcurrency = 4

// ErrDuplicateName is returned when two batch targets would write the same file.
var ErrDuplicateName = errors.New("duplicate preview name in batch")

// Factory builds the pipeline for one target. Per-site settings such as
// request headers and extra patterns are resolved here.
type Factory func(target model.Target) (*Pipeline, error)

// Result is the outcome of one target in a batch.
type Result struct {
	Capture *model.Capture
	Err     error
}

// BatchProcessor captures several targets concurrently.
type BatchProcessor struct {
	factory     Factory
	concurrency int
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency limits concurrent captures. Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithRateLimit spaces capture starts to at most perSecond per second,
// so a batch against one store does not burst. Zero or less disables it.
func WithRateLimit(perSecond float64) BatchOption {
	return func(b *BatchProcessor) {
		if perSecond > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(factory Factory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch captures every target and returns one Result per target, in
// input order. A failed capture does not stop the others; the returned error
// is non-nil only for duplicate names (compared case-insensitively) or
// cancellation. Targets skipped by cancellation have a nil Capture.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []model.Target) ([]Result, error) {
	results := make([]Result, len(targets))
	err := bp.ProcessBatchWithCallback(ctx, targets, func(r Result, i int) {
		results[i] = r
	})
	return results, err
}

// ProcessBatchWithCallback captures every target and calls callback as each
// one finishes. callback runs on the capturing goroutine and must be safe for
// concurrent use unless it only touches index i of shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []model.Target,
	callback func(r Result, i int),
) error {
	if err := checkNames(targets); err != nil {
		return err
	}

	bp.logger.Info("starting batch capture",
		"total", len(targets),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			c := model.NewCapture(target)
			err := bp.run(ctx, target, c)
			if err != nil {
				bp.logger.Warn("capture failed", "name", target.Name, "url", target.URL, "error", err)
			} else {
				bp.logger.Info("capture completed", "name", target.Name, "index", i+1, "total", len(targets))
			}
			callback(Result{Capture: c, Err: err}, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch capture complete",
		"total", len(targets),
		"elapsed", time.Since(start),
	)
	return err
}

func (bp *BatchProcessor) run(ctx context.Context, target model.Target, c *model.Capture) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if bp.limiter != nil {
		if err := bp.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	p, err := bp.factory(target)
	if err != nil {
		return fmt.Errorf("failed to build pipeline for %s: %w", target.Name, err)
	}
	return p.Execute(ctx, c)
}

func checkNames(targets []model.Target) error {
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		key := strings.ToLower(t.Name)
		if seen[key] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, t.Name)
		}
		seen[key] = true
	}
	return nil
}
