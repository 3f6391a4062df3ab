package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/modelcount/internal/freq"
	"github.com/nao1215/modelcount/internal/scanner"
)

// ProgressFactory returns the progress callback to install on the scanner
// for one input file, or nil for no progress reporting on that file.
// size is the file size in bytes, or 0 when unknown.
type ProgressFactory func(path string, size int64) scanner.ProgressFunc

// Runner scans input files and merges their frequency tables.
type Runner struct {
	// targetKey is the JSON key whose string values are counted.
	targetKey string

	// concurrency is the maximum number of files scanned at once.
	concurrency int

	// logger is used for per-file debug logging.
	logger *slog.Logger

	// progressFor supplies per-file progress callbacks.
	progressFor ProgressFactory
}

// Stats aggregates the per-file totals of a run.
type Stats struct {
	// ModelsSeen counts every emitted value across all inputs.
	ModelsSeen uint64

	// TotalBytes is the number of bytes consumed across all inputs.
	TotalBytes int64
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency sets the maximum number of concurrent file scans.
// Values below one are ignored.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithProgress installs a per-file progress callback factory.
func WithProgress(factory ProgressFactory) Option {
	return func(r *Runner) {
		r.progressFor = factory
	}
}

// NewRunner creates a Runner counting values of targetKey.
func NewRunner(targetKey string, opts ...Option) *Runner {
	r := &Runner{
		targetKey:   targetKey,
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Run scans every path and returns the merged frequency table with the
// aggregated totals. The first failure (open error, parse failure, or
// context cancellation) cancels the remaining scans and is returned.
func (r *Runner) Run(ctx context.Context, paths []string) (*freq.Table, Stats, error) {
	merged := freq.New()
	var stats Stats
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			table, seen, bytes, err := r.scanFile(ctx, path)
			if err != nil {
				return err
			}

			mu.Lock()
			merged.Merge(table)
			stats.ModelsSeen += seen
			stats.TotalBytes += bytes
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	return merged, stats, nil
}

// scanFile scans one input into a fresh table.
func (r *Runner) scanFile(ctx context.Context, path string) (*freq.Table, uint64, int64, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, 0, 0, fmt.Errorf("cannot open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	opts := []scanner.Option{}
	if r.progressFor != nil {
		if fn := r.progressFor(path, size); fn != nil {
			opts = append(opts, scanner.WithProgress(fn))
		}
	}

	table := freq.New()
	sc := scanner.New(f, r.targetKey, table, opts...)

	start := time.Now()
	if err := sc.Run(ctx); err != nil {
		return nil, 0, 0, fmt.Errorf("error while reading %q: %w", path, err)
	}

	r.logger.Debug("input scanned",
		"path", path,
		"bytes", sc.Offset(),
		"models", sc.ValuesSeen(),
		"unique", table.Len(),
		"duration", time.Since(start),
	)

	return table, sc.ValuesSeen(), sc.Offset(), nil
}
