// Package concurrency provides a small generic worker pool used to fan
// out independent, per-item work (tree walks, index entry checks, branch
// lookups) across a bounded number of goroutines.
package concurrency

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Option configures a WorkerPool.
type Option func(*options)

type options struct {
	workers int
}

// WithWorkerCount overrides the pool's concurrency limit. The default is
// runtime.GOMAXPROCS(0).
func WithWorkerCount(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WorkerPool runs a ProcessFn over a slice of items, limiting the number
// of items in flight at once. Results are returned in the same order as
// the input items.
type WorkerPool[T any, R any] struct {
	workers int
}

// ProcessFn transforms a single item into a result. Returning an error
// aborts the remaining work and causes Process to return that error.
type ProcessFn[T any, R any] func(ctx context.Context, item T) (R, error)

// NewWorkerPool creates a pool sized to GOMAXPROCS unless overridden with
// WithWorkerCount.
func NewWorkerPool[T any, R any](opts ...Option) *WorkerPool[T, R] {
	o := options{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	return &WorkerPool[T, R]{workers: o.workers}
}

// Process runs fn over items concurrently, bounded by the pool's worker
// count, and returns results in input order. If any invocation of fn
// returns an error, Process cancels the remaining work via ctx and
// returns the first error encountered.
func (p *WorkerPool[T, R]) Process(ctx context.Context, items []T, fn ProcessFn[T, R]) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	workers := p.workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)

	for i, item := range items {
		i, item := i, item
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
