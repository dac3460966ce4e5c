package fanout

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrency is used when a non-positive worker count is given.
const DefaultMaxConcurrency = 10

// Map applies fn to every item using at most workers goroutines and returns
// the results in the order of items.
func Map[T, R any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, i int, item T) R) []R {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}

	// Single item optimization
	if len(items) == 1 {
		results[0] = fn(ctx, 0, items[0])
		return results
	}

	if workers <= 0 {
		workers = DefaultMaxConcurrency
	}

	// No WithContext: a slow or failing item never cancels its siblings.
	var g errgroup.Group
	g.SetLimit(workers)
	for i, item := range items {
		// Each index is owned by exactly one goroutine, so writes need no locking.
		g.Go(func() error {
			results[i] = fn(ctx, i, item)
			return nil
		})
	}
	_ = g.Wait()

	log.Trace().
		Int("items", len(items)).
		Int("workers", workers).
		Msg("Fan-out completed")

	return results
}
