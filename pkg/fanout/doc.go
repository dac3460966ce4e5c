// Package fanout provides a bounded worker pool that maps a function over a
// slice and reassembles the results in input order.
//
// The pool is an errgroup.Group with SetLimit. The gateway uses it for name
// resolution during enrichment (default 10 workers) and for correlation
// fan-out (default 20 workers). Each goroutine writes its result into the
// slot matching its input index, so completion order never affects the
// output order.
//
// Example usage:
//
//	names := fanout.Map(ctx, urls, 10, func(ctx context.Context, i int, u string) string {
//		return resolver.Resolve(ctx, u)
//	})
//
// Map does not stop on ctx cancellation: every item is processed. Callers
// bound individual calls with their own timeouts.
package fanout
