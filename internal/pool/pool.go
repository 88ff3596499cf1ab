// Package pool is the thread-pool façade described in spec §6: a
// parallel-for over an integer range with a configurable worker count. The
// concrete implementation is golang.org/x/sync's errgroup, chosen because it
// matches §5/§7's contract exactly: a failing task cancels its siblings' next
// checkpoint and the first real error is re-raised on the caller's goroutine
// once the phase's Wait returns, with no partial-result mode.
package pool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of work at index i within a ParallelFor call.
type Task func(ctx context.Context, i int) error

// ParallelFor runs fn(i) for i in [0, n) across workers goroutines. A pair
// (i,j) or zone index is assigned to exactly one worker at a time; no two
// workers ever run the same i concurrently. The first error returned by any
// task cancels ctx for the remaining tasks and is returned once every
// in-flight task has stopped; partial results are the caller's to discard.
func ParallelFor(ctx context.Context, n, workers int, fn Task) error {
	if n <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	g, gctx := errgroup.WithContext(ctx)
	indices := make(chan int)

	g.Go(func() error {
		defer close(indices)
		for i := 0; i < n; i++ {
			select {
			case indices <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range indices {
				if err := fn(gctx, i); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}
