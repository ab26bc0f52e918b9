package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/etlkit/errors"
)

type span struct{ lo, hi int }

// partitions splits [0, n) into at most workers contiguous spans of
// near-equal size.
func partitions(n, workers int) []span {
	if n == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, n)
	size := (n + workers - 1) / workers
	parts := make([]span, 0, workers)
	for lo := 0; lo < n; lo += size {
		parts = append(parts, span{lo: lo, hi: min(lo+size, n)})
	}
	return parts
}

// runPartitions calls fn once per span on its own goroutine and waits for
// all of them. A panic in fn fails the whole call with WORKER_FAILED.
func runPartitions(ctx context.Context, stage string, parts []span, fn func(part int, s span)) error {
	if err := ctx.Err(); err != nil {
		return errors.Canceled(err)
	}
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range parts {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.WorkerFailed(stage, panicError(r))
				}
			}()
			if cerr := gctx.Err(); cerr != nil {
				return errors.Canceled(cerr)
			}
			fn(i, s)
			return nil
		})
	}
	return g.Wait()
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
