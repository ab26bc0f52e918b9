package pipeline

import (
	"context"
	"time"

	"github.com/kbukum/etlkit/logger"
)

// Batch is a materialized, ordered pipeline over elements of type T.
// The zero value is an empty batch that uses GOMAXPROCS workers.
type Batch[T any] struct {
	data    []T
	stats   Stats
	workers int
	log     *logger.Logger
}

// NewBatch creates a batch owning data. The caller must not modify data
// afterwards.
func NewBatch[T any](data []T, stats Stats) Batch[T] {
	return Batch[T]{data: data, stats: stats}
}

// Data returns the elements in order. The slice must not be modified.
func (b Batch[T]) Data() []T { return b.data }

// Stats returns the statistics accumulated so far.
func (b Batch[T]) Stats() Stats { return b.stats }

// Len returns the number of elements.
func (b Batch[T]) Len() int { return len(b.data) }

// WithWorkers returns a copy that fans out over n workers. n <= 0 selects
// GOMAXPROCS.
func (b Batch[T]) WithWorkers(n int) Batch[T] {
	b.workers = n
	return b
}

// WithLogger returns a copy that logs stage timings to log at debug level.
func (b Batch[T]) WithLogger(log *logger.Logger) Batch[T] {
	b.log = log
	return b
}

// Transform applies fn to every element in parallel. The result has the
// same length and order as b and TotalTransformed is set to its length.
func Transform[T, U any](ctx context.Context, b Batch[T], fn func(T) U) (Batch[U], error) {
	start := time.Now()
	out := make([]U, len(b.data))
	err := runPartitions(ctx, "transform", partitions(len(b.data), b.workers), func(_ int, s span) {
		for i := s.lo; i < s.hi; i++ {
			out[i] = fn(b.data[i])
		}
	})
	if err != nil {
		return Batch[U]{}, err
	}

	stats := b.stats.clone()
	stats.TotalTransformed = len(out)
	b.logStage("transform", len(out), start)
	return Batch[U]{data: out, stats: stats, workers: b.workers, log: b.log}, nil
}

// TransformIf applies fn to the elements for which cond holds and keeps the
// others unchanged. Length, order and stats behave as in Transform.
func (b Batch[T]) TransformIf(ctx context.Context, cond func(T) bool, fn func(T) T) (Batch[T], error) {
	return Transform(ctx, b, func(v T) T {
		if cond(v) {
			return fn(v)
		}
		return v
	})
}

// Filter keeps the elements for which pred holds, preserving their relative
// order. TotalFiltered is set to the kept count.
func (b Batch[T]) Filter(ctx context.Context, pred func(T) bool) (Batch[T], error) {
	return b.filter(ctx, "filter", func(v T) error {
		if pred(v) {
			return nil
		}
		return errRejected
	}, false)
}

// FilterValidate keeps the elements for which check returns nil. Each
// rejection is appended to the stats error list in element order.
func (b Batch[T]) FilterValidate(ctx context.Context, check func(T) error) (Batch[T], error) {
	return b.filter(ctx, "filter_validate", check, true)
}

func (b Batch[T]) filter(ctx context.Context, stage string, check func(T) error, record bool) (Batch[T], error) {
	start := time.Now()
	parts := partitions(len(b.data), b.workers)
	kept := make([][]T, len(parts))
	rejected := make([][]string, len(parts))
	err := runPartitions(ctx, stage, parts, func(p int, s span) {
		for i := s.lo; i < s.hi; i++ {
			err := check(b.data[i])
			if err == nil {
				kept[p] = append(kept[p], b.data[i])
			} else if record {
				rejected[p] = append(rejected[p], err.Error())
			}
		}
	})
	if err != nil {
		return Batch[T]{}, err
	}

	var n int
	for _, k := range kept {
		n += len(k)
	}
	out := make([]T, 0, n)
	for _, k := range kept {
		out = append(out, k...)
	}

	stats := b.stats.clone()
	for _, r := range rejected {
		stats.Errors = append(stats.Errors, r...)
	}
	stats.TotalFiltered = len(out)
	b.logStage(stage, len(out), start)
	return Batch[T]{data: out, stats: stats, workers: b.workers, log: b.log}, nil
}

// Aggregate counts elements per key. Each worker counts its own span and
// the partial maps are summed, so the result does not depend on the
// number of workers.
func Aggregate[T any, K comparable](ctx context.Context, b Batch[T], key func(T) K) (map[K]int, error) {
	start := time.Now()
	parts := partitions(len(b.data), b.workers)
	partial := make([]map[K]int, len(parts))
	err := runPartitions(ctx, "aggregate", parts, func(p int, s span) {
		m := make(map[K]int)
		for i := s.lo; i < s.hi; i++ {
			m[key(b.data[i])]++
		}
		partial[p] = m
	})
	if err != nil {
		return nil, err
	}

	counts := make(map[K]int)
	for _, m := range partial {
		for k, v := range m {
			counts[k] += v
		}
	}
	b.logStage("aggregate", len(counts), start)
	return counts, nil
}

// Merge concatenates b and other, b first, and sums their stats.
func (b Batch[T]) Merge(other Batch[T]) Batch[T] {
	data := make([]T, 0, len(b.data)+len(other.data))
	data = append(data, b.data...)
	data = append(data, other.data...)
	return Batch[T]{data: data, stats: b.stats.Add(other.stats), workers: b.workers, log: b.log}
}

// Chunked turns the batch into a stream of chunks of at most size elements
// carrying the batch stats.
func (b Batch[T]) Chunked(size int) Stream[T] {
	return Stream[T]{chunks: SliceChunks(b.data, size), stats: b.stats, log: b.log}
}

func (b Batch[T]) logStage(stage string, count int, start time.Time) {
	if b.log == nil {
		return
	}
	b.log.Debug("batch stage done", logger.StageFields(stage, count, time.Since(start)))
}
