package pipeline

import (
	"context"

	"github.com/kbukum/etlkit/errors"
	"github.com/kbukum/etlkit/logger"
)

// errRejected marks an element dropped by a plain predicate.
var errRejected = errors.Validation("rejected")

// Stream is a lazy pipeline over a single-pass chunk source. Stages are
// applied chunk by chunk, sequentially, when Load pulls.
type Stream[T any] struct {
	chunks Chunks[T]
	stats  Stats
	log    *logger.Logger
}

// NewStream wraps a chunk source.
func NewStream[T any](chunks Chunks[T], stats Stats) Stream[T] {
	return Stream[T]{chunks: chunks, stats: stats}
}

// Stats returns the statistics carried by the stream.
func (s Stream[T]) Stats() Stats { return s.stats }

// WithLogger returns a copy that logs every loaded chunk at debug level.
func (s Stream[T]) WithLogger(log *logger.Logger) Stream[T] {
	s.log = log
	return s
}

// TransformStream applies fn to every element of every chunk.
func TransformStream[T, U any](s Stream[T], fn func(T) U) Stream[U] {
	return Stream[U]{
		chunks: MapChunks(s.chunks, func(chunk []T) []U {
			out := make([]U, len(chunk))
			for i, v := range chunk {
				out[i] = fn(v)
			}
			return out
		}),
		stats: s.stats,
		log:   s.log,
	}
}

// TransformIf applies fn to the elements for which cond holds.
func (s Stream[T]) TransformIf(cond func(T) bool, fn func(T) T) Stream[T] {
	return TransformStream(s, func(v T) T {
		if cond(v) {
			return fn(v)
		}
		return v
	})
}

// Filter keeps the elements of each chunk for which pred holds. Chunks left
// empty are skipped.
func (s Stream[T]) Filter(pred func(T) bool) Stream[T] {
	return s.filter(func(v T) error {
		if pred(v) {
			return nil
		}
		return errRejected
	}, nil)
}

// FilterValidate keeps the elements for which check returns nil and appends
// each rejection to errs when errs is not nil.
func (s Stream[T]) FilterValidate(check func(T) error, errs *ErrorLog) Stream[T] {
	return s.filter(check, errs)
}

func (s Stream[T]) filter(check func(T) error, errs *ErrorLog) Stream[T] {
	return Stream[T]{
		chunks: MapChunks(s.chunks, func(chunk []T) []T {
			out := make([]T, 0, len(chunk))
			for _, v := range chunk {
				if err := check(v); err == nil {
					out = append(out, v)
				} else if errs != nil {
					errs.Append(err.Error())
				}
			}
			return out
		}),
		stats: s.stats,
		log:   s.log,
	}
}

// Load pulls chunks in order and hands each to sink. The first sink error
// stops the load; chunks already written stay written. TotalFiltered grows
// by the size of every chunk the sink accepted. The source is closed before
// Load returns.
func (s Stream[T]) Load(ctx context.Context, sink func(context.Context, []T) error) (Stats, error) {
	defer s.chunks.Close()
	stats := s.stats.clone()
	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return stats, errors.Canceled(err)
		}
		chunk, ok, err := s.chunks.Next(ctx)
		if err != nil {
			return stats, err
		}
		if !ok {
			return stats, nil
		}
		if err := sink(ctx, chunk); err != nil {
			return stats, errors.SinkWrite(index, err)
		}
		stats.TotalFiltered += len(chunk)
		if s.log != nil {
			s.log.Debug("chunk loaded", logger.Fields(logger.FieldChunk, index, logger.FieldCount, len(chunk)))
		}
	}
}

// Collect drains the stream into a batch with the same stats.
func (s Stream[T]) Collect(ctx context.Context) (Batch[T], error) {
	data, err := Collect(ctx, s.chunks)
	if err != nil {
		return Batch[T]{}, err
	}
	return Batch[T]{data: data, stats: s.stats, log: s.log}, nil
}

// Close releases the underlying source without reading it.
func (s Stream[T]) Close() error {
	return s.chunks.Close()
}
