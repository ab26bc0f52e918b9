package pipeline

import "context"

// FromSlice yields the elements of items in order.
func FromSlice[T any](items []T) Iterator[T] {
	return &sliceIter[T]{items: items}
}

// Map applies fn to each value of src.
func Map[I, O any](src Iterator[I], fn func(I) O) Iterator[O] {
	return &mapIter[I, O]{source: src, fn: fn}
}

// Filter keeps only the values of src for which fn returns true.
func Filter[T any](src Iterator[T], fn func(T) bool) Iterator[T] {
	return &filterIter[T]{source: src, fn: fn}
}

// Concat yields every value of each iterator in order, moving to the next
// iterator once the current one is exhausted. Close closes all of them.
func Concat[T any](iters ...Iterator[T]) Iterator[T] {
	return &concatIter[T]{iters: iters}
}

// Chunk groups consecutive values of src into chunks of at most size
// values. When src fails, the values read so far are returned as a partial
// chunk and the error surfaces on the next call.
func Chunk[T any](src Iterator[T], size int) Chunks[T] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &chunkIter[T]{source: src, size: size}
}

// MapChunks applies fn to each chunk of src. Chunks that fn leaves empty
// are skipped, so the result never yields an empty chunk.
func MapChunks[I, O any](src Chunks[I], fn func([]I) []O) Chunks[O] {
	return Filter[[]O](Map[[]I, []O](src, fn), func(chunk []O) bool {
		return len(chunk) > 0
	})
}

// --- Internal iterators ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	v := it.items[it.index]
	it.index++
	return v, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type mapIter[I, O any] struct {
	source Iterator[I]
	fn     func(I) O
}

func (it *mapIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		var zero O
		return zero, false, err
	}
	return it.fn(val), true, nil
}

func (it *mapIter[I, O]) Close() error { return it.source.Close() }

type filterIter[T any] struct {
	source Iterator[T]
	fn     func(T) bool
}

func (it *filterIter[T]) Next(ctx context.Context) (T, bool, error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			var zero T
			return zero, false, err
		}
		if it.fn(val) {
			return val, true, nil
		}
	}
}

func (it *filterIter[T]) Close() error { return it.source.Close() }

type concatIter[T any] struct {
	iters []Iterator[T]
	index int
}

func (it *concatIter[T]) Next(ctx context.Context) (T, bool, error) {
	for it.index < len(it.iters) {
		val, ok, err := it.iters[it.index].Next(ctx)
		if err != nil {
			var zero T
			return zero, false, err
		}
		if ok {
			return val, true, nil
		}
		it.index++
	}
	var zero T
	return zero, false, nil
}

func (it *concatIter[T]) Close() error {
	var firstErr error
	for _, iter := range it.iters {
		if err := iter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type chunkIter[T any] struct {
	source Iterator[T]
	size   int
	err    error // deferred until the partial chunk has been returned
	done   bool
}

func (it *chunkIter[T]) Next(ctx context.Context) ([]T, bool, error) {
	if it.err != nil {
		err := it.err
		it.err = nil
		it.done = true
		return nil, false, err
	}
	if it.done {
		return nil, false, nil
	}

	chunk := make([]T, 0, it.size)
	for len(chunk) < it.size {
		val, ok, err := it.source.Next(ctx)
		if err != nil {
			if len(chunk) > 0 {
				it.err = err
				return chunk, true, nil
			}
			it.done = true
			return nil, false, err
		}
		if !ok {
			it.done = true
			break
		}
		chunk = append(chunk, val)
	}
	if len(chunk) == 0 {
		return nil, false, nil
	}
	return chunk, true, nil
}

func (it *chunkIter[T]) Close() error { return it.source.Close() }
