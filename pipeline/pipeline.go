package pipeline

import "context"

// DefaultChunkSize is used when a non-positive chunk size is requested.
const DefaultChunkSize = 1000

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Chunks is a single-pass source of bounded, ordered chunks. Implementations
// never return an empty chunk with ok=true.
type Chunks[T any] interface {
	Iterator[[]T]
}

// SliceChunks splits items into consecutive chunks of at most size elements.
func SliceChunks[T any](items []T, size int) Chunks[T] {
	return Chunk(FromSlice(items), size)
}

// Drain pulls every chunk from src and passes it to sink, stopping at the
// first error. src is closed before returning.
func Drain[T any](ctx context.Context, src Chunks[T], sink func(context.Context, []T) error) error {
	defer src.Close()
	for {
		chunk, ok, err := src.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := sink(ctx, chunk); err != nil {
			return err
		}
	}
}

// Collect pulls every chunk from src and returns the concatenated elements.
func Collect[T any](ctx context.Context, src Chunks[T]) ([]T, error) {
	var result []T
	err := Drain(ctx, src, func(_ context.Context, chunk []T) error {
		result = append(result, chunk...)
		return nil
	})
	return result, err
}
