package pipeline

import (
	"context"
	"fmt"
	"testing"
)

// failingIter yields its values and then fails with err.
type failingIter struct {
	Iterator[int]
	err    error
	closed bool
}

func (it *failingIter) Next(ctx context.Context) (int, bool, error) {
	v, ok, err := it.Iterator.Next(ctx)
	if err != nil || ok {
		return v, ok, err
	}
	return 0, false, it.err
}

func (it *failingIter) Close() error {
	it.closed = true
	return it.err
}

func drainValues[T any](t *testing.T, it Iterator[T]) []T {
	t.Helper()
	var out []T
	for {
		v, ok, err := it.Next(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func TestMapFilter(t *testing.T) {
	doubled := Map(FromSlice(seq(6)), func(n int) int { return n * 2 })
	even := Filter(doubled, func(n int) bool { return n%4 == 0 })

	got := drainValues(t, even)
	if !intSliceEqual(got, []int{0, 4, 8}) {
		t.Errorf("got %v, want [0 4 8]", got)
	}
}

func TestConcat(t *testing.T) {
	it := Concat(FromSlice([]int{1, 2}), FromSlice([]int{}), FromSlice([]int{3}))
	got := drainValues(t, it)
	if !intSliceEqual(got, []int{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

func TestConcat_CloseClosesAll(t *testing.T) {
	first := &failingIter{Iterator: FromSlice([]int{}), err: fmt.Errorf("first")}
	second := &failingIter{Iterator: FromSlice([]int{}), err: fmt.Errorf("second")}

	err := Concat[int](first, second).Close()
	if err == nil || err.Error() != "first" {
		t.Errorf("expected the first close error, got %v", err)
	}
	if !first.closed || !second.closed {
		t.Error("expected every iterator to be closed")
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		size  int
		want  []int
	}{
		{"exact", seq(4), 2, []int{2, 2}},
		{"remainder", seq(5), 2, []int{2, 2, 1}},
		{"single", seq(3), 10, []int{3}},
		{"empty", nil, 3, nil},
		{"default size", seq(3), 0, []int{3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var sizes []int
			for _, chunk := range drainValues(t, Iterator[[]int](Chunk(FromSlice(tc.items), tc.size))) {
				sizes = append(sizes, len(chunk))
			}
			if !intSliceEqual(sizes, tc.want) {
				t.Errorf("chunk sizes = %v, want %v", sizes, tc.want)
			}
		})
	}
}

func TestChunk_PartialChunkBeforeError(t *testing.T) {
	boom := fmt.Errorf("read failed")
	src := Chunk[int](&failingIter{Iterator: FromSlice([]int{1, 2, 3}), err: boom}, 2)
	ctx := context.Background()

	for _, want := range [][]int{{1, 2}, {3}} {
		chunk, ok, err := src.Next(ctx)
		if err != nil || !ok || !intSliceEqual(chunk, want) {
			t.Fatalf("got %v ok=%v err=%v, want %v", chunk, ok, err, want)
		}
	}
	if _, ok, err := src.Next(ctx); ok || err != boom {
		t.Fatalf("expected the deferred error, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := src.Next(ctx); ok || err != nil {
		t.Errorf("expected exhaustion after the error, got ok=%v err=%v", ok, err)
	}
}

func TestMapChunks_SkipsEmptyChunks(t *testing.T) {
	odd := MapChunks(SliceChunks([]int{1, 2, 4, 6, 3}, 2), func(chunk []int) []int {
		var out []int
		for _, n := range chunk {
			if n%2 == 1 {
				out = append(out, n)
			}
		}
		return out
	})

	chunks := drainValues(t, Iterator[[]int](odd))
	if len(chunks) != 2 {
		t.Fatalf("expected 2 non-empty chunks, got %v", chunks)
	}
	if !intSliceEqual(chunks[0], []int{1}) || !intSliceEqual(chunks[1], []int{3}) {
		t.Errorf("got %v, want [[1] [3]]", chunks)
	}
}
