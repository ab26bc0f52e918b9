package source

import (
	"github.com/kbukum/etlkit/errors"
	"github.com/kbukum/etlkit/pipeline"
	"github.com/kbukum/etlkit/record"
)

// MultiReader concatenates the chunks of several Readers in order. A
// reader with no records contributes no chunk, and a failing reader ends
// the sequence with its error. Close closes every reader.
type MultiReader struct {
	pipeline.Iterator[[]record.Record]
}

// OpenAll opens every path before any reading starts. If one path fails,
// the readers already opened are closed and the error is returned.
func OpenAll(paths []string, chunkSize int, opts ...Option) (*MultiReader, error) {
	if len(paths) == 0 {
		return nil, errors.NoSources()
	}
	readers := make([]*Reader, 0, len(paths))
	for _, path := range paths {
		r, err := Open(path, chunkSize, opts...)
		if err != nil {
			for _, opened := range readers {
				opened.Close()
			}
			return nil, err
		}
		readers = append(readers, r)
	}
	return newMultiReader(readers), nil
}

func newMultiReader(readers []*Reader) *MultiReader {
	iters := make([]pipeline.Iterator[[]record.Record], len(readers))
	for i, r := range readers {
		iters[i] = r
	}
	return &MultiReader{Iterator: pipeline.Concat(iters...)}
}

// StreamAll opens every path as one streaming pipeline with empty stats.
func StreamAll(paths []string, chunkSize int, opts ...Option) (pipeline.Stream[record.Record], error) {
	m, err := OpenAll(paths, chunkSize, opts...)
	if err != nil {
		return pipeline.Stream[record.Record]{}, err
	}
	return pipeline.NewStream[record.Record](m, pipeline.Stats{}), nil
}
