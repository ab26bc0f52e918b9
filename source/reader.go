package source

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/kbukum/etlkit/errors"
	"github.com/kbukum/etlkit/logger"
	"github.com/kbukum/etlkit/pipeline"
	"github.com/kbukum/etlkit/record"
)

// Reader yields chunks of at most chunkSize records from one file.
//
// A record that fails to parse ends the current chunk early and is
// dropped without being reported in stats. The partial chunk is still
// returned, and reading resumes with the following record on the next
// call unless WithStopOnError is set and the chunk was empty. Any other
// read failure returns the records read so far, then SOURCE_READ. Reader
// never returns an empty chunk.
type Reader struct {
	cf          *csvFile
	chunkSize   int
	stopOnError bool
	done        bool
	err         error
	log         *logger.Logger
}

// Open opens path for chunked reading. chunkSize must be positive.
func Open(path string, chunkSize int, opts ...Option) (*Reader, error) {
	if chunkSize <= 0 {
		return nil, errors.InvalidConfig("chunk_size", "chunk size must be positive")
	}
	o := buildOptions(opts)
	cf, err := openCSV(path, o)
	if err != nil {
		return nil, err
	}
	return newReader(cf, chunkSize, o), nil
}

func newReader(cf *csvFile, chunkSize int, o options) *Reader {
	return &Reader{cf: cf, chunkSize: chunkSize, stopOnError: o.stopOnError, log: o.log}
}

// Next returns the next non-empty chunk, or ok=false at end of file.
func (r *Reader) Next(ctx context.Context) ([]record.Record, bool, error) {
	for !r.done {
		if err := ctx.Err(); err != nil {
			return nil, false, errors.Canceled(err)
		}
		if chunk := r.fill(); len(chunk) > 0 {
			return chunk, true, nil
		}
	}
	if err := r.err; err != nil {
		r.err = nil
		return nil, false, err
	}
	return nil, false, nil
}

func (r *Reader) fill() []record.Record {
	chunk := make([]record.Record, 0, r.chunkSize)
	for len(chunk) < r.chunkSize {
		rec, err := r.cf.read()
		if stderrors.Is(err, io.EOF) {
			r.done = true
			break
		}
		if err != nil && !recoverable(err) {
			r.done = true
			r.err = errors.SourceRead(r.cf.path, err)
			break
		}
		if err != nil {
			r.log.Debug("record dropped", logger.Fields(logger.FieldSource, r.cf.path, logger.FieldError, err.Error()))
			r.done = r.stopOnError && len(chunk) == 0
			break
		}
		chunk = append(chunk, rec)
	}
	return chunk
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	r.done = true
	return r.cf.Close()
}

// Stream opens path as a streaming pipeline with empty stats.
func Stream(path string, chunkSize int, opts ...Option) (pipeline.Stream[record.Record], error) {
	r, err := Open(path, chunkSize, opts...)
	if err != nil {
		return pipeline.Stream[record.Record]{}, err
	}
	return pipeline.NewStream[record.Record](r, pipeline.Stats{}), nil
}

// Header returns the column names read from the first row.
func (r *Reader) Header() []string {
	return r.cf.header
}
