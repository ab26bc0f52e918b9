package sink

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kbukum/etlkit/logger"
)

// fileSink owns a buffered output file.
type fileSink struct {
	path   string
	file   *os.File
	buf    *bufio.Writer
	log    *logger.Logger
	closed bool
}

func createFile(path string, log *logger.Logger) (*fileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &fileSink{path: path, file: f, buf: bufio.NewWriter(f), log: log}, nil
}

func (s *fileSink) check() error {
	if s.closed {
		return fmt.Errorf("write to closed sink %s", s.path)
	}
	return nil
}

// close flushes and closes the file once.
func (s *fileSink) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	flushErr := s.buf.Flush()
	closeErr := s.file.Close()
	if flushErr != nil {
		return fmt.Errorf("flush %s: %w", s.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", s.path, closeErr)
	}
	s.log.Debug("sink closed", logger.Fields(logger.FieldSink, s.path))
	return nil
}

// CSV writes a header row followed by one row per element.
type CSV[T any] struct {
	*fileSink
	w   *csv.Writer
	row func(T) []string
}

// CreateCSV creates path and writes header to it.
func CreateCSV[T any](path string, header []string, row func(T) []string, opts ...Option) (*CSV[T], error) {
	o := buildOptions(opts)
	fs, err := createFile(path, o.componentLog("sink.csv"))
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(fs.buf)
	w.Comma = o.delimiter
	if err := w.Write(header); err != nil {
		fs.close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &CSV[T]{fileSink: fs, w: w, row: row}, nil
}

// Write appends one row per element. A canceled ctx writes nothing.
func (s *CSV[T]) Write(ctx context.Context, chunk []T) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, v := range chunk {
		if err := s.w.Write(s.row(v)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	s.w.Flush()
	return s.w.Error()
}

// Close flushes and closes the file.
func (s *CSV[T]) Close() error {
	if !s.closed {
		s.w.Flush()
	}
	return s.close()
}

// JSON writes every element into a single JSON array.
type JSON[T any] struct {
	*fileSink
	count int
}

// CreateJSON creates path. The array is completed by Close.
func CreateJSON[T any](path string, opts ...Option) (*JSON[T], error) {
	o := buildOptions(opts)
	fs, err := createFile(path, o.componentLog("sink.json"))
	if err != nil {
		return nil, err
	}
	return &JSON[T]{fileSink: fs}, nil
}

// Write appends the chunk elements to the array. A canceled ctx writes
// nothing.
func (s *JSON[T]) Write(ctx context.Context, chunk []T) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, v := range chunk {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode element %d: %w", s.count, err)
		}
		sep := byte(',')
		if s.count == 0 {
			sep = '['
		}
		if err := s.buf.WriteByte(sep); err != nil {
			return err
		}
		if _, err := s.buf.Write(b); err != nil {
			return err
		}
		s.count++
	}
	return nil
}

// Close terminates the array, flushes and closes the file. A sink that
// received no elements produces an empty array.
func (s *JSON[T]) Close() error {
	if s.closed {
		return nil
	}
	end := "]\n"
	if s.count == 0 {
		end = "[]\n"
	}
	if _, err := s.buf.WriteString(end); err != nil {
		s.close()
		return err
	}
	return s.close()
}
