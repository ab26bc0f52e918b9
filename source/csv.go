package source

import (
	"encoding/csv"
	stderrors "errors"
	"io"
	"os"

	"github.com/kbukum/etlkit/errors"
	"github.com/kbukum/etlkit/record"
)

// csvFile is an open delimited source positioned after its header row.
type csvFile struct {
	path   string
	closer io.Closer
	reader *csv.Reader
	header []string
	closed bool
}

func openCSV(path string, o options) (*csvFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.SourceOpen(path, err)
	}
	return newCSVFile(path, f, f, o)
}

// newCSVFile reads the header row from r. c is closed with the csvFile, or
// immediately when the header cannot be read.
func newCSVFile(path string, r io.Reader, c io.Closer, o options) (*csvFile, error) {
	cr := csv.NewReader(r)
	cr.Comma = o.delimiter
	cr.FieldsPerRecord = 0

	cf := &csvFile{path: path, closer: c, reader: cr}
	header, err := cr.Read()
	switch {
	case err == nil:
		cf.header = header
	case stderrors.Is(err, io.EOF):
	default:
		c.Close()
		return nil, errors.SourceOpen(path, err)
	}
	return cf, nil
}

// read returns the next record, or io.EOF at end of file.
func (cf *csvFile) read() (record.Record, error) {
	fields, err := cf.reader.Read()
	if err != nil {
		return nil, err
	}
	return record.Record(fields), nil
}

// recoverable reports whether reading may continue after err. Only
// per-record parse errors are recoverable.
func recoverable(err error) bool {
	var perr *csv.ParseError
	return stderrors.As(err, &perr)
}

func (cf *csvFile) Close() error {
	if cf.closed {
		return nil
	}
	cf.closed = true
	return cf.closer.Close()
}
