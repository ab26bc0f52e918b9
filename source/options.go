// Package source reads delimited text files into records, either fully
// (Extract) or as a lazy sequence of bounded chunks (Open, Stream).
package source

import (
	"github.com/kbukum/etlkit/errors"
	"github.com/kbukum/etlkit/logger"
)

// DefaultDelimiter separates fields unless WithDelimiter is given.
const DefaultDelimiter = ';'

// Supported source formats.
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// CheckFormat returns UNSUPPORTED_FORMAT for every format this package
// cannot read. Only csv can be read.
func CheckFormat(format string) error {
	if format != FormatCSV {
		return errors.UnsupportedFormat("source", format)
	}
	return nil
}

type options struct {
	delimiter   rune
	stopOnError bool
	log         *logger.Logger
}

// Option configures a source.
type Option func(*options)

// WithDelimiter sets the field delimiter.
func WithDelimiter(r rune) Option {
	return func(o *options) { o.delimiter = r }
}

// WithStopOnError makes a Reader end its file when the first record of a
// chunk fails to parse. A failure later in a chunk still only ends that
// chunk. Extract is not affected.
func WithStopOnError() Option {
	return func(o *options) { o.stopOnError = true }
}

// WithLogger sets the logger used for dropped and malformed records.
// Without it the source logs through logger.Get("source").
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{delimiter: DefaultDelimiter}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("source")
	}
	return o
}
