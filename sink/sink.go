// Package sink writes pipeline output. A Sink receives chunks in order and
// must be closed once the last chunk is written.
package sink

import (
	"context"

	"github.com/kbukum/etlkit/database"
	"github.com/kbukum/etlkit/entity"
	"github.com/kbukum/etlkit/errors"
	"github.com/kbukum/etlkit/logger"
	"github.com/kbukum/etlkit/source"
)

// Sink consumes chunks of T.
type Sink[T any] interface {
	Write(ctx context.Context, chunk []T) error
	Close() error
}

// Supported output formats.
const (
	FormatCSV    = source.FormatCSV
	FormatJSON   = source.FormatJSON
	FormatSQLite = source.FormatSQLite
)

type options struct {
	delimiter rune
	log       *logger.Logger
	db        database.Config
}

// Option configures a sink.
type Option func(*options)

// WithDelimiter sets the CSV field delimiter.
func WithDelimiter(r rune) Option {
	return func(o *options) { o.delimiter = r }
}

// WithLogger sets the sink logger. Without it each sink logs through
// logger.Get with its component name, such as "sink.csv".
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithDatabaseConfig sets SQLite connection settings. Path is always
// replaced by the sink path.
func WithDatabaseConfig(cfg database.Config) Option {
	return func(o *options) { o.db = cfg }
}

func buildOptions(opts []Option) options {
	o := options{delimiter: source.DefaultDelimiter}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// componentLog returns the configured logger tagged with component, or
// the logger routed to component when none was configured.
func (o options) componentLog(component string) *logger.Logger {
	if o.log == nil {
		return logger.Get(component)
	}
	return o.log.WithComponent(component)
}

// Open creates a user sink for format at path.
func Open(ctx context.Context, format, path string, opts ...Option) (Sink[entity.User], error) {
	var (
		s   Sink[entity.User]
		err error
	)
	switch format {
	case FormatCSV:
		s, err = CreateCSV(path, entity.Header(), userRow, opts...)
	case FormatJSON:
		s, err = CreateJSON[entity.User](path, opts...)
	case FormatSQLite:
		s, err = OpenSQLite(ctx, path, opts...)
	default:
		return nil, errors.UnsupportedFormat("output", format)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func userRow(u entity.User) []string { return u.Record() }

// Func adapts a sink to the callback accepted by pipeline.Stream.Load.
func Func[T any](s Sink[T]) func(context.Context, []T) error {
	return s.Write
}
