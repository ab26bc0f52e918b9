package recipe

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/etlkit/entity"
	"github.com/kbukum/etlkit/errors"
	"github.com/kbukum/etlkit/logger"
	"github.com/kbukum/etlkit/observability"
	"github.com/kbukum/etlkit/pipeline"
	"github.com/kbukum/etlkit/record"
	"github.com/kbukum/etlkit/sink"
	"github.com/kbukum/etlkit/source"
	"github.com/kbukum/etlkit/version"
)

type options struct {
	log     *logger.Logger
	metrics *observability.Metrics
	runID   string
}

// Option configures an execution.
type Option func(*options)

// WithLogger sets the logger. By default a logger is built from
// settings.logging.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records stage metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithRunID sets the run identifier instead of a generated one.
func WithRunID(id string) Option {
	return func(o *options) { o.runID = id }
}

// Result summarizes a run that wrote to its output.
type Result struct {
	RunID  string         `json:"run_id"`
	Stats  pipeline.Stats `json:"stats"`
	Loaded int            `json:"loaded"`
}

type execution struct {
	cfg  Config
	plan plan
	run  *observability.Run
	log  *logger.Logger
}

func newExecution(cfg Config, opts []Option) (*execution, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg.ApplyDefaults()
	if err := cfg.Settings.Validate(); err != nil {
		return nil, errors.InvalidConfig("settings", err.Error()).WithCause(err)
	}
	if len(cfg.Source.Paths) == 0 {
		return nil, errors.NoSources()
	}
	if err := source.CheckFormat(cfg.Source.Format); err != nil {
		return nil, err
	}

	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	if o.log == nil {
		o.log = logger.New(&cfg.Settings.Logging, "etl")
	}
	log := o.log.WithComponent("recipe").WithFields(logger.Fields(
		logger.FieldRunID, o.runID,
		logger.FieldRecipe, cfg.Name,
	))

	p, err := newPlan(cfg.Steps, cfg.Settings.UnknownSteps, log)
	if err != nil {
		return nil, err
	}
	return &execution{
		cfg:  cfg,
		plan: p,
		run:  observability.NewRun(cfg.Name, o.runID, o.metrics),
		log:  log,
	}, nil
}

// Execute extracts every source path, applies the first step as the record
// transform and the remaining steps in order, and returns the user batch.
// Batch stages fan out over settings.workers.
func Execute(ctx context.Context, cfg Config, opts ...Option) (pipeline.Batch[entity.User], error) {
	e, err := newExecution(cfg, opts)
	if err != nil {
		return pipeline.Batch[entity.User]{}, err
	}
	ctx, span := e.start(ctx)
	users, err := e.batch(ctx)
	e.run.End(ctx, span, err)
	return users, err
}

// Run executes the recipe and writes the result to its output in chunks of
// settings.chunk_size.
func Run(ctx context.Context, cfg Config, opts ...Option) (Result, error) {
	e, err := newExecution(cfg, opts)
	if err != nil {
		return Result{}, err
	}
	ctx, span := e.start(ctx)
	res, err := e.runBatch(ctx)
	e.run.End(ctx, span, err)
	return res, err
}

// RunStreaming executes the recipe over chunked sources, holding at most
// one chunk per stage in memory, and loads every chunk into the output.
// Records that fail to parse are dropped without being counted.
func RunStreaming(ctx context.Context, cfg Config, opts ...Option) (Result, error) {
	e, err := newExecution(cfg, opts)
	if err != nil {
		return Result{}, err
	}
	ctx, span := e.start(ctx)
	res, err := e.runStream(ctx)
	e.run.End(ctx, span, err)
	return res, err
}

func (e *execution) start(ctx context.Context) (context.Context, trace.Span) {
	e.log.Info("run started", logger.Fields(
		"version", version.Short(),
		"sources", len(e.cfg.Source.Paths),
		"steps", len(e.plan.stages)+1,
	))
	return e.run.Start(ctx)
}

func (e *execution) batch(ctx context.Context) (pipeline.Batch[entity.User], error) {
	var records pipeline.Batch[record.Record]
	err := e.stage(ctx, "extract", observability.StageKindExtract, func(ctx context.Context) (int, error) {
		var err error
		records, err = source.ExtractAll(ctx, e.cfg.Source.Paths, source.WithLogger(e.log))
		return records.Len(), err
	})
	if err != nil {
		return pipeline.Batch[entity.User]{}, err
	}
	if m := e.run.Metrics; m != nil {
		m.RecordExtracted(ctx, e.cfg.Name, records.Len(), len(records.Stats().Errors))
	}
	records = records.WithWorkers(e.cfg.Settings.Workers).WithLogger(e.log)

	var users pipeline.Batch[entity.User]
	err = e.stage(ctx, e.plan.first.String(), observability.StageKindTransform, func(ctx context.Context) (int, error) {
		var err error
		users, err = e.plan.first.ApplyToRecords(ctx, records)
		return users.Len(), err
	})
	if err != nil {
		return pipeline.Batch[entity.User]{}, err
	}

	for _, s := range e.plan.stages {
		err = e.stage(ctx, s.name, s.kind, func(ctx context.Context) (int, error) {
			var err error
			users, err = s.batch(ctx, users)
			return users.Len(), err
		})
		if err != nil {
			return pipeline.Batch[entity.User]{}, err
		}
	}

	users.Stats().LogSummary(e.log)
	return users, nil
}

func (e *execution) runBatch(ctx context.Context) (Result, error) {
	users, err := e.batch(ctx)
	if err != nil {
		return Result{}, err
	}
	loaded, err := e.load(ctx, users.Chunked(e.cfg.Settings.ChunkSize))
	if err != nil {
		return Result{}, err
	}
	return Result{RunID: e.run.RunID, Stats: users.Stats(), Loaded: loaded}, nil
}

func (e *execution) runStream(ctx context.Context) (Result, error) {
	opts := []source.Option{source.WithLogger(e.log)}
	if e.cfg.Settings.StopOnParseError {
		opts = append(opts, source.WithStopOnError())
	}
	records, err := source.StreamAll(e.cfg.Source.Paths, e.cfg.Settings.ChunkSize, opts...)
	if err != nil {
		return Result{}, err
	}
	records = records.WithLogger(e.log)

	// The stream is pulled by a single goroutine, so plain counters suffice.
	var extracted, transformed int
	records = pipeline.TransformStream(records, func(r record.Record) record.Record {
		extracted++
		return r
	})
	users, err := e.plan.first.ApplyToRecordStream(records)
	if err != nil {
		records.Close()
		return Result{}, err
	}
	users = pipeline.TransformStream(users, func(u entity.User) entity.User {
		transformed++
		return u
	})

	var rejected pipeline.ErrorLog
	for _, s := range e.plan.stages {
		users, err = s.stream(users, &rejected)
		if err != nil {
			users.Close()
			return Result{}, err
		}
	}

	loaded, err := e.load(ctx, users)
	stats := pipeline.Stats{
		TotalExtracted:   extracted,
		TotalTransformed: transformed,
		TotalFiltered:    loaded,
	}.WithErrors(rejected.Errors()...)
	if m := e.run.Metrics; m != nil {
		m.RecordExtracted(ctx, e.cfg.Name, extracted, 0)
	}
	if err != nil {
		return Result{RunID: e.run.RunID, Stats: stats, Loaded: loaded}, err
	}
	stats.LogSummary(e.log)
	return Result{RunID: e.run.RunID, Stats: stats, Loaded: loaded}, nil
}

// load opens the output sink and drains users into it. The sink is closed
// whether or not loading succeeds.
func (e *execution) load(ctx context.Context, users pipeline.Stream[entity.User]) (int, error) {
	var loaded int
	err := e.stage(ctx, "load", observability.StageKindLoad, func(ctx context.Context) (int, error) {
		out, err := sink.Open(ctx, e.cfg.Output.Format, e.cfg.Output.Path, sink.WithLogger(e.log))
		if err != nil {
			users.Close()
			return 0, err
		}
		_, loadErr := users.Load(ctx, func(ctx context.Context, chunk []entity.User) error {
			if err := out.Write(ctx, chunk); err != nil {
				return err
			}
			loaded += len(chunk)
			return nil
		})
		if closeErr := out.Close(); loadErr == nil && closeErr != nil {
			loadErr = errors.New(errors.ErrCodeSinkWrite, "cannot close output").WithCause(closeErr)
		}
		return loaded, loadErr
	})
	if err == nil {
		e.log.Info("output written", logger.Fields(
			logger.FieldSink, e.cfg.Output.Path,
			logger.FieldCount, loaded,
		))
	}
	return loaded, err
}

// stage runs fn inside a stage span and records its metrics and timing.
func (e *execution) stage(ctx context.Context, name, kind string, fn func(context.Context) (int, error)) error {
	start := time.Now()
	stageCtx, span := e.run.StartStage(ctx, name)
	count, err := fn(stageCtx)
	e.run.EndStage(stageCtx, span, name, kind, count, start, err)
	if err != nil {
		e.log.Error("stage failed", logger.MergeWithError(logger.Fields(logger.FieldStage, name), err))
		return err
	}
	e.log.Debug("stage done", logger.StageFields(name, count, time.Since(start)))
	return nil
}
