package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/etlkit/errors"
)

// Run holds the observability context of one recipe execution.
type Run struct {
	Recipe    string
	RunID     string
	StartTime time.Time
	Metrics   *Metrics
}

// NewRun creates a run context. If metrics is nil, metric recording is
// skipped.
func NewRun(recipe, runID string, metrics *Metrics) *Run {
	return &Run{
		Recipe:    recipe,
		RunID:     runID,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

type runContextKey struct{}

// WithRun stores a Run in the context.
func WithRun(ctx context.Context, r *Run) context.Context {
	return context.WithValue(ctx, runContextKey{}, r)
}

// RunFromContext retrieves the Run from context, or nil.
func RunFromContext(ctx context.Context) *Run {
	if r, ok := ctx.Value(runContextKey{}).(*Run); ok {
		return r
	}
	return nil
}

// Start opens the root span of the run.
func (r *Run) Start(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanRecipeRun)
	span.SetAttributes(
		attribute.String(AttrRecipe, r.Recipe),
		attribute.String(AttrRunID, r.RunID),
	)
	return WithRun(ctx, r), span
}

// StartStage opens a child span for one stage.
func (r *Run) StartStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanStage)
	span.SetAttributes(
		attribute.String(AttrStage, stage),
		attribute.String(AttrRunID, r.RunID),
	)
	return ctx, span
}

// EndStage ends a stage span and records its metrics. kind is one of the
// StageKind constants.
func (r *Run) EndStage(ctx context.Context, span trace.Span, stage, kind string, count int, start time.Time, err error) {
	duration := time.Since(start)
	span.SetAttributes(
		attribute.Int(AttrCount, count),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	if err != nil {
		r.fail(ctx, span, stage, err)
	}
	span.End()

	if r.Metrics != nil && err == nil {
		r.Metrics.RecordStage(ctx, r.Recipe, stage, kind, count, duration)
	}
}

// End ends the root span, recording err on it when not nil.
func (r *Run) End(ctx context.Context, span trace.Span, err error) {
	if err != nil {
		r.fail(ctx, span, "run", err)
	}
	span.SetAttributes(attribute.Int64(AttrDurationMs, r.Duration().Milliseconds()))
	span.End()
}

func (r *Run) fail(ctx context.Context, span trace.Span, stage string, err error) {
	code := string(errors.CodeOf(err))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(
		attribute.String(AttrErrorCode, code),
		attribute.String(AttrErrorMessage, err.Error()),
	)
	if r.Metrics != nil {
		r.Metrics.RecordError(ctx, code, stage)
	}
}

// Duration returns the elapsed time since the run started.
func (r *Run) Duration() time.Duration {
	return time.Since(r.StartTime)
}
