// Package observability provides OpenTelemetry tracing and pipeline metrics.
//
// Without InitTracer or InitMeter the global no-op providers are used, so
// instrumented code runs unchanged when nothing is exported.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("etl"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("etl"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("etl"))
//	run := observability.NewRun("users", runID, metrics)
//	ctx, span := run.StartStage(ctx, "transform")
//	run.EndStage(ctx, span, "transform", n, err)
package observability
