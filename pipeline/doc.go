// Package pipeline provides the batch and streaming execution modes of the
// ETL engine.
//
// A Batch owns a fully materialized, ordered slice plus running Stats.
// Transform, Filter and Aggregate fan out across a worker pool and fan back
// in with the original order restored. Every stage returns a new Batch; the
// receiver is never modified.
//
// A Stream owns a pull-based Chunks source plus Stats. Stages wrap the
// source with MapChunks and run lazily, one chunk at a time, when Load
// pulls. Memory is bounded by the chunk size.
//
// The pull operators FromSlice, Map, Filter, Concat and Chunk compose any
// Iterator; a Chunks source is an Iterator of slices.
//
// # Usage
//
//	b := pipeline.NewBatch(records, stats).WithWorkers(8)
//	users, err := pipeline.Transform(ctx, b, entity.FromRecord)
//	valid, err := users.Filter(ctx, entity.User.IsValid)
//	counts, err := pipeline.Aggregate(ctx, valid, func(u entity.User) string { return u.LastName })
//
// Streaming:
//
//	s := pipeline.NewStream(reader, pipeline.Stats{})
//	stats, err := pipeline.TransformStream(s, entity.FromRecord).
//	    Filter(entity.User.IsValid).
//	    Load(ctx, sink.Write)
package pipeline
