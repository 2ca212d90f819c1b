// Package trace records what the pipeline is doing: which units and passes
// ran, in what order, and for how long.
//
// Tracing is best effort. A tracer never returns errors to the code being
// traced, and a failing writer never changes a compilation outcome.
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only internal errors
//   - LevelPhase: driver and unit boundaries
//   - LevelDetail: every pass run on a unit
//   - LevelDebug: everything, including node-level events
//
// # Storage
//
//   - StreamTracer writes every event immediately (text or NDJSON)
//   - RingTracer keeps the last N events for post-mortem dumps
//   - MultiTracer fans out to several tracers
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.Start(ctx, trace.ScopeUnit, "unit:main")
//	defer span.End("")
package trace
