// Package trace is the logging subsystem of the minic pipeline.
//
// There is no package-level logger. A Tracer travels in the context and every
// stage pulls it out with FromContext:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "hir.generate", parentID)
//	defer span.End("")
//
// Point events record single facts (a propagated constant, a fused pair, a
// skipped instruction) at the finer scopes:
//
//	trace.Point(t, trace.ScopeInstr, "opt.propagate", "x = 10")
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: only errors
//   - LevelPhase: driver and per-unit boundaries
//   - LevelDetail: pass boundaries
//   - LevelDebug: everything, including per-instruction events
package trace
