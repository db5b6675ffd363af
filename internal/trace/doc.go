// Package trace records spans and instant events of a nbmend run.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	nbmend fix hw1 hw1.ipynb --trace=- --trace-level=detail
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelPhase: Batch and stage boundaries
//   - LevelDetail: One span per notebook
//   - LevelDebug: Everything, including per-cell events
//
// # Scopes
//
//   - ScopeBatch: One command over one assignment
//   - ScopeStage: Template load, discovery, persistence, execution
//   - ScopeNotebook: Work on a single submission
//   - ScopeCell: Cell-level findings
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeNotebook, "notebook", parentID)
//	defer span.End("")
package trace
