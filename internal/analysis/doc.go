// Package analysis is the pipeline core: it resolves analysis-type
// dependency graphs, assembles prompts, and drives the versioned
// draft/judge/improve loop.
//
// A Registry loads analysis-type definitions from JSON files. The Resolver
// auto-runs missing required prerequisites in declaration order, threading
// an insert-only Cache through the recursion so siblings see newly produced
// results. Types with a configured judge pairing route through the
// Orchestrator, which persists immutable per-round snapshots and keeps the
// un-versioned alias pointing at the latest draft. The Runner picks the
// right strategy per type.
//
// Failure semantics are deliberately asymmetric: a failed prerequisite
// aborts the whole chain as a hard error, while a failed top-level analysis
// degrades to an error-bearing result so batch callers can count it and
// move on.
package analysis
