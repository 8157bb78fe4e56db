// Package errors provides structured error types for the handle-table library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: the handle involved, the offending value, and
// a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAssign, errors.KindCorruption).
//		Handle(h).
//		Value(index).
//		Detail("free list link out of bounds").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.StaleHandle(errors.PhaseFree, h, "generation mismatch")
//	err := errors.Exhausted(errors.PhaseGrow, need, limit)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two errors match under errors.Is when their Phase and Kind agree, so callers
// can test for a category without reproducing the full diagnostic detail.
package errors
