// Package diag defines the error taxonomy shared by all pipeline stages.
//
// Every stage is fail-fast: the first error aborts the compilation unit and is
// returned to the caller unchanged (possibly wrapped with fmt.Errorf and %w).
// Errors carry a Code that classifies the failure and the offending subject
// (a symbol name, variable, node kind, register or instruction line).
//
// Match on the classification with the standard library:
//
//	if errors.Is(err, diag.OutOfMemory) { ... }
//
// or recover the structured record with errors.As / diag.CodeOf.
package diag
