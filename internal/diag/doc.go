// Package diag defines the user-facing diagnostic model shared by all passes.
//
// # Scope
//
// Diagnostics describe semantic properties of the input program, such as a
// shadowed pattern binding or unreachable case branches. They never abort a
// compilation and are never used for control flow. Defects in the compiler
// itself (pass ordering, unexpected node shapes, metadata misuse) are not
// diagnostics; see package ir for those.
//
// Package diag does not render anything. A Diagnostic carries a Code that
// doubles as the message key, positional Args, an optional primary span and
// node identities; an external renderer turns that into text.
//
// # Emitting diagnostics
//
// Passes attach diagnostics to tree nodes (ir.Unit.AddDiagnostic). When a
// unit finishes, the pipeline walks the final tree and reports every attached
// diagnostic to a Reporter; BagReporter collects them into a Bag, which
// supports sorting and deduplication. DedupReporter filters repeats that
// come from node instances shared between parents.
package diag
