// Package builder holds the schema builder state machine. Reduce is a pure
// transition function: given a State and an Action it returns the next State
// without performing I/O. Mutating actions commit the previous schema to a
// bounded undo history and clear the redo stack; selection is re-resolved
// after every schema change so it always points at an existing field (or is
// empty when the schema has no fields).
//
// Selectors in this package are pure projections recomputed on every call.
package builder
