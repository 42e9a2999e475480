// Package schema is the field model of the form builder. It defines the field
// type catalogue with per-type defaults, constructs fields, and normalizes
// untrusted data (imports, persisted payloads, legacy formats) into schemas
// that satisfy every structural invariant:
//
//   - field ids are unique within a schema, option ids within a field
//   - select fields always carry at least one option, other types none
//   - default values match the field type (bool, optional number or string)
//   - labels and titles are never blank, numeric rules are finite or nil
//
// Normalization is total. It accepts any JSON-like value and never returns an
// error; callers that need to reject bad input run the validation package
// first.
package schema
