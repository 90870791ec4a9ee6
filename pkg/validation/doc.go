// Package validation evaluates a Form Schema against a Record and produces a
// Result: one Issue per failing field, keyed by field key.
//
// Every field is checked independently; within a field the first failing
// check wins, in this order: required, kind coercion (numbers, emails, dates,
// enums, files), length bounds, numeric bounds, pattern, enumerated values and
// file type/size. Cross-field rules (equalsField) run after all single-field
// checks and attach to the dependent field. Messages are rendered from a
// Catalog of pongo2 templates so callers can localise or override them per
// field.
//
// Server-side validation feedback is normalised with MapErrorPayload and
// merged into a Result with Merge; server issues carry SourceServer so the
// state controller can keep them until the user edits that field.
package validation
