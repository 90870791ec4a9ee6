// Package model defines the Field Definition, Form Schema and Record types
// shared by the validation engine, the form state controller and the
// submission handler. Builders reside in internal/model but return the types
// re-exported here. A Field carries a tagged Kind (text, number, email, date,
// enum, file, ...) that decides which checks apply, plus an ordered list of
// ValidationRule values using the canonical identifiers (min/max,
// minLength/maxLength, pattern, enum, equalsField, fileTypes/maxFileSize,
// dateAfter/dateBefore) with string parameters so schemas stay serialisable as
// JSON or YAML. Built schemas are immutable and keep field keys unique.
package model
