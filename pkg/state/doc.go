// Package state implements the form state controller: one Record, its
// Validation Result and the pristine/dirty/validating/valid/invalid lifecycle
// for a single form instance.
//
// Edit mode is orthogonal to the lifecycle. Turning it off freezes values
// (Change returns ErrReadOnly) without touching dirty flags or results.
package state
