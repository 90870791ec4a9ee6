// Package openapi imports Form Schemas from the request bodies of OpenAPI 3
// operations.
//
// Property types map onto field kinds (string formats email, date, binary and
// password included), string and numeric constraints become validation rules
// and a handful of x-formstate extensions carry what OpenAPI cannot express:
//
//	x-formstate-section      section id for the property
//	x-formstate-kind         explicit field kind (phone, textarea, ...)
//	x-formstate-order        numeric position inside the form
//	x-formstate-equals       key of the field this one must equal
//	x-formstate-enabled-when EnabledWhen expression
//	x-formstate-hint         pattern hint used in messages
//	x-formstate-purpose      (operation) backend purpose
package openapi
