// Package schemafile loads Form Schemas from JSON or YAML documents.
//
// A document holds a map of forms keyed by id:
//
//	forms:
//	  password-change:
//	    title: Change Password
//	    purpose: password_change
//	    sections:
//	      - id: password
//	        title: Change Password
//	        fields:
//	          - key: newPassword
//	            kind: password
//	            required: true
//	            minLength: 8
//	          - key: confirmPassword
//	            kind: password
//	            required: true
//	            equals: newPassword
//
// Shorthand keys (minLength, pattern, equals, ...) expand into validation
// rules; the explicit rules list is appended after them.
package schemafile
