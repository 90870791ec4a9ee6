// Package submit sends a validated form to the backend collaborator.
//
// A Handler owns the single in-flight guard of one form instance: the call
// runs in its own goroutine behind a Pending future, success resets the
// controller with the new seed, a rejection is merged back into the
// validation result and a transport failure leaves the form as it was. Close
// models the form going away; answers that arrive afterwards are dropped.
package submit
