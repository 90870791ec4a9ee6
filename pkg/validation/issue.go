package validation

import (
	"sort"

	"github.com/goliatone/go-formstate/pkg/model"
)

// Issue codes, named after the goskema convention.
const (
	CodeRequired     = "required"
	CodeTooShort     = "too_short"
	CodeTooLong      = "too_long"
	CodeTooSmall     = "too_small"
	CodeTooBig       = "too_big"
	CodePattern      = "pattern"
	CodeInvalidEnum  = "invalid_enum"
	CodeInvalidEmail = "invalid_email"
	CodeInvalidPhone = "invalid_phone"
	CodeInvalidDate  = "invalid_date"
	CodeDateTooEarly = "date_too_early"
	CodeDateTooLate  = "date_too_late"
	CodeNotANumber   = "not_a_number"
	CodeMismatch     = "mismatch"
	CodeInvalidFile  = "invalid_file"
	CodeFileTooLarge = "file_too_large"
	CodeInvalidType  = "invalid_type"
	CodeServer       = "server"
)

// Source records where an issue came from.
type Source string

const (
	SourceClient Source = "client"
	SourceServer Source = "server"
)

// Issue is a single field-level validation failure.
type Issue struct {
	Field   string            `json:"field"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Params  map[string]string `json:"params,omitempty"`
	Source  Source            `json:"source"`
}

// Result maps field keys to their failing Issue. An empty Result means the
// record is valid.
type Result map[string]Issue

// Valid reports whether no field failed.
func (r Result) Valid() bool { return len(r) == 0 }

// Get returns the issue for key.
func (r Result) Get(key string) (Issue, bool) {
	issue, ok := r[key]
	return issue, ok
}

// Messages flattens the result into key -> message.
func (r Result) Messages() map[string]string {
	if len(r) == 0 {
		return nil
	}
	out := make(map[string]string, len(r))
	for key, issue := range r {
		out[key] = issue.Message
	}
	return out
}

// Keys returns the failing keys sorted alphabetically.
func (r Result) Keys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// First returns the first failing field in schema order, which is the field
// a form should highlight when submission is blocked.
func (r Result) First(schema *model.Schema) (Issue, bool) {
	if len(r) == 0 {
		return Issue{}, false
	}
	for _, key := range schema.Keys() {
		if issue, ok := r[key]; ok {
			return issue, true
		}
	}
	keys := r.Keys()
	return r[keys[0]], true
}

// Clone returns a copy of the result.
func (r Result) Clone() Result {
	out := make(Result, len(r))
	for key, issue := range r {
		if len(issue.Params) > 0 {
			params := make(map[string]string, len(issue.Params))
			for k, v := range issue.Params {
				params[k] = v
			}
			issue.Params = params
		}
		out[key] = issue
	}
	return out
}

// BySource returns the subset of issues from src.
func (r Result) BySource(src Source) Result {
	out := make(Result)
	for key, issue := range r {
		if issue.Source == src {
			out[key] = issue
		}
	}
	return out
}

// Merge overlays server issues on a client result. A server issue replaces a
// client issue on the same field; the inputs are left untouched.
func Merge(client, server Result) Result {
	out := client.Clone()
	for key, issue := range server {
		out[key] = issue
	}
	return out
}
