package state

import (
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// Snapshot is a copy of the controller state at one point in time. Mutating
// it does not affect the controller.
type Snapshot struct {
	State      State
	Values     model.Record
	Result     validation.Result
	Dirty      []string
	Touched    []string
	EditMode   bool
	FormErrors []string
	// Focus is the first failing field in schema order after the last
	// validation, empty when nothing failed.
	Focus string

	validated bool
	stale     []string
}

// IsDirty reports whether key changed since the last reset.
func (s Snapshot) IsDirty(key string) bool {
	return contains(s.Dirty, key)
}

// IsTouched reports whether key lost focus since the last reset.
func (s Snapshot) IsTouched(key string) bool {
	return contains(s.Touched, key)
}

// Error returns the message to show beside key, empty when it passes.
func (s Snapshot) Error(key string) string {
	return s.Result[key].Message
}

// SectionErrors counts failing fields per section, which drives the error
// badges on multi-section forms.
func (s Snapshot) SectionErrors(schema *model.Schema) map[string]int {
	out := make(map[string]int)
	for _, section := range schema.Sections() {
		for _, key := range section.Fields {
			if _, failed := s.Result[key]; failed {
				out[section.ID]++
			}
		}
	}
	return out
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
