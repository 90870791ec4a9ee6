package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FileHandle is an opaque reference to a file held by the file-storage
// collaborator. Validation only looks at presence, name, content type and
// size.
type FileHandle struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Ref         string `json:"ref,omitempty"`
}

// Empty reports whether the handle points at nothing.
func (h FileHandle) Empty() bool {
	return strings.TrimSpace(h.Ref) == "" && strings.TrimSpace(h.Name) == ""
}

// Record maps field keys to current values: string, number, bool or
// FileHandle.
type Record map[string]any

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = deepCopy(v)
	}
	return out
}

// String returns the string form of a value, empty for nil or missing keys.
func (r Record) String(key string) string {
	value, ok := r[key]
	if !ok || value == nil {
		return ""
	}
	return Stringify(value)
}

// Merge returns a copy of r with other applied on top.
func (r Record) Merge(other Record) Record {
	out := r.Clone()
	for k, v := range other {
		out[k] = deepCopy(v)
	}
	return out
}

// IsEmpty reports whether a value counts as "not provided": nil, an empty or
// whitespace-only string, or an empty file handle.
func IsEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case FileHandle:
		return typed.Empty()
	case *FileHandle:
		return typed == nil || typed.Empty()
	case []any:
		return len(typed) == 0
	case []string:
		return len(typed) == 0
	default:
		return false
	}
}

// Stringify renders a scalar value the way it would appear in an input.
func Stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case FileHandle:
		return typed.Name
	case *FileHandle:
		if typed == nil {
			return ""
		}
		return typed.Name
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}

// Text returns the string form of a field value as it is validated and
// sent: surrounding whitespace is trimmed except for passwords, which are
// kept verbatim.
func Text(kind FieldKind, value any) string {
	text := Stringify(value)
	if kind == FieldKindPassword {
		return text
	}
	return strings.TrimSpace(text)
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	case *FileHandle:
		if typed == nil {
			return typed
		}
		copied := *typed
		return &copied
	default:
		return typed
	}
}
