package validation

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/model"
)

// ErrorMapping splits a server error payload into field-level and form-level
// messages keyed by schema field keys.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// Empty reports whether the mapping carries no messages.
func (m ErrorMapping) Empty() bool {
	return len(m.Fields) == 0 && len(m.Form) == 0
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload normalises server error payloads (JSON pointers such as
// "/body/email", dotted paths such as "data.attributes.email", bracketed
// indices) into schema field keys. Paths that do not resolve to a field are
// kept as form-level errors so no message is lost.
func MapErrorPayload(schema *model.Schema, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	keys := make(map[string]string, schema.Len())
	for _, key := range schema.Keys() {
		keys[strings.ToLower(key)] = key
	}

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		key, ok := resolveFieldKey(rawPath, keys)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[key] = normalizeMessages(append(mapping.Fields[key], normalized...))
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// ServerResult converts the field part of a mapping into server-sourced
// issues. Multiple messages for one field are joined with "; ".
func ServerResult(mapping ErrorMapping) Result {
	out := make(Result, len(mapping.Fields))
	for key, messages := range mapping.Fields {
		out[key] = Issue{
			Field:   key,
			Code:    CodeServer,
			Message: strings.Join(messages, "; "),
			Source:  SourceServer,
		}
	}
	return out
}

func resolveFieldKey(raw string, keys map[string]string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", false
	}
	segments := parsePathSegments(trimmed)
	segments = dropWrapperSegments(segments)
	segments = stripNumericSegments(segments)
	if len(segments) == 0 {
		return "", false
	}

	// Prefer the joined path (schemas may use dotted keys), then the
	// leading segment, then the trailing one ("candidate.email" -> "email").
	candidates := []string{
		strings.Join(segments, "."),
		segments[0],
		segments[len(segments)-1],
	}
	for _, candidate := range candidates {
		if key, ok := keys[strings.ToLower(candidate)]; ok {
			return key, true
		}
		if key, ok := keys[strings.ToLower(snakeToCamel(candidate))]; ok {
			return key, true
		}
	}
	return "", false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for _, prefix := range []string{"#/", "$/", "$."} {
		clean = strings.TrimPrefix(clean, prefix)
	}
	clean = strings.TrimLeft(clean, "#/.$")

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
	"record":     {},
	"fields":     {},
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func snakeToCamel(in string) string {
	if !strings.ContainsAny(in, "_-") {
		return in
	}
	parts := strings.FieldsFunc(in, func(r rune) bool { return r == '_' || r == '-' })
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
