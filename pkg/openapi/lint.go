package openapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/visibility/expr"
)

const extensionNamespace = "x-formstate"

var stringExtensions = map[string]bool{
	extSection:     true,
	extKind:        true,
	extEquals:      true,
	extEnabledWhen: true,
	extHint:        true,
	extPurpose:     true,
}

// Violation is one lint finding.
type Violation struct {
	Location string
	Message  string
}

func (v Violation) String() string {
	return v.Location + " -> " + v.Message
}

// Lint reports x-formstate extensions that the importer would ignore or
// misread: unknown keys, wrong value types, unknown kinds, equals targets
// that are not properties, and enabled-when rules that do not parse.
// Findings are sorted by location.
func (d *Document) Lint() []Violation {
	var out []Violation
	ids := make([]string, 0, len(d.operations))
	for id := range d.operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	checker := expr.New()
	for _, id := range ids {
		op := d.operations[id].op
		base := []string{"operation", id}
		out = append(out, lintExtensions(base, op.Extensions)...)

		body := requestSchema(op)
		if body == nil {
			continue
		}
		names := make([]string, 0, len(body.Properties))
		for name := range body.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ref := body.Properties[name]
			if ref == nil || ref.Value == nil {
				continue
			}
			out = append(out, lintProperty(appendPath(base, "properties."+name), ref.Value, body, checker)...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Location == out[j].Location {
			return out[i].Message < out[j].Message
		}
		return out[i].Location < out[j].Location
	})
	return out
}

func lintProperty(path []string, prop, body *openapi3.Schema, checker *expr.Evaluator) []Violation {
	out := lintExtensions(path, prop.Extensions)
	location := formatLocation(path)

	if raw, ok := prop.Extensions[extKind].(string); ok && !model.FieldKind(strings.TrimSpace(raw)).Valid() {
		out = append(out, Violation{Location: location, Message: fmt.Sprintf("unknown kind %q", raw)})
	}
	if target := stringExtension(prop.Extensions, extEquals); target != "" {
		if _, ok := body.Properties[target]; !ok {
			out = append(out, Violation{Location: location, Message: fmt.Sprintf("%s targets unknown property %q", extEquals, target)})
		}
	}
	if rule := stringExtension(prop.Extensions, extEnabledWhen); rule != "" {
		if err := checker.Check(rule); err != nil {
			out = append(out, Violation{Location: location, Message: fmt.Sprintf("%s: %v", extEnabledWhen, err)})
		}
	}
	if _, ok := kindOf(prop); !ok {
		out = append(out, Violation{Location: location, Message: "property type is not importable and will be skipped"})
	}
	return out
}

func lintExtensions(path []string, extensions map[string]any) []Violation {
	keys := make([]string, 0, len(extensions))
	for key := range extensions {
		if strings.HasPrefix(key, extensionNamespace) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var out []Violation
	location := formatLocation(path)
	for _, key := range keys {
		value := extensions[key]
		switch {
		case stringExtensions[key]:
			if _, ok := value.(string); !ok {
				out = append(out, Violation{Location: location, Message: fmt.Sprintf("%s must be a string, found %T", key, value)})
			}
		case key == extOrder:
			if _, ok := numberExtension(extensions, key); !ok {
				out = append(out, Violation{Location: location, Message: fmt.Sprintf("%s must be a number, found %T", key, value)})
			}
		default:
			out = append(out, Violation{Location: location, Message: fmt.Sprintf("unsupported extension %q", key)})
		}
	}
	return out
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	return append(next, segment)
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
