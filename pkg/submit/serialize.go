package submit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// Serializer turns a validated record into the wire payload the backend
// expects.
type Serializer interface {
	Serialize(schema *model.Schema, record model.Record) ([]byte, error)
}

// SerializerFunc adapts a function into a Serializer.
type SerializerFunc func(schema *model.Schema, record model.Record) ([]byte, error)

// Serialize calls fn.
func (fn SerializerFunc) Serialize(schema *model.Schema, record model.Record) ([]byte, error) {
	return fn(schema, record)
}

// JSONSerializer writes a flat JSON object keyed by field key. Disabled and
// empty fields are omitted, numbers and booleans are coerced to their JSON
// types and files are sent as their storage reference. Text is sent as the
// engine validated it (see model.Text); markup is left to the backend.
type JSONSerializer struct {
	engine *validation.Engine
}

// NewJSONSerializer builds a serializer; engine decides which fields are
// enabled and may be nil.
func NewJSONSerializer(engine *validation.Engine) *JSONSerializer {
	if engine == nil {
		engine = validation.New()
	}
	return &JSONSerializer{engine: engine}
}

// Serialize implements Serializer.
func (s *JSONSerializer) Serialize(schema *model.Schema, record model.Record) ([]byte, error) {
	payload, err := s.Payload(schema, record)
	if err != nil {
		return nil, err
	}
	return json.Marshal(payload)
}

// Payload returns the object Serialize encodes.
func (s *JSONSerializer) Payload(schema *model.Schema, record model.Record) (map[string]any, error) {
	out := make(map[string]any, schema.Len())
	for _, field := range schema.Fields() {
		if !s.engine.Enabled(schema, record, field.Key) {
			continue
		}
		value, ok := record[field.Key]
		if !ok || model.IsEmpty(value) {
			continue
		}
		encoded, err := encodeValue(field, value)
		if err != nil {
			return nil, fmt.Errorf("submit: field %q: %w", field.Key, err)
		}
		out[field.Key] = encoded
	}
	return out, nil
}

func encodeValue(field model.Field, value any) (any, error) {
	switch field.Kind {
	case model.FieldKindNumber:
		switch n := value.(type) {
		case int, int32, int64, float32, float64:
			return n, nil
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return nil, fmt.Errorf("not a number: %q", n)
			}
			return parsed, nil
		}
		return nil, fmt.Errorf("unsupported number value %T", value)
	case model.FieldKindBoolean:
		switch b := value.(type) {
		case bool:
			return b, nil
		case string:
			return strconv.ParseBool(strings.TrimSpace(b))
		}
		return nil, fmt.Errorf("unsupported boolean value %T", value)
	case model.FieldKindFile:
		switch f := value.(type) {
		case model.FileHandle:
			return f.Ref, nil
		case *model.FileHandle:
			return f.Ref, nil
		}
		return nil, fmt.Errorf("unsupported file value %T", value)
	default:
		return model.Text(field.Kind, value), nil
	}
}
