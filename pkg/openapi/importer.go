package openapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/model"
)

const (
	extSection     = "x-formstate-section"
	extKind        = "x-formstate-kind"
	extOrder       = "x-formstate-order"
	extEquals      = "x-formstate-equals"
	extEnabledWhen = "x-formstate-enabled-when"
	extHint        = "x-formstate-hint"
	extPurpose     = "x-formstate-purpose"
)

var (
	ErrEmptyDocument     = errors.New("openapi: document payload is empty")
	ErrOperationNotFound = errors.New("openapi: operation not found")
	ErrNoRequestBody     = errors.New("openapi: operation has no object request body")
)

// Option configures loading.
type Option func(*options)

type options struct {
	externalRefs bool
	validate     bool
	labeler      func(string) string
}

// WithExternalRefs allows $ref to other files or URLs.
func WithExternalRefs(enabled bool) Option {
	return func(o *options) { o.externalRefs = enabled }
}

// WithValidation validates the document after loading.
func WithValidation(enabled bool) Option {
	return func(o *options) { o.validate = enabled }
}

// WithLabeler overrides how property names become labels.
func WithLabeler(fn func(string) string) Option {
	return func(o *options) {
		if fn != nil {
			o.labeler = fn
		}
	}
}

// Document is a loaded OpenAPI document.
type Document struct {
	spec       *openapi3.T
	operations map[string]operation
	labeler    func(string) string
}

type operation struct {
	method string
	path   string
	op     *openapi3.Operation
}

// Load parses an OpenAPI document from JSON or YAML bytes.
func Load(ctx context.Context, data []byte, opts ...Option) (*Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyDocument
	}
	cfg := newOptions(opts)
	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: cfg.externalRefs}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return newDocument(ctx, spec, cfg)
}

// LoadFile parses an OpenAPI document from a local path or URL.
func LoadFile(ctx context.Context, location string, opts ...Option) (*Document, error) {
	cfg := newOptions(opts)
	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: cfg.externalRefs}

	var (
		spec *openapi3.T
		err  error
	)
	if u, parseErr := url.Parse(location); parseErr == nil && (u.Scheme == "http" || u.Scheme == "https") {
		spec, err = loader.LoadFromURI(u)
	} else {
		spec, err = loader.LoadFromFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", location, err)
	}
	return newDocument(ctx, spec, cfg)
}

func newOptions(opts []Option) options {
	cfg := options{labeler: model.DefaultLabeler}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func newDocument(ctx context.Context, spec *openapi3.T, cfg options) (*Document, error) {
	if cfg.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	doc := &Document{spec: spec, operations: make(map[string]operation), labeler: cfg.labeler}
	if spec.Paths == nil {
		return doc, nil
	}
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			doc.operations[id] = operation{method: method, path: path, op: op}
		}
	}
	return doc, nil
}

// Title returns the document title.
func (d *Document) Title() string {
	if d.spec.Info == nil {
		return ""
	}
	return d.spec.Info.Title
}

// Operations lists operation ids that carry an object request body, sorted.
func (d *Document) Operations() []string {
	out := make([]string, 0, len(d.operations))
	for id, op := range d.operations {
		if requestSchema(op.op) != nil {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Form builds a Form Schema from the request body of the operation.
func (d *Document) Form(operationID string) (*model.Schema, error) {
	op, ok := d.operations[operationID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}
	body := requestSchema(op.op)
	if body == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}

	title := op.op.Summary
	if title == "" {
		title = d.labeler(operationID)
	}
	purpose := stringExtension(op.op.Extensions, extPurpose)
	if purpose == "" {
		purpose = operationID
	}

	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}

	type ordered struct {
		field model.Field
		order float64
	}
	var props []ordered
	for name, ref := range body.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		field, ok := d.field(name, ref.Value, required[name])
		if !ok {
			continue
		}
		order, hasOrder := numberExtension(ref.Value.Extensions, extOrder)
		if !hasOrder {
			order = math.MaxFloat64
		}
		props = append(props, ordered{field: field, order: order})
	}
	sort.SliceStable(props, func(i, j int) bool {
		if props[i].order != props[j].order {
			return props[i].order < props[j].order
		}
		return props[i].field.Key < props[j].field.Key
	})

	b := model.NewBuilder(operationID, model.WithLabeler(d.labeler)).
		Title(title).
		Purpose(model.Purpose(purpose))
	for _, p := range props {
		b.Field(p.field)
	}
	schema, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("openapi: operation %q: %w", operationID, err)
	}
	return schema, nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	var media *openapi3.MediaType
	for _, name := range []string{"application/json", "multipart/form-data", "application/x-www-form-urlencoded"} {
		if mt, ok := content[name]; ok {
			media = mt
			break
		}
	}
	if media == nil {
		for _, mt := range content {
			media = mt
			break
		}
	}
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}
	schema := media.Schema.Value
	if !schema.Type.Is(openapi3.TypeObject) && len(schema.Properties) == 0 {
		return nil
	}
	return schema
}

func (d *Document) field(name string, src *openapi3.Schema, required bool) (model.Field, bool) {
	kind, ok := kindOf(src)
	if !ok {
		return model.Field{}, false
	}
	field := model.Field{
		Key:         name,
		Label:       src.Title,
		Kind:        kind,
		Required:    required,
		Section:     stringExtension(src.Extensions, extSection),
		Description: src.Description,
		Default:     src.Default,
		EnabledWhen: stringExtension(src.Extensions, extEnabledWhen),
	}
	if field.Label == "" {
		field.Label = d.labeler(name)
	}
	if kind == model.FieldKindEnum {
		for _, v := range src.Enum {
			field.Options = append(field.Options, model.Stringify(v))
		}
	}

	if kind.TextLike() {
		if src.MinLength > 0 {
			field.Rules = append(field.Rules, model.MinLength(int(src.MinLength)))
		}
		if src.MaxLength != nil {
			field.Rules = append(field.Rules, model.MaxLength(int(*src.MaxLength)))
		}
	}
	if kind == model.FieldKindNumber {
		if src.Min != nil {
			field.Rules = append(field.Rules, model.Min(*src.Min))
		}
		if src.Max != nil {
			field.Rules = append(field.Rules, model.Max(*src.Max))
		}
	}
	if src.Pattern != "" && kind != model.FieldKindFile && kind != model.FieldKindBoolean {
		field.Rules = append(field.Rules, model.Pattern(src.Pattern, stringExtension(src.Extensions, extHint)))
	}
	if target := stringExtension(src.Extensions, extEquals); target != "" {
		field.Rules = append(field.Rules, model.EqualsField(target))
	}
	return field, true
}

func kindOf(src *openapi3.Schema) (model.FieldKind, bool) {
	if explicit := model.FieldKind(stringExtension(src.Extensions, extKind)); explicit.Valid() {
		return explicit, true
	}
	switch {
	case src.Type.Is(openapi3.TypeString):
		if len(src.Enum) > 0 {
			return model.FieldKindEnum, true
		}
		switch src.Format {
		case "email":
			return model.FieldKindEmail, true
		case "date":
			return model.FieldKindDate, true
		case "binary", "byte":
			return model.FieldKindFile, true
		case "password":
			return model.FieldKindPassword, true
		}
		return model.FieldKindText, true
	case src.Type.Is(openapi3.TypeInteger), src.Type.Is(openapi3.TypeNumber):
		return model.FieldKindNumber, true
	case src.Type.Is(openapi3.TypeBoolean):
		return model.FieldKindBoolean, true
	default:
		return "", false
	}
}

func stringExtension(ext map[string]any, key string) string {
	if v, ok := ext[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func numberExtension(ext map[string]any, key string) (float64, bool) {
	switch v := ext[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
