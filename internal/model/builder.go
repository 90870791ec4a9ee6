package model

import (
	"fmt"
	"strings"
)

// Builder assembles a Schema from sections and field definitions. Inputs are
// copied so later mutation of the caller's values cannot leak into a built
// schema.
type Builder struct {
	opts     Options
	id       string
	title    string
	purpose  Purpose
	sections []Section
	fields   []Field
}

// NewBuilder starts a schema with the given identifier.
func NewBuilder(id string, options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	return &Builder{opts: opts, id: strings.TrimSpace(id)}
}

// Title sets the human readable title.
func (b *Builder) Title(title string) *Builder {
	b.title = strings.TrimSpace(title)
	return b
}

// Purpose sets the backend purpose.
func (b *Builder) Purpose(purpose Purpose) *Builder {
	b.purpose = purpose
	return b
}

// Section declares a section and the fields inside it. Fields inherit the
// section id.
func (b *Builder) Section(id, title string, fields ...Field) *Builder {
	section := Section{ID: strings.TrimSpace(id), Title: strings.TrimSpace(title)}
	for _, field := range fields {
		field.Section = section.ID
		b.fields = append(b.fields, cloneField(field))
		section.Fields = append(section.Fields, field.Key)
	}
	b.sections = append(b.sections, section)
	return b
}

// Describe attaches a description to an already declared section.
func (b *Builder) Describe(sectionID, description string) *Builder {
	for i := range b.sections {
		if b.sections[i].ID == sectionID {
			b.sections[i].Description = strings.TrimSpace(description)
		}
	}
	return b
}

// Field appends a field to its declared section, creating the section (or the
// default one) when needed.
func (b *Builder) Field(field Field) *Builder {
	sectionID := strings.TrimSpace(field.Section)
	if sectionID == "" {
		sectionID = DefaultSection
	}
	field.Section = sectionID
	b.fields = append(b.fields, cloneField(field))
	for i := range b.sections {
		if b.sections[i].ID == sectionID {
			b.sections[i].Fields = append(b.sections[i].Fields, field.Key)
			return b
		}
	}
	b.sections = append(b.sections, Section{
		ID:     sectionID,
		Title:  b.opts.Labeler(sectionID),
		Fields: []string{field.Key},
	})
	return b
}

// Build validates the accumulated definitions and returns an immutable
// Schema. Fields are stored in section order.
func (b *Builder) Build() (*Schema, error) {
	if b.id == "" {
		return nil, ErrSchemaIDMissing
	}

	byKey := make(map[string]Field, len(b.fields))
	for _, field := range b.fields {
		field.Key = strings.TrimSpace(field.Key)
		if err := validateField(field); err != nil {
			return nil, fmt.Errorf("model builder: schema %q: %w", b.id, err)
		}
		if _, exists := byKey[field.Key]; exists {
			return nil, fmt.Errorf("model builder: schema %q: %w: %q", b.id, ErrDuplicateField, field.Key)
		}
		if field.Label == "" {
			field.Label = b.opts.Labeler(field.Key)
		}
		if field.Kind == "" {
			field.Kind = FieldKindText
		}
		byKey[field.Key] = field
	}

	schema := &Schema{
		id:      b.id,
		title:   b.title,
		purpose: b.purpose,
		index:   make(map[string]int, len(byKey)),
	}
	if schema.title == "" {
		schema.title = b.opts.Labeler(b.id)
	}

	for _, section := range b.sections {
		if section.ID == "" {
			return nil, fmt.Errorf("model builder: schema %q: %w", b.id, ErrSectionIDMissing)
		}
		out := Section{ID: section.ID, Title: section.Title, Description: section.Description}
		if out.Title == "" {
			out.Title = b.opts.Labeler(section.ID)
		}
		for _, key := range section.Fields {
			key = strings.TrimSpace(key)
			field, ok := byKey[key]
			if !ok {
				return nil, fmt.Errorf("model builder: schema %q section %q: %w: %q", b.id, section.ID, ErrUnknownReference, key)
			}
			if _, placed := schema.index[key]; placed {
				continue
			}
			schema.index[key] = len(schema.fields)
			schema.fields = append(schema.fields, field)
			out.Fields = append(out.Fields, key)
		}
		schema.sections = append(schema.sections, out)
	}

	for _, field := range schema.fields {
		for _, rule := range field.Rules {
			if rule.Kind != ValidationRuleEqualsField {
				continue
			}
			target := strings.TrimSpace(rule.Param("field"))
			if target == field.Key {
				return nil, fmt.Errorf("model builder: schema %q field %q: %w: equalsField targets itself", b.id, field.Key, ErrUnknownReference)
			}
			if _, ok := schema.index[target]; !ok {
				return nil, fmt.Errorf("model builder: schema %q field %q: %w: %q", b.id, field.Key, ErrUnknownReference, target)
			}
		}
	}

	return schema, nil
}

// MustBuild panics on build failure. Useful for package-level fixtures.
func (b *Builder) MustBuild() *Schema {
	schema, err := b.Build()
	if err != nil {
		panic(err)
	}
	return schema
}
