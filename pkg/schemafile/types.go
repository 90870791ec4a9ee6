package schemafile

import "github.com/goliatone/go-formstate/pkg/model"

type documentFile struct {
	Forms map[string]formFile `json:"forms" yaml:"forms"`
}

type formFile struct {
	Title    string        `json:"title,omitempty" yaml:"title,omitempty"`
	Purpose  string        `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	Sections []sectionFile `json:"sections" yaml:"sections"`
}

type sectionFile struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title,omitempty" yaml:"title,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []fieldFile `json:"fields" yaml:"fields"`
}

type fieldFile struct {
	Key         string                 `json:"key" yaml:"key"`
	Label       string                 `json:"label,omitempty" yaml:"label,omitempty"`
	Kind        string                 `json:"kind,omitempty" yaml:"kind,omitempty"`
	Required    bool                   `json:"required,omitempty" yaml:"required,omitempty"`
	Placeholder string                 `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Default     any                    `json:"default,omitempty" yaml:"default,omitempty"`
	Options     []string               `json:"options,omitempty" yaml:"options,omitempty"`
	EnabledWhen string                 `json:"enabledWhen,omitempty" yaml:"enabledWhen,omitempty"`
	Metadata    map[string]string      `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Rules       []model.ValidationRule `json:"rules,omitempty" yaml:"rules,omitempty"`

	MinLength   *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Min         *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern     string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	PatternHint string   `json:"patternHint,omitempty" yaml:"patternHint,omitempty"`
	Equals      string   `json:"equals,omitempty" yaml:"equals,omitempty"`
	FileTypes   []string `json:"fileTypes,omitempty" yaml:"fileTypes,omitempty"`
	MaxFileSize int64    `json:"maxFileSize,omitempty" yaml:"maxFileSize,omitempty"`
	After       string   `json:"after,omitempty" yaml:"after,omitempty"`
	Before      string   `json:"before,omitempty" yaml:"before,omitempty"`
}

func (f fieldFile) field() model.Field {
	field := model.Field{
		Key:         f.Key,
		Label:       f.Label,
		Kind:        model.FieldKind(f.Kind),
		Required:    f.Required,
		Placeholder: f.Placeholder,
		Description: f.Description,
		Default:     f.Default,
		Options:     f.Options,
		EnabledWhen: f.EnabledWhen,
		Metadata:    f.Metadata,
	}
	if f.MinLength != nil {
		field.Rules = append(field.Rules, model.MinLength(*f.MinLength))
	}
	if f.MaxLength != nil {
		field.Rules = append(field.Rules, model.MaxLength(*f.MaxLength))
	}
	if f.Min != nil {
		field.Rules = append(field.Rules, model.Min(*f.Min))
	}
	if f.Max != nil {
		field.Rules = append(field.Rules, model.Max(*f.Max))
	}
	if f.Pattern != "" {
		field.Rules = append(field.Rules, model.Pattern(f.Pattern, f.PatternHint))
	}
	if f.Equals != "" {
		field.Rules = append(field.Rules, model.EqualsField(f.Equals))
	}
	if len(f.FileTypes) > 0 {
		field.Rules = append(field.Rules, model.FileTypes(f.FileTypes...))
	}
	if f.MaxFileSize > 0 {
		field.Rules = append(field.Rules, model.MaxFileSize(f.MaxFileSize))
	}
	if f.After != "" {
		field.Rules = append(field.Rules, model.DateAfter(f.After))
	}
	if f.Before != "" {
		field.Rules = append(field.Rules, model.DateBefore(f.Before))
	}
	field.Rules = append(field.Rules, f.Rules...)
	return field
}

func fromField(field model.Field) fieldFile {
	return fieldFile{
		Key:         field.Key,
		Label:       field.Label,
		Kind:        string(field.Kind),
		Required:    field.Required,
		Placeholder: field.Placeholder,
		Description: field.Description,
		Default:     field.Default,
		Options:     field.Options,
		EnabledWhen: field.EnabledWhen,
		Metadata:    field.Metadata,
		Rules:       field.Rules,
	}
}
