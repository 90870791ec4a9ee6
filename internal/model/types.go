package model

// FieldKind is the tagged variant that decides which constraint checks apply
// to a field.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindTextArea FieldKind = "textarea"
	FieldKindPassword FieldKind = "password"
	FieldKindPhone    FieldKind = "phone"
	FieldKindEmail    FieldKind = "email"
	FieldKindNumber   FieldKind = "number"
	FieldKindDate     FieldKind = "date"
	FieldKindEnum     FieldKind = "enum"
	FieldKindFile     FieldKind = "file"
	FieldKindBoolean  FieldKind = "boolean"
)

// TextLike reports whether values of the kind are plain strings subject to
// length and pattern rules.
func (k FieldKind) TextLike() bool {
	switch k {
	case FieldKindText, FieldKindTextArea, FieldKindPassword, FieldKindPhone, FieldKindEmail, "":
		return true
	default:
		return false
	}
}

// Valid reports whether k is one of the known kinds.
func (k FieldKind) Valid() bool {
	switch k {
	case FieldKindText, FieldKindTextArea, FieldKindPassword, FieldKindPhone, FieldKindEmail,
		FieldKindNumber, FieldKindDate, FieldKindEnum, FieldKindFile, FieldKindBoolean:
		return true
	default:
		return false
	}
}

const (
	ValidationRuleMin         = "min"
	ValidationRuleMax         = "max"
	ValidationRuleMinLength   = "minLength"
	ValidationRuleMaxLength   = "maxLength"
	ValidationRulePattern     = "pattern"
	ValidationRuleEnum        = "enum"
	ValidationRuleEqualsField = "equalsField"
	ValidationRuleFileTypes   = "fileTypes"
	ValidationRuleMaxFileSize = "maxFileSize"
	ValidationRuleDateAfter   = "dateAfter"
	ValidationRuleDateBefore  = "dateBefore"
)

// DateLayout is the wire layout for date fields.
const DateLayout = "2006-01-02"

// DefaultSection collects fields declared without a section.
const DefaultSection = "general"

// ValidationRule represents a single validation constraint applied to a field.
// Bounds keep their threshold in Params["value"], patterns keep the source
// expression in Params["pattern"], equalsField names its sibling in
// Params["field"] and enum/fileTypes carry a comma separated list in
// Params["values"]. Params["message"] overrides the rendered message.
type ValidationRule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Param returns a parameter value, empty when unset.
func (r ValidationRule) Param(name string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[name]
}

// Field is a Field Definition: one form input with its kind and constraints.
type Field struct {
	Key         string            `json:"key" yaml:"key"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Kind        FieldKind         `json:"kind" yaml:"kind"`
	Required    bool              `json:"required,omitempty" yaml:"required,omitempty"`
	Section     string            `json:"section,omitempty" yaml:"section,omitempty"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Default     any               `json:"default,omitempty" yaml:"default,omitempty"`
	Options     []string          `json:"options,omitempty" yaml:"options,omitempty"`
	EnabledWhen string            `json:"enabledWhen,omitempty" yaml:"enabledWhen,omitempty"`
	Rules       []ValidationRule  `json:"rules,omitempty" yaml:"rules,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Rule returns the first rule of the given kind.
func (f Field) Rule(kind string) (ValidationRule, bool) {
	for _, rule := range f.Rules {
		if rule.Kind == kind {
			return rule, true
		}
	}
	return ValidationRule{}, false
}

// Section groups fields under a named heading such as "Personal Information".
type Section struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []string `json:"fields" yaml:"fields"`
}

// Purpose names what a submitted record is for on the backend.
type Purpose string

const (
	PurposeCandidateRegistration  Purpose = "candidate_registration"
	PurposeEmployerRegistration   Purpose = "employer_registration"
	PurposeCollegeRegistration    Purpose = "college_registration"
	PurposeExamCenterRegistration Purpose = "exam_center_registration"
	PurposeProfileUpdate          Purpose = "profile_update"
	PurposePasswordChange         Purpose = "password_change"
	PurposeCampaign               Purpose = "campaign"
)

// Schema is a built Form Schema. It is immutable; accessors hand out copies.
type Schema struct {
	id       string
	title    string
	purpose  Purpose
	fields   []Field
	index    map[string]int
	sections []Section
}

// ID returns the schema identifier.
func (s *Schema) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Title returns the human readable form title.
func (s *Schema) Title() string {
	if s == nil {
		return ""
	}
	return s.title
}

// Purpose returns the backend purpose for records of this schema.
func (s *Schema) Purpose() Purpose {
	if s == nil {
		return ""
	}
	return s.purpose
}

// Len reports the number of fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Field looks up a field definition by key.
func (s *Schema) Field(key string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	idx, ok := s.index[key]
	if !ok {
		return Field{}, false
	}
	return cloneField(s.fields[idx]), true
}

// Has reports whether key is declared.
func (s *Schema) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[key]
	return ok
}

// Keys returns field keys in section order.
func (s *Schema) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.fields))
	for _, field := range s.fields {
		keys = append(keys, field.Key)
	}
	return keys
}

// Fields returns copies of every field definition in section order.
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	out := make([]Field, len(s.fields))
	for i, field := range s.fields {
		out[i] = cloneField(field)
	}
	return out
}

// Sections returns the ordered sections.
func (s *Schema) Sections() []Section {
	if s == nil {
		return nil
	}
	out := make([]Section, len(s.sections))
	for i, section := range s.sections {
		out[i] = section
		out[i].Fields = append([]string(nil), section.Fields...)
	}
	return out
}

// Section returns a section by id.
func (s *Schema) Section(id string) (Section, bool) {
	for _, section := range s.Sections() {
		if section.ID == id {
			return section, true
		}
	}
	return Section{}, false
}

// Dependents returns keys of fields carrying an equalsField rule that points
// at key.
func (s *Schema) Dependents(key string) []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, field := range s.fields {
		for _, rule := range field.Rules {
			if rule.Kind == ValidationRuleEqualsField && rule.Param("field") == key {
				out = append(out, field.Key)
				break
			}
		}
	}
	return out
}

// Defaults returns a Record seeded from field defaults.
func (s *Schema) Defaults() Record {
	record := make(Record)
	if s == nil {
		return record
	}
	for _, field := range s.fields {
		if field.Default != nil {
			record[field.Key] = field.Default
		}
	}
	return record
}

func cloneField(field Field) Field {
	out := field
	if len(field.Options) > 0 {
		out.Options = append([]string(nil), field.Options...)
	}
	if len(field.Rules) > 0 {
		out.Rules = make([]ValidationRule, len(field.Rules))
		for i, rule := range field.Rules {
			out.Rules[i] = ValidationRule{Kind: rule.Kind}
			if len(rule.Params) > 0 {
				out.Rules[i].Params = make(map[string]string, len(rule.Params))
				for k, v := range rule.Params {
					out.Rules[i].Params[k] = v
				}
			}
		}
	}
	if len(field.Metadata) > 0 {
		out.Metadata = make(map[string]string, len(field.Metadata))
		for k, v := range field.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
