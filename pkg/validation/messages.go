package validation

import (
	"errors"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formstate/pkg/model"
)

// ErrMissingTranslation is returned by translators that do not know a key.
var ErrMissingTranslation = errors.New("validation: missing translation")

// Translator resolves localized message templates. Keys look like
// "validation.too_short".
type Translator interface {
	Translate(locale, key string) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string) (string, error)

// Translate calls the underlying function.
func (fn TranslatorFunc) Translate(locale, key string) (string, error) {
	return fn(locale, key)
}

// MapTranslator serves translations from locale -> key -> template.
type MapTranslator map[string]map[string]string

// Translate implements Translator.
func (m MapTranslator) Translate(locale, key string) (string, error) {
	if entries, ok := m[locale]; ok {
		if msg, ok := entries[key]; ok && strings.TrimSpace(msg) != "" {
			return msg, nil
		}
	}
	return "", ErrMissingTranslation
}

var defaultTemplates = map[string]string{
	CodeRequired:     "this field is required",
	CodeTooShort:     "must be at least {{ min }} characters",
	CodeTooLong:      "must be at most {{ max }} characters",
	CodeTooSmall:     "must be at least {{ min }}",
	CodeTooBig:       "must be at most {{ max }}",
	CodePattern:      "{% if hint %}must be {{ hint }}{% else %}has an invalid format{% endif %}",
	CodeInvalidEnum:  "must be one of: {{ values }}",
	CodeInvalidEmail: "must be a valid email address",
	CodeInvalidPhone: "must be a valid phone number",
	CodeInvalidDate:  "must be a valid date (YYYY-MM-DD)",
	CodeDateTooEarly: "must be after {{ value }}",
	CodeDateTooLate:  "must be before {{ value }}",
	CodeNotANumber:   "must be a number",
	CodeMismatch:     "must match {{ other }}",
	CodeInvalidFile:  "must be one of these file types: {{ values }}",
	CodeFileTooLarge: "must be {{ max }} bytes or smaller",
	CodeInvalidType:  "has an unsupported value",
}

// Catalog renders issue messages. Lookup order: the rule's own "message"
// parameter, the field's "message.<code>" metadata, the translator for the
// configured locale, the catalog overrides and finally the built-in
// templates. Templates are pongo2 expressions over the issue params plus
// "label" and "key".
type Catalog struct {
	mu         sync.RWMutex
	overrides  map[string]string
	translator Translator
	locale     string
	compiled   sync.Map // source -> *pongo2.Template
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithTranslator sets the translator and locale used for lookups.
func WithTranslator(t Translator, locale string) CatalogOption {
	return func(c *Catalog) {
		c.translator = t
		c.locale = strings.TrimSpace(locale)
	}
}

// WithTemplates overrides the built-in templates per code.
func WithTemplates(templates map[string]string) CatalogOption {
	return func(c *Catalog) {
		for code, tpl := range templates {
			c.overrides[strings.TrimSpace(code)] = tpl
		}
	}
}

// NewCatalog builds a Catalog.
func NewCatalog(options ...CatalogOption) *Catalog {
	c := &Catalog{overrides: make(map[string]string)}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// SetTemplate overrides the template for one code at runtime.
func (c *Catalog) SetTemplate(code, tpl string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overrides[code] = tpl
}

// Message renders the message for issue on field.
func (c *Catalog) Message(field model.Field, issue Issue, rule model.ValidationRule) string {
	source := c.lookup(field, issue.Code, rule)
	data := pongo2.Context{
		"label": field.Label,
		"key":   field.Key,
	}
	for k, v := range issue.Params {
		data[k] = v
	}
	return c.render(source, data)
}

func (c *Catalog) lookup(field model.Field, code string, rule model.ValidationRule) string {
	if msg := strings.TrimSpace(rule.Param("message")); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(field.Metadata["message."+code]); msg != "" {
		return msg
	}
	if c.translator != nil {
		if msg, err := c.translator.Translate(c.locale, "validation."+code); err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	c.mu.RLock()
	override, ok := c.overrides[code]
	c.mu.RUnlock()
	if ok && strings.TrimSpace(override) != "" {
		return override
	}
	if tpl, ok := defaultTemplates[code]; ok {
		return tpl
	}
	return code
}

func (c *Catalog) render(source string, data pongo2.Context) string {
	if !strings.Contains(source, "{{") && !strings.Contains(source, "{%") {
		return source
	}
	var tpl *pongo2.Template
	if cached, ok := c.compiled.Load(source); ok {
		tpl = cached.(*pongo2.Template)
	} else {
		compiled, err := pongo2.FromString("{% autoescape off %}" + source + "{% endautoescape %}")
		if err != nil {
			return source
		}
		c.compiled.Store(source, compiled)
		tpl = compiled
	}
	out, err := tpl.Execute(data)
	if err != nil {
		return source
	}
	return strings.TrimSpace(out)
}
