package validation

import (
	"fmt"
	"math"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/visibility"
	"github.com/goliatone/go-formstate/pkg/visibility/expr"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}[0-9]$`)
)

// checkOrder fixes the precedence of rule kinds inside a single field.
var checkOrder = []string{
	model.ValidationRuleMinLength,
	model.ValidationRuleMaxLength,
	model.ValidationRuleMin,
	model.ValidationRuleMax,
	model.ValidationRuleDateAfter,
	model.ValidationRuleDateBefore,
	model.ValidationRulePattern,
	model.ValidationRuleEnum,
	model.ValidationRuleFileTypes,
	model.ValidationRuleMaxFileSize,
}

// FileValidator is an external check for file attachments supplied by the
// enclosing page (virus scan verdicts, page-specific size caps). It never
// sees file contents, only the handle.
type FileValidator func(field model.Field, file model.FileHandle) error

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog sets the message catalog.
func WithCatalog(c *Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithFileValidator installs an external file validator.
func WithFileValidator(fn FileValidator) Option {
	return func(e *Engine) {
		e.fileValidator = fn
	}
}

// WithEvaluator overrides the EnabledWhen evaluator.
func WithEvaluator(ev visibility.Evaluator) Option {
	return func(e *Engine) {
		if ev != nil {
			e.evaluator = ev
		}
	}
}

// WithExtras exposes additional context to EnabledWhen rules under the
// `extras.` prefix.
func WithExtras(extras map[string]any) Option {
	return func(e *Engine) {
		e.extras = extras
	}
}

// Engine evaluates schemas against records. It holds no per-form state and is
// safe for concurrent use.
type Engine struct {
	catalog       *Catalog
	fileValidator FileValidator
	evaluator     visibility.Evaluator
	extras        map[string]any
	patterns      sync.Map // expression -> *regexp.Regexp
}

// New constructs an Engine with the default catalog and evaluator.
func New(options ...Option) *Engine {
	e := &Engine{
		catalog:   NewCatalog(),
		evaluator: expr.New(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

var defaultEngine = New()

// Validate runs the default engine.
func Validate(schema *model.Schema, record model.Record) Result {
	return defaultEngine.Validate(schema, record)
}

// Validate checks every enabled field of schema against record. Fields are
// checked independently and every failing field is reported. Cross-field
// rules run afterwards and only for fields that passed their own checks.
func (e *Engine) Validate(schema *model.Schema, record model.Record) Result {
	result := make(Result)
	if schema == nil {
		return result
	}

	fields := schema.Fields()
	enabled := make(map[string]bool, len(fields))
	for _, field := range fields {
		enabled[field.Key] = e.enabled(field, record)
		if !enabled[field.Key] {
			continue
		}
		if issue, failed := e.checkField(field, record[field.Key]); failed {
			result[field.Key] = issue
		}
	}

	for _, field := range fields {
		if !enabled[field.Key] {
			continue
		}
		if _, failed := result[field.Key]; failed {
			continue
		}
		if issue, failed := e.checkCrossField(schema, field, record, enabled); failed {
			result[field.Key] = issue
		}
	}
	return result
}

// ValidateField checks a single field, including its cross-field rule. It
// backs incremental revalidation after an edit.
func (e *Engine) ValidateField(schema *model.Schema, record model.Record, key string) (Issue, bool) {
	field, ok := schema.Field(key)
	if !ok {
		return Issue{}, false
	}
	if !e.enabled(field, record) {
		return Issue{}, false
	}
	if issue, failed := e.checkField(field, record[key]); failed {
		return issue, true
	}
	enabled := map[string]bool{key: true}
	for _, rule := range field.Rules {
		if rule.Kind == model.ValidationRuleEqualsField {
			target := rule.Param("field")
			if other, ok := schema.Field(target); ok {
				enabled[target] = e.enabled(other, record)
			}
		}
	}
	return e.checkCrossField(schema, field, record, enabled)
}

// Enabled reports whether key is enabled for record according to its
// EnabledWhen rule.
func (e *Engine) Enabled(schema *model.Schema, record model.Record, key string) bool {
	field, ok := schema.Field(key)
	if !ok {
		return false
	}
	return e.enabled(field, record)
}

func (e *Engine) enabled(field model.Field, record model.Record) bool {
	if strings.TrimSpace(field.EnabledWhen) == "" {
		return true
	}
	ok, err := e.evaluator.Eval(field.Key, field.EnabledWhen, visibility.Context{Values: record, Extras: e.extras})
	if err != nil {
		// A broken rule must not hide a field from validation.
		return true
	}
	return ok
}

func (e *Engine) checkField(field model.Field, value any) (Issue, bool) {
	if field.Kind == model.FieldKindBoolean {
		return e.checkBoolean(field, value)
	}
	if model.IsEmpty(value) {
		if field.Required {
			return e.issue(field, CodeRequired, nil, model.ValidationRule{}), true
		}
		return Issue{}, false
	}

	if issue, failed := e.checkKind(field, value); failed {
		return issue, true
	}

	for _, kind := range checkOrder {
		for _, rule := range field.Rules {
			if rule.Kind != kind {
				continue
			}
			if issue, failed := e.checkRule(field, rule, value); failed {
				return issue, true
			}
		}
	}

	if field.Kind == model.FieldKindFile && e.fileValidator != nil {
		handle, _ := asFile(value)
		if err := e.fileValidator(field, handle); err != nil {
			issue := e.issue(field, CodeInvalidFile, nil, model.ValidationRule{})
			issue.Message = err.Error()
			return issue, true
		}
	}
	return Issue{}, false
}

func (e *Engine) checkBoolean(field model.Field, value any) (Issue, bool) {
	if value == nil {
		if field.Required {
			return e.issue(field, CodeRequired, nil, model.ValidationRule{}), true
		}
		return Issue{}, false
	}
	b, ok := asBool(value)
	if !ok {
		return e.issue(field, CodeInvalidType, nil, model.ValidationRule{}), true
	}
	if field.Required && !b {
		return e.issue(field, CodeRequired, nil, model.ValidationRule{}), true
	}
	return Issue{}, false
}

func (e *Engine) checkKind(field model.Field, value any) (Issue, bool) {
	none := model.ValidationRule{}
	switch field.Kind {
	case model.FieldKindNumber:
		if _, err := asNumber(value); err != nil {
			return e.issue(field, CodeNotANumber, nil, none), true
		}
	case model.FieldKindEmail:
		if !emailPattern.MatchString(model.Text(field.Kind, value)) {
			return e.issue(field, CodeInvalidEmail, nil, none), true
		}
	case model.FieldKindPhone:
		if !phonePattern.MatchString(model.Text(field.Kind, value)) {
			return e.issue(field, CodeInvalidPhone, nil, none), true
		}
	case model.FieldKindDate:
		if _, err := model.ParseDate(model.Stringify(value)); err != nil {
			return e.issue(field, CodeInvalidDate, nil, none), true
		}
	case model.FieldKindEnum:
		if len(field.Options) > 0 && !contains(field.Options, model.Text(field.Kind, value)) {
			return e.issue(field, CodeInvalidEnum, map[string]string{"values": strings.Join(field.Options, ", ")}, none), true
		}
	case model.FieldKindFile:
		if _, ok := asFile(value); !ok {
			return e.issue(field, CodeInvalidType, nil, none), true
		}
	default:
		switch value.(type) {
		case string, int, int64, float64:
		default:
			return e.issue(field, CodeInvalidType, nil, none), true
		}
	}
	return Issue{}, false
}

func (e *Engine) checkRule(field model.Field, rule model.ValidationRule, value any) (Issue, bool) {
	text := model.Text(field.Kind, value)
	switch rule.Kind {
	case model.ValidationRuleMinLength, model.ValidationRuleMaxLength:
		if !field.Kind.TextLike() {
			return Issue{}, false
		}
		limit, _ := strconv.Atoi(strings.TrimSpace(rule.Param("value")))
		length := utf8.RuneCountInString(text)
		if rule.Kind == model.ValidationRuleMinLength && length < limit {
			return e.issue(field, CodeTooShort, map[string]string{"min": strconv.Itoa(limit)}, rule), true
		}
		if rule.Kind == model.ValidationRuleMaxLength && length > limit {
			return e.issue(field, CodeTooLong, map[string]string{"max": strconv.Itoa(limit)}, rule), true
		}

	case model.ValidationRuleMin, model.ValidationRuleMax:
		n, err := asNumber(value)
		if err != nil {
			return e.issue(field, CodeNotANumber, nil, rule), true
		}
		bound, _ := strconv.ParseFloat(strings.TrimSpace(rule.Param("value")), 64)
		label := formatNumber(bound)
		if rule.Kind == model.ValidationRuleMin && n < bound {
			return e.issue(field, CodeTooSmall, map[string]string{"min": label}, rule), true
		}
		if rule.Kind == model.ValidationRuleMax && n > bound {
			return e.issue(field, CodeTooBig, map[string]string{"max": label}, rule), true
		}

	case model.ValidationRuleDateAfter, model.ValidationRuleDateBefore:
		if field.Kind != model.FieldKindDate {
			return Issue{}, false
		}
		got, err := model.ParseDate(text)
		if err != nil {
			return e.issue(field, CodeInvalidDate, nil, rule), true
		}
		limit, _ := model.ParseDate(rule.Param("value"))
		params := map[string]string{"value": rule.Param("value")}
		if rule.Kind == model.ValidationRuleDateAfter && !got.After(limit) {
			return e.issue(field, CodeDateTooEarly, params, rule), true
		}
		if rule.Kind == model.ValidationRuleDateBefore && !got.Before(limit) {
			return e.issue(field, CodeDateTooLate, params, rule), true
		}

	case model.ValidationRulePattern:
		if field.Kind == model.FieldKindFile || field.Kind == model.FieldKindBoolean {
			return Issue{}, false
		}
		re, err := e.pattern(rule.Param("pattern"))
		if err != nil {
			return e.issue(field, CodeInvalidType, nil, rule), true
		}
		if !re.MatchString(text) {
			return e.issue(field, CodePattern, map[string]string{"hint": rule.Param("hint"), "pattern": rule.Param("pattern")}, rule), true
		}

	case model.ValidationRuleEnum:
		values := model.SplitList(rule.Param("values"))
		if !contains(values, text) {
			return e.issue(field, CodeInvalidEnum, map[string]string{"values": strings.Join(values, ", ")}, rule), true
		}

	case model.ValidationRuleFileTypes:
		handle, ok := asFile(value)
		if !ok {
			return Issue{}, false
		}
		allowed := model.SplitList(rule.Param("values"))
		if !fileTypeAllowed(handle, allowed) {
			return e.issue(field, CodeInvalidFile, map[string]string{"values": strings.Join(allowed, ", ")}, rule), true
		}

	case model.ValidationRuleMaxFileSize:
		handle, ok := asFile(value)
		if !ok {
			return Issue{}, false
		}
		limit, _ := strconv.ParseInt(strings.TrimSpace(rule.Param("value")), 10, 64)
		if handle.Size > limit {
			return e.issue(field, CodeFileTooLarge, map[string]string{"max": strconv.FormatInt(limit, 10)}, rule), true
		}
	}
	return Issue{}, false
}

func (e *Engine) checkCrossField(schema *model.Schema, field model.Field, record model.Record, enabled map[string]bool) (Issue, bool) {
	for _, rule := range field.Rules {
		if rule.Kind != model.ValidationRuleEqualsField {
			continue
		}
		target := rule.Param("field")
		if on, known := enabled[target]; known && !on {
			continue
		}
		if model.Text(field.Kind, record[field.Key]) == model.Text(field.Kind, record[target]) {
			continue
		}
		other, _ := schema.Field(target)
		return e.issue(field, CodeMismatch, map[string]string{"field": target, "other": other.Label}, rule), true
	}
	return Issue{}, false
}

func (e *Engine) issue(field model.Field, code string, params map[string]string, rule model.ValidationRule) Issue {
	issue := Issue{
		Field:  field.Key,
		Code:   code,
		Params: params,
		Source: SourceClient,
	}
	issue.Message = e.catalog.Message(field, issue, rule)
	return issue
}

func (e *Engine) pattern(expression string) (*regexp.Regexp, error) {
	if cached, ok := e.patterns.Load(expression); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := model.CompilePattern(expression)
	if err != nil {
		return nil, err
	}
	e.patterns.Store(expression, re)
	return re, nil
}

func asNumber(value any) (float64, error) {
	switch n := value.(type) {
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("validation: %v is not a finite number", n)
		}
		return n, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, fmt.Errorf("validation: %q is not a number", n)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("validation: unsupported number type %T", value)
	}
}

func asBool(value any) (bool, bool) {
	switch b := value.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	default:
		return false, false
	}
}

func asFile(value any) (model.FileHandle, bool) {
	switch f := value.(type) {
	case model.FileHandle:
		return f, true
	case *model.FileHandle:
		if f == nil {
			return model.FileHandle{}, false
		}
		return *f, true
	default:
		return model.FileHandle{}, false
	}
}

func fileTypeAllowed(handle model.FileHandle, allowed []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(handle.Name)), ".")
	contentType := strings.ToLower(strings.TrimSpace(handle.ContentType))
	for _, candidate := range allowed {
		candidate = strings.ToLower(strings.TrimPrefix(candidate, "."))
		if candidate == ext || (contentType != "" && candidate == contentType) {
			return true
		}
	}
	return false
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
