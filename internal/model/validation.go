package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrSchemaIDMissing  = errors.New("schema id is required")
	ErrSectionIDMissing = errors.New("section id is required")
	ErrFieldKeyMissing  = errors.New("field key is required")
	ErrDuplicateField   = errors.New("duplicate field key")
	ErrUnknownKind      = errors.New("unknown field kind")
	ErrUnknownReference = errors.New("unknown field reference")
	ErrInvalidPattern   = errors.New("invalid pattern")
	ErrInvalidRule      = errors.New("invalid rule")
)

func validateField(field Field) error {
	if field.Key == "" {
		return ErrFieldKeyMissing
	}
	if field.Kind != "" && !field.Kind.Valid() {
		return fmt.Errorf("field %q: %w: %q", field.Key, ErrUnknownKind, field.Kind)
	}
	if field.Kind == FieldKindEnum && len(field.Options) == 0 {
		if _, ok := field.Rule(ValidationRuleEnum); !ok {
			return fmt.Errorf("field %q: %w: enum field needs options", field.Key, ErrInvalidRule)
		}
	}
	for _, rule := range field.Rules {
		if err := validateRule(rule); err != nil {
			return fmt.Errorf("field %q: %w", field.Key, err)
		}
	}
	return nil
}

func validateRule(rule ValidationRule) error {
	switch rule.Kind {
	case ValidationRuleMin, ValidationRuleMax:
		if _, err := strconv.ParseFloat(strings.TrimSpace(rule.Param("value")), 64); err != nil {
			return fmt.Errorf("%w: %s needs a numeric value", ErrInvalidRule, rule.Kind)
		}
	case ValidationRuleMinLength, ValidationRuleMaxLength, ValidationRuleMaxFileSize:
		if n, err := strconv.Atoi(strings.TrimSpace(rule.Param("value"))); err != nil || n < 0 {
			return fmt.Errorf("%w: %s needs a non-negative integer", ErrInvalidRule, rule.Kind)
		}
	case ValidationRulePattern:
		if _, err := CompilePattern(rule.Param("pattern")); err != nil {
			return err
		}
	case ValidationRuleEnum, ValidationRuleFileTypes:
		if len(SplitList(rule.Param("values"))) == 0 {
			return fmt.Errorf("%w: %s needs values", ErrInvalidRule, rule.Kind)
		}
	case ValidationRuleEqualsField:
		if strings.TrimSpace(rule.Param("field")) == "" {
			return fmt.Errorf("%w: equalsField needs a field", ErrInvalidRule)
		}
	case ValidationRuleDateAfter, ValidationRuleDateBefore:
		if _, err := ParseDate(rule.Param("value")); err != nil {
			return fmt.Errorf("%w: %s needs a %s date", ErrInvalidRule, rule.Kind, DateLayout)
		}
	default:
		return fmt.Errorf("%w: unsupported kind %q", ErrInvalidRule, rule.Kind)
	}
	return nil
}

// CompilePattern compiles a pattern anchored to the whole value so a value of
// the right length with a wrong character class still fails.
func CompilePattern(expr string) (*regexp.Regexp, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidPattern)
	}
	re, err := regexp.Compile("^(?:" + trimmed + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re, nil
}

// SplitList splits a comma separated rule parameter, dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
