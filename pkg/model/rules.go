package model

import (
	"strconv"
	"strings"
)

// MinLength requires at least n characters.
func MinLength(n int) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMinLength, Params: map[string]string{"value": strconv.Itoa(n)}}
}

// MaxLength allows at most n characters.
func MaxLength(n int) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMaxLength, Params: map[string]string{"value": strconv.Itoa(n)}}
}

// Min sets an inclusive lower numeric bound.
func Min(v float64) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMin, Params: map[string]string{"value": strconv.FormatFloat(v, 'f', -1, 64)}}
}

// Max sets an inclusive upper numeric bound.
func Max(v float64) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMax, Params: map[string]string{"value": strconv.FormatFloat(v, 'f', -1, 64)}}
}

// Pattern requires the whole value to match expr. hint names the expected
// shape in messages ("6 digits").
func Pattern(expr, hint string) ValidationRule {
	params := map[string]string{"pattern": expr}
	if hint = strings.TrimSpace(hint); hint != "" {
		params["hint"] = hint
	}
	return ValidationRule{Kind: ValidationRulePattern, Params: params}
}

// OneOf restricts values to the listed options.
func OneOf(values ...string) ValidationRule {
	return ValidationRule{Kind: ValidationRuleEnum, Params: map[string]string{"values": strings.Join(values, ",")}}
}

// EqualsField requires the value to equal the sibling field's value. The
// error is attached to the field carrying the rule.
func EqualsField(key string) ValidationRule {
	return ValidationRule{Kind: ValidationRuleEqualsField, Params: map[string]string{"field": key}}
}

// FileTypes restricts attachments by extension or content type
// ("pdf", "image/png").
func FileTypes(types ...string) ValidationRule {
	return ValidationRule{Kind: ValidationRuleFileTypes, Params: map[string]string{"values": strings.Join(types, ",")}}
}

// MaxFileSize caps attachments at n bytes.
func MaxFileSize(n int64) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMaxFileSize, Params: map[string]string{"value": strconv.FormatInt(n, 10)}}
}

// DateAfter requires a date strictly after the DateLayout value.
func DateAfter(date string) ValidationRule {
	return ValidationRule{Kind: ValidationRuleDateAfter, Params: map[string]string{"value": date}}
}

// DateBefore requires a date strictly before the DateLayout value.
func DateBefore(date string) ValidationRule {
	return ValidationRule{Kind: ValidationRuleDateBefore, Params: map[string]string{"value": date}}
}

// WithMessage overrides the rendered message of a rule. The message is a
// template that can reference the rule parameters and the field label.
func WithMessage(rule ValidationRule, message string) ValidationRule {
	params := make(map[string]string, len(rule.Params)+1)
	for k, v := range rule.Params {
		params[k] = v
	}
	params["message"] = message
	rule.Params = params
	return rule
}
