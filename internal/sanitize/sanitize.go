package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Text strips every tag from raw and returns plain text. Entities produced by
// the policy are decoded again so "R&D" survives unchanged.
func Text(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if !strings.ContainsAny(trimmed, "<>&") {
		return trimmed
	}
	cleaned := policy().Sanitize(trimmed)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

func policy() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
