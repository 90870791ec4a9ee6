package model

import (
	"strings"
	"time"
)

// Options configures the behaviour of the Builder. Options are constructed by
// the public adapter in pkg/model and passed into NewBuilder.
type Options struct {
	Labeler func(string) string
}

func defaultOptions() Options {
	return Options{
		Labeler: DefaultLabeler,
	}
}

// ParseDate parses a date field value in DateLayout.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(raw))
}
