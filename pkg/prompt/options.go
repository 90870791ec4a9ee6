package prompt

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/validation"
)

// Theme captures message prefixes the session prints through the driver.
type Theme struct {
	SectionPrefix string
	ErrorPrefix   string
	InfoPrefix    string
}

// DefaultTheme is used unless WithTheme overrides it.
var DefaultTheme = Theme{
	SectionPrefix: "== ",
	ErrorPrefix:   "! ",
	InfoPrefix:    "",
}

// Option configures a Session.
type Option func(*Session)

// WithDriver overrides the prompt driver. Defaults to the survey driver.
func WithDriver(driver Driver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithEngine sets the engine used for per-field checks while prompting. It
// should match the one the controller was built with.
func WithEngine(engine *validation.Engine) Option {
	return func(s *Session) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithMaxAttempts caps how often a single field is re-prompted.
func WithMaxAttempts(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithMaxRounds caps how often the whole form is resubmitted.
func WithMaxRounds(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxRounds = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}
