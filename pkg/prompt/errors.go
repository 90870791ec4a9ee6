package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrTooManyAttempts is returned when a field stays invalid after the
	// configured number of attempts.
	ErrTooManyAttempts = errors.New("prompt: too many invalid attempts")
	// ErrGaveUp is returned when the user declines to retry a failed
	// submission, or the retry budget runs out.
	ErrGaveUp = errors.New("prompt: submission abandoned")
)
